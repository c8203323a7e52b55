package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Month accepts either a JSON number (6) or a string ("06").
type Month string

func (m *Month) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*m = Month(s)
		return nil
	}

	n, err := strconv.Atoi(string(b))
	if err != nil {
		return fmt.Errorf("month must be a number or a string")
	}
	*m = Month(strconv.Itoa(n))
	return nil
}

type ReportRequest struct {
	Month Month `json:"month"`
	// Defaults to the current year when omitted.
	Year int `json:"year,omitempty"`
}

type ReportResponse struct {
	RunID string `json:"run_id"`
	Month string `json:"month"`
	Year  int    `json:"year"`
}

type StatusResponse struct {
	RunID     string    `json:"run_id,omitempty"`
	Running   bool      `json:"running"`
	Message   string    `json:"message"`
	Kind      string    `json:"kind"`
	UpdatedAt time.Time `json:"updated_at"`
}
