package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"km-report-service/internal/adapters/status"
	"km-report-service/internal/api/dto"
	"km-report-service/internal/domain"
	"km-report-service/internal/services"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

type ReportStarter interface {
	Start(month string, year int) (string, error)
}

type StatusReader interface {
	Snapshot() status.Snapshot
}

type ReportHandler struct {
	Runner  ReportStarter
	Tracker StatusReader
	Log     logrus.FieldLogger
	Now     func() time.Time
}

// Start launches a background report run for the requested month.
func (h *ReportHandler) Start(w http.ResponseWriter, r *http.Request) {
	if !allowOnly(h.Log, w, r, http.MethodPost) {
		return
	}

	var req dto.ReportRequest

	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(h.Log, w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(h.Log, w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	month := strings.TrimSpace(string(req.Month))
	year := req.Year
	if year == 0 {
		year = h.now().Year()
	}
	if year < 2000 || year > 9999 {
		writeError(h.Log, w, r, http.StatusBadRequest, "year must be between 2000 and 9999")
		return
	}

	runID, err := h.Runner.Start(month, year)
	switch {
	case errors.Is(err, domain.ErrInvalidMonth):
		writeError(h.Log, w, r, http.StatusBadRequest, domain.ErrInvalidMonth.Error())
		return
	case errors.Is(err, services.ErrRunInProgress):
		writeError(h.Log, w, r, http.StatusConflict, err.Error())
		return
	case err != nil:
		h.Log.WithError(err).Error("start report failed")
		writeError(h.Log, w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(h.Log, w, r, http.StatusAccepted, dto.ReportResponse{RunID: runID, Month: month, Year: year})
}

// Status reports the latest progress message of the current or last run.
func (h *ReportHandler) Status(w http.ResponseWriter, r *http.Request) {
	if !allowOnly(h.Log, w, r, http.MethodGet) {
		return
	}

	s := h.Tracker.Snapshot()
	writeJSON(h.Log, w, r, http.StatusOK, dto.StatusResponse{
		RunID:     s.RunID,
		Running:   s.Running,
		Message:   s.Message,
		Kind:      string(s.Kind),
		UpdatedAt: s.UpdatedAt,
	})
}

func (h *ReportHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}
