package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidTimeRange = errors.New("invalid time range")

// MaxDriveGap is the largest gap between two visits that still counts as a drive.
const MaxDriveGap = time.Hour

// RawVisit is a visit exactly as read from the scheduling app.
type RawVisit struct {
	TimeText   string
	Address    string
	ClientName string
}

// Time-of-day span of a visit, as offsets from midnight.
type TimeRange struct {
	Start time.Duration
	End   time.Duration
}

// Represents a single client visit on a calendar day.
type VisitEvent struct {
	Time       TimeRange
	Address    string
	ClientName string
}

// ParseTimeRange parses "HH:MM - HH:MM".
func ParseTimeRange(s string) (TimeRange, error) {
	parts := strings.Split(s, "-")
	if len(parts) != 2 {
		return TimeRange{}, fmt.Errorf("parse time range %q: %w", s, ErrInvalidTimeRange)
	}

	start, err := parseClock(strings.TrimSpace(parts[0]))
	if err != nil {
		return TimeRange{}, fmt.Errorf("parse time range %q: start: %w", s, err)
	}

	end, err := parseClock(strings.TrimSpace(parts[1]))
	if err != nil {
		return TimeRange{}, fmt.Errorf("parse time range %q: end: %w", s, err)
	}

	return TimeRange{Start: start, End: end}, nil
}

func parseClock(s string) (time.Duration, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidTimeRange, err)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

// Duration of the visit. An end before the start wraps past midnight.
func (r TimeRange) Duration() time.Duration {
	end := r.End
	if end < r.Start {
		end += 24 * time.Hour
	}
	return end - r.Start
}

// GapAfter returns the time between the end of prev and the start of r.
// Raw times of day are compared; no midnight wrap is applied.
func (r TimeRange) GapAfter(prev TimeRange) time.Duration {
	return r.Start - prev.End
}

// IsDriveGap reports whether a gap between two visits implies a drive.
func IsDriveGap(gap time.Duration) bool {
	return gap > 0 && gap <= MaxDriveGap
}

// ParseVisit converts a raw visit into a VisitEvent.
func ParseVisit(raw RawVisit) (VisitEvent, error) {
	tr, err := ParseTimeRange(raw.TimeText)
	if err != nil {
		return VisitEvent{}, err
	}
	return VisitEvent{
		Time:       tr,
		Address:    raw.Address,
		ClientName: raw.ClientName,
	}, nil
}
