package ports

import (
	"context"
	"km-report-service/internal/domain"
	"time"
)

// Port: a boundary for reading visits from the scheduling app.
type ScheduleReader interface {
	// Establish the device session and bring the app to a clean state.
	Connect(ctx context.Context) error
	// Navigate the calendar to the given month.
	OpenMonth(ctx context.Context, year int, month time.Month) error
	// Select a calendar day and confirm it.
	SelectDay(ctx context.Context, date time.Time) error
	// Read the visits shown for the selected day, in on-screen order.
	Visits(ctx context.Context) ([]domain.RawVisit, error)
	// Re-open the date picker on date so the next day can be selected.
	ReselectDate(ctx context.Context, date time.Time) error
	// Stop the app and release the session.
	Close(ctx context.Context) error
}
