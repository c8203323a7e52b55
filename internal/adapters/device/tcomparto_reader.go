package device

import (
	"context"
	"fmt"
	"km-report-service/internal/config"
	"km-report-service/internal/domain"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

// ScheduleReader reads visits from the scheduling app's "Planilla" tab
// by tapping through its date picker.
type ScheduleReader struct {
	dev Device
	cfg config.DeviceConfig
	log logrus.FieldLogger

	now  func() time.Time
	wait func(ctx context.Context, d time.Duration) error
}

func NewScheduleReader(dev Device, cfg config.DeviceConfig, log logrus.FieldLogger) *ScheduleReader {
	return &ScheduleReader{
		dev:  dev,
		cfg:  cfg,
		log:  log.WithField("component", "schedule_reader"),
		now:  time.Now,
		wait: sleep,
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Connect restarts the app and opens the schedule tab.
func (r *ScheduleReader) Connect(ctx context.Context) error {
	if err := r.dev.Connect(ctx); err != nil {
		return err
	}
	if err := r.dev.StopApp(ctx, r.cfg.AppPackage); err != nil {
		return err
	}
	if err := r.dev.StartApp(ctx, r.cfg.AppPackage); err != nil {
		return err
	}
	if err := r.wait(ctx, r.cfg.StartWait.Duration); err != nil {
		return err
	}
	return r.tapText(ctx, r.cfg.TabLabel)
}

// OpenMonth opens the date picker on today and steps back to month.
func (r *ScheduleReader) OpenMonth(ctx context.Context, year int, month time.Month) error {
	now := r.now()
	if err := r.tapText(ctx, now.Format(domain.LedgerDateLayout)); err != nil {
		return fmt.Errorf("open date picker: %w", err)
	}
	if err := r.wait(ctx, r.cfg.SettleDelay.Duration); err != nil {
		return err
	}

	back := domain.MonthsBack(now, year, month)
	if back <= 0 {
		r.log.WithField("months_back", back).Info("target month is current or future, picker left as is")
		return nil
	}

	for i := 0; i < back; i++ {
		if err := r.tapResourceID(ctx, r.cfg.PrevMonthID); err != nil {
			return fmt.Errorf("previous month %d/%d: %w", i+1, back, err)
		}
		if err := r.wait(ctx, r.cfg.PickerDelay.Duration); err != nil {
			return err
		}
	}
	return nil
}

func (r *ScheduleReader) SelectDay(ctx context.Context, date time.Time) error {
	if err := r.tapText(ctx, strconv.Itoa(date.Day())); err != nil {
		return fmt.Errorf("select day %d: %w", date.Day(), err)
	}
	if err := r.tapText(ctx, r.cfg.AcceptLabel); err != nil {
		return fmt.Errorf("confirm day %d: %w", date.Day(), err)
	}
	return r.wait(ctx, r.cfg.AcceptDelay.Duration)
}

// Visits reads the three parallel visit lists; the shortest list bounds the count.
func (r *ScheduleReader) Visits(ctx context.Context) ([]domain.RawVisit, error) {
	els, err := r.dev.Dump(ctx)
	if err != nil {
		return nil, err
	}

	times := ByResourceID(els, r.cfg.TimeID)
	places := ByResourceID(els, r.cfg.LocationID)
	users := ByResourceID(els, r.cfg.UserID)

	n := min(len(times), len(places), len(users))
	if n != len(times) || n != len(places) || n != len(users) {
		r.log.WithFields(logrus.Fields{
			"times":     len(times),
			"locations": len(places),
			"users":     len(users),
		}).Warn("visit lists differ in length, truncating")
	}

	out := make([]domain.RawVisit, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, domain.RawVisit{
			TimeText:   times[i].Text,
			Address:    places[i].Text,
			ClientName: users[i].Text,
		})
	}
	return out, nil
}

func (r *ScheduleReader) ReselectDate(ctx context.Context, date time.Time) error {
	if err := r.tapText(ctx, date.Format(domain.LedgerDateLayout)); err != nil {
		return fmt.Errorf("reselect %s: %w", date.Format(domain.LedgerDateLayout), err)
	}
	return r.wait(ctx, r.cfg.SettleDelay.Duration)
}

func (r *ScheduleReader) Close(ctx context.Context) error {
	return r.dev.StopApp(ctx, r.cfg.AppPackage)
}

func (r *ScheduleReader) tapText(ctx context.Context, text string) error {
	els, err := r.dev.Dump(ctx)
	if err != nil {
		return err
	}
	found := ByText(els, text)
	if len(found) == 0 {
		return fmt.Errorf("no element with text %q", text)
	}
	x, y := found[0].Bounds.Center()
	return r.dev.Tap(ctx, x, y)
}

func (r *ScheduleReader) tapResourceID(ctx context.Context, id string) error {
	els, err := r.dev.Dump(ctx)
	if err != nil {
		return err
	}
	found := ByResourceID(els, id)
	if len(found) == 0 {
		return fmt.Errorf("no element with resource-id %q", id)
	}
	x, y := found[0].Bounds.Center()
	return r.dev.Tap(ctx, x, y)
}
