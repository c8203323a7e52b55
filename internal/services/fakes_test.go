package services

import (
	"context"
	"errors"
	"io"
	"km-report-service/internal/adapters/distance"
	"km-report-service/internal/domain"
	"km-report-service/internal/ports"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

func quietLog() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// fakeReader serves visits per day of month.
type fakeReader struct {
	days       map[int][]domain.RawVisit
	failDay    int
	connectErr error
	onSelect   func(day int)

	connected   bool
	closed      bool
	closeCtxErr error
	reselected  []int
}

func (f *fakeReader) Connect(ctx context.Context) error {
	if f.connectErr != nil {
		return f.connectErr
	}
	f.connected = true
	return nil
}
func (f *fakeReader) OpenMonth(ctx context.Context, year int, month time.Month) error { return nil }
func (f *fakeReader) SelectDay(ctx context.Context, date time.Time) error {
	if f.onSelect != nil {
		f.onSelect(date.Day())
	}
	if date.Day() == f.failDay {
		return errors.New("day not on screen")
	}
	return nil
}
func (f *fakeReader) Visits(ctx context.Context) ([]domain.RawVisit, error) { return nil, nil }
func (f *fakeReader) ReselectDate(ctx context.Context, date time.Time) error {
	f.reselected = append(f.reselected, date.Day())
	return nil
}
func (f *fakeReader) Close(ctx context.Context) error {
	f.closed = true
	f.closeCtxErr = ctx.Err()
	return nil
}

// dayReader adapts fakeReader so Visits answers for the last selected day.
type dayReader struct {
	*fakeReader
	current int
}

func (r *dayReader) SelectDay(ctx context.Context, date time.Time) error {
	r.current = date.Day()
	return r.fakeReader.SelectDay(ctx, date)
}
func (r *dayReader) Visits(ctx context.Context) ([]domain.RawVisit, error) {
	return r.days[r.current], nil
}

type memLedger struct {
	mu     sync.Mutex
	drives []domain.InferredDrive
}

func (l *memLedger) Append(d domain.InferredDrive) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.drives = append(l.drives, d)
	return nil
}

func (l *memLedger) ReadAll() ([]domain.LedgerRow, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	rows := make([]domain.LedgerRow, 0, len(l.drives))
	for _, d := range l.drives {
		rows = append(rows, domain.LedgerRow{
			Date:        d.Date.Format(domain.LedgerDateLayout),
			Origin:      d.Origin,
			Destination: d.Destination,
			Distance:    d.Distance,
		})
	}
	return rows, nil
}

type writtenPage struct {
	path  string
	texts []domain.TextPlacement
}

type fakePageWriter struct {
	written []writtenPage
	stamped []writtenPage
}

func (w *fakePageWriter) WritePage(ctx context.Context, templatePath, outPath string, texts []domain.TextPlacement) error {
	if err := os.WriteFile(outPath, nil, 0o644); err != nil {
		return err
	}
	w.written = append(w.written, writtenPage{path: outPath, texts: texts})
	return nil
}

func (w *fakePageWriter) StampPage(ctx context.Context, path string, texts []domain.TextPlacement) error {
	w.stamped = append(w.stamped, writtenPage{path: path, texts: texts})
	return nil
}

// fakeSession is a DistanceSession over the mock provider.
type fakeSession struct {
	*distance.MockDistanceProvider
	startErr error
	started  bool
	closed   int
}

func (s *fakeSession) Start(ctx context.Context) error {
	if s.startErr != nil {
		return s.startErr
	}
	s.started = true
	return nil
}
func (s *fakeSession) Close() error {
	s.closed++
	return nil
}

// identityNormalizer trims and keeps the first line of an address.
type identityNormalizer struct{}

func (identityNormalizer) Normalize(raw string) string {
	return strings.TrimSpace(domain.SingleLine(raw))
}

type recordingStatus struct {
	mu       sync.Mutex
	messages []string
	kinds    []ports.StatusKind
}

func (s *recordingStatus) Status(message string, kind ports.StatusKind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, message)
	s.kinds = append(s.kinds, kind)
}

func (s *recordingStatus) last() (string, ports.StatusKind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.messages) == 0 {
		return "", ""
	}
	return s.messages[len(s.messages)-1], s.kinds[len(s.kinds)-1]
}
