package status

import (
	"km-report-service/internal/ports"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// LogSink writes status messages to the log.
type LogSink struct {
	log logrus.FieldLogger
}

func NewLogSink(log logrus.FieldLogger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Status(message string, kind ports.StatusKind) {
	e := s.log.WithField("status", string(kind))
	switch kind {
	case ports.StatusError:
		e.Error(message)
	default:
		e.Info(message)
	}
}

// Snapshot is the state reported by Tracker.
type Snapshot struct {
	RunID     string           `json:"run_id,omitempty"`
	Running   bool             `json:"running"`
	Message   string           `json:"message"`
	Kind      ports.StatusKind `json:"kind"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// Tracker remembers the latest status message and forwards it to next.
// It is safe for concurrent use.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
	next ports.StatusSink
	now  func() time.Time
}

func NewTracker(next ports.StatusSink) *Tracker {
	return &Tracker{next: next, now: time.Now, snap: Snapshot{Kind: ports.StatusInfo}}
}

func (t *Tracker) Status(message string, kind ports.StatusKind) {
	t.mu.Lock()
	t.snap.Message = message
	t.snap.Kind = kind
	t.snap.UpdatedAt = t.now()
	t.mu.Unlock()

	if t.next != nil {
		t.next.Status(message, kind)
	}
}

// Begin marks a run as started. It reports false if one is already running.
func (t *Tracker) Begin(runID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.snap.Running {
		return false
	}
	t.snap.Running = true
	t.snap.RunID = runID
	t.snap.UpdatedAt = t.now()
	return true
}

func (t *Tracker) End() {
	t.mu.Lock()
	t.snap.Running = false
	t.snap.UpdatedAt = t.now()
	t.mu.Unlock()
}

func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.snap
}
