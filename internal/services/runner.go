package services

import (
	"context"
	"errors"
	"km-report-service/internal/domain"
	"km-report-service/internal/platform/obs"
	"km-report-service/internal/ports"
	"sync"

	"github.com/sirupsen/logrus"
)

var ErrRunInProgress = errors.New("a report run is already in progress")

// MonthRunner runs a month report.
type MonthRunner interface {
	Run(ctx context.Context, month string, year int) (MonthSummary, error)
}

// RunTracker records run state for status polling.
type RunTracker interface {
	ports.StatusSink
	Begin(runID string) bool
	End()
}

// Runner starts month runs in the background, one at a time.
type Runner struct {
	pipeline MonthRunner
	tracker  RunTracker
	base     context.Context
	log      logrus.FieldLogger
	wg       sync.WaitGroup
}

// NewRunner runs pipelines under base; cancelling base stops a running report.
func NewRunner(base context.Context, pipeline MonthRunner, tracker RunTracker, log logrus.FieldLogger) *Runner {
	return &Runner{pipeline: pipeline, tracker: tracker, base: base, log: log}
}

// Start validates month and launches a run, returning its id.
func (r *Runner) Start(month string, year int) (string, error) {
	if _, err := domain.ValidateMonth(month); err != nil {
		return "", err
	}

	ctx, runID := obs.WithRunID(r.base)
	if !r.tracker.Begin(runID) {
		return "", ErrRunInProgress
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer r.tracker.End()

		log := r.log.WithField("run_id", runID)
		log.WithField("month", month).WithField("year", year).Info("run started")

		sum, err := r.pipeline.Run(ctx, month, year)
		if err != nil {
			log.WithError(err).Error("run failed")
			return
		}
		log.WithField("drives", sum.Drives).Info("run finished")
	}()

	return runID, nil
}

// Wait blocks until the current run, if any, has finished.
func (r *Runner) Wait() {
	r.wg.Wait()
}
