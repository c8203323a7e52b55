package services

import (
	"context"
	"fmt"
	"km-report-service/internal/domain"
	"km-report-service/internal/platform/obs"
	"km-report-service/internal/ports"
	"time"

	"github.com/sirupsen/logrus"
)

const cleanupTimeout = 15 * time.Second

// PipelineDeps wires a MonthPipeline. The factories build per-run state.
type PipelineDeps struct {
	Reader     ports.ScheduleReader
	Browser    ports.DistanceSession
	Normalizer AddressNormalizer
	Renderer   *ReportRenderer
	Status     ports.StatusSink
	Log        logrus.FieldLogger

	// PrepareFolders empties the ledger folder and creates the output folders.
	PrepareFolders func() error
	// NewLedger opens the ledger for a month.
	NewLedger func(year int, month time.Month) ports.Ledger
	// NewLookup builds the run-scoped distance cache over a provider.
	NewLookup func(provider ports.DistanceProvider) DistanceLookup
}

// MonthSummary aggregates a month run.
type MonthSummary struct {
	Month      time.Month
	Year       int
	Days       []DayResult
	Duration   time.Duration
	Kilometers float64
	Drives     int
	Render     RenderResult
}

// MonthPipeline runs the whole report for one month: read every day from
// the device, record drives in the ledger, then render the PDF pages.
type MonthPipeline struct {
	deps PipelineDeps
}

func NewMonthPipeline(deps PipelineDeps) *MonthPipeline {
	return &MonthPipeline{deps: deps}
}

// Run processes monthStr ("1".."12") of year. An invalid month fails before
// any side effect. Failures to set up the device or browser abort the run;
// failures on a single day are recorded in the summary and skipped.
func (p *MonthPipeline) Run(ctx context.Context, monthStr string, year int) (sum MonthSummary, err error) {
	d := p.deps
	defer func() {
		if err != nil {
			d.Status.Status(fmt.Sprintf("Program failed: %v", err), ports.StatusError)
		}
	}()

	month, err := domain.ValidateMonth(monthStr)
	if err != nil {
		return sum, err
	}
	sum.Month, sum.Year = month, year

	defer obs.Time(ctx, d.Log, "pipeline.Run")(&err)
	log := d.Log.WithFields(logrus.Fields{"run_id": obs.RunID(ctx), "month": fmt.Sprintf("%02d", int(month)), "year": year})

	d.Status.Status("Connecting to device...", ports.StatusInfo)
	if err := d.Reader.Connect(ctx); err != nil {
		return sum, fmt.Errorf("setup: connect device: %w", err)
	}
	defer func() {
		// ctx may already be cancelled; stopping the app must still reach the device.
		closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
		defer cancel()
		if err := d.Reader.Close(closeCtx); err != nil {
			log.WithError(err).Warn("could not stop the scheduling app")
		}
	}()

	if err := d.PrepareFolders(); err != nil {
		return sum, fmt.Errorf("setup: %w", err)
	}
	ledger := d.NewLedger(year, month)

	if err := d.Reader.OpenMonth(ctx, year, month); err != nil {
		return sum, fmt.Errorf("setup: open month: %w", err)
	}

	d.Status.Status("Starting headless browser...", ports.StatusInfo)
	if err := d.Browser.Start(ctx); err != nil {
		return sum, fmt.Errorf("setup: start browser: %w", err)
	}
	browserOpen := true
	defer func() {
		if browserOpen {
			d.Browser.Close()
		}
	}()

	proc := NewDayProcessor(d.Reader, d.Normalizer, d.NewLookup(d.Browser), ledger, log)

	for day := 1; day <= domain.DaysIn(year, month); day++ {
		if err := ctx.Err(); err != nil {
			return sum, fmt.Errorf("run month: %w", err)
		}

		d.Status.Status(fmt.Sprintf("Processing day %d...", day), ports.StatusInfo)
		res := proc.ProcessDay(ctx, time.Date(year, month, day, 0, 0, 0, 0, time.Local))
		if res.Err != nil {
			log.WithError(res.Err).WithField("day", day).Error("day skipped")
		}

		sum.Days = append(sum.Days, res)
		sum.Duration += res.Duration
		sum.Kilometers += res.Kilometers
		sum.Drives += len(res.Drives)
	}

	log.WithFields(logrus.Fields{
		"total_duration": FormatDuration(sum.Duration),
		"total_km":       FormatKm(sum.Kilometers),
		"drives":         sum.Drives,
	}).Info("month processed")

	d.Status.Status("Closing browser...", ports.StatusInfo)
	browserOpen = false
	if err := d.Browser.Close(); err != nil {
		log.WithError(err).Warn("could not close browser")
	}

	rows, err := ledger.ReadAll()
	if err != nil {
		return sum, err
	}

	d.Status.Status("Writing PDF data...", ports.StatusInfo)
	sum.Render, err = d.Renderer.Render(ctx, rows, month, year)
	if err != nil {
		return sum, err
	}

	d.Status.Status(fmt.Sprintf("Report generated: %d pages, %s km", len(sum.Render.Files), FormatKm(sum.Render.Total)), ports.StatusSuccess)
	return sum, nil
}

// Render regenerates the PDF pages for a month from its existing ledger.
func (p *MonthPipeline) Render(ctx context.Context, monthStr string, year int) (RenderResult, error) {
	month, err := domain.ValidateMonth(monthStr)
	if err != nil {
		return RenderResult{}, err
	}

	rows, err := p.deps.NewLedger(year, month).ReadAll()
	if err != nil {
		return RenderResult{}, err
	}
	return p.deps.Renderer.Render(ctx, rows, month, year)
}

// FormatDuration prints d as "Xh:Ymin".
func FormatDuration(d time.Duration) string {
	total := int(d / time.Minute)
	return fmt.Sprintf("%dh:%dmin", total/60, total%60)
}
