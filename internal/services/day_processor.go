package services

import (
	"context"
	"fmt"
	"km-report-service/internal/domain"
	"km-report-service/internal/ports"
	"runtime/debug"
	"time"

	"github.com/sirupsen/logrus"
)

// AddressNormalizer turns a raw scheduling-app address into a mapping query.
type AddressNormalizer interface {
	Normalize(raw string) string
}

// DistanceLookup resolves a normalized address pair, memoized per run.
type DistanceLookup interface {
	GetOrCompute(ctx context.Context, origin, destination string) (domain.Distance, bool)
}

// DayResult is the outcome of processing one calendar day.
// Err is set when the day was abandoned; whatever was recorded before the
// failure is still reported.
type DayResult struct {
	Date       time.Time
	Visits     int
	Duration   time.Duration
	Kilometers float64
	Drives     []domain.InferredDrive
	Err        error
}

// DayProcessor reads one day's visits, infers drives between close visits,
// looks up their distances and appends the countable ones to the ledger.
type DayProcessor struct {
	reader     ports.ScheduleReader
	normalizer AddressNormalizer
	lookup     DistanceLookup
	ledger     ports.Ledger
	log        logrus.FieldLogger
}

func NewDayProcessor(
	reader ports.ScheduleReader,
	normalizer AddressNormalizer,
	lookup DistanceLookup,
	ledger ports.Ledger,
	log logrus.FieldLogger,
) *DayProcessor {
	return &DayProcessor{
		reader:     reader,
		normalizer: normalizer,
		lookup:     lookup,
		ledger:     ledger,
		log:        log,
	}
}

// ProcessDay never panics on bad visit data and always tries to reselect
// date afterwards so the next day can be navigated to.
func (p *DayProcessor) ProcessDay(ctx context.Context, date time.Time) (res DayResult) {
	res.Date = date
	log := p.log.WithField("day", date.Format(domain.LedgerDateLayout))

	defer func() {
		if err := p.reader.ReselectDate(ctx, date); err != nil {
			log.WithError(err).Warn("could not reselect date")
		}
	}()

	if err := p.reader.SelectDay(ctx, date); err != nil {
		res.Err = fmt.Errorf("process day %d: %w", date.Day(), err)
		return res
	}

	visits, err := p.reader.Visits(ctx)
	if err != nil {
		res.Err = fmt.Errorf("process day %d: read visits: %w", date.Day(), err)
		return res
	}
	res.Visits = len(visits)

	if len(visits) == 0 {
		log.Info("no events found")
		return res
	}

	var prev *domain.VisitEvent
	for i, raw := range visits {
		ev, err := domain.ParseVisit(raw)
		if err != nil {
			log.WithFields(logrus.Fields{
				"event": i + 1,
				"raw":   fmt.Sprintf("%q", raw.TimeText),
				"stack": string(debug.Stack()),
			}).WithError(err).Error("could not parse time range")
			prev = nil
			continue
		}

		res.Duration += ev.Time.Duration()

		if prev != nil && domain.IsDriveGap(ev.Time.GapAfter(prev.Time)) {
			drive, ok := p.drive(ctx, date, prev.Address, ev.Address)
			if ok {
				if err := p.ledger.Append(drive); err != nil {
					res.Err = fmt.Errorf("process day %d: %w", date.Day(), err)
					return res
				}
				res.Drives = append(res.Drives, drive)
				res.Kilometers += drive.Distance.Kilometers
			}
		}

		log.WithFields(logrus.Fields{
			"event":   i + 1,
			"time":    raw.TimeText,
			"address": domain.SingleLine(raw.Address),
			"client":  raw.ClientName,
		}).Info("event read")

		prev = &ev
	}

	return res
}

// drive looks up the distance between two visits. ok is false when the
// distance is under 1 km and the leg should not be recorded.
func (p *DayProcessor) drive(ctx context.Context, date time.Time, origin, destination string) (domain.InferredDrive, bool) {
	from := p.normalizer.Normalize(origin)
	to := p.normalizer.Normalize(destination)

	d, _ := p.lookup.GetOrCompute(ctx, from, to)

	log := p.log.WithFields(logrus.Fields{
		"day":         date.Format(domain.LedgerDateLayout),
		"origin":      from,
		"destination": to,
		"distance":    d.Text,
	})
	if !d.Countable() {
		log.Debug("distance under 1 km, not recorded")
		return domain.InferredDrive{}, false
	}
	log.Info("drive recorded")

	return domain.InferredDrive{
		Date:        date,
		Origin:      domain.SingleLine(origin),
		Destination: domain.SingleLine(destination),
		Distance:    d,
	}, true
}
