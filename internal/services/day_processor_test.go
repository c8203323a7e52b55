package services

import (
	"context"
	"km-report-service/internal/adapters/cache"
	"km-report-service/internal/adapters/distance"
	"km-report-service/internal/domain"
	"testing"
	"time"
)

func visit(timeText, address string) domain.RawVisit {
	return domain.RawVisit{TimeText: timeText, Address: address, ClientName: "client"}
}

func newTestProcessor(visits map[int][]domain.RawVisit, pairs []distance.MockPair) (*DayProcessor, *dayReader, *memLedger, *distance.MockDistanceProvider) {
	reader := &dayReader{fakeReader: &fakeReader{days: visits}}
	provider := distance.NewMockDistanceProvider(pairs)
	ledger := &memLedger{}
	proc := NewDayProcessor(reader, identityNormalizer{}, cache.NewDistanceLookup(provider, quietLog()), ledger, quietLog())
	return proc, reader, ledger, provider
}

func march(day int) time.Time {
	return time.Date(2024, time.March, day, 0, 0, 0, 0, time.UTC)
}

func TestProcessDayGapBoundaries(t *testing.T) {
	visits := map[int][]domain.RawVisit{
		4: {
			visit("09:00 - 10:00", "A"),
			visit("10:00 - 11:00", "B"), // gap 0
			visit("12:00 - 13:00", "C"), // gap exactly one hour
			visit("14:01 - 15:00", "D"), // gap 61 minutes
		},
	}
	pairs := []distance.MockPair{
		{From: "A", To: "B", Text: "2 km"},
		{From: "B", To: "C", Text: "5 km"},
		{From: "C", To: "D", Text: "7 km"},
	}
	proc, reader, ledger, provider := newTestProcessor(visits, pairs)

	res := proc.ProcessDay(context.Background(), march(4))
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}

	if len(ledger.drives) != 1 {
		t.Fatalf("expected 1 drive, got %d", len(ledger.drives))
	}
	got := ledger.drives[0]
	if got.Origin != "B" || got.Destination != "C" || got.Distance.Text != "5 km" {
		t.Fatalf("unexpected drive: %+v", got)
	}
	if provider.TotalCalls() != 1 {
		t.Fatalf("only the adjacent pair should be looked up, got %d calls", provider.TotalCalls())
	}
	if res.Duration != 3*time.Hour+59*time.Minute {
		t.Fatalf("duration = %v", res.Duration)
	}
	if res.Kilometers != 5 {
		t.Fatalf("kilometers = %v", res.Kilometers)
	}
	if len(reader.reselected) != 1 || reader.reselected[0] != 4 {
		t.Fatalf("expected reselect of day 4, got %v", reader.reselected)
	}
}

func TestProcessDayDiscardsSubKilometer(t *testing.T) {
	visits := map[int][]domain.RawVisit{
		1: {visit("09:00 - 10:00", "A"), visit("10:30 - 11:00", "B")},
	}
	proc, _, ledger, provider := newTestProcessor(visits, []distance.MockPair{{From: "A", To: "B", Text: "0,8 km"}})

	res := proc.ProcessDay(context.Background(), march(1))
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if len(ledger.drives) != 0 {
		t.Fatalf("sub-kilometer drive should not be written, got %+v", ledger.drives)
	}
	if provider.TotalCalls() != 1 {
		t.Fatalf("distance should still be looked up once, got %d", provider.TotalCalls())
	}
}

func TestProcessDayRecordsNotFoundSentinel(t *testing.T) {
	visits := map[int][]domain.RawVisit{
		1: {visit("09:00 - 10:00", "A"), visit("10:30 - 11:00", "Nowhere")},
	}
	proc, _, ledger, _ := newTestProcessor(visits, []distance.MockPair{{From: "A", To: "Nowhere", Err: domain.ErrAddressNotFound}})

	proc.ProcessDay(context.Background(), march(1))
	if len(ledger.drives) != 1 || ledger.drives[0].Distance.Text != domain.DistanceNotFoundText {
		t.Fatalf("expected a 9999 km drive, got %+v", ledger.drives)
	}
}

func TestProcessDayParseErrorContinues(t *testing.T) {
	visits := map[int][]domain.RawVisit{
		2: {
			visit("nonsense", "A"),
			visit("09:00 - 10:00", "B"),
			visit("10:30 - 11:00", "C"),
		},
	}
	proc, _, ledger, _ := newTestProcessor(visits, []distance.MockPair{{From: "B", To: "C", Text: "4 km"}})

	res := proc.ProcessDay(context.Background(), march(2))
	if res.Err != nil {
		t.Fatalf("a bad event must not fail the day: %v", res.Err)
	}
	if res.Visits != 3 {
		t.Fatalf("visits = %d", res.Visits)
	}
	if len(ledger.drives) != 1 || ledger.drives[0].Origin != "B" {
		t.Fatalf("unexpected drives: %+v", ledger.drives)
	}
}

func TestProcessDayReusesCachedDistance(t *testing.T) {
	day := []domain.RawVisit{visit("09:00 - 10:00", "A"), visit("10:15 - 11:00", "B")}
	visits := map[int][]domain.RawVisit{3: day, 5: day}
	proc, _, ledger, provider := newTestProcessor(visits, []distance.MockPair{{From: "A", To: "B", Text: "3 km"}})

	proc.ProcessDay(context.Background(), march(3))
	proc.ProcessDay(context.Background(), march(5))

	if provider.TotalCalls() != 1 {
		t.Fatalf("expected one lookup across days, got %d", provider.TotalCalls())
	}
	if len(ledger.drives) != 2 {
		t.Fatalf("expected a drive per day, got %d", len(ledger.drives))
	}
}

func TestProcessDaySelectFailureStillReselects(t *testing.T) {
	proc, reader, _, _ := newTestProcessor(nil, nil)
	reader.failDay = 9

	res := proc.ProcessDay(context.Background(), march(9))
	if res.Err == nil {
		t.Fatalf("expected a day error")
	}
	if len(reader.reselected) != 1 {
		t.Fatalf("reselect must run even when the day fails")
	}
}

func TestProcessDayStoresRawAddressOnOneLine(t *testing.T) {
	visits := map[int][]domain.RawVisit{
		1: {visit("09:00 - 10:00", "Calle A\nRincón"), visit("10:30 - 11:00", "Calle B")},
	}
	proc, _, ledger, _ := newTestProcessor(visits, []distance.MockPair{{From: "Calle A Rincón", To: "Calle B", Text: "2 km"}})

	proc.ProcessDay(context.Background(), march(1))
	if len(ledger.drives) != 1 || ledger.drives[0].Origin != "Calle A Rincón" {
		t.Fatalf("unexpected drives: %+v", ledger.drives)
	}
}
