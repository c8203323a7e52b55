package services

import (
	"context"
	"errors"
	"km-report-service/internal/adapters/cache"
	"km-report-service/internal/adapters/distance"
	"km-report-service/internal/domain"
	"km-report-service/internal/ports"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pipelineFixture struct {
	reader   *dayReader
	session  *fakeSession
	ledger   *memLedger
	pages    *fakePageWriter
	status   *recordingStatus
	prepared int
	pipeline *MonthPipeline
}

func newPipelineFixture(t *testing.T, visits map[int][]domain.RawVisit, pairs []distance.MockPair) *pipelineFixture {
	t.Helper()

	f := &pipelineFixture{
		reader:  &dayReader{fakeReader: &fakeReader{days: visits}},
		session: &fakeSession{MockDistanceProvider: distance.NewMockDistanceProvider(pairs)},
		ledger:  &memLedger{},
		pages:   &fakePageWriter{},
		status:  &recordingStatus{},
	}

	renderer := NewReportRenderer(f.pages, identityNormalizer{}, "tpl.pdf", t.TempDir(), HeaderFields{}, quietLog())
	f.pipeline = NewMonthPipeline(PipelineDeps{
		Reader:     f.reader,
		Browser:    f.session,
		Normalizer: identityNormalizer{},
		Renderer:   renderer,
		Status:     f.status,
		Log:        quietLog(),
		PrepareFolders: func() error {
			f.prepared++
			return nil
		},
		NewLedger: func(int, time.Month) ports.Ledger { return f.ledger },
		NewLookup: func(p ports.DistanceProvider) DistanceLookup {
			return cache.NewDistanceLookup(p, quietLog())
		},
	})
	return f
}

func TestMonthPipelineRun(t *testing.T) {
	day := []domain.RawVisit{visit("09:00 - 10:00", "A"), visit("10:30 - 11:00", "B")}
	f := newPipelineFixture(t,
		map[int][]domain.RawVisit{5: day, 20: day},
		[]distance.MockPair{{From: "A", To: "B", Text: "12,5 km"}},
	)
	f.reader.failDay = 10

	sum, err := f.pipeline.Run(context.Background(), "2", 2024)
	require.NoError(t, err)

	assert.Equal(t, time.February, sum.Month)
	assert.Len(t, sum.Days, 29)
	assert.Error(t, sum.Days[9].Err, "day 10 should record its failure")
	assert.Equal(t, 2, sum.Drives)
	assert.InDelta(t, 25.0, sum.Kilometers, 1e-9)
	assert.Equal(t, 2*(time.Hour+30*time.Minute), sum.Duration)

	assert.Equal(t, 1, f.session.TotalCalls(), "second day must hit the cache")
	assert.Equal(t, 1, f.session.closed)
	assert.True(t, f.reader.closed)
	assert.Equal(t, 1, f.prepared)
	assert.Len(t, f.reader.reselected, 29)

	require.Len(t, f.pages.written, 1)
	assert.Contains(t, f.pages.written[0].path, "02_2024_page_1.pdf")
	assert.Equal(t, 25.0, sum.Render.Total)

	msg, kind := f.status.last()
	assert.Equal(t, ports.StatusSuccess, kind)
	assert.True(t, strings.HasPrefix(msg, "Report generated"), msg)
}

func TestMonthPipelineInvalidMonth(t *testing.T) {
	f := newPipelineFixture(t, nil, nil)

	_, err := f.pipeline.Run(context.Background(), "13", 2024)
	require.ErrorIs(t, err, domain.ErrInvalidMonth)

	assert.False(t, f.reader.connected, "no side effect before validation")
	assert.Equal(t, 0, f.prepared)
	_, kind := f.status.last()
	assert.Equal(t, ports.StatusError, kind)
}

func TestMonthPipelineSetupFailure(t *testing.T) {
	f := newPipelineFixture(t, nil, nil)
	f.reader.connectErr = errors.New("no device")

	_, err := f.pipeline.Run(context.Background(), "3", 2024)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "setup: connect device")
	assert.False(t, f.session.started)
	assert.Equal(t, 0, f.prepared)
}

func TestMonthPipelineBrowserFailureClosesApp(t *testing.T) {
	f := newPipelineFixture(t, nil, nil)
	f.session.startErr = errors.New("no chrome")

	_, err := f.pipeline.Run(context.Background(), "3", 2024)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "setup: start browser")
	assert.True(t, f.reader.closed)
	assert.Equal(t, 0, f.session.closed)
}

func TestMonthPipelineCancelledRunStillStopsApp(t *testing.T) {
	f := newPipelineFixture(t, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.reader.onSelect = func(day int) {
		if day == 3 {
			cancel()
		}
	}

	_, err := f.pipeline.Run(ctx, "3", 2024)
	require.ErrorIs(t, err, context.Canceled)

	assert.True(t, f.reader.closed)
	assert.NoError(t, f.reader.closeCtxErr, "Close must get a live context after cancellation")
	assert.Equal(t, 1, f.session.closed, "browser closed on the way out")
	assert.Empty(t, f.pages.written)
}

func TestMonthPipelineRender(t *testing.T) {
	f := newPipelineFixture(t, nil, nil)
	require.NoError(t, f.ledger.Append(domain.InferredDrive{
		Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Origin: "A", Destination: "B",
		Distance: domain.ParseDistance("3 km"),
	}))

	res, err := f.pipeline.Render(context.Background(), "03", 2024)
	require.NoError(t, err)
	assert.Len(t, res.Files, 1)
	assert.False(t, f.reader.connected)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0h:0min", FormatDuration(0))
	assert.Equal(t, "26h:5min", FormatDuration(26*time.Hour+5*time.Minute+30*time.Second))
}
