package cache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"km-report-service/internal/adapters/distance"
	"km-report-service/internal/domain"
	"testing"

	"github.com/sirupsen/logrus"
)

func quietLog() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestGetOrComputeQueriesOncePerPair(t *testing.T) {
	p := distance.NewMockDistanceProvider([]distance.MockPair{
		{From: "A, 1, Rincón", To: "B, 2, Rincón", Text: "3,4 km"},
	})
	c := NewDistanceLookup(p, quietLog())
	ctx := context.Background()

	d, hit := c.GetOrCompute(ctx, "A, 1, Rincón", "B, 2, Rincón")
	if hit || d.Text != "3,4 km" || d.Kilometers != 3.4 {
		t.Fatalf("first lookup = %+v hit=%v", d, hit)
	}

	d, hit = c.GetOrCompute(ctx, "a, 1, rincón", "B, 2, RINCÓN")
	if !hit || d.Text != "3,4 km" {
		t.Fatalf("second lookup should hit the cache, got %+v hit=%v", d, hit)
	}

	if p.TotalCalls() != 1 {
		t.Fatalf("expected one provider call, got %d", p.TotalCalls())
	}
	if c.Len() != 1 {
		t.Fatalf("expected one cached pair, got %d", c.Len())
	}
}

func TestGetOrComputeIsDirectional(t *testing.T) {
	p := distance.NewMockDistanceProvider([]distance.MockPair{
		{From: "A", To: "B", Text: "5 km"},
		{From: "B", To: "A", Text: "6 km"},
	})
	c := NewDistanceLookup(p, quietLog())
	ctx := context.Background()

	ab, _ := c.GetOrCompute(ctx, "A", "B")
	ba, _ := c.GetOrCompute(ctx, "B", "A")
	if ab.Text != "5 km" || ba.Text != "6 km" {
		t.Fatalf("got %q and %q", ab.Text, ba.Text)
	}
	if p.TotalCalls() != 2 {
		t.Fatalf("expected two provider calls, got %d", p.TotalCalls())
	}
}

func TestGetOrComputeCachesFailures(t *testing.T) {
	p := distance.NewMockDistanceProvider([]distance.MockPair{
		{From: "A", To: "Nowhere", Err: fmt.Errorf("gmaps: %w", domain.ErrAddressNotFound)},
		{From: "A", To: "Flaky", Err: errors.New("timeout")},
	})
	c := NewDistanceLookup(p, quietLog())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		d, _ := c.GetOrCompute(ctx, "A", "Nowhere")
		if d != domain.DistanceNotFound {
			t.Fatalf("not found pair = %+v", d)
		}
		d, _ = c.GetOrCompute(ctx, "A", "Flaky")
		if d != domain.DistanceZero {
			t.Fatalf("failing pair = %+v", d)
		}
	}

	if p.TotalCalls() != 2 {
		t.Fatalf("failures should be cached, got %d provider calls", p.TotalCalls())
	}
}

func TestKey(t *testing.T) {
	if got := Key("Calle A, Rincón", "Calle B"); got != "calle a, rincón -> calle b" {
		t.Fatalf("Key = %q", got)
	}
}
