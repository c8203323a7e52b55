package distance

import (
	"context"
	"fmt"
	"km-report-service/internal/domain"
)

type MockPair struct {
	From, To string
	Text     string
	Err      error
}

// MockDistanceProvider answers from a fixed pair table and counts calls per pair.
type MockDistanceProvider struct {
	m     map[string]MockPair
	Calls map[string]int
}

func NewMockDistanceProvider(pairs []MockPair) *MockDistanceProvider {
	m := make(map[string]MockPair, len(pairs))
	for _, p := range pairs {
		m[p.From+"|"+p.To] = p
	}
	return &MockDistanceProvider{m: m, Calls: make(map[string]int)}
}

func (p *MockDistanceProvider) GetDistance(ctx context.Context, origin, destination string) (domain.Distance, error) {
	key := origin + "|" + destination
	p.Calls[key]++

	pair, ok := p.m[key]
	if !ok {
		return domain.Distance{}, fmt.Errorf("missing pair %q -> %q", origin, destination)
	}
	if pair.Err != nil {
		return domain.Distance{}, pair.Err
	}

	return domain.ParseDistance(pair.Text), nil
}

// TotalCalls returns the number of GetDistance calls across all pairs.
func (p *MockDistanceProvider) TotalCalls() int {
	n := 0
	for _, c := range p.Calls {
		n += c
	}
	return n
}
