package ports

import (
	"context"
	"km-report-service/internal/domain"
)

// Contract for retrieving the driving distance between two addresses.
type DistanceProvider interface {
	// Return the driving distance between two normalized addresses.
	GetDistance(ctx context.Context, origin string, destination string) (domain.Distance, error)
}

// A DistanceProvider backed by a session that must be started and closed,
// such as a browser.
type DistanceSession interface {
	DistanceProvider
	Start(ctx context.Context) error
	Close() error
}
