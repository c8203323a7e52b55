package cache

import (
	"context"
	"errors"
	"km-report-service/internal/domain"
	"km-report-service/internal/ports"
	"strings"

	"github.com/sirupsen/logrus"
)

// DistanceLookup memoizes distance lookups for a single report run.
//
// Each ordered, case-insensitive origin -> destination pair reaches the
// provider at most once. Failures are cached as their sentinel distance
// so a failing pair is not queried again either. Entries are never
// evicted; create a new DistanceLookup per run.
//
// DistanceLookup is not safe for concurrent use.
type DistanceLookup struct {
	provider ports.DistanceProvider
	entries  map[string]domain.Distance
	log      logrus.FieldLogger
}

func NewDistanceLookup(provider ports.DistanceProvider, log logrus.FieldLogger) *DistanceLookup {
	return &DistanceLookup{
		provider: provider,
		entries:  make(map[string]domain.Distance),
		log:      log,
	}
}

// Key builds the cache key for an already normalized address pair.
func Key(origin, destination string) string {
	return strings.ToLower(origin + " -> " + destination)
}

// GetOrCompute returns the cached distance for the pair, querying the
// provider on a miss. hit reports whether the value came from the cache.
//
// Provider errors never escape: ErrAddressNotFound becomes the
// not-found sentinel and anything else becomes "0 km".
func (c *DistanceLookup) GetOrCompute(ctx context.Context, origin, destination string) (d domain.Distance, hit bool) {
	key := Key(origin, destination)
	if d, ok := c.entries[key]; ok {
		c.log.WithFields(logrus.Fields{"pair": key, "distance": d.Text}).Info("distance retrieved")
		return d, true
	}

	d, err := c.provider.GetDistance(ctx, origin, destination)
	switch {
	case errors.Is(err, domain.ErrAddressNotFound):
		c.log.WithField("pair", key).Warn("address not found, recording sentinel")
		d = domain.DistanceNotFound
	case err != nil:
		c.log.WithField("pair", key).WithError(err).Warn("distance lookup failed, recording 0 km")
		d = domain.DistanceZero
	}

	c.entries[key] = d
	c.log.WithFields(logrus.Fields{"pair": key, "distance": d.Text}).Info("distance calculated")
	return d, false
}

// Len returns the number of cached pairs.
func (c *DistanceLookup) Len() int {
	return len(c.entries)
}
