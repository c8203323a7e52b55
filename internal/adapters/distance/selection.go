package distance

import (
	"km-report-service/internal/domain"
	"net/url"
	"strings"
)

// toMeters converts "3.2km", "1500 m" or "12,5 km" to meters.
func toMeters(s string) float64 {
	v := domain.LeadingNumber(s)
	if strings.Contains(s, "km") {
		return v * 1000
	}
	return v
}

// SelectLongest picks the longest reported route distance.
//
// The longest alternative is chosen on purpose, so the claimed mileage is
// never below any route the service offered. An empty list, or a longest
// value expressed in meters, yields "0 km".
func SelectLongest(texts []string) string {
	if len(texts) == 0 {
		return domain.DistanceZeroText
	}

	best := texts[0]
	bestMeters := toMeters(best)
	for _, t := range texts[1:] {
		if m := toMeters(t); m > bestMeters {
			best, bestMeters = t, m
		}
	}

	if !strings.Contains(best, "km") {
		return domain.DistanceZeroText
	}
	return best
}

// DirectionsURL builds a driving, metric directions URL for two normalized addresses.
func DirectionsURL(baseURL, origin, destination string) string {
	q := url.Values{}
	q.Set("api", "1")
	q.Set("origin", origin)
	q.Set("destination", destination)
	q.Set("travelmode", "driving")
	q.Set("units", "metric")
	q.Set("hl", "en")
	return baseURL + "?" + q.Encode()
}
