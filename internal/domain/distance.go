package domain

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

// Sentinel distance texts recorded instead of a measurement.
const (
	DistanceZeroText     = "0 km"
	DistanceNotFoundText = "9999 km"
)

var numberRe = regexp.MustCompile(`\d+(?:[.,]\d+)?`)

// Distance is a driving distance as reported by the mapping service.
// Text is kept verbatim for the ledger; Kilometers is its numeric value.
type Distance struct {
	Text       string
	Kilometers float64
}

var (
	DistanceZero     = Distance{Text: DistanceZeroText, Kilometers: 0}
	DistanceNotFound = Distance{Text: DistanceNotFoundText, Kilometers: 9999}
)

// ParseDistance reads a text such as "12,5 km" or "3.2km".
// A comma is taken as the decimal separator. Unparseable text yields 0 km.
func ParseDistance(text string) Distance {
	text = strings.TrimSpace(text)
	return Distance{Text: text, Kilometers: LeadingNumber(text)}
}

// LeadingNumber returns the first number in s, or 0 when there is none.
func LeadingNumber(s string) float64 {
	m := numberRe.FindString(s)
	if m == "" {
		return 0
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", "."), 64)
	if err != nil {
		return 0
	}
	return v
}

// Countable reports whether the distance is long enough to be a real drive leg.
func (d Distance) Countable() bool {
	return d.Kilometers >= 1
}

func (d Distance) IsSentinel() bool {
	return d.Text == DistanceZeroText || d.Text == DistanceNotFoundText
}

// ErrAddressNotFound is returned by providers when the mapping service
// cannot resolve one of the addresses.
var ErrAddressNotFound = errors.New("address not found")
