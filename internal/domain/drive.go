package domain

import (
	"strings"
	"time"
)

// LedgerDateLayout is the date format used in ledger lines and on the report.
const LedgerDateLayout = "02/01/2006"

// InferredDrive is a client-to-client trip assumed from two close visits.
// Immutable once written to the ledger.
type InferredDrive struct {
	Date        time.Time
	Origin      string
	Destination string
	Distance    Distance
}

// LedgerRow is one line read back from the ledger.
type LedgerRow struct {
	Date        string
	Origin      string
	Destination string
	Distance    Distance
}

// Route returns "origin -> destination".
func (r LedgerRow) Route() string {
	return r.Origin + " -> " + r.Destination
}

// SingleLine joins multi-line text with spaces.
func SingleLine(s string) string {
	return strings.Join(strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n"), " ")
}
