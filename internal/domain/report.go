package domain

// TextPlacement is a piece of text stamped at fixed template coordinates.
// X and Y are measured from the top-left corner of the page, in points.
type TextPlacement struct {
	X        float64
	Y        float64
	Text     string
	FontSize int
}

// ReportPage is one filled page of the monthly report.
type ReportPage struct {
	Number     int
	Rows       []LedgerRow
	Subtotal   float64
	Placements []TextPlacement
}
