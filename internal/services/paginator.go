package services

import (
	"context"
	"fmt"
	"km-report-service/internal/domain"
	"km-report-service/internal/ports"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// RowsPerPage is the number of drive rows the report template holds.
const RowsPerPage = 14

// Template coordinates, in points from the top-left corner.
const (
	rowBaseY  = 301.84
	rowHeight = 21.0

	rowDateX     = 31.33
	rowAddressX  = 87.33
	rowDistanceX = 487.33

	subtotalX = 490.67
	subtotalY = 598.71

	pageNumberX = 460.67
	pageNumberY = 142.04

	headerFontSize  = 12
	dateFontSize    = 10
	addressFontSize = 8
)

// HeaderFields are the fixed values printed at the top of every page.
type HeaderFields struct {
	Obra    string
	Vehicle string
	Plate   string
	Owner   string
}

// HeaderPlacements lays out the header of a report for month/year, dated today.
func HeaderPlacements(h HeaderFields, month time.Month, year int, today time.Time) []domain.TextPlacement {
	at := func(x, y float64, text string) domain.TextPlacement {
		return domain.TextPlacement{X: x, Y: y, Text: text, FontSize: headerFontSize}
	}
	return []domain.TextPlacement{
		at(92.67, 142.64, h.Obra),
		at(454.67, 97.98, fmt.Sprintf("%d/%d/%d", today.Day(), int(today.Month()), today.Year())),
		at(302.67, 176.71, fmt.Sprintf("%02d", int(month))),
		at(469.33, 176.11, strconv.Itoa(year)),
		at(91.33, 196.91, h.Vehicle),
		at(418.00, 197.04, h.Plate),
		at(114.00, 216.91, h.Owner),
	}
}

// Paginate splits ledger rows into pages of RowsPerPage. route renders the
// address column of a row. Each page carries the header, its rows and its
// own subtotal, where every row is rounded to 2 decimals before summing.
func Paginate(rows []domain.LedgerRow, header []domain.TextPlacement, route func(domain.LedgerRow) string) []domain.ReportPage {
	if len(rows) == 0 {
		return nil
	}

	pages := make([]domain.ReportPage, 0, (len(rows)+RowsPerPage-1)/RowsPerPage)
	for start := 0; start < len(rows); start += RowsPerPage {
		end := min(start+RowsPerPage, len(rows))

		page := domain.ReportPage{
			Number: len(pages) + 1,
			Rows:   rows[start:end],
		}
		page.Placements = append(page.Placements, header...)

		for i, row := range page.Rows {
			y := rowBaseY + rowHeight*float64(i%RowsPerPage)
			page.Placements = append(page.Placements,
				domain.TextPlacement{X: rowDateX, Y: y, Text: row.Date, FontSize: dateFontSize},
				domain.TextPlacement{X: rowAddressX, Y: y, Text: route(row), FontSize: addressFontSize},
				domain.TextPlacement{X: rowDistanceX, Y: y, Text: strings.TrimSpace(row.Distance.Text), FontSize: headerFontSize},
			)
			page.Subtotal += round2(row.Distance.Kilometers)
		}

		page.Subtotal = round2(page.Subtotal)
		page.Placements = append(page.Placements, domain.TextPlacement{
			X: subtotalX, Y: subtotalY, Text: FormatKm(page.Subtotal), FontSize: headerFontSize,
		})

		pages = append(pages, page)
	}
	return pages
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// FormatKm prints a kilometer amount with two decimals.
func FormatKm(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// PageFileName names page n of a month's report, e.g. "03_2024_page_1.pdf".
func PageFileName(month time.Month, year, n int) string {
	return fmt.Sprintf("%s_page_%d.pdf", reportBaseName(month, year), n)
}

func reportBaseName(month time.Month, year int) string {
	return fmt.Sprintf("%02d_%d", int(month), year)
}

// RenderResult lists the files written by ReportRenderer.Render.
type RenderResult struct {
	Files []string
	Pages []domain.ReportPage
	Total float64
}

// ReportRenderer fills the PDF template from ledger rows.
type ReportRenderer struct {
	pages        ports.PageWriter
	normalizer   AddressNormalizer
	templatePath string
	outDir       string
	header       HeaderFields
	now          func() time.Time
	log          logrus.FieldLogger
}

func NewReportRenderer(
	pages ports.PageWriter,
	normalizer AddressNormalizer,
	templatePath, outDir string,
	header HeaderFields,
	log logrus.FieldLogger,
) *ReportRenderer {
	return &ReportRenderer{
		pages:        pages,
		normalizer:   normalizer,
		templatePath: templatePath,
		outDir:       outDir,
		header:       header,
		now:          time.Now,
		log:          log,
	}
}

// Route renders "origin -> destination" with both sides normalized.
func (r *ReportRenderer) Route(row domain.LedgerRow) string {
	return r.normalizer.Normalize(row.Origin) + " -> " + r.normalizer.Normalize(row.Destination)
}

// Render writes one PDF per page and then stamps page numbers onto them.
func (r *ReportRenderer) Render(ctx context.Context, rows []domain.LedgerRow, month time.Month, year int) (RenderResult, error) {
	header := HeaderPlacements(r.header, month, year, r.now())
	pages := Paginate(rows, header, r.Route)

	res := RenderResult{Pages: pages}
	if err := RemovePages(r.outDir, month, year); err != nil {
		return res, fmt.Errorf("render report: %w", err)
	}

	for _, page := range pages {
		out := filepath.Join(r.outDir, PageFileName(month, year, page.Number))
		if err := r.pages.WritePage(ctx, r.templatePath, out, page.Placements); err != nil {
			return res, fmt.Errorf("render report: page %d: %w", page.Number, err)
		}
		res.Files = append(res.Files, out)
		res.Total += page.Subtotal

		r.log.WithFields(logrus.Fields{
			"page":     page.Number,
			"rows":     len(page.Rows),
			"subtotal": FormatKm(page.Subtotal),
		}).Info("page written")
	}
	res.Total = round2(res.Total)

	if len(pages) == 0 {
		r.log.Warn("ledger is empty, no pages written")
		return res, nil
	}

	if _, err := NumberPages(ctx, r.pages, r.outDir, month, year); err != nil {
		return res, fmt.Errorf("render report: %w", err)
	}

	r.log.WithFields(logrus.Fields{"pages": len(pages), "total_km": FormatKm(res.Total)}).Info("report rendered")
	return res, nil
}
