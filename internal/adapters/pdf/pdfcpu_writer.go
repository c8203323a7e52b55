package pdf

import (
	"context"
	"fmt"
	"io"
	"km-report-service/internal/domain"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/sirupsen/logrus"
)

const defaultFont = "Helvetica"

var disableConfigDir sync.Once

// PDFWriter stamps text onto the first page of PDF files with pdfcpu.
// Placements use a top-left origin and are flipped against PageHeight.
type PDFWriter struct {
	pageHeight float64
	font       string
	log        logrus.FieldLogger
}

func NewPDFWriter(pageHeight float64, log logrus.FieldLogger) *PDFWriter {
	disableConfigDir.Do(api.DisableConfigDir)
	if pageHeight <= 0 {
		pageHeight = 842
	}
	return &PDFWriter{
		pageHeight: pageHeight,
		font:       defaultFont,
		log:        log.WithField("component", "pdf"),
	}
}

// WritePage copies the template to outPath and stamps texts onto it.
func (w *PDFWriter) WritePage(ctx context.Context, templatePath, outPath string, texts []domain.TextPlacement) error {
	if err := copyFile(templatePath, outPath); err != nil {
		return fmt.Errorf("write page %s: %w", outPath, err)
	}
	if err := w.StampPage(ctx, outPath, texts); err != nil {
		return err
	}
	w.log.WithFields(logrus.Fields{"file": outPath, "texts": len(texts)}).Debug("page written")
	return nil
}

// StampPage stamps texts onto page 1 of path in place.
func (w *PDFWriter) StampPage(ctx context.Context, path string, texts []domain.TextPlacement) error {
	for _, t := range texts {
		if err := ctx.Err(); err != nil {
			return err
		}
		text := domain.SingleLine(t.Text)
		if strings.TrimSpace(text) == "" {
			continue
		}
		if err := api.AddTextWatermarksFile(path, "", []string{"1"}, true, text, w.describe(t), nil); err != nil {
			return fmt.Errorf("stamp %q on %s: %w", text, path, err)
		}
	}
	return nil
}

// describe builds the pdfcpu stamp description for a placement.
func (w *PDFWriter) describe(t domain.TextPlacement) string {
	fs := t.FontSize
	if fs <= 0 {
		fs = 12
	}
	return strings.Join([]string{
		"fontname:" + w.font,
		"points:" + strconv.Itoa(fs),
		"position:bl",
		"offset:" + formatPt(t.X) + " " + formatPt(w.pageHeight-t.Y),
		"scalefactor:1 abs",
		"rotation:0",
		"fillcolor:#000000",
		"opacity:1",
	}, ", ")
}

func formatPt(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
