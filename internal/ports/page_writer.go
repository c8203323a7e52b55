package ports

import (
	"context"
	"km-report-service/internal/domain"
)

// Writes text onto copies of a PDF template.
type PageWriter interface {
	// Copy templatePath to outPath and stamp texts onto its first page.
	WritePage(ctx context.Context, templatePath, outPath string, texts []domain.TextPlacement) error
	// Stamp texts onto an existing page file in place.
	StampPage(ctx context.Context, path string, texts []domain.TextPlacement) error
}
