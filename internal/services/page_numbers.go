package services

import (
	"context"
	"errors"
	"fmt"
	"km-report-service/internal/domain"
	"km-report-service/internal/ports"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"time"
)

var pageIndexRe = regexp.MustCompile(`_page_(\d+)\.pdf$`)

// PageFiles returns the month's page files in dir ordered by their
// embedded page index, not by directory listing order.
func PageFiles(dir string, month time.Month, year int) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, reportBaseName(month, year)+"_page_*.pdf"))
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}

	type indexed struct {
		path string
		n    int
	}
	files := make([]indexed, 0, len(matches))
	for _, m := range matches {
		sub := pageIndexRe.FindStringSubmatch(filepath.Base(m))
		if sub == nil {
			continue
		}
		n, err := strconv.Atoi(sub[1])
		if err != nil {
			continue
		}
		files = append(files, indexed{path: m, n: n})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].n < files[j].n })

	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.path
	}
	return out, nil
}

// RemovePages deletes the month's page files left in dir by an earlier run.
func RemovePages(dir string, month time.Month, year int) error {
	files, err := PageFiles(dir, month, year)
	if err != nil {
		return err
	}
	for _, f := range files {
		if err := os.Remove(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove stale page: %w", err)
		}
	}
	return nil
}

// NumberPages stamps 1..n onto the month's page files in page order.
func NumberPages(ctx context.Context, w ports.PageWriter, dir string, month time.Month, year int) ([]string, error) {
	files, err := PageFiles(dir, month, year)
	if err != nil {
		return nil, err
	}

	for i, f := range files {
		n := i + 1
		if err := w.StampPage(ctx, f, []domain.TextPlacement{PageNumberPlacement(n)}); err != nil {
			return nil, fmt.Errorf("number page %d: %w", n, err)
		}
	}
	return files, nil
}

func PageNumberPlacement(n int) domain.TextPlacement {
	return domain.TextPlacement{X: pageNumberX, Y: pageNumberY, Text: strconv.Itoa(n), FontSize: headerFontSize}
}
