package ledger

import (
	"bufio"
	"errors"
	"fmt"
	"km-report-service/internal/domain"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const fieldSep = ";"

// FileLedger appends one semicolon separated line per drive to a text file:
//
//	DD/MM/YYYY;origin;destination;distance
//
// The file is opened per write so every accepted drive is on disk
// before the next lookup starts.
type FileLedger struct {
	mu   sync.Mutex
	path string
}

func NewFileLedger(path string) *FileLedger {
	return &FileLedger{path: path}
}

// FileName returns the ledger name for a month, e.g. "km_03_2024.txt".
func FileName(year int, month time.Month) string {
	return fmt.Sprintf("km_%02d_%d.txt", int(month), year)
}

func (l *FileLedger) Path() string { return l.path }

func (l *FileLedger) Append(drive domain.InferredDrive) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("append ledger: %w", err)
	}

	line := strings.Join([]string{
		drive.Date.Format(domain.LedgerDateLayout),
		field(drive.Origin),
		field(drive.Destination),
		field(drive.Distance.Text),
	}, fieldSep) + "\n"

	if _, err := f.WriteString(line); err != nil {
		f.Close()
		return fmt.Errorf("append ledger: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("append ledger: %w", err)
	}
	return nil
}

// field keeps a value on one line and free of separators.
func field(s string) string {
	return strings.ReplaceAll(domain.SingleLine(s), fieldSep, ",")
}

// ReadAll returns every drive in append order. A missing file is an empty ledger.
func (l *FileLedger) ReadAll() ([]domain.LedgerRow, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Open(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}
	defer f.Close()

	var rows []domain.LedgerRow
	sc := bufio.NewScanner(f)
	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		parts := strings.Split(line, fieldSep)
		if len(parts) != 4 {
			return nil, fmt.Errorf("read ledger: line %d: expected 4 fields, got %d", n, len(parts))
		}

		rows = append(rows, domain.LedgerRow{
			Date:        parts[0],
			Origin:      parts[1],
			Destination: parts[2],
			Distance:    domain.ParseDistance(parts[3]),
		})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}

	return rows, nil
}

// PrepareFolders creates the ledger and page folders and empties the
// ledger folder of files left by a previous run. Subdirectories are kept.
func PrepareFolders(txtDir, pdfDir string) error {
	for _, dir := range []string{txtDir, pdfDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("prepare folders: %w", err)
		}
	}

	entries, err := os.ReadDir(txtDir)
	if err != nil {
		return fmt.Errorf("prepare folders: %w", err)
	}
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if err := os.Remove(filepath.Join(txtDir, e.Name())); err != nil {
			return fmt.Errorf("prepare folders: %w", err)
		}
	}
	return nil
}
