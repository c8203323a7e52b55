package ports

import "km-report-service/internal/domain"

// Append-only store of inferred drives for one month.
type Ledger interface {
	Append(drive domain.InferredDrive) error
	ReadAll() ([]domain.LedgerRow, error)
}
