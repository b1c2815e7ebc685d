// backend-go/internal/repository/report_repository.go
package repository

import (
	"context"

	"github.com/jpfamus/famus-report-analysis/backend-go/internal/domain"
)

// ReportRepository persists and serves the derived season report tables.
type ReportRepository interface {
	SaveLotSummaries(ctx context.Context, season string, summaries []domain.LotSummary) error
	SaveLedger(ctx context.Context, season string, entries []domain.LedgerEntry) error
	SaveDiscrepancies(ctx context.Context, season string, discrepancies []domain.Discrepancy) error

	GetSeasons(ctx context.Context) ([]string, error)
	GetLotSummaries(ctx context.Context, season, exporter string) ([]domain.LotSummary, error)
	GetLedger(ctx context.Context, season, exporter, lotID string) ([]domain.LedgerEntry, error)
	GetCurrentInventory(ctx context.Context, season string) ([]domain.LedgerState, error)
	GetDiscrepancies(ctx context.Context, season string) ([]domain.Discrepancy, error)
}
