// backend-go/internal/repository/postgres/report_repository.go
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jpfamus/famus-report-analysis/backend-go/internal/domain"
)

type reportRepository struct {
	db *DB
}

func NewReportRepository(db *DB) *reportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) SaveLotSummaries(ctx context.Context, season string, summaries []domain.LotSummary) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO lot_summaries (
				season, exporter, lot_id, sales_quantity, sales_amount,
				total_deductions, commission_amount, advances_amount,
				fob_liquidation, fob_per_case, advance_pct_of_fob, commission_pct
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			ON CONFLICT (season, exporter, lot_id)
			DO UPDATE SET
				sales_quantity = EXCLUDED.sales_quantity,
				sales_amount = EXCLUDED.sales_amount,
				total_deductions = EXCLUDED.total_deductions,
				commission_amount = EXCLUDED.commission_amount,
				advances_amount = EXCLUDED.advances_amount,
				fob_liquidation = EXCLUDED.fob_liquidation,
				fob_per_case = EXCLUDED.fob_per_case,
				advance_pct_of_fob = EXCLUDED.advance_pct_of_fob,
				commission_pct = EXCLUDED.commission_pct,
				updated_at = NOW()
		`

		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, s := range summaries {
			_, err := stmt.ExecContext(
				ctx,
				season,
				s.Exporter,
				s.LotID,
				s.SalesQuantity,
				s.SalesAmount,
				s.TotalDeductions,
				s.CommissionAmount,
				s.AdvancesAmount,
				s.FOBLiquidation,
				s.FOBPerCase,
				s.AdvancePctOfFOB,
				s.CommissionPct,
			)
			if err != nil {
				return fmt.Errorf("failed to insert lot summary %s/%s: %w", s.Exporter, s.LotID, err)
			}
		}

		return nil
	})
}

// SaveLedger replaces the season's ledger wholesale. Entries are positional
// (running balance depends on order), so the row sequence is persisted.
func (r *reportRepository) SaveLedger(ctx context.Context, season string, entries []domain.LedgerEntry) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM ledger_entries WHERE season = $1`, season); err != nil {
			return fmt.Errorf("failed to clear season ledger: %w", err)
		}

		query := `
			INSERT INTO ledger_entries (
				season, seq, exporter, lot_id, movement_date, movement,
				quantity, balance, days_in_inventory, variety, packaging_style
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		`

		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for i, e := range entries {
			_, err := stmt.ExecContext(
				ctx,
				season,
				i,
				e.Exporter,
				e.LotID,
				e.Date,
				string(e.Movement),
				e.Quantity,
				e.Balance,
				e.DaysInInventory,
				e.Variety,
				e.PackagingStyle,
			)
			if err != nil {
				return fmt.Errorf("failed to insert ledger entry %s/%s: %w", e.Exporter, e.LotID, err)
			}
		}

		return nil
	})
}

func (r *reportRepository) SaveDiscrepancies(ctx context.Context, season string, discrepancies []domain.Discrepancy) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO reconciliation_results (season, metric, source_values, tolerance, consistent)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (season, metric)
			DO UPDATE SET
				source_values = EXCLUDED.source_values,
				tolerance = EXCLUDED.tolerance,
				consistent = EXCLUDED.consistent,
				updated_at = NOW()
		`

		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, d := range discrepancies {
			values, err := json.Marshal(d.Values)
			if err != nil {
				return fmt.Errorf("failed to encode source values for %s: %w", d.Metric, err)
			}
			if _, err := stmt.ExecContext(ctx, season, d.Metric, values, d.Tolerance, d.Consistent); err != nil {
				return fmt.Errorf("failed to insert reconciliation result %s: %w", d.Metric, err)
			}
		}

		return nil
	})
}

func (r *reportRepository) GetSeasons(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT season
		FROM lot_summaries
		ORDER BY season
	`

	var seasons []string
	if err := sqlx.SelectContext(ctx, r.db, &seasons, query); err != nil {
		return nil, fmt.Errorf("failed to get seasons: %w", err)
	}
	return seasons, nil
}

func (r *reportRepository) GetLotSummaries(ctx context.Context, season, exporter string) ([]domain.LotSummary, error) {
	query := `
		SELECT
			exporter, lot_id, sales_quantity, sales_amount,
			total_deductions, commission_amount, advances_amount,
			fob_liquidation, fob_per_case, advance_pct_of_fob, commission_pct
		FROM lot_summaries
		WHERE season = $1
		  AND ($2 = '' OR exporter = $2)
		ORDER BY exporter, lot_id
	`

	var summaries []domain.LotSummary
	if err := sqlx.SelectContext(ctx, r.db, &summaries, query, season, exporter); err != nil {
		return nil, fmt.Errorf("failed to get lot summaries: %w", err)
	}
	return summaries, nil
}

func (r *reportRepository) GetLedger(ctx context.Context, season, exporter, lotID string) ([]domain.LedgerEntry, error) {
	query := `
		SELECT
			exporter, lot_id, movement_date, movement, quantity,
			balance, days_in_inventory, variety, packaging_style
		FROM ledger_entries
		WHERE season = $1
		  AND ($2 = '' OR exporter = $2)
		  AND ($3 = '' OR lot_id = $3)
		ORDER BY seq
	`

	var entries []domain.LedgerEntry
	if err := sqlx.SelectContext(ctx, r.db, &entries, query, season, exporter, lotID); err != nil {
		return nil, fmt.Errorf("failed to get ledger: %w", err)
	}
	return entries, nil
}

func (r *reportRepository) GetCurrentInventory(ctx context.Context, season string) ([]domain.LedgerState, error) {
	query := `
		SELECT DISTINCT ON (exporter, lot_id)
			exporter, lot_id, balance, movement_date,
			days_in_inventory, variety, packaging_style
		FROM ledger_entries
		WHERE season = $1
		ORDER BY exporter, lot_id, seq DESC
	`

	var states []domain.LedgerState
	if err := sqlx.SelectContext(ctx, r.db, &states, query, season); err != nil {
		return nil, fmt.Errorf("failed to get current inventory: %w", err)
	}
	return states, nil
}

func (r *reportRepository) GetDiscrepancies(ctx context.Context, season string) ([]domain.Discrepancy, error) {
	query := `
		SELECT metric, source_values, tolerance, consistent
		FROM reconciliation_results
		WHERE season = $1
		ORDER BY metric
	`

	rows, err := r.db.QueryxContext(ctx, query, season)
	if err != nil {
		return nil, fmt.Errorf("failed to get discrepancies: %w", err)
	}
	defer rows.Close()

	var discrepancies []domain.Discrepancy
	for rows.Next() {
		var (
			d       domain.Discrepancy
			payload []byte
		)
		if err := rows.Scan(&d.Metric, &payload, &d.Tolerance, &d.Consistent); err != nil {
			return nil, fmt.Errorf("failed to scan discrepancy: %w", err)
		}
		if err := json.Unmarshal(payload, &d.Values); err != nil {
			return nil, fmt.Errorf("failed to decode source values for %s: %w", d.Metric, err)
		}
		discrepancies = append(discrepancies, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading discrepancies: %w", err)
	}

	return discrepancies, nil
}
