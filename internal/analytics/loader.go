// internal/analytics/loader.go
package analytics

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog/log"

	"github.com/jpfamus/famus-report-analysis/backend-go/internal/config"
)

// Loader seeds the database from previously generated report artifacts.
// It reads the per-season CSV files the pipeline writes and loads them
// into the same tables the API serves from, so a database can be rebuilt
// from a report directory without re-running the pipeline.
type Loader struct {
	db *sql.DB
}

func NewLoader(cfg *config.DatabaseConfig) (*Loader, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Loader{db: db}, nil
}

func (l *Loader) Close() error {
	return l.db.Close()
}

// LoadOutputDir loads every season subdirectory found under dir.
func (l *Loader) LoadOutputDir(ctx context.Context, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read output dir: %w", err)
	}

	loaded := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		season := entry.Name()
		if err := l.LoadSeason(ctx, filepath.Join(dir, season), season); err != nil {
			return fmt.Errorf("failed to load season %s: %w", season, err)
		}
		loaded++
	}

	log.Info().Int("seasons", loaded).Str("dir", dir).Msg("seeded database from report artifacts")
	return nil
}

// LoadSeason loads the known CSV artifacts from a single season directory.
// Missing files are skipped: a season that produced no charges simply has
// no reconciliation rows to load.
func (l *Loader) LoadSeason(ctx context.Context, dir, season string) error {
	steps := []struct {
		file string
		load func(ctx context.Context, season string, records [][]string) error
	}{
		{"lot_financial_summary.csv", l.loadLotSummaries},
		{"virtual_inventory_ledger.csv", l.loadLedger},
		{"reconciliation_report.csv", l.loadDiscrepancies},
	}

	for _, step := range steps {
		path := filepath.Join(dir, step.file)
		records, err := readCSV(path)
		if os.IsNotExist(err) {
			log.Warn().Str("file", path).Msg("artifact missing, skipping")
			continue
		}
		if err != nil {
			return err
		}
		if err := step.load(ctx, season, records); err != nil {
			return fmt.Errorf("%s: %w", step.file, err)
		}
	}

	return nil
}

func (l *Loader) loadLotSummaries(ctx context.Context, season string, records [][]string) error {
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
			advance_pct_of_fob = EXCLUDED.advance_pct_of_fob,
			commission_pct = EXCLUDED.commission_pct,
			fob_per_case = EXCLUDED.fob_per_case,
			updated_at = NOW()
	`

	for i, rec := range records {
		if len(rec) < 11 {
			return fmt.Errorf("row %d: expected 11 columns, got %d", i+1, len(rec))
		}
		_, err := l.db.ExecContext(ctx, query,
			season, rec[0], rec[1],
			parseFloat(rec[2]), parseFloat(rec[3]), parseFloat(rec[4]),
			parseFloat(rec[5]), parseFloat(rec[6]), parseFloat(rec[7]),
			parseNullFloat(rec[8]), parseFloat(rec[9]), parseFloat(rec[10]),
		)
		if err != nil {
			return fmt.Errorf("row %d: %w", i+1, err)
		}
	}

	return nil
}

func (l *Loader) loadLedger(ctx context.Context, season string, records [][]string) error {
	if _, err := l.db.ExecContext(ctx, `DELETE FROM ledger_entries WHERE season = $1`, season); err != nil {
		return fmt.Errorf("failed to clear season ledger: %w", err)
	}

	query := `
		INSERT INTO ledger_entries (
			season, seq, exporter, lot_id, movement_date, movement,
			quantity, balance, days_in_inventory, variety, packaging_style
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	for i, rec := range records {
		if len(rec) < 9 {
			return fmt.Errorf("row %d: expected 9 columns, got %d", i+1, len(rec))
		}
		date, err := parseDate(rec[2])
		if err != nil {
			return fmt.Errorf("row %d: %w", i+1, err)
		}
		_, err = l.db.ExecContext(ctx, query,
			season, i, rec[0], rec[1], date, rec[3],
			parseFloat(rec[4]), parseFloat(rec[5]), parseNullInt(rec[6]),
			rec[7], rec[8],
		)
		if err != nil {
			return fmt.Errorf("row %d: %w", i+1, err)
		}
	}

	return nil
}

// loadDiscrepancies regroups the flat (metric, source, value) CSV rows back
// into one record per metric with a JSON source list, matching how the
// pipeline persists them.
func (l *Loader) loadDiscrepancies(ctx context.Context, season string, records [][]string) error {
	type metricAcc struct {
		values     []string
		tolerance  float64
		consistent bool
	}

	order := make([]string, 0)
	metrics := make(map[string]*metricAcc)
	for i, rec := range records {
		if len(rec) < 5 {
			return fmt.Errorf("row %d: expected 5 columns, got %d", i+1, len(rec))
		}
		acc, ok := metrics[rec[0]]
		if !ok {
			acc = &metricAcc{
				tolerance:  parseFloat(rec[3]),
				consistent: strings.EqualFold(rec[4], "true"),
			}
			metrics[rec[0]] = acc
			order = append(order, rec[0])
		}
		acc.values = append(acc.values,
			fmt.Sprintf(`{"source":%q,"value":%s}`, rec[1], formatFloat(parseFloat(rec[2]))))
	}

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

	for _, metric := range order {
		acc := metrics[metric]
		payload := "[" + strings.Join(acc.values, ",") + "]"
		if _, err := l.db.ExecContext(ctx, query, season, metric, payload, acc.tolerance, acc.consistent); err != nil {
			return fmt.Errorf("metric %s: %w", metric, err)
		}
	}

	return nil
}

// readCSV reads a CSV file and returns its data records, header dropped.
func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[1:], nil
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

func parseNullFloat(s string) interface{} {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return v
}

func parseNullInt(s string) interface{} {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return v
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	return t, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
