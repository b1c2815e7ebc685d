// Package pipeline orchestrates the per-season report runs: ingest the raw
// extract once, engineer features, then build, check and write each season's
// tables independently.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/jpfamus/famus-report-analysis/backend-go/internal/domain"
	"github.com/jpfamus/famus-report-analysis/backend-go/internal/export"
	"github.com/jpfamus/famus-report-analysis/backend-go/internal/features"
	"github.com/jpfamus/famus-report-analysis/backend-go/internal/ingest"
	"github.com/jpfamus/famus-report-analysis/backend-go/internal/qc"
	"github.com/jpfamus/famus-report-analysis/backend-go/internal/report"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Config carries the run parameters.
type Config struct {
	Seasons   []domain.Season
	OutputDir string
	// Workers bounds concurrent season builds; 0 means one per season.
	Workers int
}

// Runner executes the full report pipeline.
type Runner struct {
	cfg Config
	eng *features.Engineer
}

func NewRunner(cfg Config, eng *features.Engineer) *Runner {
	if len(cfg.Seasons) == 0 {
		cfg.Seasons = domain.DefaultSeasons()
	}
	return &Runner{cfg: cfg, eng: eng}
}

// SeasonResult holds every table derived for one season. Err is set when the
// season failed; a failed season writes no output files.
type SeasonResult struct {
	Season            string
	Rows              []domain.TransactionRow
	Classified        report.Classified
	InitialStock      []domain.InitialStock
	SalesTotals       []domain.SalesTotal
	ChargeTotals      []domain.ChargeTotal
	Summaries         []domain.LotSummary
	ByExporter        map[string][]domain.LotSummary
	Ledger            []domain.LedgerEntry
	States            []domain.LedgerState
	FIFO              []domain.FIFOLotSummary
	ExporterInventory []domain.ExporterInventory
	ChargeCosts       []domain.ChargeCost
	Discrepancies     []domain.Discrepancy
	QCResults         []qc.Result
	QCPassed          bool
	Err               error
}

// Run processes the extract at path for every configured season. Seasons are
// independent: one season's failure is recorded on its result and does not
// abort the others. The returned error covers only run-level failures
// (unreadable extract, missing raw columns).
func (r *Runner) Run(ctx context.Context, extractPath string) ([]*SeasonResult, error) {
	table, err := ingest.ReadExtract(extractPath)
	if err != nil {
		return nil, fmt.Errorf("read extract: %w", err)
	}
	rows, err := r.eng.Process(table, r.cfg.Seasons)
	if err != nil {
		return nil, fmt.Errorf("feature engineering: %w", err)
	}

	bySeason := make(map[string][]domain.TransactionRow, len(r.cfg.Seasons))
	dropped := 0
	for _, row := range rows {
		if row.Season == domain.UndefinedSeason {
			dropped++
			continue
		}
		bySeason[row.Season] = append(bySeason[row.Season], row)
	}
	if dropped > 0 {
		log.Warn().Int("rows", dropped).Msg("dropped rows outside every configured season")
	}

	results := make([]*SeasonResult, len(r.cfg.Seasons))
	g, ctx := errgroup.WithContext(ctx)
	if r.cfg.Workers > 0 {
		g.SetLimit(r.cfg.Workers)
	}
	for i, season := range r.cfg.Seasons {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = &SeasonResult{Season: season.Name, Err: err}
				return nil
			}
			res := r.buildSeason(table, season.Name, bySeason[season.Name])
			if res.Err == nil && r.cfg.OutputDir != "" {
				res.Err = r.writeSeason(res)
			}
			if res.Err != nil {
				// Season failures stay local: record and keep going.
				log.Error().Err(res.Err).Str("season", season.Name).Msg("season run failed")
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// buildSeason runs the pure compute chain over one season's rows.
// Reconciliation and QC run strictly after the aggregations they consume.
func (r *Runner) buildSeason(table *ingest.RawTable, season string, rows []domain.TransactionRow) *SeasonResult {
	res := &SeasonResult{Season: season, Rows: rows}

	res.Classified = report.Classify(table, rows)
	res.InitialStock = report.InitialStockByLot(res.Classified.Receipts)
	res.SalesTotals = report.SalesByLot(res.Classified.Sales)
	res.ChargeTotals = report.ChargesByLotAndCategory(res.Classified.Charges)
	res.Summaries = report.SummarizeLots(res.Classified.Sales, res.Classified.Charges)
	res.ByExporter = report.SummariesByExporter(res.Summaries)
	res.Ledger = report.BuildLedger(res.Classified.Receipts, res.Classified.Sales)
	res.States = report.CurrentState(res.Ledger)
	res.FIFO = report.FIFOSummary(res.Classified.Receipts, res.Classified.Sales)
	res.ExporterInventory = report.ExporterInventorySummary(res.InitialStock, res.SalesTotals, res.States)
	res.ChargeCosts = report.ChargeCosts(res.Classified.Charges, res.InitialStock)

	res.Discrepancies = report.Reconcile(report.ReconcileInputs{
		Receipts:     res.Classified.Receipts,
		Sales:        res.Classified.Sales,
		Charges:      res.Classified.Charges,
		InitialStock: res.InitialStock,
		SalesTotals:  res.SalesTotals,
		ChargeTotals: res.ChargeTotals,
		Summaries:    res.Summaries,
		States:       res.States,
	})

	res.QCResults, res.QCPassed = qc.Run(qc.Inputs{
		Season:        season,
		Rows:          rows,
		Summaries:     res.Summaries,
		ChargeCosts:   res.ChargeCosts,
		Discrepancies: res.Discrepancies,
	})

	log.Info().
		Str("season", season).
		Int("rows", len(rows)).
		Int("lots", len(res.Summaries)).
		Bool("qc_passed", res.QCPassed).
		Msg("season built")
	return res
}

// Tables lists the season's exportable tables in blueprint order.
func Tables(res *SeasonResult) []export.Table {
	return []export.Table{
		export.LotSummaryTable(res.Summaries),
		export.InitialStockTable(res.InitialStock),
		export.SalesTotalsTable(res.SalesTotals),
		export.ChargeTotalsTable(res.ChargeTotals),
		export.LedgerTable(res.Ledger),
		export.CurrentStateTable(res.States),
		export.FIFOTable(res.FIFO),
		export.ExporterInventoryTable(res.ExporterInventory),
		export.ChargeCostTable(res.ChargeCosts),
		export.DiscrepancyTable(res.Discrepancies),
	}
}

// writeSeason emits the season's CSVs, Excel workbook and QC report.
func (r *Runner) writeSeason(res *SeasonResult) error {
	tables := Tables(res)
	if err := export.WriteSeasonCSVs(r.cfg.OutputDir, res.Season, tables); err != nil {
		return fmt.Errorf("write csvs: %w", err)
	}

	seasonDir := filepath.Join(r.cfg.OutputDir, res.Season)
	workbook := filepath.Join(seasonDir, fmt.Sprintf("famus_report_%s.xlsx", res.Season))
	if err := export.WriteWorkbook(workbook, res.Season, tables); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}

	qcPath := filepath.Join(seasonDir, fmt.Sprintf("qc_report_%s.md", res.Season))
	f, err := os.Create(qcPath)
	if err != nil {
		return fmt.Errorf("create qc report: %w", err)
	}
	if err := qc.WriteReport(f, res.Season, res.QCResults, time.Now()); err != nil {
		f.Close()
		return fmt.Errorf("write qc report: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close qc report: %w", err)
	}
	return nil
}

// WriteBlueprint emits the root-level data blueprint covering every
// successful season.
func (r *Runner) WriteBlueprint(results []*SeasonResult) error {
	if r.cfg.OutputDir == "" {
		return nil
	}
	seasons := make([]string, 0, len(results))
	var sample *SeasonResult
	for _, res := range results {
		if res == nil || res.Err != nil {
			continue
		}
		seasons = append(seasons, res.Season)
		sample = res
	}
	if sample == nil {
		return nil
	}
	sort.Strings(seasons)

	if err := os.MkdirAll(r.cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(r.cfg.OutputDir, "data_analysis_blueprint.md")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create blueprint: %w", err)
	}
	if err := export.WriteBlueprint(f, seasons, Tables(sample), time.Now()); err != nil {
		f.Close()
		return fmt.Errorf("write blueprint: %w", err)
	}
	return f.Close()
}
