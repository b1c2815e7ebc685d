package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jpfamus/famus-report-analysis/backend-go/internal/features"
)

const extractHeader = "Lotid,Lot Descr,Ref Date,Descr,Trx Type,Source Idx,Recv Qnt,Rcpt Qnt,Invcic Qnt,Sale Amt,Chg Amt,Chg Qnt,Charge Descr,Vrty Invc,GWR Product Descr,Price Per Case"

func writeExtract(t *testing.T, rows []string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "extract.csv")
	content := extractHeader + "\n" + strings.Join(rows, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write extract: %v", err)
	}
	return path
}

func newRunner(t *testing.T, outputDir string) *Runner {
	t.Helper()
	eng, err := features.NewEngineer(features.DefaultConfig())
	if err != nil {
		t.Fatalf("NewEngineer: %v", err)
	}
	return NewRunner(Config{OutputDir: outputDir}, eng)
}

func TestRunFullSeason(t *testing.T) {
	extract := writeExtract(t, []string{
		`L1,LOT ONE - QUINTAY,2025-01-01,,1,1,100,,,,,,,SWEET GLOBE,,`,
		`L1,LOT ONE - QUINTAY,2025-01-10,Fresh Mart,1,5,,60,60,600,,,,SWEET GLOBE,,`,
		`L1,LOT ONE - QUINTAY,2025-01-15,,2,0,,,,,30,,COMMISSION,,,`,
		`L1,LOT ONE - QUINTAY,2025-01-15,,2,0,,,,,20,,STORAGE,,,`,
		`L9,OUT OF RANGE,2023-01-01,,1,1,50,,,,,,,,,`, // outside both seasons
	})
	out := t.TempDir()
	runner := newRunner(t, out)

	results, err := runner.Run(context.Background(), extract)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %d, want one per season", len(results))
	}

	var current *SeasonResult
	for _, res := range results {
		if res.Err != nil {
			t.Fatalf("season %s failed: %v", res.Season, res.Err)
		}
		if res.Season == "2024-2025" {
			current = res
		}
	}
	if current == nil {
		t.Fatal("missing 2024-2025 season result")
	}

	if len(current.Summaries) != 1 {
		t.Fatalf("summaries = %d, want 1", len(current.Summaries))
	}
	s := current.Summaries[0]
	if s.Exporter != "Quintay" || s.LotID != "L1" {
		t.Errorf("unexpected summary key: %s/%s", s.Exporter, s.LotID)
	}
	if s.SalesAmount != 600 || s.TotalDeductions != 20 || s.CommissionAmount != 30 || s.FOBLiquidation != 550 {
		t.Errorf("unexpected summary: %+v", s)
	}

	if len(current.States) != 1 || current.States[0].Balance != 40 {
		t.Errorf("unexpected current state: %+v", current.States)
	}
	if !current.QCPassed {
		t.Errorf("QC should pass: %+v", current.QCResults)
	}
	for _, d := range current.Discrepancies {
		if !d.Consistent {
			t.Errorf("metric %s inconsistent: %+v", d.Metric, d.Values)
		}
	}

	// The out-of-range receipt must not appear in any season.
	for _, res := range results {
		for _, st := range res.InitialStock {
			if st.LotID == "L9" {
				t.Error("out-of-season receipt leaked into a season report")
			}
		}
	}

	seasonDir := filepath.Join(out, "2024-2025")
	for _, name := range []string{
		"lot_financial_summary.csv",
		"virtual_inventory_ledger.csv",
		"reconciliation_report.csv",
		"famus_report_2024-2025.xlsx",
		"qc_report_2024-2025.md",
	} {
		if _, err := os.Stat(filepath.Join(seasonDir, name)); err != nil {
			t.Errorf("missing output %s: %v", name, err)
		}
	}

	if err := runner.WriteBlueprint(results); err != nil {
		t.Fatalf("WriteBlueprint: %v", err)
	}
	if _, err := os.Stat(filepath.Join(out, "data_analysis_blueprint.md")); err != nil {
		t.Errorf("missing blueprint: %v", err)
	}
}

func TestRunMissingRawColumnFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	if err := os.WriteFile(path, []byte("Lotid,Ref Date\nL1,2025-01-01\n"), 0o644); err != nil {
		t.Fatalf("write extract: %v", err)
	}
	runner := newRunner(t, "")
	if _, err := runner.Run(context.Background(), path); err == nil {
		t.Fatal("missing raw columns must fail the run")
	}
}

func TestRunIdempotent(t *testing.T) {
	extract := writeExtract(t, []string{
		`L1,LOT ONE - QUINTAY,2025-01-01,,1,1,100,,,,,,,,,`,
		`L1,LOT ONE - QUINTAY,2025-01-10,Fresh Mart,1,5,,60,60,600,,,,,,`,
	})
	out := t.TempDir()
	runner := newRunner(t, out)

	if _, err := runner.Run(context.Background(), extract); err != nil {
		t.Fatalf("first run: %v", err)
	}
	first, err := os.ReadFile(filepath.Join(out, "2024-2025", "lot_financial_summary.csv"))
	if err != nil {
		t.Fatalf("read first output: %v", err)
	}
	if _, err := runner.Run(context.Background(), extract); err != nil {
		t.Fatalf("second run: %v", err)
	}
	second, err := os.ReadFile(filepath.Join(out, "2024-2025", "lot_financial_summary.csv"))
	if err != nil {
		t.Fatalf("read second output: %v", err)
	}
	if string(first) != string(second) {
		t.Error("re-running the pipeline changed its output")
	}
}

func TestRunEmptySeasonStillWrites(t *testing.T) {
	extract := writeExtract(t, []string{
		`L1,LOT ONE - QUINTAY,2025-01-01,,1,1,100,,,,,,,,,`,
	})
	out := t.TempDir()
	runner := newRunner(t, out)
	results, err := runner.Run(context.Background(), extract)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, res := range results {
		if res.Season != "2023-2024" {
			continue
		}
		if res.Err != nil {
			t.Fatalf("empty season errored: %v", res.Err)
		}
		if len(res.Summaries) != 0 {
			t.Errorf("empty season has summaries: %+v", res.Summaries)
		}
		path := filepath.Join(out, "2023-2024", "lot_financial_summary.csv")
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("empty season should still write headers: %v", err)
		}
		if !strings.HasPrefix(string(data), "exporter,lot_id") {
			t.Errorf("unexpected empty-season csv: %q", string(data))
		}
	}
}
