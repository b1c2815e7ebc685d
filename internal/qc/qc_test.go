package qc

import (
	"strings"
	"testing"
	"time"

	"github.com/jpfamus/famus-report-analysis/backend-go/internal/domain"
)

func fptr(v float64) *float64 { return &v }

func cleanSummaries() []domain.LotSummary {
	return []domain.LotSummary{
		{
			Exporter: "Acme", LotID: "L1",
			SalesQuantity: 60, SalesAmount: 600,
			TotalDeductions: 20, CommissionAmount: 30,
			FOBLiquidation: 550, FOBPerCase: fptr(550.0 / 60.0),
		},
		{
			Exporter: "Beta", LotID: "L2",
			SalesQuantity: 10, SalesAmount: 100,
			FOBLiquidation: 100, FOBPerCase: fptr(10),
		},
	}
}

func cleanRows() []domain.TransactionRow {
	return []domain.TransactionRow{
		{LotID: "L1", Exporter: "Acme", TrxType: domain.TrxTypeMovement,
			SourceIdx: domain.SourceIdxRetailSale, InvoicedQty: 60, RetailerName: "Fresh Mart"},
		{LotID: "L2", Exporter: "Beta", TrxType: domain.TrxTypeMovement,
			SourceIdx: domain.SourceIdxRetailSale, InvoicedQty: 10, RetailerName: "Value Grocer"},
	}
}

func TestRunAllChecksPass(t *testing.T) {
	results, allPassed := Run(Inputs{
		Season:    "2024-2025",
		Rows:      cleanRows(),
		Summaries: cleanSummaries(),
		Discrepancies: []domain.Discrepancy{
			{Metric: "sales_amount", Consistent: true,
				Values: []domain.SourceValue{{Source: "sale_events", Value: 700}}},
		},
	})
	if !allPassed {
		t.Errorf("clean inputs should pass all checks: %+v", results)
	}
	if len(results) == 0 {
		t.Fatal("no results produced")
	}
}

func TestRunFlagsBrokenFOB(t *testing.T) {
	summaries := cleanSummaries()
	summaries[0].FOBLiquidation = 999
	_, allPassed := Run(Inputs{Season: "s", Summaries: summaries})
	if allPassed {
		t.Error("broken FOB identity must fail QC")
	}
}

func TestRunFlagsDuplicateLots(t *testing.T) {
	summaries := append(cleanSummaries(), cleanSummaries()[0])
	_, allPassed := Run(Inputs{Season: "s", Summaries: summaries})
	if allPassed {
		t.Error("duplicate lot+exporter must fail QC")
	}
}

func TestRunFlagsNegativeAdvances(t *testing.T) {
	summaries := cleanSummaries()
	summaries[1].AdvancesAmount = -5
	_, allPassed := Run(Inputs{Season: "s", Summaries: summaries})
	if allPassed {
		t.Error("negative advances must fail QC")
	}
}

func TestRunFlagsFumigationOutsideChile(t *testing.T) {
	costs := []domain.ChargeCost{
		{LotID: "L1", Exporter: "Agrolatina", ExporterCountry: "Peru",
			Description: "FUMIGATION SERVICE", Amount: 12},
	}
	_, allPassed := Run(Inputs{Season: "s", ChargeCosts: costs})
	if allPassed {
		t.Error("fumigation charge on a non-Chilean exporter must fail QC")
	}
}

func TestRunFlagsInconsistentReconciliation(t *testing.T) {
	_, allPassed := Run(Inputs{
		Season: "s",
		Discrepancies: []domain.Discrepancy{
			{Metric: "initial_stock", Consistent: false,
				Values: []domain.SourceValue{
					{Source: "receipt_events", Value: 100},
					{Source: "initial_stock_by_lot", Value: 90},
				}},
		},
	})
	if allPassed {
		t.Error("inconsistent reconciliation metric must fail QC")
	}
}

func TestRunEmptyInputs(t *testing.T) {
	results, allPassed := Run(Inputs{Season: "s"})
	if !allPassed {
		t.Errorf("empty season should pass trivially: %+v", results)
	}
}

func TestWriteReport(t *testing.T) {
	results, _ := Run(Inputs{Season: "2024-2025", Summaries: cleanSummaries()})
	var b strings.Builder
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	if err := WriteReport(&b, "2024-2025", results, now); err != nil {
		t.Fatalf("WriteReport: %v", err)
	}
	report := b.String()
	for _, want := range []string{
		"# Quality Control Report for 2024-2025",
		"**Date:** 2025-06-01 12:00:00",
		"FOB liquidation",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q:\n%s", want, report)
		}
	}
}
