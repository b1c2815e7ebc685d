// Package qc runs quality-control checks over a season's generated tables
// and renders the findings as a Markdown report. Failed checks are findings,
// not errors: the pipeline emits its outputs regardless.
package qc

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/jpfamus/famus-report-analysis/backend-go/internal/domain"
	"github.com/jpfamus/famus-report-analysis/backend-go/internal/features"
	"github.com/rs/zerolog/log"
)

// Result is one QC check outcome. Info results are observations with no
// pass/fail semantics.
type Result struct {
	Message string
	Passed  bool
	Info    bool
	Details string
}

// Inputs are the season tables the checks inspect.
type Inputs struct {
	Season        string
	Rows          []domain.TransactionRow
	Summaries     []domain.LotSummary
	ChargeCosts   []domain.ChargeCost
	Discrepancies []domain.Discrepancy
}

const fobCheckTolerance = 1e-6

// Run executes every check and reports whether all pass/fail checks passed.
func Run(in Inputs) ([]Result, bool) {
	results := []Result{}
	add := func(r Result) {
		results = append(results, r)
		evt := log.Info()
		if !r.Passed && !r.Info {
			evt = log.Warn()
		}
		evt.Str("season", in.Season).Str("check", r.Message).Msg("qc")
	}

	add(checkFOBIdentity(in.Summaries))
	add(checkNoNegativeAdvances(in.Summaries))
	add(checkNoDuplicateLots(in.Summaries))
	add(infoDeductionsWithoutSales(in.Summaries))
	add(infoUnknownExporters(in.Summaries))
	add(checkFumigationCountries(in.ChargeCosts))
	add(checkCaseTotals(in.Rows, in.Summaries))
	for _, r := range checkReconciliation(in.Discrepancies) {
		add(r)
	}

	allPassed := true
	for _, r := range results {
		if !r.Info && !r.Passed {
			allPassed = false
		}
	}
	return results, allPassed
}

func checkFOBIdentity(summaries []domain.LotSummary) Result {
	for _, s := range summaries {
		want := s.SalesAmount - s.TotalDeductions - s.CommissionAmount
		if math.Abs(s.FOBLiquidation-want) > fobCheckTolerance {
			return Result{
				Message: "FOB liquidation matches sales - deductions - commission for every lot",
				Details: fmt.Sprintf("lot %s/%s: %.4f vs %.4f", s.Exporter, s.LotID, s.FOBLiquidation, want),
			}
		}
	}
	return Result{Message: "FOB liquidation matches sales - deductions - commission for every lot", Passed: true}
}

func checkNoNegativeAdvances(summaries []domain.LotSummary) Result {
	var bad []string
	for _, s := range summaries {
		if s.AdvancesAmount < 0 {
			bad = append(bad, s.Exporter+"/"+s.LotID)
		}
	}
	return Result{
		Message: "No negative grower-advance totals",
		Passed:  len(bad) == 0,
		Details: strings.Join(bad, ", "),
	}
}

func checkNoDuplicateLots(summaries []domain.LotSummary) Result {
	seen := make(map[string]bool, len(summaries))
	dups := 0
	for _, s := range summaries {
		k := s.Exporter + "\x00" + s.LotID
		if seen[k] {
			dups++
		}
		seen[k] = true
	}
	return Result{
		Message: fmt.Sprintf("No duplicate lot + exporter in financial summary (found: %d)", dups),
		Passed:  dups == 0,
	}
}

func infoDeductionsWithoutSales(summaries []domain.LotSummary) Result {
	n := 0
	for _, s := range summaries {
		if s.TotalDeductions > 0 && s.SalesQuantity == 0 {
			n++
		}
	}
	return Result{
		Message: fmt.Sprintf("Lots with deductions but no sales: %d", n),
		Info:    true,
	}
}

func infoUnknownExporters(summaries []domain.LotSummary) Result {
	n := 0
	for _, s := range summaries {
		if s.Exporter == features.UnknownExporter {
			n++
		}
	}
	return Result{
		Message: fmt.Sprintf("Lots with unknown exporters: %d", n),
		Info:    true,
	}
}

// Fumigation is a Chilean phytosanitary requirement; the charge landing on a
// non-Chilean exporter means a misattributed lot or exporter.
func checkFumigationCountries(costs []domain.ChargeCost) Result {
	var bad []string
	for _, c := range costs {
		if strings.Contains(strings.ToUpper(c.Description), "FUMIGA") && c.ExporterCountry != "Chile" {
			bad = append(bad, fmt.Sprintf("%s/%s (%s)", c.Exporter, c.LotID, c.ExporterCountry))
		}
	}
	sort.Strings(bad)
	return Result{
		Message: fmt.Sprintf("Fumigation charges applied to non-Chilean exporters: %d instances", len(bad)),
		Passed:  len(bad) == 0,
		Details: strings.Join(bad, ", "),
	}
}

func checkCaseTotals(rows []domain.TransactionRow, summaries []domain.LotSummary) Result {
	var fromRows float64
	for _, r := range rows {
		if r.TrxType == domain.TrxTypeMovement &&
			r.SourceIdx == domain.SourceIdxRetailSale &&
			r.InvoicedQty > 0 &&
			r.RetailerName != domain.RetailerNone &&
			r.Exporter != domain.ExporterAllSentinel {
			fromRows += r.InvoicedQty
		}
	}
	var fromSummary float64
	for _, s := range summaries {
		fromSummary += s.SalesQuantity
	}
	return Result{
		Message: fmt.Sprintf("Total cases from processed data (%.0f) vs financial summary (%.0f) agree", fromRows, fromSummary),
		Passed:  math.Abs(fromRows-fromSummary) <= fobCheckTolerance,
	}
}

func checkReconciliation(discrepancies []domain.Discrepancy) []Result {
	out := make([]Result, 0, len(discrepancies))
	for _, d := range discrepancies {
		details := make([]string, 0, len(d.Values))
		for _, v := range d.Values {
			details = append(details, fmt.Sprintf("%s=%.4f", v.Source, v.Value))
		}
		out = append(out, Result{
			Message: fmt.Sprintf("Reconciliation: %s consistent across sources", d.Metric),
			Passed:  d.Consistent,
			Details: strings.Join(details, ", "),
		})
	}
	return out
}

// WriteReport renders the check results as the season's Markdown QC report.
func WriteReport(w io.Writer, season string, results []Result, now time.Time) error {
	if _, err := fmt.Fprintf(w, "# Quality Control Report for %s\n\n", season); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "**Date:** %s\n\n## Checks\n\n", now.Format("2006-01-02 15:04:05")); err != nil {
		return err
	}
	for _, r := range results {
		icon := "✅"
		switch {
		case r.Info:
			icon = "ℹ️"
		case !r.Passed:
			icon = "❌"
		}
		line := fmt.Sprintf("* %s %s", icon, r.Message)
		if r.Details != "" {
			line += " — " + r.Details
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "\nThis report summarizes the quality control checks performed on the data and generated reports.\n")
	return err
}
