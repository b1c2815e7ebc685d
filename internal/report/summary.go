package report

import (
	"sort"
	"strings"

	"github.com/jpfamus/famus-report-analysis/backend-go/internal/domain"
)

// Charge categories split out of total deductions. Matching is
// case-insensitive but exact: "COMMISSIONS" or "SALES COMMISSION" are
// ordinary deductions.
const (
	chargeCategoryCommission = "COMMISSION"
	chargeCategoryAdvances   = "GROWER ADVANCES"
)

// SummarizeLots builds one financial summary row per (lot, exporter) present
// in Sales OR Charges. A lot with charges but no sales still appears, with
// zero sales and a negative FOB where the deductions exceed it.
func SummarizeLots(sales []domain.SaleEvent, charges []domain.ChargeEvent) []domain.LotSummary {
	groups := make(map[lotKey]*domain.LotSummary)
	grab := func(exporter, lotID string) *domain.LotSummary {
		k := lotKey{Exporter: exporter, LotID: lotID}
		g, ok := groups[k]
		if !ok {
			g = &domain.LotSummary{Exporter: exporter, LotID: lotID}
			groups[k] = g
		}
		return g
	}

	for _, s := range sales {
		g := grab(s.Exporter, s.LotID)
		g.SalesQuantity += s.Quantity
		g.SalesAmount += s.Amount
	}

	for _, c := range charges {
		g := grab(c.Exporter, c.LotID)
		switch strings.ToUpper(strings.TrimSpace(c.Description)) {
		case chargeCategoryCommission:
			g.CommissionAmount += c.Amount
		case chargeCategoryAdvances:
			g.AdvancesAmount += c.Amount
		default:
			g.TotalDeductions += c.Amount
		}
	}

	out := make([]domain.LotSummary, 0, len(groups))
	for _, g := range groups {
		g.FOBLiquidation = g.SalesAmount - g.TotalDeductions - g.CommissionAmount
		if g.SalesQuantity > 0 {
			v := g.FOBLiquidation / g.SalesQuantity
			g.FOBPerCase = &v
		}
		// Undefined ratios fall back to 0, not null, so the columns stay
		// summable downstream. Known approximation, see DESIGN.md.
		if g.FOBLiquidation != 0 {
			g.AdvancePctOfFOB = g.AdvancesAmount / g.FOBLiquidation * 100
		}
		if denom := g.SalesAmount - g.TotalDeductions; denom != 0 {
			g.CommissionPct = g.CommissionAmount / denom * 100
		}
		out = append(out, *g)
	}
	sortByLot(out, func(s domain.LotSummary) lotKey { return lotKey{s.Exporter, s.LotID} })
	return out
}

// SummariesByExporter partitions summary rows per exporter, preserving row
// order. It is a partitioning of the same rows, not a re-aggregation.
func SummariesByExporter(summaries []domain.LotSummary) map[string][]domain.LotSummary {
	out := make(map[string][]domain.LotSummary)
	for _, s := range summaries {
		out[s.Exporter] = append(out[s.Exporter], s)
	}
	return out
}

// ExporterNames returns the sorted exporter keys of a partitioned summary,
// for deterministic iteration.
func ExporterNames(byExporter map[string][]domain.LotSummary) []string {
	names := make([]string, 0, len(byExporter))
	for name := range byExporter {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
