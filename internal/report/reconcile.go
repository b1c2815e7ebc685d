package report

import (
	"math"
	"strings"

	"github.com/jpfamus/famus-report-analysis/backend-go/internal/domain"
)

// Reconciliation tolerances: currency comparisons absorb float rounding,
// case counts must match exactly.
const (
	CurrencyTolerance = 1e-2
	CountTolerance    = 0
)

// ReconcileInputs carries every independently derived table the
// reconciliation layer cross-checks.
type ReconcileInputs struct {
	Receipts     []domain.StockReceipt
	Sales        []domain.SaleEvent
	Charges      []domain.ChargeEvent
	InitialStock []domain.InitialStock
	SalesTotals  []domain.SalesTotal
	ChargeTotals []domain.ChargeTotal
	Summaries    []domain.LotSummary
	States       []domain.LedgerState
}

// Reconcile computes each metric from its independent sources and flags any
// pair differing beyond tolerance. The report is a data-quality finding; the
// tables themselves are never corrected.
func Reconcile(in ReconcileInputs) []domain.Discrepancy {
	out := make([]domain.Discrepancy, 0, 8)

	var rawSalesQty, rawSalesAmt float64
	for _, s := range in.Sales {
		rawSalesQty += s.Quantity
		rawSalesAmt += s.Amount
	}
	var groupedSalesQty, groupedSalesAmt float64
	for _, s := range in.SalesTotals {
		groupedSalesQty += s.TotalSold
		groupedSalesAmt += s.TotalAmount
	}
	var summarySalesQty, summarySalesAmt float64
	var summaryDeductions, summaryCommission, summaryAdvances float64
	for _, s := range in.Summaries {
		summarySalesQty += s.SalesQuantity
		summarySalesAmt += s.SalesAmount
		summaryDeductions += s.TotalDeductions
		summaryCommission += s.CommissionAmount
		summaryAdvances += s.AdvancesAmount
	}

	out = append(out, check("sales_quantity", CountTolerance,
		domain.SourceValue{Source: "sale_events", Value: rawSalesQty},
		domain.SourceValue{Source: "sales_by_lot", Value: groupedSalesQty},
		domain.SourceValue{Source: "lot_summary", Value: summarySalesQty},
	))
	out = append(out, check("sales_amount", CurrencyTolerance,
		domain.SourceValue{Source: "sale_events", Value: rawSalesAmt},
		domain.SourceValue{Source: "sales_by_lot", Value: groupedSalesAmt},
		domain.SourceValue{Source: "lot_summary", Value: summarySalesAmt},
	))

	var rawStock float64
	for _, r := range in.Receipts {
		rawStock += r.Quantity
	}
	var groupedStock float64
	for _, s := range in.InitialStock {
		groupedStock += s.TotalReceived
	}
	out = append(out, check("initial_stock", CountTolerance,
		domain.SourceValue{Source: "receipt_events", Value: rawStock},
		domain.SourceValue{Source: "initial_stock_by_lot", Value: groupedStock},
	))

	var ledgerInventory float64
	for _, s := range in.States {
		ledgerInventory += s.Balance
	}
	out = append(out, check("current_inventory", CountTolerance,
		domain.SourceValue{Source: "ledger_current_state", Value: ledgerInventory},
		domain.SourceValue{Source: "receipts_minus_sales", Value: rawStock - rawSalesQty},
	))

	var rawDeductions, rawCommission, rawAdvances float64
	for _, c := range in.Charges {
		switch strings.ToUpper(strings.TrimSpace(c.Description)) {
		case chargeCategoryCommission:
			rawCommission += c.Amount
		case chargeCategoryAdvances:
			rawAdvances += c.Amount
		default:
			rawDeductions += c.Amount
		}
	}
	var groupedCharges float64
	for _, c := range in.ChargeTotals {
		groupedCharges += c.TotalAmount
	}

	out = append(out, check("charge_amount_total", CurrencyTolerance,
		domain.SourceValue{Source: "charge_events", Value: rawDeductions + rawCommission + rawAdvances},
		domain.SourceValue{Source: "charges_by_lot_and_category", Value: groupedCharges},
	))
	out = append(out, check("charge_amount_deductions", CurrencyTolerance,
		domain.SourceValue{Source: "charge_events", Value: rawDeductions},
		domain.SourceValue{Source: "lot_summary", Value: summaryDeductions},
	))
	out = append(out, check("charge_amount_commission", CurrencyTolerance,
		domain.SourceValue{Source: "charge_events", Value: rawCommission},
		domain.SourceValue{Source: "lot_summary", Value: summaryCommission},
	))
	out = append(out, check("charge_amount_advances", CurrencyTolerance,
		domain.SourceValue{Source: "charge_events", Value: rawAdvances},
		domain.SourceValue{Source: "lot_summary", Value: summaryAdvances},
	))

	return out
}

// check builds one discrepancy row: consistent iff every pair of source
// values agrees within the tolerance.
func check(metric string, tolerance float64, values ...domain.SourceValue) domain.Discrepancy {
	consistent := true
	for i := 0; i < len(values) && consistent; i++ {
		for j := i + 1; j < len(values); j++ {
			if math.Abs(values[i].Value-values[j].Value) > tolerance {
				consistent = false
				break
			}
		}
	}
	return domain.Discrepancy{
		Metric:     metric,
		Values:     values,
		Tolerance:  tolerance,
		Consistent: consistent,
	}
}
