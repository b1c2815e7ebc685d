// Package export turns the derived report entities into flat tables and
// serializes them (CSV, Excel workbook, Markdown blueprint). Formatting
// happens only here; the core hands over plain numbers.
package export

import (
	"time"

	"github.com/jpfamus/famus-report-analysis/backend-go/internal/domain"
)

// Table is the writer-facing shape of one report: named columns and typed
// cells (string, float64, int, time.Time or nil).
type Table struct {
	Name        string
	Description string
	Columns     []string
	Rows        [][]any
}

func optFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func optInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func optDate(v *time.Time) any {
	if v == nil {
		return nil
	}
	return *v
}

// LotSummaryTable renders the lot financial summary.
func LotSummaryTable(rows []domain.LotSummary) Table {
	t := Table{
		Name:        "lot_financial_summary",
		Description: "Per-lot financial summary: sales, deductions, commission, advances and FOB liquidation.",
		Columns: []string{
			"exporter", "lot_id", "sales_quantity", "sales_amount",
			"total_deductions", "commission_amount", "advances_amount",
			"fob_liquidation", "fob_per_case", "advance_pct_of_fob", "commission_pct",
		},
		Rows: make([][]any, 0, len(rows)),
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{
			r.Exporter, r.LotID, r.SalesQuantity, r.SalesAmount,
			r.TotalDeductions, r.CommissionAmount, r.AdvancesAmount,
			r.FOBLiquidation, optFloat(r.FOBPerCase), r.AdvancePctOfFOB, r.CommissionPct,
		})
	}
	return t
}

// LedgerTable renders the virtual inventory ledger.
func LedgerTable(rows []domain.LedgerEntry) Table {
	t := Table{
		Name:        "virtual_inventory_ledger",
		Description: "Chronological signed inventory movements with running balance per lot and exporter.",
		Columns: []string{
			"exporter", "lot_id", "date", "movement_kind", "quantity",
			"inventory_balance", "days_in_inventory", "variety", "packaging_style",
		},
		Rows: make([][]any, 0, len(rows)),
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{
			r.Exporter, r.LotID, r.Date, string(r.Movement), r.Quantity,
			r.Balance, optInt(r.DaysInInventory), r.Variety, r.PackagingStyle,
		})
	}
	return t
}

// CurrentStateTable renders the ledger's last row per lot.
func CurrentStateTable(rows []domain.LedgerState) Table {
	t := Table{
		Name:        "current_inventory",
		Description: "Authoritative current inventory: the chronologically last ledger row per lot and exporter.",
		Columns: []string{
			"exporter", "lot_id", "inventory_balance", "date",
			"days_in_inventory", "variety", "packaging_style",
		},
		Rows: make([][]any, 0, len(rows)),
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{
			r.Exporter, r.LotID, r.Balance, r.Date,
			optInt(r.DaysInInventory), r.Variety, r.PackagingStyle,
		})
	}
	return t
}

// InitialStockTable renders the receipt aggregates.
func InitialStockTable(rows []domain.InitialStock) Table {
	t := Table{
		Name:        "initial_stock_by_lot",
		Description: "Total received quantity and earliest entry date per lot and exporter.",
		Columns:     []string{"exporter", "lot_id", "total_received", "earliest_entry_date"},
		Rows:        make([][]any, 0, len(rows)),
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{r.Exporter, r.LotID, r.TotalReceived, r.EarliestEntry})
	}
	return t
}

// SalesTotalsTable renders the sales aggregates.
func SalesTotalsTable(rows []domain.SalesTotal) Table {
	t := Table{
		Name:        "sales_by_lot",
		Description: "Total sold quantity and sale amount per lot and exporter.",
		Columns:     []string{"exporter", "lot_id", "total_sold", "total_sale_amount"},
		Rows:        make([][]any, 0, len(rows)),
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{r.Exporter, r.LotID, r.TotalSold, r.TotalAmount})
	}
	return t
}

// ChargeTotalsTable renders the per-category charge aggregates.
func ChargeTotalsTable(rows []domain.ChargeTotal) Table {
	t := Table{
		Name:        "charges_by_lot_and_category",
		Description: "Charge totals per lot, exporter and verbatim charge description.",
		Columns: []string{
			"exporter", "lot_id", "charge_description",
			"total_amount", "total_quantity", "all_exporters",
		},
		Rows: make([][]any, 0, len(rows)),
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{
			r.Exporter, r.LotID, r.Description, r.TotalAmount, r.TotalQuantity, r.AllExporters,
		})
	}
	return t
}

// FIFOTable renders the weighted-date inventory view.
func FIFOTable(rows []domain.FIFOLotSummary) Table {
	t := Table{
		Name:        "fifo_inventory_summary",
		Description: "Weighted-date inventory view: quantity-weighted entry/sale dates and typical aging per lot.",
		Columns: []string{
			"exporter", "lot_id", "initial_stock", "sold_quantity", "current_inventory",
			"weighted_entry_date", "weighted_sale_date", "weighted_days_in_inventory",
		},
		Rows: make([][]any, 0, len(rows)),
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{
			r.Exporter, r.LotID, r.InitialStock, r.SoldQuantity, r.CurrentInventory,
			optDate(r.WeightedEntry), optDate(r.WeightedSale), optInt(r.WeightedDays),
		})
	}
	return t
}

// ExporterInventoryTable renders the per-exporter inventory sanity view.
func ExporterInventoryTable(rows []domain.ExporterInventory) Table {
	t := Table{
		Name:        "exporter_inventory_summary",
		Description: "Per-exporter calculated inventory (receipts minus sales) next to the ledger's current balances.",
		Columns: []string{
			"exporter", "initial_stock", "sold_quantity",
			"calculated_inventory", "current_inventory",
		},
		Rows: make([][]any, 0, len(rows)),
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{
			r.Exporter, r.InitialStock, r.SoldQuantity, r.CalculatedInventory, r.CurrentInventory,
		})
	}
	return t
}

// ChargeCostTable renders the charge cost-per-box view.
func ChargeCostTable(rows []domain.ChargeCost) Table {
	t := Table{
		Name:        "charge_cost_per_box",
		Description: "Charges expressed as cost per box against each lot's initial stock.",
		Columns: []string{
			"exporter", "lot_id", "exporter_country", "charge_description",
			"amount", "quantity", "initial_stock", "cost_per_box",
		},
		Rows: make([][]any, 0, len(rows)),
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{
			r.Exporter, r.LotID, r.ExporterCountry, r.Description,
			r.Amount, r.Quantity, r.InitialStock, optFloat(r.CostPerBox),
		})
	}
	return t
}

// DiscrepancyTable renders the reconciliation report.
func DiscrepancyTable(rows []domain.Discrepancy) Table {
	t := Table{
		Name:        "reconciliation_report",
		Description: "Cross-source totals per metric with tolerance and consistency flag.",
		Columns:     []string{"metric", "source", "value", "tolerance", "consistent"},
		Rows:        make([][]any, 0, len(rows)),
	}
	for _, d := range rows {
		for _, v := range d.Values {
			t.Rows = append(t.Rows, []any{d.Metric, v.Source, v.Value, d.Tolerance, d.Consistent})
		}
	}
	return t
}
