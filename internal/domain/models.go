package domain

import "time"

// Transaction type codes in the Famus lot detail extract. Type 1 covers
// stock movements and invoiced sales; type 2 is a charge/deduction line.
const (
	TrxTypeMovement = 1
	TrxTypeCharge   = 2
)

// Source index codes distinguishing sub-sources within a transaction type.
const (
	SourceIdxInitialStock = 1
	SourceIdxRetailSale   = 5
)

// ExporterAllSentinel marks rows that apply to every exporter at once.
// Receipts and sales carrying it must be excluded to avoid double counting;
// charges keep it but are flagged (see ChargeEvent.AllExporters).
const ExporterAllSentinel = "Todos"

// RetailerNone is the sentinel for non-retail rows.
const RetailerNone = "N/A"

// TransactionRow is one cleaned record of the raw lot detail extract, after
// column normalization and feature engineering. Numeric transaction columns
// are zero when the source cell was blank or unparseable (sums ignore them);
// price columns keep nil to distinguish "no price" from a zero price.
type TransactionRow struct {
	LotID           string
	LotDescription  string
	TrxType         int
	SourceIdx       int
	RefDate         time.Time // zero when missing/unparseable
	Description     string
	ReceivedQty     float64
	InvoicedQty     float64
	SaleAmount      float64
	ChargeAmount    float64
	ChargeQty       float64
	ChargeDescr     string
	VarietyInvc     string
	GradeInvc       string
	ProductDescr    string
	PricePerCaseRaw string

	// Engineered features.
	Exporter         string // cleaned/canonical exporter name
	ExporterCountry  string
	Variety          string
	PackagingStyle   string
	PackagingDetail  string
	RetailerName     string
	Season           string
	PriceFourStar    *float64 // cleaned list price per case
	PricePerCaseInvc *float64 // sale amount / invoiced quantity
	PricePerCaseRcpt *float64 // sale amount / receipt quantity

	IsAdvance              bool
	IsProducePayCommission bool
	IsRetailerCommission   bool
}

// StockReceipt is a classified initial-stock movement.
type StockReceipt struct {
	LotID          string
	Exporter       string
	Date           time.Time
	Quantity       float64
	Variety        string
	PackagingStyle string
}

// SaleEvent is a classified retail sale.
type SaleEvent struct {
	LotID          string
	Exporter       string
	Date           time.Time
	Quantity       float64
	Amount         float64
	Retailer       string
	Variety        string
	PackagingStyle string
}

// ChargeEvent is a classified charge/deduction line. AllExporters marks the
// "Todos" sentinel: the row is kept (charges can legitimately apply at that
// level) but reconciliation must know it would inflate per-exporter totals.
type ChargeEvent struct {
	LotID                  string
	Exporter               string
	ExporterCountry        string
	Description            string
	Amount                 float64
	Quantity               float64
	IsAdvance              bool
	IsProducePayCommission bool
	AllExporters           bool
}

// InitialStock is the per-(lot, exporter) receipt aggregate.
type InitialStock struct {
	LotID         string
	Exporter      string
	TotalReceived float64
	EarliestEntry time.Time
}

// SalesTotal is the per-(lot, exporter) sales aggregate.
type SalesTotal struct {
	LotID       string
	Exporter    string
	TotalSold   float64
	TotalAmount float64
}

// ChargeTotal is the per-(lot, exporter, description) charge aggregate.
// Descriptions are free text and grouped verbatim; semantic equivalence
// between similar spellings is a data-quality finding, not resolved here.
type ChargeTotal struct {
	LotID         string
	Exporter      string
	Description   string
	TotalAmount   float64
	TotalQuantity float64
	AllExporters  bool
}

// LotSummary is the per-(lot, exporter) financial summary.
// FOBLiquidation == SalesAmount - TotalDeductions - CommissionAmount by
// construction. FOBPerCase is nil when SalesQuantity is zero; the two
// percentage columns fall back to 0 when their denominator is zero (kept
// for compatibility with the source system, see DESIGN.md).
type LotSummary struct {
	Exporter         string   `json:"exporter" db:"exporter"`
	LotID            string   `json:"lot_id" db:"lot_id"`
	SalesQuantity    float64  `json:"sales_quantity" db:"sales_quantity"`
	SalesAmount      float64  `json:"sales_amount" db:"sales_amount"`
	TotalDeductions  float64  `json:"total_deductions" db:"total_deductions"`
	CommissionAmount float64  `json:"commission_amount" db:"commission_amount"`
	AdvancesAmount   float64  `json:"advances_amount" db:"advances_amount"`
	FOBLiquidation   float64  `json:"fob_liquidation" db:"fob_liquidation"`
	FOBPerCase       *float64 `json:"fob_per_case" db:"fob_per_case"`
	AdvancePctOfFOB  float64  `json:"advance_pct_of_fob" db:"advance_pct_of_fob"`
	CommissionPct    float64  `json:"commission_pct" db:"commission_pct"`
}

// MovementKind distinguishes ledger entries.
type MovementKind string

const (
	MovementEntry MovementKind = "Entry"
	MovementSale  MovementKind = "Sale"
)

// LedgerEntry is one movement in the virtual inventory ledger. Quantity is
// signed: positive for entries, negative for sales. DaysInInventory is nil
// for lots that have sales but no recorded entry.
type LedgerEntry struct {
	Exporter        string       `json:"exporter" db:"exporter"`
	LotID           string       `json:"lot_id" db:"lot_id"`
	Date            time.Time    `json:"date" db:"movement_date"`
	Movement        MovementKind `json:"movement" db:"movement"`
	Quantity        float64      `json:"quantity" db:"quantity"`
	Balance         float64      `json:"balance" db:"balance"`
	DaysInInventory *int         `json:"days_in_inventory" db:"days_in_inventory"`
	Variety         string       `json:"variety" db:"variety"`
	PackagingStyle  string       `json:"packaging_style" db:"packaging_style"`
}

// LedgerState is the chronologically last ledger row per (exporter, lot):
// the authoritative current-inventory figure.
type LedgerState struct {
	Exporter        string    `json:"exporter" db:"exporter"`
	LotID           string    `json:"lot_id" db:"lot_id"`
	Balance         float64   `json:"balance" db:"balance"`
	Date            time.Time `json:"date" db:"movement_date"`
	DaysInInventory *int      `json:"days_in_inventory" db:"days_in_inventory"`
	Variety         string    `json:"variety" db:"variety"`
	PackagingStyle  string    `json:"packaging_style" db:"packaging_style"`
}

// FIFOLotSummary is the weighted-date inventory view. The representative
// entry/sale dates are quantity-weighted averages, so WeightedDays answers
// "typical aging" rather than the ledger's per-transaction aging.
type FIFOLotSummary struct {
	Exporter         string     `json:"exporter"`
	LotID            string     `json:"lot_id"`
	InitialStock     float64    `json:"initial_stock"`
	SoldQuantity     float64    `json:"sold_quantity"`
	CurrentInventory float64    `json:"current_inventory"`
	WeightedEntry    *time.Time `json:"weighted_entry"`
	WeightedSale     *time.Time `json:"weighted_sale"`
	WeightedDays     *int       `json:"weighted_days"`
}

// ExporterInventory is the sum-based sanity-check inventory view per exporter.
type ExporterInventory struct {
	Exporter            string  `json:"exporter"`
	InitialStock        float64 `json:"initial_stock"`
	SoldQuantity        float64 `json:"sold_quantity"`
	CalculatedInventory float64 `json:"calculated_inventory"`
	CurrentInventory    float64 `json:"current_inventory"`
}

// ChargeCost is the charge-per-box view: charge totals joined with the lot's
// initial stock. CostPerBox is nil when the lot has no recorded stock.
type ChargeCost struct {
	LotID           string   `json:"lot_id"`
	Exporter        string   `json:"exporter"`
	ExporterCountry string   `json:"exporter_country"`
	Description     string   `json:"description"`
	Amount          float64  `json:"amount"`
	Quantity        float64  `json:"quantity"`
	InitialStock    float64  `json:"initial_stock"`
	CostPerBox      *float64 `json:"cost_per_box"`
}

// SourceValue is one independently derived value for a reconciled metric.
type SourceValue struct {
	Source string  `json:"source"`
	Value  float64 `json:"value"`
}

// Discrepancy is one row of the reconciliation report: a metric, the values
// each source produced for it, and whether they agree within Tolerance.
type Discrepancy struct {
	Metric     string        `json:"metric"`
	Values     []SourceValue `json:"values"`
	Tolerance  float64       `json:"tolerance"`
	Consistent bool          `json:"consistent"`
}
