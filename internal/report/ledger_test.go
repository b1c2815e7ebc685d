package report

import (
	"reflect"
	"testing"

	"github.com/jpfamus/famus-report-analysis/backend-go/internal/domain"
)

func TestBuildLedgerConcreteScenario(t *testing.T) {
	receipts := []domain.StockReceipt{
		{LotID: "L1", Exporter: "Acme", Date: date("2024-01-01"), Quantity: 100, Variety: "SWEET GLOBE", PackagingStyle: "Clam"},
	}
	sales := []domain.SaleEvent{
		{LotID: "L1", Exporter: "Acme", Date: date("2024-01-10"), Quantity: 60, Amount: 600},
	}

	ledger := BuildLedger(receipts, sales)
	if len(ledger) != 2 {
		t.Fatalf("rows = %d, want 2", len(ledger))
	}

	entry, sale := ledger[0], ledger[1]
	if entry.Movement != domain.MovementEntry || entry.Quantity != 100 || entry.Balance != 100 {
		t.Errorf("unexpected entry row: %+v", entry)
	}
	if sale.Movement != domain.MovementSale || sale.Quantity != -60 || sale.Balance != 40 {
		t.Errorf("unexpected sale row: %+v", sale)
	}
	if sale.DaysInInventory == nil || *sale.DaysInInventory != 9 {
		t.Errorf("sale DaysInInventory = %v, want 9", sale.DaysInInventory)
	}
	if entry.DaysInInventory == nil || *entry.DaysInInventory != 0 {
		t.Errorf("entry DaysInInventory = %v, want 0", entry.DaysInInventory)
	}
}

func TestBuildLedgerSignConvention(t *testing.T) {
	receipts := []domain.StockReceipt{
		{LotID: "L1", Exporter: "Acme", Date: date("2024-01-01"), Quantity: 10},
		{LotID: "L2", Exporter: "Beta", Date: date("2024-01-02"), Quantity: 20},
	}
	sales := []domain.SaleEvent{
		{LotID: "L1", Exporter: "Acme", Date: date("2024-01-03"), Quantity: 4},
		{LotID: "L2", Exporter: "Beta", Date: date("2024-01-04"), Quantity: 6},
	}
	for _, e := range BuildLedger(receipts, sales) {
		switch e.Movement {
		case domain.MovementEntry:
			if e.Quantity < 0 {
				t.Errorf("entry with negative quantity: %+v", e)
			}
		case domain.MovementSale:
			if e.Quantity >= 0 {
				t.Errorf("sale with non-negative quantity: %+v", e)
			}
		}
	}
}

func TestBuildLedgerSameDayEntryBeforeSale(t *testing.T) {
	d := date("2024-02-01")
	receipts := []domain.StockReceipt{{LotID: "L1", Exporter: "Acme", Date: d, Quantity: 50}}
	sales := []domain.SaleEvent{{LotID: "L1", Exporter: "Acme", Date: d, Quantity: 30}}

	ledger := BuildLedger(receipts, sales)
	if len(ledger) != 2 {
		t.Fatalf("rows = %d, want 2", len(ledger))
	}
	if ledger[0].Movement != domain.MovementEntry {
		t.Fatal("same-day tie must order Entry before Sale")
	}
	if ledger[0].Balance != 50 || ledger[1].Balance != 20 {
		t.Errorf("balances = (%v, %v), want (50, 20)", ledger[0].Balance, ledger[1].Balance)
	}
}

func TestBuildLedgerBalanceIdentity(t *testing.T) {
	receipts := []domain.StockReceipt{
		{LotID: "L1", Exporter: "Acme", Date: date("2024-01-01"), Quantity: 100},
		{LotID: "L1", Exporter: "Acme", Date: date("2024-01-05"), Quantity: 25},
		{LotID: "L2", Exporter: "Beta", Date: date("2024-01-02"), Quantity: 80},
	}
	sales := []domain.SaleEvent{
		{LotID: "L1", Exporter: "Acme", Date: date("2024-01-10"), Quantity: 60},
		{LotID: "L1", Exporter: "Acme", Date: date("2024-01-12"), Quantity: 30},
		{LotID: "L2", Exporter: "Beta", Date: date("2024-01-09"), Quantity: 80},
	}
	ledger := BuildLedger(receipts, sales)
	states := CurrentState(ledger)

	want := map[lotKey]float64{
		{Exporter: "Acme", LotID: "L1"}: 100 + 25 - 60 - 30,
		{Exporter: "Beta", LotID: "L2"}: 0,
	}
	if len(states) != len(want) {
		t.Fatalf("states = %d, want %d", len(states), len(want))
	}
	for _, s := range states {
		if s.Balance != want[lotKey{Exporter: s.Exporter, LotID: s.LotID}] {
			t.Errorf("final balance %s/%s = %v, want %v",
				s.Exporter, s.LotID, s.Balance, want[lotKey{Exporter: s.Exporter, LotID: s.LotID}])
		}
	}
}

func TestBuildLedgerNoEntryAnomaly(t *testing.T) {
	sales := []domain.SaleEvent{
		{LotID: "LX", Exporter: "Acme", Date: date("2024-03-01"), Quantity: 10},
	}
	ledger := BuildLedger(nil, sales)
	if len(ledger) != 1 {
		t.Fatalf("rows = %d, want 1", len(ledger))
	}
	if ledger[0].DaysInInventory != nil {
		t.Errorf("DaysInInventory = %v, want nil with no entry", *ledger[0].DaysInInventory)
	}
}

func TestBuildLedgerAttributeFill(t *testing.T) {
	receipts := []domain.StockReceipt{
		{LotID: "L1", Exporter: "Acme", Date: date("2024-01-01"), Quantity: 10,
			Variety: "Unknown Variety", PackagingStyle: "Unknown"},
	}
	sales := []domain.SaleEvent{
		{LotID: "L1", Exporter: "Acme", Date: date("2024-01-04"), Quantity: 2,
			Variety: "TIMCO", PackagingStyle: "Bag"},
		{LotID: "L1", Exporter: "Acme", Date: date("2024-01-08"), Quantity: 3,
			Variety: "", PackagingStyle: ""},
	}
	ledger := BuildLedger(receipts, sales)
	for _, e := range ledger {
		if e.Variety != "TIMCO" {
			t.Errorf("variety not filled on %s row: %q", e.Movement, e.Variety)
		}
		if e.PackagingStyle != "Bag" {
			t.Errorf("packaging not filled on %s row: %q", e.Movement, e.PackagingStyle)
		}
	}
}

func TestFIFOSummaryWeightedDates(t *testing.T) {
	receipts := []domain.StockReceipt{
		{LotID: "L1", Exporter: "Acme", Date: date("2024-01-01"), Quantity: 100},
		{LotID: "L1", Exporter: "Acme", Date: date("2024-01-11"), Quantity: 100},
	}
	sales := []domain.SaleEvent{
		{LotID: "L1", Exporter: "Acme", Date: date("2024-01-20"), Quantity: 50},
	}
	got := FIFOSummary(receipts, sales)
	if len(got) != 1 {
		t.Fatalf("rows = %d, want 1", len(got))
	}
	s := got[0]
	if s.InitialStock != 200 || s.SoldQuantity != 50 || s.CurrentInventory != 150 {
		t.Errorf("totals: %+v", s)
	}
	// Equal weights average to the midpoint.
	if s.WeightedEntry == nil || !s.WeightedEntry.Equal(date("2024-01-06")) {
		t.Errorf("WeightedEntry = %v, want 2024-01-06", s.WeightedEntry)
	}
	if s.WeightedSale == nil || !s.WeightedSale.Equal(date("2024-01-20")) {
		t.Errorf("WeightedSale = %v, want 2024-01-20", s.WeightedSale)
	}
	if s.WeightedDays == nil || *s.WeightedDays != 14 {
		t.Errorf("WeightedDays = %v, want 14", s.WeightedDays)
	}
}

func TestFIFOSummaryNoSales(t *testing.T) {
	receipts := []domain.StockReceipt{
		{LotID: "L1", Exporter: "Acme", Date: date("2024-01-01"), Quantity: 10},
	}
	got := FIFOSummary(receipts, nil)
	if len(got) != 1 {
		t.Fatalf("rows = %d, want 1", len(got))
	}
	if got[0].WeightedSale != nil || got[0].WeightedDays != nil {
		t.Errorf("want nil weighted sale/days without sales: %+v", got[0])
	}
}

func TestExporterInventorySummary(t *testing.T) {
	receipts := []domain.StockReceipt{
		{LotID: "L1", Exporter: "Acme", Date: date("2024-01-01"), Quantity: 100},
		{LotID: "L2", Exporter: "Acme", Date: date("2024-01-02"), Quantity: 50},
	}
	sales := []domain.SaleEvent{
		{LotID: "L1", Exporter: "Acme", Date: date("2024-01-10"), Quantity: 60},
	}
	stock := InitialStockByLot(receipts)
	totals := SalesByLot(sales)
	states := CurrentState(BuildLedger(receipts, sales))

	got := ExporterInventorySummary(stock, totals, states)
	if len(got) != 1 {
		t.Fatalf("rows = %d, want 1", len(got))
	}
	g := got[0]
	if g.InitialStock != 150 || g.SoldQuantity != 60 {
		t.Errorf("totals: %+v", g)
	}
	if g.CalculatedInventory != 90 {
		t.Errorf("CalculatedInventory = %v, want 90", g.CalculatedInventory)
	}
	if g.CurrentInventory != 90 {
		t.Errorf("CurrentInventory = %v, want 90 (ledger agrees)", g.CurrentInventory)
	}
}

func TestChargeCosts(t *testing.T) {
	charges := []domain.ChargeEvent{
		{LotID: "L1", Exporter: "Acme", ExporterCountry: "Peru", Description: "STORAGE", Amount: 50, Quantity: 1},
		{LotID: "L1", Exporter: "Acme", ExporterCountry: "Peru", Description: "GROWER ADVANCES", Amount: 500, IsAdvance: true},
		{LotID: "L1", Exporter: "Acme", ExporterCountry: "Peru", Description: "PP FEE", Amount: 10, IsProducePayCommission: true},
		{LotID: "LX", Exporter: "Acme", ExporterCountry: "Peru", Description: "FREIGHT", Amount: 30},
	}
	stock := []domain.InitialStock{
		{LotID: "L1", Exporter: "Acme", TotalReceived: 100},
	}
	got := ChargeCosts(charges, stock)
	if len(got) != 2 {
		t.Fatalf("rows = %d, want 2 (advance and PP rows excluded): %+v", len(got), got)
	}

	storage := got[0]
	if storage.Description != "STORAGE" || storage.InitialStock != 100 {
		t.Errorf("unexpected first row: %+v", storage)
	}
	if storage.CostPerBox == nil || *storage.CostPerBox != 0.5 {
		t.Errorf("CostPerBox = %v, want 0.5", storage.CostPerBox)
	}

	noStock := got[1]
	if noStock.LotID != "LX" || noStock.CostPerBox != nil {
		t.Errorf("lot without stock should have nil CostPerBox: %+v", noStock)
	}
}

func TestLedgerIdempotence(t *testing.T) {
	receipts := []domain.StockReceipt{
		{LotID: "L1", Exporter: "Acme", Date: date("2024-01-01"), Quantity: 100},
		{LotID: "L2", Exporter: "Beta", Date: date("2024-01-02"), Quantity: 80},
		{LotID: "L3", Exporter: "Acme", Date: date("2024-01-03"), Quantity: 60},
	}
	sales := []domain.SaleEvent{
		{LotID: "L1", Exporter: "Acme", Date: date("2024-01-10"), Quantity: 40},
		{LotID: "L2", Exporter: "Beta", Date: date("2024-01-11"), Quantity: 30},
	}
	first := BuildLedger(receipts, sales)
	second := BuildLedger(receipts, sales)
	if !reflect.DeepEqual(first, second) {
		t.Error("BuildLedger is not deterministic across runs")
	}
	if !reflect.DeepEqual(FIFOSummary(receipts, sales), FIFOSummary(receipts, sales)) {
		t.Error("FIFOSummary is not deterministic across runs")
	}
}
