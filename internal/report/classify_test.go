package report

import (
	"testing"
	"time"

	"github.com/jpfamus/famus-report-analysis/backend-go/internal/domain"
	"github.com/jpfamus/famus-report-analysis/backend-go/internal/ingest"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func fullColumns() []string {
	return append([]string(nil), classifierColumns...)
}

func TestClassifyPredicates(t *testing.T) {
	rows := []domain.TransactionRow{
		{ // receipt
			LotID: "L1", Exporter: "Acme", SourceIdx: domain.SourceIdxInitialStock,
			ReceivedQty: 100, RefDate: date("2024-01-01"),
		},
		{ // sale
			LotID: "L1", Exporter: "Acme", TrxType: domain.TrxTypeMovement,
			SourceIdx: domain.SourceIdxRetailSale, InvoicedQty: 60, SaleAmount: 600,
			RetailerName: "Fresh Mart", RefDate: date("2024-01-10"),
		},
		{ // charge
			LotID: "L1", Exporter: "Acme", TrxType: domain.TrxTypeCharge,
			ChargeAmount: 30, ChargeDescr: "COMMISSION",
		},
		{ // sentinel receipt, excluded
			LotID: "L1", Exporter: domain.ExporterAllSentinel,
			SourceIdx: domain.SourceIdxInitialStock, ReceivedQty: 100,
		},
		{ // sentinel sale, excluded
			LotID: "L1", Exporter: domain.ExporterAllSentinel, TrxType: domain.TrxTypeMovement,
			SourceIdx: domain.SourceIdxRetailSale, InvoicedQty: 10, RetailerName: "Fresh Mart",
		},
		{ // sentinel charge, kept but flagged
			LotID: "L1", Exporter: domain.ExporterAllSentinel, TrxType: domain.TrxTypeCharge,
			ChargeAmount: 5, ChargeDescr: "STORAGE",
		},
		{ // sale without retailer, excluded
			LotID: "L1", Exporter: "Acme", TrxType: domain.TrxTypeMovement,
			SourceIdx: domain.SourceIdxRetailSale, InvoicedQty: 10,
			RetailerName: domain.RetailerNone,
		},
		{ // zero-amount charge, excluded
			LotID: "L1", Exporter: "Acme", TrxType: domain.TrxTypeCharge, ChargeAmount: 0,
		},
		{}, // matches nothing
	}

	table := &ingest.RawTable{File: "extract.csv", Columns: fullColumns()}
	got := Classify(table, rows)

	if len(got.Receipts) != 1 {
		t.Fatalf("receipts = %d, want 1", len(got.Receipts))
	}
	if got.Receipts[0].Quantity != 100 || got.Receipts[0].Exporter != "Acme" {
		t.Errorf("unexpected receipt: %+v", got.Receipts[0])
	}

	if len(got.Sales) != 1 {
		t.Fatalf("sales = %d, want 1", len(got.Sales))
	}
	if got.Sales[0].Amount != 600 || got.Sales[0].Retailer != "Fresh Mart" {
		t.Errorf("unexpected sale: %+v", got.Sales[0])
	}

	if len(got.Charges) != 2 {
		t.Fatalf("charges = %d, want 2 (sentinel charge kept)", len(got.Charges))
	}
	var sentinel *domain.ChargeEvent
	for i := range got.Charges {
		if got.Charges[i].Exporter == domain.ExporterAllSentinel {
			sentinel = &got.Charges[i]
		}
	}
	if sentinel == nil {
		t.Fatal("sentinel charge was dropped, want kept with AllExporters flag")
	}
	if !sentinel.AllExporters {
		t.Error("sentinel charge not flagged AllExporters")
	}
}

func TestClassifyMissingColumnReturnsEmpty(t *testing.T) {
	rows := []domain.TransactionRow{
		{LotID: "L1", Exporter: "Acme", SourceIdx: domain.SourceIdxInitialStock, ReceivedQty: 1},
	}
	table := &ingest.RawTable{File: "partial.csv", Columns: []string{ingest.ColLotID}}
	got := Classify(table, rows)
	if got.Receipts == nil || got.Sales == nil || got.Charges == nil {
		t.Fatal("subsets must be non-nil")
	}
	if len(got.Receipts)+len(got.Sales)+len(got.Charges) != 0 {
		t.Errorf("want empty subsets, got %+v", got)
	}
}

func TestClassifyEmptyInput(t *testing.T) {
	got := Classify(&ingest.RawTable{File: "empty.csv", Columns: fullColumns()}, nil)
	if got.Receipts == nil || len(got.Receipts) != 0 {
		t.Errorf("receipts: want empty non-nil, got %v", got.Receipts)
	}
	if got.Sales == nil || len(got.Sales) != 0 {
		t.Errorf("sales: want empty non-nil, got %v", got.Sales)
	}
	if got.Charges == nil || len(got.Charges) != 0 {
		t.Errorf("charges: want empty non-nil, got %v", got.Charges)
	}
}
