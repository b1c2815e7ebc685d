package ingest

import (
	"strings"
	"testing"
	"time"
)

func TestCanonicalColumn(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"Lotid", ColLotID},
		{"LOT ID", ColLotID},
		{"lot_id", ColLotID},
		{"Lot Descr", ColLotDescription},
		{"Trx Type", ColTrxType},
		{"Source Idx", ColSourceIdx},
		{"Ref Date", ColRefDate},
		{"Recv Qnt", ColReceivedQty},
		{"Invcic Qnt", ColInvoicedQty},
		{"Sale Amt", ColSaleAmount},
		{"Chg Amt", ColChargeAmount},
		{"Charge Descr", ColChargeDescr},
		{"Vrty Invc", ColVarietyInvc},
		{"variety_invoiced", ColVarietyInvc},
		{"GWR Product Descr", ColProductDescr},
		{"Price Per Case", ColPricePerCase},
		{"Exporter Clean", ColExporter},
		{"Retailer Name", ColRetailerName},
		{"Something Else", "somethingelse"}, // unknown columns carry through
	}
	for _, tt := range tests {
		if got := CanonicalColumn(tt.raw); got != tt.want {
			t.Errorf("CanonicalColumn(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		raw  string
		want *float64
	}{
		{"", nil},
		{"  ", nil},
		{"nan", nil},
		{"NaN", nil},
		{"None", nil},
		{"N/A", nil},
		{"abc", nil},
		{"12.5", fptr(12.5)},
		{"$1,234.50", fptr(1234.5)},
		{" $ 10 ", fptr(10)},
		{"-3.25", fptr(-3.25)},
		{"0", fptr(0)},
	}
	for _, tt := range tests {
		got := ParseNumber(tt.raw)
		switch {
		case got == nil && tt.want != nil:
			t.Errorf("ParseNumber(%q) = nil, want %v", tt.raw, *tt.want)
		case got != nil && tt.want == nil:
			t.Errorf("ParseNumber(%q) = %v, want nil", tt.raw, *got)
		case got != nil && tt.want != nil && *got != *tt.want:
			t.Errorf("ParseNumber(%q) = %v, want %v", tt.raw, *got, *tt.want)
		}
	}
}

func fptr(v float64) *float64 { return &v }

func TestParseDate(t *testing.T) {
	want := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	for _, raw := range []string{"2024-01-15", "01/15/2024", "1/15/2024", "2024/01/15"} {
		if got := ParseDate(raw); !got.Equal(want) {
			t.Errorf("ParseDate(%q) = %v, want %v", raw, got, want)
		}
	}
	for _, raw := range []string{"", "nan", "not a date"} {
		if got := ParseDate(raw); !got.IsZero() {
			t.Errorf("ParseDate(%q) = %v, want zero time", raw, got)
		}
	}
}

func TestParseIntCode(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"1", 1}, {"2.0", 2}, {"", 0}, {"x", 0}, {" 5 ", 5},
	}
	for _, tt := range tests {
		if got := ParseIntCode(tt.raw); got != tt.want {
			t.Errorf("ParseIntCode(%q) = %d, want %d", tt.raw, got, tt.want)
		}
	}
}

func TestReadExtractFrom(t *testing.T) {
	csvData := strings.Join([]string{
		"Lotid,Lot Descr,Trx Type,Source Idx,Ref Date,Recv Qnt,Sale Amt",
		"L1,LOT ONE - QUINTAY,1,1,2024-01-01,100,",
		"L2,LOT TWO,2,0,2024-01-02", // short row gets padded
	}, "\n")

	table, err := ReadExtractFrom(strings.NewReader(csvData), "extract.csv")
	if err != nil {
		t.Fatalf("ReadExtractFrom: %v", err)
	}
	if table.File != "extract.csv" {
		t.Errorf("File = %q", table.File)
	}

	wantCols := []string{
		ColLotID, ColLotDescription, ColTrxType, ColSourceIdx,
		ColRefDate, ColReceivedQty, ColSaleAmount,
	}
	if len(table.Columns) != len(wantCols) {
		t.Fatalf("columns = %v", table.Columns)
	}
	for i, c := range wantCols {
		if table.Columns[i] != c {
			t.Errorf("column %d = %q, want %q", i, table.Columns[i], c)
		}
	}

	if len(table.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(table.Rows))
	}
	if table.Rows[0][ColLotID] != "L1" || table.Rows[0][ColReceivedQty] != "100" {
		t.Errorf("unexpected first row: %v", table.Rows[0])
	}
	if table.Rows[1][ColSaleAmount] != "" {
		t.Errorf("short row not padded: %v", table.Rows[1])
	}
}

func TestMissingColumns(t *testing.T) {
	table := &RawTable{Columns: []string{ColLotID, ColRefDate}}
	missing := table.MissingColumns([]string{ColLotID, ColSaleAmount, ColChargeAmount})
	if len(missing) != 2 {
		t.Fatalf("missing = %v", missing)
	}
	if missing[0] != ColChargeAmount || missing[1] != ColSaleAmount {
		t.Errorf("missing = %v", missing)
	}
}

func TestMissingColumnError(t *testing.T) {
	err := &MissingColumnError{File: "x.csv", Columns: []string{ColSaleAmount}}
	if !strings.Contains(err.Error(), "x.csv") || !strings.Contains(err.Error(), ColSaleAmount) {
		t.Errorf("unhelpful error message: %s", err.Error())
	}
}

func TestReadExtractFromEmpty(t *testing.T) {
	table, err := ReadExtractFrom(strings.NewReader("Lotid,Trx Type\n"), "empty.csv")
	if err != nil {
		t.Fatalf("ReadExtractFrom: %v", err)
	}
	if table.Rows == nil || len(table.Rows) != 0 {
		t.Errorf("want empty non-nil rows, got %v", table.Rows)
	}
}
