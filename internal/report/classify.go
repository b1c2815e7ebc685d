package report

import (
	"github.com/jpfamus/famus-report-analysis/backend-go/internal/domain"
	"github.com/jpfamus/famus-report-analysis/backend-go/internal/ingest"
	"github.com/rs/zerolog/log"
)

// classifierColumns are the source columns classification reads. The
// engineered columns (exporter, retailer_name) always exist once feature
// engineering has run, so only raw columns are checked here.
var classifierColumns = []string{
	ingest.ColLotID,
	ingest.ColSourceIdx,
	ingest.ColTrxType,
	ingest.ColReceivedQty,
	ingest.ColInvoicedQty,
	ingest.ColChargeAmount,
}

// Classified holds the three disjoint row subsets the aggregators consume.
// All slices are non-nil, empty input included.
type Classified struct {
	Receipts []domain.StockReceipt
	Sales    []domain.SaleEvent
	Charges  []domain.ChargeEvent
}

func emptyClassified() Classified {
	return Classified{
		Receipts: []domain.StockReceipt{},
		Sales:    []domain.SaleEvent{},
		Charges:  []domain.ChargeEvent{},
	}
}

// Classify partitions cleaned transaction rows into Receipts, Sales and
// Charges. A row matching none of the predicates is dropped. The "Todos"
// all-exporters sentinel is excluded from Receipts and Sales; charge rows
// keep it but are flagged so reconciliation can account for them.
//
// A missing source column yields an empty result and a warning, never an
// error: downstream treats an empty subset as "no data".
func Classify(table *ingest.RawTable, rows []domain.TransactionRow) Classified {
	out := emptyClassified()

	if table != nil {
		if missing := table.MissingColumns(classifierColumns); len(missing) > 0 {
			log.Warn().
				Str("file", table.File).
				Strs("missing_columns", missing).
				Msg("classifier input lacks required columns, returning empty subsets")
			return out
		}
	}

	for _, row := range rows {
		switch {
		case isReceipt(row):
			out.Receipts = append(out.Receipts, domain.StockReceipt{
				LotID:          row.LotID,
				Exporter:       row.Exporter,
				Date:           row.RefDate,
				Quantity:       row.ReceivedQty,
				Variety:        row.Variety,
				PackagingStyle: row.PackagingStyle,
			})
		case isSale(row):
			out.Sales = append(out.Sales, domain.SaleEvent{
				LotID:          row.LotID,
				Exporter:       row.Exporter,
				Date:           row.RefDate,
				Quantity:       row.InvoicedQty,
				Amount:         row.SaleAmount,
				Retailer:       row.RetailerName,
				Variety:        row.Variety,
				PackagingStyle: row.PackagingStyle,
			})
		case isCharge(row):
			out.Charges = append(out.Charges, domain.ChargeEvent{
				LotID:                  row.LotID,
				Exporter:               row.Exporter,
				ExporterCountry:        row.ExporterCountry,
				Description:            row.ChargeDescr,
				Amount:                 row.ChargeAmount,
				Quantity:               row.ChargeQty,
				IsAdvance:              row.IsAdvance,
				IsProducePayCommission: row.IsProducePayCommission,
				AllExporters:           row.Exporter == domain.ExporterAllSentinel,
			})
		}
	}
	return out
}

func isReceipt(row domain.TransactionRow) bool {
	return row.SourceIdx == domain.SourceIdxInitialStock &&
		row.ReceivedQty > 0 &&
		row.Exporter != domain.ExporterAllSentinel
}

func isSale(row domain.TransactionRow) bool {
	return row.TrxType == domain.TrxTypeMovement &&
		row.SourceIdx == domain.SourceIdxRetailSale &&
		row.InvoicedQty > 0 &&
		row.RetailerName != domain.RetailerNone &&
		row.Exporter != domain.ExporterAllSentinel
}

func isCharge(row domain.TransactionRow) bool {
	return row.TrxType == domain.TrxTypeCharge && row.ChargeAmount > 0
}
