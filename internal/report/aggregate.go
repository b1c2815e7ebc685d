package report

import (
	"sort"

	"github.com/jpfamus/famus-report-analysis/backend-go/internal/domain"
)

type lotKey struct {
	Exporter string
	LotID    string
}

type chargeKey struct {
	Exporter    string
	LotID       string
	Description string
}

// InitialStockByLot groups receipts by (lot, exporter), summing quantities
// and keeping the earliest entry date. Duplicate receipt rows for a group
// are legal and are summed, not deduplicated.
func InitialStockByLot(receipts []domain.StockReceipt) []domain.InitialStock {
	groups := make(map[lotKey]*domain.InitialStock)
	for _, r := range receipts {
		k := lotKey{Exporter: r.Exporter, LotID: r.LotID}
		g, ok := groups[k]
		if !ok {
			g = &domain.InitialStock{LotID: r.LotID, Exporter: r.Exporter, EarliestEntry: r.Date}
			groups[k] = g
		}
		g.TotalReceived += r.Quantity
		if !r.Date.IsZero() && (g.EarliestEntry.IsZero() || r.Date.Before(g.EarliestEntry)) {
			g.EarliestEntry = r.Date
		}
	}
	out := make([]domain.InitialStock, 0, len(groups))
	for _, g := range groups {
		out = append(out, *g)
	}
	sortByLot(out, func(s domain.InitialStock) lotKey { return lotKey{s.Exporter, s.LotID} })
	return out
}

// SalesByLot groups sales by (lot, exporter), summing quantity and amount.
func SalesByLot(sales []domain.SaleEvent) []domain.SalesTotal {
	groups := make(map[lotKey]*domain.SalesTotal)
	for _, s := range sales {
		k := lotKey{Exporter: s.Exporter, LotID: s.LotID}
		g, ok := groups[k]
		if !ok {
			g = &domain.SalesTotal{LotID: s.LotID, Exporter: s.Exporter}
			groups[k] = g
		}
		g.TotalSold += s.Quantity
		g.TotalAmount += s.Amount
	}
	out := make([]domain.SalesTotal, 0, len(groups))
	for _, g := range groups {
		out = append(out, *g)
	}
	sortByLot(out, func(s domain.SalesTotal) lotKey { return lotKey{s.Exporter, s.LotID} })
	return out
}

// ChargesByLotAndCategory groups charges by (lot, exporter, description).
// Descriptions are free text and grouped verbatim; near-duplicate spellings
// are a data-quality finding for the QC layer, not merged here.
func ChargesByLotAndCategory(charges []domain.ChargeEvent) []domain.ChargeTotal {
	groups := make(map[chargeKey]*domain.ChargeTotal)
	for _, c := range charges {
		k := chargeKey{Exporter: c.Exporter, LotID: c.LotID, Description: c.Description}
		g, ok := groups[k]
		if !ok {
			g = &domain.ChargeTotal{
				LotID:       c.LotID,
				Exporter:    c.Exporter,
				Description: c.Description,
			}
			groups[k] = g
		}
		g.TotalAmount += c.Amount
		g.TotalQuantity += c.Quantity
		g.AllExporters = g.AllExporters || c.AllExporters
	}

	keys := make([]chargeKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.Exporter != b.Exporter {
			return a.Exporter < b.Exporter
		}
		if a.LotID != b.LotID {
			return a.LotID < b.LotID
		}
		return a.Description < b.Description
	})

	out := make([]domain.ChargeTotal, 0, len(keys))
	for _, k := range keys {
		out = append(out, *groups[k])
	}
	return out
}

// sortByLot orders a slice by (exporter, lot) so grouped output is
// deterministic run to run.
func sortByLot[T any](items []T, key func(T) lotKey) {
	sort.Slice(items, func(i, j int) bool {
		a, b := key(items[i]), key(items[j])
		if a.Exporter != b.Exporter {
			return a.Exporter < b.Exporter
		}
		return a.LotID < b.LotID
	})
}
