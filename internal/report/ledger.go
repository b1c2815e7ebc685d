package report

import (
	"sort"
	"time"

	"github.com/jpfamus/famus-report-analysis/backend-go/internal/domain"
)

// BuildLedger turns classified receipts and sales into the virtual inventory
// ledger: one signed movement per event, chronologically ordered within each
// (exporter, lot) partition with a running balance.
//
// Sign convention: entries are positive, sales negative. Same-day ties order
// Entry before Sale so a same-day receipt is reflected in the balance before
// the sale subtracts from it.
func BuildLedger(receipts []domain.StockReceipt, sales []domain.SaleEvent) []domain.LedgerEntry {
	ledger := make([]domain.LedgerEntry, 0, len(receipts)+len(sales))
	for _, r := range receipts {
		ledger = append(ledger, domain.LedgerEntry{
			Exporter:       r.Exporter,
			LotID:          r.LotID,
			Date:           r.Date,
			Movement:       domain.MovementEntry,
			Quantity:       r.Quantity,
			Variety:        r.Variety,
			PackagingStyle: r.PackagingStyle,
		})
	}
	for _, s := range sales {
		ledger = append(ledger, domain.LedgerEntry{
			Exporter:       s.Exporter,
			LotID:          s.LotID,
			Date:           s.Date,
			Movement:       domain.MovementSale,
			Quantity:       -s.Quantity,
			Variety:        s.Variety,
			PackagingStyle: s.PackagingStyle,
		})
	}

	sort.SliceStable(ledger, func(i, j int) bool {
		a, b := ledger[i], ledger[j]
		if a.Exporter != b.Exporter {
			return a.Exporter < b.Exporter
		}
		if a.LotID != b.LotID {
			return a.LotID < b.LotID
		}
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		return a.Movement == domain.MovementEntry && b.Movement == domain.MovementSale
	})

	for start := 0; start < len(ledger); {
		end := start
		for end < len(ledger) &&
			ledger[end].Exporter == ledger[start].Exporter &&
			ledger[end].LotID == ledger[start].LotID {
			end++
		}
		finalizePartition(ledger[start:end])
		start = end
	}
	return ledger
}

// finalizePartition computes running balance, days-in-inventory and the
// descriptive-attribute fills for one (exporter, lot) slice of the ledger.
func finalizePartition(part []domain.LedgerEntry) {
	var firstEntry time.Time
	haveEntry := false
	for _, e := range part {
		if e.Movement == domain.MovementEntry && !e.Date.IsZero() {
			if !haveEntry || e.Date.Before(firstEntry) {
				firstEntry = e.Date
				haveEntry = true
			}
		}
	}

	balance := 0.0
	for i := range part {
		balance += part[i].Quantity
		part[i].Balance = balance
		// A lot with sales but no recorded entry has no aging baseline.
		if haveEntry && !part[i].Date.IsZero() {
			days := int(part[i].Date.Sub(firstEntry).Hours() / 24)
			part[i].DaysInInventory = &days
		}
	}

	fillForwardBackward(part,
		func(e *domain.LedgerEntry) *string { return &e.Variety })
	fillForwardBackward(part,
		func(e *domain.LedgerEntry) *string { return &e.PackagingStyle })
}

// fillForwardBackward fills blank/Unknown attribute values from the nearest
// populated neighbor, forward pass first.
func fillForwardBackward(part []domain.LedgerEntry, field func(*domain.LedgerEntry) *string) {
	known := func(v string) bool {
		return v != "" && v != "Unknown" && v != "Unknown Variety"
	}
	last := ""
	for i := range part {
		f := field(&part[i])
		if known(*f) {
			last = *f
		} else if last != "" {
			*f = last
		}
	}
	last = ""
	for i := len(part) - 1; i >= 0; i-- {
		f := field(&part[i])
		if known(*f) {
			last = *f
		} else if last != "" {
			*f = last
		}
	}
}

// CurrentState reduces the ledger to its chronologically last row per
// (exporter, lot): the authoritative current-inventory figure.
func CurrentState(ledger []domain.LedgerEntry) []domain.LedgerState {
	out := make([]domain.LedgerState, 0)
	for i, e := range ledger {
		last := i == len(ledger)-1 ||
			ledger[i+1].Exporter != e.Exporter ||
			ledger[i+1].LotID != e.LotID
		if !last {
			continue
		}
		out = append(out, domain.LedgerState{
			Exporter:        e.Exporter,
			LotID:           e.LotID,
			Balance:         e.Balance,
			Date:            e.Date,
			DaysInInventory: e.DaysInInventory,
			Variety:         e.Variety,
			PackagingStyle:  e.PackagingStyle,
		})
	}
	return out
}

// FIFOSummary is the weighted-date inventory view: per (exporter, lot), the
// representative entry/sale dates are quantity-weighted averages over the
// events, answering "typical aging" rather than the ledger's per-transaction
// aging. Both views are retained on purpose.
func FIFOSummary(receipts []domain.StockReceipt, sales []domain.SaleEvent) []domain.FIFOLotSummary {
	type acc struct {
		stock, sold           float64
		entryWeight, entrySum float64 // weight = qty, sum = qty * unix seconds
		saleWeight, saleSum   float64
	}
	groups := make(map[lotKey]*acc)
	grab := func(exporter, lotID string) *acc {
		k := lotKey{Exporter: exporter, LotID: lotID}
		g, ok := groups[k]
		if !ok {
			g = &acc{}
			groups[k] = g
		}
		return g
	}

	for _, r := range receipts {
		g := grab(r.Exporter, r.LotID)
		g.stock += r.Quantity
		if !r.Date.IsZero() && r.Quantity > 0 {
			g.entryWeight += r.Quantity
			g.entrySum += r.Quantity * float64(r.Date.Unix())
		}
	}
	for _, s := range sales {
		g := grab(s.Exporter, s.LotID)
		g.sold += s.Quantity
		if !s.Date.IsZero() && s.Quantity > 0 {
			g.saleWeight += s.Quantity
			g.saleSum += s.Quantity * float64(s.Date.Unix())
		}
	}

	keys := make([]lotKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Exporter != keys[j].Exporter {
			return keys[i].Exporter < keys[j].Exporter
		}
		return keys[i].LotID < keys[j].LotID
	})

	out := make([]domain.FIFOLotSummary, 0, len(keys))
	for _, k := range keys {
		g := groups[k]
		row := domain.FIFOLotSummary{
			Exporter:         k.Exporter,
			LotID:            k.LotID,
			InitialStock:     g.stock,
			SoldQuantity:     g.sold,
			CurrentInventory: g.stock - g.sold,
		}
		if g.entryWeight > 0 {
			t := time.Unix(int64(g.entrySum/g.entryWeight), 0).UTC()
			row.WeightedEntry = &t
		}
		if g.saleWeight > 0 {
			t := time.Unix(int64(g.saleSum/g.saleWeight), 0).UTC()
			row.WeightedSale = &t
		}
		if row.WeightedEntry != nil && row.WeightedSale != nil {
			days := int(row.WeightedSale.Sub(*row.WeightedEntry).Hours() / 24)
			row.WeightedDays = &days
		}
		out = append(out, row)
	}
	return out
}

// ExporterInventorySummary is the sum-based sanity view per exporter:
// calculated inventory (receipts minus sales) next to the ledger's summed
// current balances. Reconciliation compares the two.
func ExporterInventorySummary(stock []domain.InitialStock, sales []domain.SalesTotal, states []domain.LedgerState) []domain.ExporterInventory {
	groups := make(map[string]*domain.ExporterInventory)
	grab := func(exporter string) *domain.ExporterInventory {
		g, ok := groups[exporter]
		if !ok {
			g = &domain.ExporterInventory{Exporter: exporter}
			groups[exporter] = g
		}
		return g
	}

	for _, s := range stock {
		grab(s.Exporter).InitialStock += s.TotalReceived
	}
	for _, s := range sales {
		grab(s.Exporter).SoldQuantity += s.TotalSold
	}
	for _, s := range states {
		grab(s.Exporter).CurrentInventory += s.Balance
	}

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]domain.ExporterInventory, 0, len(names))
	for _, name := range names {
		g := groups[name]
		g.CalculatedInventory = g.InitialStock - g.SoldQuantity
		out = append(out, *g)
	}
	return out
}

// ChargeCosts joins per-category charge totals with each lot's initial stock
// to express charges as cost per box. Advance and ProducePay-commission rows
// are excluded from this view; CostPerBox is nil for lots with no recorded
// stock.
func ChargeCosts(charges []domain.ChargeEvent, stock []domain.InitialStock) []domain.ChargeCost {
	stockByLot := make(map[lotKey]float64, len(stock))
	for _, s := range stock {
		stockByLot[lotKey{Exporter: s.Exporter, LotID: s.LotID}] = s.TotalReceived
	}

	type costKey struct {
		Exporter    string
		LotID       string
		Description string
	}
	groups := make(map[costKey]*domain.ChargeCost)
	for _, c := range charges {
		if c.IsAdvance || c.IsProducePayCommission {
			continue
		}
		k := costKey{Exporter: c.Exporter, LotID: c.LotID, Description: c.Description}
		g, ok := groups[k]
		if !ok {
			g = &domain.ChargeCost{
				LotID:           c.LotID,
				Exporter:        c.Exporter,
				ExporterCountry: c.ExporterCountry,
				Description:     c.Description,
			}
			groups[k] = g
		}
		g.Amount += c.Amount
		g.Quantity += c.Quantity
	}

	keys := make([]costKey, 0, len(groups))
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

	out := make([]domain.ChargeCost, 0, len(keys))
	for _, k := range keys {
		g := groups[k]
		if received, ok := stockByLot[lotKey{Exporter: k.Exporter, LotID: k.LotID}]; ok && received > 0 {
			g.InitialStock = received
			v := g.Amount / received
			g.CostPerBox = &v
		}
		out = append(out, *g)
	}
	return out
}
