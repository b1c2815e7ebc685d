package features

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/jpfamus/famus-report-analysis/backend-go/internal/domain"
	"github.com/jpfamus/famus-report-analysis/backend-go/internal/ingest"
	"github.com/rs/zerolog/log"
)

// Fallback values for rows no mapping table can resolve.
const (
	UnknownExporter = "Unknown Exporter"
	UnknownCountry  = "Unknown Country"
	UnknownVariety  = "Unknown Variety"
	UnknownRetailer = "Unknown Retailer"

	// RetailerExporterInfo marks sale descriptions that turned out to be
	// product/exporter text rather than a retailer.
	RetailerExporterInfo = "N/A (Likely Product/Exporter Info)"
)

// requiredRawColumns are the canonical columns a raw extract must carry.
// Their absence is unrecoverable (see ingest.MissingColumnError).
var requiredRawColumns = []string{
	ingest.ColLotID,
	ingest.ColLotDescription,
	ingest.ColRefDate,
	ingest.ColDescription,
	ingest.ColTrxType,
	ingest.ColSourceIdx,
	ingest.ColReceivedQty,
	ingest.ColReceiptQty,
	ingest.ColInvoicedQty,
	ingest.ColSaleAmount,
	ingest.ColChargeAmount,
	ingest.ColChargeQty,
	ingest.ColChargeDescr,
	ingest.ColVarietyInvc,
	ingest.ColProductDescr,
	ingest.ColPricePerCase,
}

// Engineer derives the cleaned/canonical columns from a raw extract. All
// lookups are table-driven from the Config captured at construction.
type Engineer struct {
	cfg Config

	// exporter matching, precompiled
	exporterNames   []string // deterministic iteration order
	exactVariants   map[string]string
	boundaryMatch   map[string][]*regexp.Regexp
	allExporterTags map[string]bool

	knownVarieties map[string]bool

	detailLabels   []string
	detailPatterns map[string]*regexp.Regexp
	styleNames     []string

	ppRegex *regexp.Regexp
}

// NewEngineer compiles the mapping tables. It fails only on an invalid
// packaging regex, which is a configuration bug, not a data condition.
func NewEngineer(cfg Config) (*Engineer, error) {
	e := &Engineer{
		cfg:             cfg,
		exactVariants:   make(map[string]string),
		boundaryMatch:   make(map[string][]*regexp.Regexp),
		allExporterTags: make(map[string]bool),
		knownVarieties:  make(map[string]bool),
		detailPatterns:  make(map[string]*regexp.Regexp),
		ppRegex:         regexp.MustCompile(`\bPP\b`),
	}

	for name := range cfg.ExporterMappings {
		e.exporterNames = append(e.exporterNames, name)
	}
	sort.Strings(e.exporterNames)

	for _, name := range e.exporterNames {
		e.allExporterTags[strings.ToUpper(name)] = true
		for _, variant := range cfg.ExporterMappings[name] {
			upper := strings.ToUpper(variant)
			e.exactVariants[upper] = name
			e.allExporterTags[upper] = true
			re, err := regexp.Compile(`\b` + regexp.QuoteMeta(upper) + `\b`)
			if err != nil {
				return nil, fmt.Errorf("compile exporter pattern for %q: %w", variant, err)
			}
			e.boundaryMatch[name] = append(e.boundaryMatch[name], re)
		}
	}

	for _, v := range cfg.KnownVarieties {
		e.knownVarieties[strings.ToUpper(v)] = true
	}

	for label := range cfg.PackagingDetailPatterns {
		e.detailLabels = append(e.detailLabels, label)
	}
	sort.Strings(e.detailLabels)
	for _, label := range e.detailLabels {
		re, err := regexp.Compile(cfg.PackagingDetailPatterns[label])
		if err != nil {
			return nil, fmt.Errorf("compile packaging pattern %q: %w", label, err)
		}
		e.detailPatterns[label] = re
	}

	for style := range cfg.PackagingStyleKeywords {
		e.styleNames = append(e.styleNames, style)
	}
	sort.Strings(e.styleNames)

	return e, nil
}

// Process turns a raw extract into cleaned transaction rows with every
// engineered column populated. A missing required raw column is the one
// fatal condition here.
func (e *Engineer) Process(table *ingest.RawTable, seasons []domain.Season) ([]domain.TransactionRow, error) {
	if missing := table.MissingColumns(requiredRawColumns); len(missing) > 0 {
		return nil, &ingest.MissingColumnError{File: table.File, Columns: missing}
	}

	rows := make([]domain.TransactionRow, 0, len(table.Rows))
	for _, rec := range table.Rows {
		row := domain.TransactionRow{
			LotID:           rec[ingest.ColLotID],
			LotDescription:  rec[ingest.ColLotDescription],
			TrxType:         ingest.ParseIntCode(rec[ingest.ColTrxType]),
			SourceIdx:       ingest.ParseIntCode(rec[ingest.ColSourceIdx]),
			RefDate:         ingest.ParseDate(rec[ingest.ColRefDate]),
			Description:     rec[ingest.ColDescription],
			ReceivedQty:     ingest.NumberOrZero(rec[ingest.ColReceivedQty]),
			InvoicedQty:     ingest.NumberOrZero(rec[ingest.ColInvoicedQty]),
			SaleAmount:      ingest.NumberOrZero(rec[ingest.ColSaleAmount]),
			ChargeAmount:    ingest.NumberOrZero(rec[ingest.ColChargeAmount]),
			ChargeQty:       ingest.NumberOrZero(rec[ingest.ColChargeQty]),
			ChargeDescr:     rec[ingest.ColChargeDescr],
			VarietyInvc:     rec[ingest.ColVarietyInvc],
			GradeInvc:       rec[ingest.ColGradeInvc],
			ProductDescr:    rec[ingest.ColProductDescr],
			PricePerCaseRaw: rec[ingest.ColPricePerCase],
		}

		row.Exporter = e.CleanExporter(row.LotDescription, row.LotID)
		row.ExporterCountry = e.Country(row.Exporter)
		row.Variety = e.Variety(row.VarietyInvc, row.Description)
		row.PackagingStyle, row.PackagingDetail = e.Packaging(row.ProductDescr, row.PricePerCaseRaw)
		row.RetailerName = e.Retailer(row.Description, row.TrxType, row.InvoicedQty)
		row.Season = domain.SeasonFor(row.RefDate, seasons)
		row.PriceFourStar = ingest.ParseNumber(row.PricePerCaseRaw)

		if row.InvoicedQty != 0 {
			v := row.SaleAmount / row.InvoicedQty
			row.PricePerCaseInvc = &v
		}
		receiptQty := ingest.NumberOrZero(rec[ingest.ColReceiptQty])
		if receiptQty != 0 {
			v := row.SaleAmount / receiptQty
			row.PricePerCaseRcpt = &v
		}

		chargeUpper := strings.ToUpper(row.ChargeDescr)
		descrUpper := strings.ToUpper(row.Description)
		row.IsAdvance = strings.Contains(chargeUpper, "ADVANCE") || strings.Contains(chargeUpper, "ANTICIPO")
		row.IsProducePayCommission = row.ChargeAmount < 0 ||
			(strings.Contains(chargeUpper, "COMMISSION") && strings.Contains(descrUpper, "LIQUIDATION")) ||
			e.ppRegex.MatchString(descrUpper)
		row.IsRetailerCommission = row.TrxType == domain.TrxTypeCharge &&
			strings.Contains(chargeUpper, "COMMISSION") &&
			!row.IsProducePayCommission && !row.IsAdvance

		rows = append(rows, row)
	}

	log.Debug().Str("file", table.File).Int("rows", len(rows)).Msg("feature engineering complete")
	return rows, nil
}

// CleanExporter resolves an exporter name from the lot description with
// explicit precedence: lot-id override, exact variant match, trailing-tag
// match, then word-boundary / long-substring match, then UnknownExporter.
func (e *Engineer) CleanExporter(lotDescr, lotID string) string {
	if name, ok := e.cfg.LotExporterOverrides[lotID]; ok {
		return name
	}
	upper := strings.ToUpper(strings.TrimSpace(lotDescr))
	if upper == "" {
		return UnknownExporter
	}
	// The all-exporters sentinel must survive cleaning so classifiers can
	// exclude it.
	if upper == strings.ToUpper(domain.ExporterAllSentinel) {
		return domain.ExporterAllSentinel
	}

	if name, ok := e.exactVariants[upper]; ok {
		return name
	}

	// Lot descriptions often end with "<container> - <exporter tag>".
	if parts := strings.Split(upper, " - "); len(parts) > 1 {
		tag := strings.TrimSpace(parts[len(parts)-1])
		if _, ok := e.cfg.ExporterMappings[tag]; ok {
			return tag
		}
		if name, ok := e.exactVariants[tag]; ok {
			return name
		}
	}

	for _, name := range e.exporterNames {
		for i, re := range e.boundaryMatch[name] {
			if re.MatchString(upper) {
				return name
			}
			variant := strings.ToUpper(e.cfg.ExporterMappings[name][i])
			if len(variant) > 3 && strings.Contains(upper, variant) {
				return name
			}
		}
	}
	return UnknownExporter
}

// Country maps a cleaned exporter name to its country.
func (e *Engineer) Country(exporter string) string {
	if c, ok := e.cfg.ExporterCountries[exporter]; ok {
		return c
	}
	return UnknownCountry
}

// Variety extracts the normalized grape variety from the invoiced variety
// field, falling back to the leading segment of the description.
func (e *Engineer) Variety(varietyInvc, descr string) string {
	if v := strings.ToUpper(strings.TrimSpace(varietyInvc)); v != "" {
		normalized := v
		if mapped, ok := e.cfg.VarietyNormalization[v]; ok {
			normalized = mapped
		}
		if e.knownVarieties[normalized] {
			return normalized
		}
	}

	d := strings.ToUpper(strings.TrimSpace(descr))
	if d == "" {
		return UnknownVariety
	}
	parts := strings.SplitN(d, " - ", 2)
	candidate := strings.TrimSpace(parts[0])
	if mapped, ok := e.cfg.VarietyNormalization[candidate]; ok {
		candidate = mapped
	}
	if e.knownVarieties[candidate] {
		if len(parts) > 1 {
			if e.allExporterTags[strings.TrimSpace(parts[1])] {
				return candidate
			}
		}
		if !e.allExporterTags[candidate] {
			return candidate
		}
	}
	return UnknownVariety
}

// Packaging extracts (style, detail) from the product description. Rows
// without a product description or list price carry no packaging info.
func (e *Engineer) Packaging(productDescr, priceRaw string) (string, string) {
	if strings.TrimSpace(productDescr) == "" || strings.TrimSpace(priceRaw) == "" {
		return "Unknown", "Unknown"
	}
	upper := strings.ToUpper(productDescr)

	for _, label := range e.detailLabels {
		if e.detailPatterns[label].MatchString(upper) {
			style := "Unknown"
			labelUpper := strings.ToUpper(label)
			if strings.Contains(labelUpper, "CLAM") {
				style = "Clam"
			} else if strings.Contains(labelUpper, "BAG") || strings.Contains(labelUpper, "POUCH") {
				style = "Bag"
			}
			return style, label
		}
	}

	for _, style := range e.styleNames {
		for _, keyword := range e.cfg.PackagingStyleKeywords[style] {
			if strings.Contains(upper, keyword) {
				return style, style + " (Generic)"
			}
		}
	}
	return "Unknown", "Unknown"
}

// Retailer extracts the retailer name from a sale row's description.
// Non-sale rows get the RetailerNone sentinel; descriptions that are really
// exporter/product tags get RetailerExporterInfo.
func (e *Engineer) Retailer(descr string, trxType int, invoicedQty float64) string {
	candidate := strings.TrimSpace(descr)
	if candidate == "" {
		return domain.RetailerNone
	}
	if trxType != domain.TrxTypeMovement || invoicedQty == 0 {
		return domain.RetailerNone
	}

	upper := strings.ToUpper(candidate)
	if idx := strings.Index(upper, " - "); idx >= 0 {
		if e.allExporterTags[strings.TrimSpace(upper[idx+len(" - "):])] {
			return RetailerExporterInfo
		}
	}
	if e.allExporterTags[upper] {
		return RetailerExporterInfo
	}
	return candidate
}
