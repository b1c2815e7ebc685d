package ingest

import "strings"

// Canonical column names. Every raw header spelling is mapped onto this
// vocabulary before any report component runs; components never see raw
// Famus field names.
const (
	ColLotID                = "lot_id"
	ColLotDescription       = "lot_description"
	ColTrxType              = "transaction_type"
	ColSourceIdx            = "source_index"
	ColRefDate              = "reference_date"
	ColReportDate           = "report_date"
	ColDescription          = "description"
	ColReceivedQty          = "received_quantity"
	ColReceiptQty           = "receipt_quantity"
	ColIssuedQty            = "issued_quantity"
	ColInvoicedQty          = "invoiced_quantity"
	ColSaleAmount           = "sale_amount"
	ColChargeAmount         = "charge_amount"
	ColChargeQty            = "charge_quantity"
	ColChargeDescr          = "charge_description"
	ColVarietyInvc          = "variety_invoiced"
	ColGradeInvc            = "grade_invoiced"
	ColProductDescr         = "product_description"
	ColPricePerCase         = "price_per_case"
	ColExporter             = "exporter"
	ColExporterCountry      = "exporter_country"
	ColVariety              = "variety"
	ColPackagingStyle       = "packaging_style"
	ColPackagingDetail      = "packaging_detail"
	ColRetailerName         = "retailer_name"
	ColSeason               = "season"
	ColIsAdvance            = "is_advance"
	ColIsProducePay         = "is_produce_pay_commission"
	ColIsRetailerCommission = "is_retailer_commission"
)

// columnSynonyms maps normalized raw header spellings (snake_case, camelCase,
// Famus abbreviations) onto the canonical vocabulary. Keys are produced by
// normalizeHeaderKey, so spacing, underscores and case never matter.
var columnSynonyms = map[string]string{
	"lotid":                  ColLotID,
	"lotdescr":               ColLotDescription,
	"lotdescription":         ColLotDescription,
	"trxtype":                ColTrxType,
	"transactiontype":        ColTrxType,
	"sourceidx":              ColSourceIdx,
	"sourceindex":            ColSourceIdx,
	"refdate":                ColRefDate,
	"referencedate":          ColRefDate,
	"reportdate":             ColReportDate,
	"descr":                  ColDescription,
	"description":            ColDescription,
	"recvqnt":                ColReceivedQty,
	"receivedquantity":       ColReceivedQty,
	"rcptqnt":                ColReceiptQty,
	"receiptquantity":        ColReceiptQty,
	"issueqnt":               ColIssuedQty,
	"issuedquantity":         ColIssuedQty,
	"invcicqnt":              ColInvoicedQty,
	"invcqnt":                ColInvoicedQty,
	"invoicedquantity":       ColInvoicedQty,
	"saleamt":                ColSaleAmount,
	"saleamount":             ColSaleAmount,
	"chgamt":                 ColChargeAmount,
	"chargeamount":           ColChargeAmount,
	"chgqnt":                 ColChargeQty,
	"chargequantity":         ColChargeQty,
	"chargedescr":            ColChargeDescr,
	"chargedescription":      ColChargeDescr,
	"vrtyinvc":               ColVarietyInvc,
	"varietyinvoiced":        ColVarietyInvc,
	"gradeinvc":              ColGradeInvc,
	"gradeinvoiced":          ColGradeInvc,
	"gwrproductdescr":        ColProductDescr,
	"productdescription":     ColProductDescr,
	"pricepercase":           ColPricePerCase,
	"exporter":               ColExporter,
	"exporterclean":          ColExporter,
	"exportercountry":        ColExporterCountry,
	"variety":                ColVariety,
	"packagingstyle":         ColPackagingStyle,
	"packagingdetail":        ColPackagingDetail,
	"retailername":           ColRetailerName,
	"season":                 ColSeason,
	"isadvance":              ColIsAdvance,
	"isproducepaycommission": ColIsProducePay,
	"isretailercommission":   ColIsRetailerCommission,
}

var headerKeySanitizer = strings.NewReplacer(" ", "", "_", "", ".", "", "-", "", "/", "")

func normalizeHeaderKey(name string) string {
	return headerKeySanitizer.Replace(strings.TrimSpace(strings.ToLower(name)))
}

// CanonicalColumn maps a raw header spelling onto the canonical vocabulary.
// Unknown headers come back normalized but otherwise untouched, so extra
// extract columns are carried through rather than dropped.
func CanonicalColumn(name string) string {
	key := normalizeHeaderKey(name)
	if canonical, ok := columnSynonyms[key]; ok {
		return canonical
	}
	return key
}
