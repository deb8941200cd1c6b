// Package pricing captures multi-level vendor pricing from the single product
// form, validates each level against its pricing method and flattens the
// levels into uniform export rows.
package pricing

// Form field names of the per-level pricing arrays. Level i of a product is the
// i-th value of every array.
const (
	FieldLevelType     = "level_type[]"
	FieldChangeType    = "level_price_change_type[]"
	FieldMOQUnit       = "level_moq_uom[]"
	FieldMOQQty        = "level_moq_qty[]"
	FieldCurrency      = "level_currency[]"
	FieldPricingMethod = "level_pricing_method[]"
	FieldTierMinQty    = "level_tier_min_qty[]"
	FieldTierMaxQty    = "level_tier_max_qty[]"

	FieldNetListPrice     = "level_net_list_price[]"
	FieldNetNetCost       = "level_net_net_cost[]"
	FieldNetEffectiveDate = "level_net_effective_date[]"

	FieldPLListPrice     = "level_pl_list_price[]"
	FieldPLJobberPrice   = "level_pl_jobber_price[]"
	FieldPLNetCost       = "level_pl_net_cost[]"
	FieldPLEffectiveDate = "level_pl_effective_date[]"

	FieldDBBasePrice     = "level_db_base_price[]"
	FieldDBDiscountPct   = "level_db_discount_pct[]"
	FieldDBListPriceOpt  = "level_db_list_price_opt[]"
	FieldDBEffectiveDate = "level_db_effective_date[]"

	FieldEHCBasePrice    = "level_ehc_base_price[]"
	FieldEHCCanadianBlue = "level_ehc_canadian_blue[]"
	FieldEHCQtyCase      = "level_ehc_qty_case[]"
	FieldEHCUPCEach      = "level_ehc_upc_each[]"
	FieldEHCUPCCase      = "level_ehc_upc_case[]"
	FieldEHCMOQ          = "level_ehc_moq[]"

	FieldPromoPrice     = "level_pr_promo_price[]"
	FieldPromoStartDate = "level_pr_start_date[]"
	FieldPromoEndDate   = "level_pr_end_date[]"

	FieldQuotePrice     = "level_qt_price[]"
	FieldQuoteNumber    = "level_qt_number[]"
	FieldQuoteStartDate = "level_qt_start_date[]"
	FieldQuoteEndDate   = "level_qt_end_date[]"

	FieldTenderPrice     = "level_td_price[]"
	FieldTenderNumber    = "level_td_number[]"
	FieldTenderStartDate = "level_td_start_date[]"
	FieldTenderEndDate   = "level_td_end_date[]"

	FieldCorePartNumber = "level_core_part_number[]"
	FieldCoreCost       = "level_core_cost[]"
)

// Pricing method keys.
const (
	MethodNetCost       = "net_cost"
	MethodPriceLevels   = "price_levels"
	MethodDiscountBased = "discount_based"
	MethodEHCBased      = "ehc_based"
	MethodPromoPricing  = "promo_pricing"
	MethodQuotePricing  = "quote_pricing"
	MethodTenderPricing = "tender_pricing"
	MethodCorePricing   = "core_pricing"
)

// Region is a Canadian EHC fee region. Regions are ordered as their export
// columns.
type Region int

const (
	RegionABMBSK Region = iota
	RegionBC
	RegionNL
	RegionNS
	RegionNBQC
	RegionPEI
	RegionYK
	regionCount
)

type regionInfo struct {
	field string // form field infix
	label string // validation message label
}

var regions = [regionCount]regionInfo{
	RegionABMBSK: {field: "abmbsk", label: "AB/MB/SK"},
	RegionBC:     {field: "bc", label: "BC"},
	RegionNL:     {field: "nl", label: "NL"},
	RegionNS:     {field: "ns", label: "NS"},
	RegionNBQC:   {field: "nbqc", label: "NB/QC"},
	RegionPEI:    {field: "pei", label: "PEI"},
	RegionYK:     {field: "yk", label: "YK"},
}

// EHCEachField returns the form field carrying the per-each fee for r.
func EHCEachField(r Region) string { return "level_ehc_" + regions[r].field + "_each[]" }

// EHCCaseField returns the form field carrying the per-case fee for r.
func EHCCaseField(r Region) string { return "level_ehc_" + regions[r].field + "_case[]" }

// levelFields lists every per-level array. presenceExempt marks the ones that
// do not on their own make a level present.
var (
	levelFields    []string
	presenceExempt = map[string]bool{
		FieldChangeType: true,
		FieldTierMinQty: true,
		FieldTierMaxQty: true,
	}
)

func init() {
	levelFields = []string{
		FieldLevelType, FieldChangeType, FieldMOQUnit, FieldMOQQty, FieldCurrency,
		FieldPricingMethod, FieldTierMinQty, FieldTierMaxQty,
		FieldNetListPrice, FieldNetNetCost, FieldNetEffectiveDate,
		FieldPLListPrice, FieldPLJobberPrice, FieldPLNetCost, FieldPLEffectiveDate,
		FieldDBBasePrice, FieldDBDiscountPct, FieldDBListPriceOpt, FieldDBEffectiveDate,
		FieldEHCBasePrice, FieldEHCCanadianBlue, FieldEHCQtyCase,
		FieldEHCUPCEach, FieldEHCUPCCase, FieldEHCMOQ,
		FieldPromoPrice, FieldPromoStartDate, FieldPromoEndDate,
		FieldQuotePrice, FieldQuoteNumber, FieldQuoteStartDate, FieldQuoteEndDate,
		FieldTenderPrice, FieldTenderNumber, FieldTenderStartDate, FieldTenderEndDate,
		FieldCorePartNumber, FieldCoreCost,
	}
	for r := Region(0); r < regionCount; r++ {
		levelFields = append(levelFields, EHCEachField(r), EHCCaseField(r))
	}
}

// LevelFields returns the names of all per-level pricing arrays.
func LevelFields() []string {
	out := make([]string, len(levelFields))
	copy(out, levelFields)
	return out
}

// Input is one product's pricing section: the product scalars plus the raw
// per-level arrays keyed by form field name. Fields may hold unrelated form
// keys; only the level arrays are read.
type Input struct {
	Vendor        string
	SKU           string
	ProductStatus string
	Fields        map[string][]string
}
