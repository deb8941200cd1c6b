package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vendorportal/lookups"
)

var today = time.Date(2025, time.June, 1, 9, 30, 0, 0, time.UTC)

func newValidator() *Validator {
	return NewValidator(lookups.Default(), func() time.Time { return today })
}

func newNormalizer() *Normalizer {
	return NewNormalizer(lookups.Default())
}

// levelForm lays levels out as the parallel arrays the form submits. Arrays
// are only as long as the last level that sets them.
func levelForm(levels ...map[string]string) map[string][]string {
	fields := map[string][]string{}
	for i, lvl := range levels {
		for name, v := range lvl {
			vals := fields[name]
			for len(vals) < i {
				vals = append(vals, "")
			}
			fields[name] = append(vals, v)
		}
	}
	types := fields[FieldLevelType]
	for len(types) < len(levels) {
		types = append(types, "")
	}
	fields[FieldLevelType] = types
	return fields
}

func input(levels ...map[string]string) Input {
	return Input{Vendor: "Grote Lighting", SKU: "GR-100", ProductStatus: "Active", Fields: levelForm(levels...)}
}

func netCostLevel() map[string]string {
	return map[string]string{
		FieldLevelType:        "Case",
		FieldPricingMethod:    MethodNetCost,
		FieldCurrency:         "CAD",
		FieldNetListPrice:     "50",
		FieldNetNetCost:       "40",
		FieldNetEffectiveDate: "2025-06-01",
	}
}

func TestAlignPadsAndIsIdempotent(t *testing.T) {
	fields := map[string][]string{
		FieldLevelType:     {"Each", "Case", "Pallet"},
		FieldCurrency:      {"CAD"},
		FieldPricingMethod: {"net_cost", "promo_pricing", "core_pricing", "extra"},
		"vendor_name":      {"Tetran"},
	}

	aligned := Align(fields)
	for _, name := range LevelFields() {
		assert.Len(t, aligned[name], 3, name)
	}
	assert.Equal(t, []string{"CAD", "", ""}, aligned[FieldCurrency])
	assert.Equal(t, []string{"net_cost", "promo_pricing", "core_pricing"}, aligned[FieldPricingMethod])
	assert.Equal(t, []string{"Tetran"}, aligned["vendor_name"])
	assert.Len(t, fields[FieldCurrency], 1, "input must not be modified")

	assert.Equal(t, aligned, Align(aligned))
}

func TestAlignZeroLevels(t *testing.T) {
	aligned := Align(map[string][]string{FieldCurrency: {"CAD"}})
	assert.Empty(t, aligned[FieldCurrency])
	assert.Empty(t, Transpose(Input{Fields: aligned}))
}

func TestTransposeBuildsMethodVariants(t *testing.T) {
	levels := Transpose(input(
		netCostLevel(),
		map[string]string{FieldPricingMethod: "bogus_method"},
		map[string]string{FieldChangeType: "M"},
		map[string]string{FieldPricingMethod: "  quote_pricing ", FieldQuoteNumber: " Q-1 "},
	))
	require.Len(t, levels, 4)

	assert.Equal(t, NetCost{ListPrice: "50", NetCost: "40", EffectiveDate: "2025-06-01"}, levels[0].Method)
	assert.Equal(t, UnknownMethod{Key: "bogus_method"}, levels[1].Method)
	assert.Equal(t, NoMethod{}, levels[2].Method)
	assert.False(t, levels[2].Present(), "change type alone does not make a level present")
	assert.Equal(t, QuotePricing{QuoteNumber: "Q-1"}, levels[3].Method)
	assert.Equal(t, 4, levels[3].Number)
	assert.Equal(t, "Pricing Level 4", levels[3].Name())
}

func TestEndToEndNetCost(t *testing.T) {
	in := input(netCostLevel())

	ok, errs := newValidator().Validate(in)
	assert.True(t, ok)
	assert.Empty(t, errs)

	rows, summary := newNormalizer().Normalize(in)
	require.Len(t, rows, 1)
	row := rows[0]
	assert.Equal(t, "Net Cost Provided", row.Get(ColPricingMethod))
	assert.Equal(t, "50", row.Get(ColListPrice))
	assert.Equal(t, "40", row.Get(ColPricingAmount))
	assert.Equal(t, "2025-06-01", row.Get(ColEffectiveDate))
	assert.Equal(t, "Case", row.Get(ColPricingType))
	assert.Equal(t, "A", row.Get(ColChangeType))
	assert.Equal(t, "Grote Lighting", row.Get(ColVendor))
	assert.Equal(t, "GR-100", row.Get(ColPartNumber))
	assert.Equal(t, "", row.Get(ColNotes))
	assert.Equal(t, "Net Cost Provided", summary)
}

func TestStructuralRejection(t *testing.T) {
	ok, errs := newValidator().Validate(Input{Fields: map[string][]string{}})
	assert.False(t, ok)
	assert.Equal(t, []string{"At least one pricing level is required."}, errs)

	blank := map[string]string{FieldChangeType: "A", FieldTierMinQty: "5"}
	ok, errs = newValidator().Validate(input(blank, map[string]string{}, blank))
	assert.False(t, ok)
	assert.Equal(t, []string{"At least one valid pricing level must be entered."}, errs)

	rows, summary := newNormalizer().Normalize(input(blank, blank))
	assert.Empty(t, rows)
	assert.Equal(t, "", summary)
}

func TestBlankSkipAgreement(t *testing.T) {
	ehcOnly := map[string]string{EHCEachField(RegionYK): "0.25"}
	in := input(netCostLevel(), map[string]string{}, ehcOnly, map[string]string{FieldLevelType: "   "})

	rows, _ := newNormalizer().Normalize(in)
	require.Len(t, rows, 2)

	_, errs := newValidator().Validate(in)
	used := map[string]bool{}
	for _, msg := range errs {
		for _, lvl := range []string{"Pricing Level 1", "Pricing Level 2", "Pricing Level 3", "Pricing Level 4"} {
			if len(msg) >= len(lvl) && msg[:len(lvl)] == lvl {
				used[lvl] = true
			}
		}
	}
	assert.False(t, used["Pricing Level 2"])
	assert.False(t, used["Pricing Level 4"])
	assert.True(t, used["Pricing Level 3"])
	assert.Contains(t, errs, "Pricing Level 3: Level Type is required.")
	assert.Contains(t, errs, "Pricing Level 3: Pricing Method is required.")
	assert.Contains(t, errs, "Pricing Level 3: Currency is required.")
}

func TestCommonFieldChecks(t *testing.T) {
	_, errs := newValidator().Validate(input(map[string]string{
		FieldLevelType:     "Crate",
		FieldPricingMethod: "bogus_method",
		FieldCurrency:      "EUR",
		FieldMOQQty:        "ten",
		FieldMOQUnit:       "XX",
		FieldTierMinQty:    "1",
		FieldTierMaxQty:    "many",
	}))

	assert.Equal(t, []string{
		"Pricing Level 1: Level Type must be Each, Case, Pallet, or Bulk.",
		"Pricing Level 1: Invalid Pricing Method selected.",
		"Pricing Level 1: Currency must be CAD or USD.",
		"Pricing Level 1: MOQ must be numeric.",
		"Pricing Level 1: MOQ Unit must be a valid unit (EA, PC, BOX, CS, PK, SET, RL, BG, BT, DZ).",
		"Pricing Level 1: Tier Max Qty must be numeric.",
	}, errs)
}

func TestBogusMethodLabelFallsBack(t *testing.T) {
	in := input(map[string]string{FieldLevelType: "Each", FieldPricingMethod: "bogus_method", FieldCurrency: "USD"})

	ok, errs := newValidator().Validate(in)
	assert.False(t, ok)
	assert.Equal(t, []string{"Pricing Level 1: Invalid Pricing Method selected."}, errs)

	rows, summary := newNormalizer().Normalize(in)
	require.Len(t, rows, 1)
	assert.Equal(t, "bogus_method", rows[0].Get(ColPricingMethod))
	assert.Equal(t, "", rows[0].Get(ColPricingAmount))
	assert.Equal(t, "bogus_method", summary)
}

func discountLevel(base, discount string) map[string]string {
	return map[string]string{
		FieldLevelType:       "Each",
		FieldPricingMethod:   MethodDiscountBased,
		FieldCurrency:        "USD",
		FieldDBBasePrice:     base,
		FieldDBDiscountPct:   discount,
		FieldDBListPriceOpt:  "120",
		FieldDBEffectiveDate: "2025-07-01",
	}
}

func TestDiscountDerivation(t *testing.T) {
	cases := []struct {
		name     string
		base     string
		discount string
		want     string
	}{
		{"twenty percent", "100", "0.2", "80.0000"},
		{"blank discount", "100", "", "100.0000"},
		{"unparseable discount", "19.99", "lots", "19.9900"},
		{"rounds to four places", "10", "0.33333", "6.6667"},
		{"unparseable base", "abc", "0.2", "abc"},
		{"huge exponent base", "1e50000000", "0.2", "1e50000000"},
		{"tiny exponent base", "1e-50000000", "0.2", "1e-50000000"},
		{"huge exponent discount", "100", "1e50000000", "100.0000"},
		{"exponent within bounds", "1e2", "0.5", "50.0000"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rows, summary := newNormalizer().Normalize(input(discountLevel(tc.base, tc.discount)))
			require.Len(t, rows, 1)
			assert.Equal(t, tc.want, rows[0].Get(ColPricingAmount))
			assert.Equal(t, tc.discount, rows[0].Get(ColDiscountPct))
			assert.Equal(t, "120", rows[0].Get(ColListPrice))
			assert.Equal(t, "2025-07-01", rows[0].Get(ColEffectiveDate))
			assert.Equal(t, "Discount-Based Pricing", summary)
		})
	}
}

func TestDiscountValidation(t *testing.T) {
	_, errs := newValidator().Validate(input(discountLevel("abc", "0.2")))
	assert.Equal(t, []string{"Pricing Level 1 (Discount): Base Price must be numeric."}, errs)

	_, errs = newValidator().Validate(input(discountLevel("100", "1.5")))
	assert.Equal(t, []string{"Pricing Level 1 (Discount): Discount % must be between 0.0 and 1.0."}, errs)

	_, errs = newValidator().Validate(input(discountLevel("100", "half")))
	assert.Equal(t, []string{"Pricing Level 1 (Discount): Discount % must be numeric."}, errs)

	_, errs = newValidator().Validate(input(discountLevel("", "")))
	assert.Equal(t, []string{
		"Pricing Level 1 (Discount): Base Price is required.",
		"Pricing Level 1 (Discount): Discount % is required.",
	}, errs)

	ok, errs := newValidator().Validate(input(discountLevel("100", "0")))
	assert.True(t, ok)
	assert.Empty(t, errs)
}

func TestHugeExponentIsNotNumeric(t *testing.T) {
	_, errs := newValidator().Validate(input(discountLevel("1e50000000", "0.2")))
	assert.Equal(t, []string{"Pricing Level 1 (Discount): Base Price must be numeric."}, errs)

	lvl := netCostLevel()
	lvl[FieldNetListPrice] = "1e50000000"
	ok, errs := newValidator().Validate(input(lvl))
	assert.False(t, ok)
	assert.Equal(t, []string{"Pricing Level 1 (Net Cost): List Price must be numeric."}, errs)

	rows, _ := newNormalizer().Normalize(input(lvl))
	require.Len(t, rows, 1)
	assert.Equal(t, "1e50000000", rows[0].Get(ColListPrice))
}

func TestNumberSpellings(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"40", true},
		{"-2.50", true},
		{"+5", true},
		{".5", true},
		{"5.", true},
		{"1e3", true},
		{"1e30", true},
		{"1e-30", true},
		{"1e31", false},
		{"1e-31", false},
		{"1e50000000", false},
		{"", false},
		{"abc", false},
		{"inf", false},
		{"nan", false},
		{"1_000", false},
		{"1,000", false},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, isNumber(tc.in))
		})
	}
}

func TestBlankMethodLeavesSummaryClean(t *testing.T) {
	rows, summary := newNormalizer().Normalize(input(netCostLevel(), map[string]string{FieldLevelType: "Each"}))
	require.Len(t, rows, 2)
	assert.Equal(t, "Net Cost Provided", summary)
	assert.Equal(t, "", rows[1].Get(ColPricingMethod))
}

func TestEffectiveDateChecks(t *testing.T) {
	lvl := netCostLevel()
	lvl[FieldNetEffectiveDate] = "2025-05-31"
	_, errs := newValidator().Validate(input(lvl))
	assert.Equal(t, []string{"Pricing Level 1 (Net Cost): Effective Date cannot be before today."}, errs)

	lvl[FieldNetEffectiveDate] = "06/01/2025"
	_, errs = newValidator().Validate(input(lvl))
	assert.Equal(t, []string{"Pricing Level 1 (Net Cost): Effective Date must be a valid date (YYYY-MM-DD)."}, errs)

	lvl[FieldNetEffectiveDate] = ""
	_, errs = newValidator().Validate(input(lvl))
	assert.Equal(t, []string{"Pricing Level 1 (Net Cost): Effective Date is required."}, errs)
}

func TestPriceLevels(t *testing.T) {
	in := input(map[string]string{
		FieldLevelType:       "Pallet",
		FieldPricingMethod:   MethodPriceLevels,
		FieldCurrency:        "CAD",
		FieldPLListPrice:     "10",
		FieldPLJobberPrice:   "x",
		FieldPLEffectiveDate: "2030-01-01",
	})
	_, errs := newValidator().Validate(in)
	assert.Equal(t, []string{
		"Pricing Level 1 (Price Levels): Jobber Price must be numeric.",
		"Pricing Level 1 (Price Levels): Net Cost is required.",
	}, errs)

	rows, _ := newNormalizer().Normalize(in)
	require.Len(t, rows, 1)
	assert.Equal(t, "10", rows[0].Get(ColListPrice))
	assert.Equal(t, "x", rows[0].Get(ColJobberPrice))
	assert.Equal(t, "", rows[0].Get(ColPricingAmount))
}

func promoLevel(start, end string) map[string]string {
	return map[string]string{
		FieldLevelType:      "Each",
		FieldPricingMethod:  MethodPromoPricing,
		FieldCurrency:       "CAD",
		FieldPromoPrice:     "9.99",
		FieldPromoStartDate: start,
		FieldPromoEndDate:   end,
	}
}

func TestPromoDateOrdering(t *testing.T) {
	_, errs := newValidator().Validate(input(promoLevel("2025-03-01", "2025-02-01")))
	assert.Equal(t, []string{"Pricing Level 1 (Promo): End Date cannot be before Start Date."}, errs)

	ok, errs := newValidator().Validate(input(promoLevel("2025-02-01", "2025-03-01")))
	assert.True(t, ok)
	assert.Empty(t, errs)

	_, errs = newValidator().Validate(input(promoLevel("", "")))
	assert.Equal(t, []string{
		"Pricing Level 1 (Promo): Start Date is required.",
		"Pricing Level 1 (Promo): End Date is required.",
	}, errs)

	rows, _ := newNormalizer().Normalize(input(promoLevel("2025-02-01", "2025-03-01")))
	require.Len(t, rows, 1)
	assert.Equal(t, "9.99", rows[0].Get(ColPricingAmount))
	assert.Equal(t, "2025-02-01", rows[0].Get(ColStartDate))
	assert.Equal(t, "2025-03-01", rows[0].Get(ColEndDate))
	assert.Equal(t, "", rows[0].Get(ColNotes))
}

func TestQuoteAndTenderNotes(t *testing.T) {
	in := input(
		map[string]string{
			FieldLevelType: "Each", FieldPricingMethod: MethodQuotePricing, FieldCurrency: "CAD",
			FieldQuotePrice: "12", FieldQuoteNumber: "Q-778",
			FieldQuoteStartDate: "2025-01-01", FieldQuoteEndDate: "2025-12-31",
		},
		map[string]string{
			FieldLevelType: "Case", FieldPricingMethod: MethodTenderPricing, FieldCurrency: "USD",
			FieldTenderPrice: "11", FieldTenderStartDate: "2025-01-01", FieldTenderEndDate: "2025-12-31",
		},
		map[string]string{
			FieldLevelType: "Bulk", FieldPricingMethod: MethodTenderPricing, FieldCurrency: "USD",
			FieldTenderPrice: "10", FieldTenderNumber: "T-9",
			FieldTenderStartDate: "2025-01-01", FieldTenderEndDate: "2024-12-31",
		},
	)

	_, errs := newValidator().Validate(in)
	assert.Equal(t, []string{"Pricing Level 3 (Tender): End Date cannot be before Start Date."}, errs)

	rows, summary := newNormalizer().Normalize(in)
	require.Len(t, rows, 3)
	assert.Equal(t, "Quote #: Q-778", rows[0].Get(ColNotes))
	assert.Equal(t, "", rows[1].Get(ColNotes))
	assert.Equal(t, "Tender #: T-9", rows[2].Get(ColNotes))
	assert.Equal(t, "Quote Pricing, Tender Pricing", summary)
}

func TestEHCBased(t *testing.T) {
	lvl := map[string]string{
		FieldLevelType:       "Each",
		FieldPricingMethod:   MethodEHCBased,
		FieldCurrency:        "CAD",
		FieldEHCBasePrice:    "25.50",
		FieldEHCCanadianBlue: "blue",
		FieldEHCQtyCase:      "12",
	}
	for r := Region(0); r < regionCount; r++ {
		lvl[EHCEachField(r)] = "0.10"
		lvl[EHCCaseField(r)] = "1.20"
	}
	lvl[EHCCaseField(RegionNBQC)] = "n/a"

	_, errs := newValidator().Validate(input(lvl))
	assert.Equal(t, []string{
		"Pricing Level 1 (EHC): Canadian Blue must be numeric.",
		"Pricing Level 1 (EHC): NB/QC Case must be numeric.",
	}, errs)

	rows, summary := newNormalizer().Normalize(input(lvl))
	require.Len(t, rows, 1)
	row := rows[0]
	assert.Equal(t, "25.50", row.Get(ColPricingAmount))
	assert.Equal(t, "0.10", row.Get(ColEHCABMBSKEach))
	assert.Equal(t, "1.20", row.Get(ColEHCYKCase))
	assert.Equal(t, "n/a", row.Get(ColEHCNBQCCase))
	assert.Equal(t, "1.20", row.Get(ColEHCPEICase))
	assert.Equal(t, "EHC fees provided by region.", row.Get(ColNotes))
	assert.Equal(t, "EHC-Based Pricing", summary)
}

func TestEHCAllOptionalFieldsChecked(t *testing.T) {
	lvl := map[string]string{
		FieldLevelType:       "Each",
		FieldPricingMethod:   MethodEHCBased,
		FieldCurrency:        "CAD",
		FieldEHCBasePrice:    "1",
		FieldEHCCanadianBlue: "x",
		FieldEHCQtyCase:      "x",
		FieldEHCMOQ:          "x",
	}
	for r := Region(0); r < regionCount; r++ {
		lvl[EHCEachField(r)] = "x"
		lvl[EHCCaseField(r)] = "x"
	}
	_, errs := newValidator().Validate(input(lvl))
	assert.Len(t, errs, 17)
	assert.Equal(t, "Pricing Level 1 (EHC): Packaging MOQ must be numeric.", errs[2])
	assert.Equal(t, "Pricing Level 1 (EHC): AB/MB/SK Each must be numeric.", errs[3])
	assert.Equal(t, "Pricing Level 1 (EHC): YK Case must be numeric.", errs[16])
}

func TestCorePricing(t *testing.T) {
	lvl := map[string]string{
		FieldLevelType:     "Each",
		FieldPricingMethod: MethodCorePricing,
		FieldCurrency:      "USD",
		FieldCoreCost:      "core",
	}
	_, errs := newValidator().Validate(input(lvl))
	assert.Equal(t, []string{
		"Pricing Level 1 (Core): Core Cost must be numeric.",
		"Pricing Level 1 (Core): Core Part Number is required.",
	}, errs)

	lvl[FieldCoreCost] = "35.00"
	lvl[FieldCorePartNumber] = "CORE-1"
	ok, _ := newValidator().Validate(input(lvl))
	assert.True(t, ok)

	rows, _ := newNormalizer().Normalize(input(lvl))
	require.Len(t, rows, 1)
	assert.Equal(t, "CORE-1", rows[0].Get(ColCorePartNumber))
	assert.Equal(t, "35.00", rows[0].Get(ColCoreCost))
	assert.Equal(t, "", rows[0].Get(ColPricingAmount))
}

func TestSummaryIsSortedAndDeduplicated(t *testing.T) {
	promo := promoLevel("2025-02-01", "2025-03-01")
	_, summary := newNormalizer().Normalize(input(promo, netCostLevel(), promo, discountLevel("5", "0.1")))
	assert.Equal(t, "Discount-Based Pricing, Net Cost Provided, Promo Pricing", summary)
}

func TestInjectedVocabulary(t *testing.T) {
	vocab := lookups.Default().Merge(lookups.Lookups{
		Currencies:     []string{"USD"},
		PricingMethods: map[string]string{MethodNetCost: "Net"},
	})
	in := input(netCostLevel())

	_, errs := NewValidator(vocab, func() time.Time { return today }).Validate(in)
	assert.Equal(t, []string{"Pricing Level 1: Currency must be USD."}, errs)

	rows, summary := NewNormalizer(vocab).Normalize(in)
	require.Len(t, rows, 1)
	assert.Equal(t, "Net", rows[0].Get(ColPricingMethod))
	assert.Equal(t, "Net", summary)
}

func TestColumnsContract(t *testing.T) {
	cols := Columns()
	require.Len(t, cols, 35)
	assert.Equal(t, "Vendor", cols[0])
	assert.Equal(t, "Multiplier", cols[ColMultiplier])
	assert.Equal(t, "EHC AB_MB_SK Each", cols[13])
	assert.Equal(t, "EHC YK Case", cols[26])
	assert.Equal(t, "Tier Min Qty", cols[27])
	assert.Equal(t, "Notes", cols[34])
	assert.Equal(t, "Core Cost", ColCoreCost.String())

	each, cas := ehcColumns(RegionNS)
	assert.Equal(t, "EHC NS Each", each.String())
	assert.Equal(t, "EHC NS Case", cas.String())
}

func TestRowJSONKeepsColumnNames(t *testing.T) {
	rows, _ := newNormalizer().Normalize(input(netCostLevel()))
	require.Len(t, rows, 1)

	data, err := rows[0].MarshalJSON()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"Pricing Method":"Net Cost Provided"`)

	var back Row
	require.NoError(t, back.UnmarshalJSON(data))
	assert.Equal(t, rows[0], back)
}
