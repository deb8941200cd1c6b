package pricing

import (
	"maps"
	"slices"
	"strings"

	"vendorportal/lookups"
)

const ehcNote = "EHC fees provided by region."

// Normalizer flattens pricing levels into export rows.
type Normalizer struct {
	lookups lookups.Lookups
}

func NewNormalizer(l lookups.Lookups) *Normalizer {
	return &Normalizer{lookups: l}
}

// Normalize emits one Row per present level and a summary of the distinct
// method labels used, sorted and joined with ", ". Input is expected to be
// validated but any input is accepted.
func (n *Normalizer) Normalize(in Input) ([]Row, string) {
	var rows []Row
	labels := make(map[string]struct{})
	for _, lvl := range Transpose(in) {
		if !lvl.Present() {
			continue
		}
		label := n.lookups.MethodLabel(lvl.MethodKey)
		if label != "" {
			labels[label] = struct{}{}
		}
		rows = append(rows, n.row(in, lvl, label))
	}
	return rows, strings.Join(slices.Sorted(maps.Keys(labels)), ", ")
}

func (n *Normalizer) row(in Input, lvl Level, label string) Row {
	var r Row
	r.Set(ColVendor, in.Vendor)
	r.Set(ColPartNumber, in.SKU)
	r.Set(ColPricingMethod, label)
	r.Set(ColCurrency, lvl.Currency)
	r.Set(ColMOQUnit, lvl.MOQUnit)
	r.Set(ColMOQ, lvl.MOQQty)
	changeType := lvl.ChangeType
	if changeType == "" {
		changeType = "A"
	}
	r.Set(ColChangeType, changeType)
	r.Set(ColPricingType, lvl.Type)
	r.Set(ColTierMinQty, lvl.TierMinQty)
	r.Set(ColTierMaxQty, lvl.TierMaxQty)

	switch m := lvl.Method.(type) {
	case NetCost:
		r.Set(ColListPrice, m.ListPrice)
		r.Set(ColPricingAmount, m.NetCost)
		r.Set(ColEffectiveDate, m.EffectiveDate)
	case PriceLevels:
		r.Set(ColListPrice, m.ListPrice)
		r.Set(ColJobberPrice, m.JobberPrice)
		r.Set(ColPricingAmount, m.NetCost)
		r.Set(ColEffectiveDate, m.EffectiveDate)
	case DiscountBased:
		r.Set(ColListPrice, m.ListPriceOverride)
		r.Set(ColDiscountPct, m.DiscountPct)
		r.Set(ColPricingAmount, discountedAmount(m.BasePrice, m.DiscountPct))
		r.Set(ColEffectiveDate, m.EffectiveDate)
	case EHCBased:
		r.Set(ColPricingAmount, m.BasePrice)
		for reg, fee := range m.Fees {
			each, cas := ehcColumns(Region(reg))
			r.Set(each, fee.Each)
			r.Set(cas, fee.Case)
		}
		r.Set(ColNotes, ehcNote)
	case PromoPricing:
		r.Set(ColPricingAmount, m.Price)
		r.Set(ColStartDate, m.StartDate)
		r.Set(ColEndDate, m.EndDate)
	case QuotePricing:
		r.Set(ColPricingAmount, m.Price)
		r.Set(ColStartDate, m.StartDate)
		r.Set(ColEndDate, m.EndDate)
		if m.QuoteNumber != "" {
			r.Set(ColNotes, "Quote #: "+m.QuoteNumber)
		}
	case TenderPricing:
		r.Set(ColPricingAmount, m.Price)
		r.Set(ColStartDate, m.StartDate)
		r.Set(ColEndDate, m.EndDate)
		if m.TenderNumber != "" {
			r.Set(ColNotes, "Tender #: "+m.TenderNumber)
		}
	case CorePricing:
		r.Set(ColCorePartNumber, m.CorePartNumber)
		r.Set(ColCoreCost, m.CoreCost)
	case UnknownMethod, NoMethod:
	}
	return r
}
