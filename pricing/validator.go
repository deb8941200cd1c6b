package pricing

import (
	"fmt"
	"strings"
	"time"

	"vendorportal/lookups"
)

const (
	msgNoLevels     = "At least one pricing level is required."
	msgNoLevelsUsed = "At least one valid pricing level must be entered."
)

// Validator checks the pricing section of one product submission.
type Validator struct {
	lookups lookups.Lookups
	now     func() time.Time
}

// NewValidator returns a Validator over the given vocabularies. now supplies
// "today" for effective date checks; nil means time.Now.
func NewValidator(l lookups.Lookups, now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}
	return &Validator{lookups: l, now: now}
}

// Validate reports whether the pricing section is acceptable and every problem
// found, in form order. It never stops at the first problem.
func (v *Validator) Validate(in Input) (bool, []string) {
	levels := Transpose(in)
	if len(levels) == 0 {
		return false, []string{msgNoLevels}
	}

	today := v.now().Format(isoDate)
	errs := []string{}
	used := false
	for _, lvl := range levels {
		if !lvl.Present() {
			continue
		}
		used = true
		errs = append(errs, v.checkCommon(lvl)...)
		errs = append(errs, v.checkMethod(lvl, today)...)
	}
	if !used {
		errs = append(errs, msgNoLevelsUsed)
	}
	return len(errs) == 0, errs
}

// report collects messages under one prefix.
type report struct {
	prefix string
	msgs   []string
}

func (r *report) addf(format string, args ...any) {
	r.msgs = append(r.msgs, r.prefix+": "+fmt.Sprintf(format, args...))
}

// required reports a missing value and reports whether the value is present.
func (r *report) required(value, name string) bool {
	if value == "" {
		r.addf("%s is required.", name)
		return false
	}
	return true
}

func (r *report) number(value, name string) {
	if value != "" && !isNumber(value) {
		r.addf("%s must be numeric.", name)
	}
}

func (r *report) requiredNumber(value, name string) {
	if r.required(value, name) {
		r.number(value, name)
	}
}

// date reports a malformed date and reports whether value is a usable date.
func (r *report) date(value, name string) bool {
	if value == "" {
		return false
	}
	if !isDate(value) {
		r.addf("%s must be a valid date (YYYY-MM-DD).", name)
		return false
	}
	return true
}

func (r *report) effectiveDate(value, today string) {
	if !r.required(value, "Effective Date") {
		return
	}
	if r.date(value, "Effective Date") && value < today {
		r.addf("Effective Date cannot be before today.")
	}
}

func (r *report) dateRange(start, end string) {
	okStart := r.required(start, "Start Date") && r.date(start, "Start Date")
	okEnd := r.required(end, "End Date") && r.date(end, "End Date")
	if okStart && okEnd && start > end {
		r.addf("End Date cannot be before Start Date.")
	}
}

func (v *Validator) checkCommon(lvl Level) []string {
	r := &report{prefix: lvl.Name()}

	if r.required(lvl.Type, "Level Type") && !v.lookups.IsLevelType(lvl.Type) {
		r.addf("Level Type must be %s.", lookups.OneOf(v.lookups.LevelTypes))
	}
	if r.required(lvl.MethodKey, "Pricing Method") && !v.lookups.IsPricingMethod(lvl.MethodKey) {
		r.addf("Invalid Pricing Method selected.")
	}
	if r.required(lvl.Currency, "Currency") && !v.lookups.IsCurrency(lvl.Currency) {
		r.addf("Currency must be %s.", lookups.OneOf(v.lookups.Currencies))
	}
	r.number(lvl.MOQQty, "MOQ")
	if lvl.MOQUnit != "" && !v.lookups.IsQuantityUOM(lvl.MOQUnit) {
		r.addf("MOQ Unit must be a valid unit (%s).", strings.Join(v.lookups.QuantityUOM, ", "))
	}
	r.number(lvl.TierMinQty, "Tier Min Qty")
	r.number(lvl.TierMaxQty, "Tier Max Qty")
	return r.msgs
}

func (v *Validator) checkMethod(lvl Level, today string) []string {
	r := &report{prefix: fmt.Sprintf("%s (%s)", lvl.Name(), shortLabel(lvl.Method))}

	switch m := lvl.Method.(type) {
	case NetCost:
		r.requiredNumber(m.ListPrice, "List Price")
		r.requiredNumber(m.NetCost, "Net Cost")
		r.effectiveDate(m.EffectiveDate, today)
	case PriceLevels:
		r.requiredNumber(m.ListPrice, "List Price")
		r.requiredNumber(m.JobberPrice, "Jobber Price")
		r.requiredNumber(m.NetCost, "Net Cost")
		r.effectiveDate(m.EffectiveDate, today)
	case DiscountBased:
		r.requiredNumber(m.BasePrice, "Base Price")
		if r.required(m.DiscountPct, "Discount %") {
			d, ok := parseNumber(m.DiscountPct)
			switch {
			case !ok:
				r.addf("Discount %% must be numeric.")
			case d.LessThan(zero) || d.GreaterThan(one):
				r.addf("Discount %% must be between 0.0 and 1.0.")
			}
		}
		r.effectiveDate(m.EffectiveDate, today)
	case EHCBased:
		r.requiredNumber(m.BasePrice, "Base Price")
		r.number(m.CanadianBlue, "Canadian Blue")
		r.number(m.QtyPerCase, "Qty/Case")
		r.number(m.PackagingMOQ, "Packaging MOQ")
		for reg, fee := range m.Fees {
			r.number(fee.Each, regions[reg].label+" Each")
			r.number(fee.Case, regions[reg].label+" Case")
		}
	case PromoPricing:
		r.requiredNumber(m.Price, "Promo Price")
		r.dateRange(m.StartDate, m.EndDate)
	case QuotePricing:
		r.requiredNumber(m.Price, "Quote Price")
		r.dateRange(m.StartDate, m.EndDate)
	case TenderPricing:
		r.requiredNumber(m.Price, "Tender Price")
		r.dateRange(m.StartDate, m.EndDate)
	case CorePricing:
		r.requiredNumber(m.CoreCost, "Core Cost")
		r.required(m.CorePartNumber, "Core Part Number")
	case UnknownMethod, NoMethod:
		// reported by the common checks
	}
	return r.msgs
}

// shortLabel names a method inside validation messages.
func shortLabel(m Method) string {
	switch m.(type) {
	case NetCost:
		return "Net Cost"
	case PriceLevels:
		return "Price Levels"
	case DiscountBased:
		return "Discount"
	case EHCBased:
		return "EHC"
	case PromoPricing:
		return "Promo"
	case QuotePricing:
		return "Quote"
	case TenderPricing:
		return "Tender"
	case CorePricing:
		return "Core"
	}
	return ""
}
