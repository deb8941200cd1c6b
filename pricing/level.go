package pricing

import (
	"fmt"
	"strings"
)

// Level is one vendor-defined pricing tier, transposed out of the form arrays.
type Level struct {
	Number     int // 1-based position in the form
	Type       string
	MethodKey  string
	Currency   string
	ChangeType string
	MOQUnit    string
	MOQQty     string
	TierMinQty string
	TierMaxQty string
	Method     Method

	present bool
}

// Present reports whether the vendor entered anything for this level. Blank
// levels are skipped by validation and normalization alike.
func (l Level) Present() bool { return l.present }

// Name is the level's prefix in validation messages.
func (l Level) Name() string { return fmt.Sprintf("Pricing Level %d", l.Number) }

// Method is the method-specific payload of a level. The set of implementations
// is closed: NetCost, PriceLevels, DiscountBased, EHCBased, PromoPricing,
// QuotePricing, TenderPricing, CorePricing, UnknownMethod and NoMethod.
type Method interface {
	isMethod()
}

type NetCost struct {
	ListPrice     string
	NetCost       string
	EffectiveDate string
}

type PriceLevels struct {
	ListPrice     string
	JobberPrice   string
	NetCost       string
	EffectiveDate string
}

type DiscountBased struct {
	BasePrice         string
	DiscountPct       string // fraction in [0,1]
	ListPriceOverride string
	EffectiveDate     string
}

// EHCFee is the environmental handling charge for one region.
type EHCFee struct {
	Each string
	Case string
}

type EHCBased struct {
	BasePrice    string
	CanadianBlue string
	QtyPerCase   string
	UPCEach      string
	UPCCase      string
	PackagingMOQ string
	Fees         [regionCount]EHCFee
}

type PromoPricing struct {
	Price     string
	StartDate string
	EndDate   string
}

type QuotePricing struct {
	Price       string
	QuoteNumber string
	StartDate   string
	EndDate     string
}

type TenderPricing struct {
	Price        string
	TenderNumber string
	StartDate    string
	EndDate      string
}

type CorePricing struct {
	CorePartNumber string
	CoreCost       string
}

// UnknownMethod is a non-blank method key with no payload shape.
type UnknownMethod struct {
	Key string
}

// NoMethod is a level without a method selected.
type NoMethod struct{}

func (NetCost) isMethod()       {}
func (PriceLevels) isMethod()   {}
func (DiscountBased) isMethod() {}
func (EHCBased) isMethod()      {}
func (PromoPricing) isMethod()  {}
func (QuotePricing) isMethod()  {}
func (TenderPricing) isMethod() {}
func (CorePricing) isMethod()   {}
func (UnknownMethod) isMethod() {}
func (NoMethod) isMethod()      {}

// Transpose aligns the input arrays and turns them into one Level per entry of
// FieldLevelType, blank levels included.
func Transpose(in Input) []Level {
	aligned := Align(in.Fields)
	n := len(aligned[FieldLevelType])
	levels := make([]Level, n)
	for i := 0; i < n; i++ {
		levels[i] = readLevel(cell{fields: aligned, i: i})
	}
	return levels
}

// cell reads column values of one level from aligned arrays.
type cell struct {
	fields map[string][]string
	i      int
}

func (c cell) get(name string) string {
	return strings.TrimSpace(c.fields[name][c.i])
}

func (c cell) present() bool {
	for _, name := range levelFields {
		if presenceExempt[name] {
			continue
		}
		if c.get(name) != "" {
			return true
		}
	}
	return false
}

func readLevel(c cell) Level {
	key := c.get(FieldPricingMethod)
	return Level{
		Number:     c.i + 1,
		Type:       c.get(FieldLevelType),
		MethodKey:  key,
		Currency:   c.get(FieldCurrency),
		ChangeType: c.get(FieldChangeType),
		MOQUnit:    c.get(FieldMOQUnit),
		MOQQty:     c.get(FieldMOQQty),
		TierMinQty: c.get(FieldTierMinQty),
		TierMaxQty: c.get(FieldTierMaxQty),
		Method:     readMethod(key, c),
		present:    c.present(),
	}
}

func readMethod(key string, c cell) Method {
	switch key {
	case "":
		return NoMethod{}
	case MethodNetCost:
		return NetCost{
			ListPrice:     c.get(FieldNetListPrice),
			NetCost:       c.get(FieldNetNetCost),
			EffectiveDate: c.get(FieldNetEffectiveDate),
		}
	case MethodPriceLevels:
		return PriceLevels{
			ListPrice:     c.get(FieldPLListPrice),
			JobberPrice:   c.get(FieldPLJobberPrice),
			NetCost:       c.get(FieldPLNetCost),
			EffectiveDate: c.get(FieldPLEffectiveDate),
		}
	case MethodDiscountBased:
		return DiscountBased{
			BasePrice:         c.get(FieldDBBasePrice),
			DiscountPct:       c.get(FieldDBDiscountPct),
			ListPriceOverride: c.get(FieldDBListPriceOpt),
			EffectiveDate:     c.get(FieldDBEffectiveDate),
		}
	case MethodEHCBased:
		m := EHCBased{
			BasePrice:    c.get(FieldEHCBasePrice),
			CanadianBlue: c.get(FieldEHCCanadianBlue),
			QtyPerCase:   c.get(FieldEHCQtyCase),
			UPCEach:      c.get(FieldEHCUPCEach),
			UPCCase:      c.get(FieldEHCUPCCase),
			PackagingMOQ: c.get(FieldEHCMOQ),
		}
		for r := Region(0); r < regionCount; r++ {
			m.Fees[r] = EHCFee{Each: c.get(EHCEachField(r)), Case: c.get(EHCCaseField(r))}
		}
		return m
	case MethodPromoPricing:
		return PromoPricing{
			Price:     c.get(FieldPromoPrice),
			StartDate: c.get(FieldPromoStartDate),
			EndDate:   c.get(FieldPromoEndDate),
		}
	case MethodQuotePricing:
		return QuotePricing{
			Price:       c.get(FieldQuotePrice),
			QuoteNumber: c.get(FieldQuoteNumber),
			StartDate:   c.get(FieldQuoteStartDate),
			EndDate:     c.get(FieldQuoteEndDate),
		}
	case MethodTenderPricing:
		return TenderPricing{
			Price:        c.get(FieldTenderPrice),
			TenderNumber: c.get(FieldTenderNumber),
			StartDate:    c.get(FieldTenderStartDate),
			EndDate:      c.get(FieldTenderEndDate),
		}
	case MethodCorePricing:
		return CorePricing{
			CorePartNumber: c.get(FieldCorePartNumber),
			CoreCost:       c.get(FieldCoreCost),
		}
	default:
		return UnknownMethod{Key: key}
	}
}
