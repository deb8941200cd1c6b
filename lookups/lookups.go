package lookups

import (
	"slices"
	"strings"
)

// Lookups holds the controlled vocabularies used by form validation and export.
// A value is built once at startup and handed to the components that need it.
type Lookups struct {
	OptiCatVendors    []string          `mapstructure:"opticat_vendors"`
	NonOptiCatVendors []string          `mapstructure:"non_opticat_vendors"`
	ProductStatuses   []string          `mapstructure:"product_statuses"`
	QuantityUOM       []string          `mapstructure:"quantity_uom"`
	PricingMethods    map[string]string `mapstructure:"pricing_methods"`
	LevelTypes        []string          `mapstructure:"level_types"`
	Currencies        []string          `mapstructure:"currencies"`
	ChangeTypes       []string          `mapstructure:"change_types"`
	BarcodeTypes      []string          `mapstructure:"barcode_types"`
	HazmatOptions     []string          `mapstructure:"hazmat_options"`
	MediaTypes        []string          `mapstructure:"media_types"`
	PackageUOM        []string          `mapstructure:"package_uom"`
	WeightUOM         []string          `mapstructure:"weight_uom"`
	// ShortDescriptionCodes are description codes whose value is capped at
	// ShortDescriptionMax characters.
	ShortDescriptionCodes []string `mapstructure:"short_description_codes"`
	ShortDescriptionMax   int      `mapstructure:"short_description_max"`
}

// Default returns the FGI vocabularies.
func Default() Lookups {
	return Lookups{
		OptiCatVendors: []string{
			"Dayton Parts", "Grote Lighting", "Neapco",
			"Truck Lite", "Baldwin Filters", "Stemco", "High Bar Brands",
		},
		NonOptiCatVendors: []string{
			"Ride Air", "Tetran", "SAF Holland",
			"Consolidated Metco", "Tiger Tool", "J.W Speaker", "Rigid Industries",
		},
		ProductStatuses: []string{"Active", "Inactive", "Obsolete"},
		QuantityUOM:     []string{"EA", "PC", "BOX", "CS", "PK", "SET", "RL", "BG", "BT", "DZ"},
		PricingMethods: map[string]string{
			"net_cost":       "Net Cost Provided",
			"price_levels":   "Price Levels Provided",
			"discount_based": "Discount-Based Pricing",
			"ehc_based":      "EHC-Based Pricing",
			"promo_pricing":  "Promo Pricing",
			"quote_pricing":  "Quote Pricing",
			"tender_pricing": "Tender Pricing",
			"core_pricing":   "Core Pricing",
		},
		LevelTypes:            []string{"Each", "Case", "Pallet", "Bulk"},
		Currencies:            []string{"CAD", "USD"},
		ChangeTypes:           []string{"A", "M", "D"},
		BarcodeTypes:          []string{"UPC", "EAN"},
		HazmatOptions:         []string{"Y", "N"},
		MediaTypes:            []string{"MainImage", "AngleImage", "PDF", "SpecSheet", "Logo", "Thumbnail", "InstallationGuide"},
		PackageUOM:            []string{"EA", "BX", "CS", "PL"},
		WeightUOM:             []string{"LB", "KG", "G", "OZ"},
		ShortDescriptionCodes: []string{"DES", "SHO"},
		ShortDescriptionMax:   40,
	}
}

// Merge returns l with every non-empty list in override replacing the
// corresponding list in l.
func (l Lookups) Merge(override Lookups) Lookups {
	pick := func(base, o []string) []string {
		if len(o) > 0 {
			return slices.Clone(o)
		}
		return base
	}
	out := l
	out.OptiCatVendors = pick(l.OptiCatVendors, override.OptiCatVendors)
	out.NonOptiCatVendors = pick(l.NonOptiCatVendors, override.NonOptiCatVendors)
	out.ProductStatuses = pick(l.ProductStatuses, override.ProductStatuses)
	out.QuantityUOM = pick(l.QuantityUOM, override.QuantityUOM)
	out.LevelTypes = pick(l.LevelTypes, override.LevelTypes)
	out.Currencies = pick(l.Currencies, override.Currencies)
	out.ChangeTypes = pick(l.ChangeTypes, override.ChangeTypes)
	out.BarcodeTypes = pick(l.BarcodeTypes, override.BarcodeTypes)
	out.HazmatOptions = pick(l.HazmatOptions, override.HazmatOptions)
	out.MediaTypes = pick(l.MediaTypes, override.MediaTypes)
	out.PackageUOM = pick(l.PackageUOM, override.PackageUOM)
	out.WeightUOM = pick(l.WeightUOM, override.WeightUOM)
	out.ShortDescriptionCodes = pick(l.ShortDescriptionCodes, override.ShortDescriptionCodes)
	if len(override.PricingMethods) > 0 {
		out.PricingMethods = make(map[string]string, len(override.PricingMethods))
		for k, v := range override.PricingMethods {
			out.PricingMethods[k] = v
		}
	}
	if override.ShortDescriptionMax > 0 {
		out.ShortDescriptionMax = override.ShortDescriptionMax
	}
	return out
}

// Vendors returns every allowed vendor, OptiCat first.
func (l Lookups) Vendors() []string {
	out := make([]string, 0, len(l.OptiCatVendors)+len(l.NonOptiCatVendors))
	out = append(out, l.OptiCatVendors...)
	return append(out, l.NonOptiCatVendors...)
}

func (l Lookups) IsVendor(name string) bool {
	return slices.Contains(l.OptiCatVendors, name) || slices.Contains(l.NonOptiCatVendors, name)
}

// IsOptiCat reports whether the vendor delivers OptiCat XML feeds.
func (l Lookups) IsOptiCat(name string) bool {
	return slices.Contains(l.OptiCatVendors, name)
}

func (l Lookups) IsProductStatus(s string) bool { return slices.Contains(l.ProductStatuses, s) }
func (l Lookups) IsQuantityUOM(s string) bool   { return slices.Contains(l.QuantityUOM, s) }
func (l Lookups) IsLevelType(s string) bool     { return slices.Contains(l.LevelTypes, s) }
func (l Lookups) IsCurrency(s string) bool      { return slices.Contains(l.Currencies, s) }
func (l Lookups) IsBarcodeType(s string) bool   { return slices.Contains(l.BarcodeTypes, s) }
func (l Lookups) IsHazmatOption(s string) bool  { return slices.Contains(l.HazmatOptions, s) }
func (l Lookups) IsChangeType(s string) bool    { return slices.Contains(l.ChangeTypes, s) }
func (l Lookups) IsMediaType(s string) bool     { return slices.Contains(l.MediaTypes, s) }
func (l Lookups) IsPackageUOM(s string) bool    { return slices.Contains(l.PackageUOM, s) }
func (l Lookups) IsWeightUOM(s string) bool     { return slices.Contains(l.WeightUOM, s) }

// IsPricingMethod reports whether key is a known pricing method key.
func (l Lookups) IsPricingMethod(key string) bool {
	_, ok := l.PricingMethods[key]
	return ok
}

// MethodLabel resolves a pricing method key to its display label, falling back
// to the key itself.
func (l Lookups) MethodLabel(key string) string {
	if label, ok := l.PricingMethods[key]; ok {
		return label
	}
	return key
}

// IsShortDescription reports whether descriptions with this code are length capped.
func (l Lookups) IsShortDescription(code string) bool {
	return slices.Contains(l.ShortDescriptionCodes, code)
}

// OneOf renders a vocabulary for a message: "A, B, or C", "A or B", "A".
func OneOf(values []string) string {
	switch len(values) {
	case 0:
		return ""
	case 1:
		return values[0]
	case 2:
		return values[0] + " or " + values[1]
	}
	return strings.Join(values[:len(values)-1], ", ") + ", or " + values[len(values)-1]
}
