package catalog

import (
	"fmt"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"vendorportal/lookups"
	"vendorportal/pricing"
)

// ValidateProduct checks the product level fields and repeated sections.
// Problems are returned in form order; an empty result means the product is
// acceptable.
func ValidateProduct(p Product, l lookups.Lookups) []string {
	var errs []string
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Sprintf(format, args...))
	}

	switch {
	case p.Vendor == "":
		add("Vendor is required.")
	case !l.IsVendor(p.Vendor):
		add("Vendor %q is not a recognized vendor.", p.Vendor)
	}
	if p.SKU == "" {
		add("SKU is required.")
	}
	if p.UNSPSC != "" && (len(p.UNSPSC) != 8 || !digits(p.UNSPSC)) {
		add("UNSPSC must be exactly 8 digits.")
	}
	if p.Hazmat != "" && !l.IsHazmatOption(p.Hazmat) {
		add("Hazmat Flag must be %s.", lookups.OneOf(l.HazmatOptions))
	}
	if p.Status != "" && !l.IsProductStatus(p.Status) {
		add("Product Status must be %s.", lookups.OneOf(l.ProductStatuses))
	}
	if p.BarcodeType != "" && !l.IsBarcodeType(p.BarcodeType) {
		add("Barcode Type must be %s.", lookups.OneOf(l.BarcodeTypes))
	}
	if msg := barcodeProblem(p.BarcodeType, p.BarcodeNumber); msg != "" {
		add("%s", msg)
	}
	if p.QuantityUOM != "" && !l.IsQuantityUOM(p.QuantityUOM) {
		add("Quantity UOM must be %s.", lookups.OneOf(l.QuantityUOM))
	}
	if p.QuantitySize != "" && !numeric(p.QuantitySize) {
		add("Quantity Size must be numeric.")
	}

	for i, d := range p.Descriptions {
		name := fmt.Sprintf("Description %d", i+1)
		if !l.IsChangeType(d.ChangeType) {
			add("%s: Change Type must be %s.", name, lookups.OneOf(l.ChangeTypes))
		}
		if d.Code == "" {
			add("%s: Description Code is required.", name)
		}
		if l.IsShortDescription(d.Code) && utf8.RuneCountInString(d.Value) > l.ShortDescriptionMax {
			add("%s: %s description must be %d characters or fewer.", name, d.Code, l.ShortDescriptionMax)
		}
		if d.Sequence != "" && !digits(d.Sequence) {
			add("%s: Sequence must be a whole number.", name)
		}
	}
	for i, e := range p.ExtendedInfo {
		if !l.IsChangeType(e.ChangeType) {
			add("Extended Info %d: Change Type must be %s.", i+1, lookups.OneOf(l.ChangeTypes))
		}
	}
	for i, a := range p.Attributes {
		if !l.IsChangeType(a.ChangeType) {
			add("Attribute %d: Change Type must be %s.", i+1, lookups.OneOf(l.ChangeTypes))
		}
		if a.Name == "" {
			add("Attribute %d: Attribute Name is required.", i+1)
		}
	}
	for i, ic := range p.Interchanges {
		if !l.IsChangeType(ic.ChangeType) {
			add("Part Interchange %d: Change Type must be %s.", i+1, lookups.OneOf(l.ChangeTypes))
		}
		if ic.BrandLabel == "" || ic.PartNumber == "" {
			add("Part Interchange %d: Brand Label and Part Number are required.", i+1)
		}
	}
	for i, pk := range p.Packages {
		name := fmt.Sprintf("Package %d", i+1)
		if !l.IsChangeType(pk.ChangeType) {
			add("%s: Change Type must be %s.", name, lookups.OneOf(l.ChangeTypes))
		}
		if pk.UOM != "" && !l.IsPackageUOM(pk.UOM) {
			add("%s: Package UOM must be %s.", name, lookups.OneOf(l.PackageUOM))
		}
		if pk.QtyEaches != "" && !numeric(pk.QtyEaches) {
			add("%s: Quantity of Eaches must be numeric.", name)
		}
		if pk.WeightUOM != "" && !l.IsWeightUOM(pk.WeightUOM) {
			add("%s: Weight UOM must be %s.", name, lookups.OneOf(l.WeightUOM))
		}
		if pk.Weight != "" && !numeric(pk.Weight) {
			add("%s: Weight must be numeric.", name)
		}
	}
	for i, a := range p.Assets {
		name := fmt.Sprintf("Digital Asset %d", i+1)
		if !l.IsChangeType(a.ChangeType) {
			add("%s: Change Type must be %s.", name, lookups.OneOf(l.ChangeTypes))
		}
		if a.MediaType != "" && !l.IsMediaType(a.MediaType) {
			add("%s: Media Type must be %s.", name, lookups.OneOf(l.MediaTypes))
		}
		if a.FileName == "" && a.BlobPath == "" {
			add("%s: a file is required.", name)
		}
	}
	return errs
}

// ValidateSubmission returns the product problems followed by the pricing
// problems.
func ValidateSubmission(p Product, l lookups.Lookups, v *pricing.Validator) []string {
	errs := ValidateProduct(p, l)
	if _, pricingErrs := v.Validate(p.Pricing); len(pricingErrs) > 0 {
		errs = append(errs, pricingErrs...)
	}
	return errs
}

func barcodeProblem(kind, number string) string {
	if number == "" {
		return ""
	}
	if !digits(number) {
		return "Barcode Number must contain digits only."
	}
	n := len(number)
	switch kind {
	case "UPC":
		if n != 12 {
			return "Barcode Number must be 12 digits for UPC."
		}
	case "EAN":
		if n != 14 {
			return "Barcode Number must be 14 digits for EAN."
		}
	default:
		if n != 12 && n != 14 {
			return "Barcode Number must be 12 or 14 digits."
		}
	}
	return ""
}

func digits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func numeric(s string) bool {
	_, err := decimal.NewFromString(s)
	return err == nil
}
