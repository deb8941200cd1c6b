// Package catalog reads the non-pricing sections of the single product form,
// validates them and lays them out as workbook sheet rows.
package catalog

import (
	"strings"

	"vendorportal/pricing"
)

// Product form fields.
const (
	FieldVendor        = "vendor_name"
	FieldSKU           = "sku"
	FieldUNSPSC        = "unspsc_code"
	FieldHazmat        = "hazmat_flag"
	FieldStatus        = "product_status"
	FieldBarcodeType   = "barcode_type"
	FieldBarcodeNumber = "barcode_number"
	FieldQuantityUOM   = "quantity_uom"
	FieldQuantitySize  = "quantity_size"
	FieldVMRS          = "vmrs_code"
)

const defaultChangeType = "A"

type Description struct {
	ChangeType string
	Code       string
	Value      string
	Sequence   string
}

type ExtendedInfo struct {
	ChangeType string
	Code       string
	Value      string
}

type Attribute struct {
	ChangeType string
	Name       string
	Value      string
}

type Interchange struct {
	ChangeType string
	BrandLabel string
	PartNumber string
}

type Package struct {
	ChangeType string
	UOM        string
	QtyEaches  string
	WeightUOM  string
	Weight     string
}

type Asset struct {
	ChangeType string
	MediaType  string
	FileName   string
	BlobPath   string
}

// Product is one single product submission.
type Product struct {
	Vendor        string
	SKU           string
	UNSPSC        string
	Hazmat        string
	Status        string
	BarcodeType   string
	BarcodeNumber string
	QuantityUOM   string
	QuantitySize  string
	VMRS          string

	Descriptions []Description
	ExtendedInfo []ExtendedInfo
	Attributes   []Attribute
	Interchanges []Interchange
	Packages     []Package
	Assets       []Asset

	Pricing pricing.Input
}

// Extract reads a Product out of a submitted form. The form is kept as the
// pricing input so pricing arrays reach the pricing engine untouched.
func Extract(form map[string][]string) Product {
	f := formValues(form)
	p := Product{
		Vendor:        f.scalar(FieldVendor),
		SKU:           f.scalar(FieldSKU),
		UNSPSC:        f.scalar(FieldUNSPSC),
		Hazmat:        f.scalar(FieldHazmat),
		Status:        f.scalar(FieldStatus),
		BarcodeType:   f.scalar(FieldBarcodeType),
		BarcodeNumber: f.scalar(FieldBarcodeNumber),
		QuantityUOM:   f.scalar(FieldQuantityUOM),
		QuantitySize:  f.scalar(FieldQuantitySize),
		VMRS:          f.scalar(FieldVMRS),
	}

	for _, r := range f.section("desc_change_type[]", "desc_code[]", "desc_value[]", "desc_sequence[]") {
		p.Descriptions = append(p.Descriptions, Description{ChangeType: r[0], Code: r[1], Value: r[2], Sequence: r[3]})
	}
	for _, r := range f.section("ext_change_type[]", "ext_code[]", "ext_value[]") {
		p.ExtendedInfo = append(p.ExtendedInfo, ExtendedInfo{ChangeType: r[0], Code: r[1], Value: r[2]})
	}
	for _, r := range f.section("attr_change_type[]", "attr_name[]", "attr_value[]") {
		p.Attributes = append(p.Attributes, Attribute{ChangeType: r[0], Name: r[1], Value: r[2]})
	}
	for _, r := range f.section("ic_change_type[]", "ic_brand_label[]", "ic_part_number[]") {
		p.Interchanges = append(p.Interchanges, Interchange{ChangeType: r[0], BrandLabel: r[1], PartNumber: r[2]})
	}
	for _, r := range f.section("pkg_change_type[]", "pkg_uom[]", "pkg_qty_eaches[]", "pkg_weight_uom[]", "pkg_weight[]") {
		p.Packages = append(p.Packages, Package{ChangeType: r[0], UOM: r[1], QtyEaches: r[2], WeightUOM: r[3], Weight: r[4]})
	}
	for _, r := range f.section("asset_change_type[]", "asset_media_type[]", "asset_file_name[]", "asset_blob_path[]") {
		p.Assets = append(p.Assets, Asset{ChangeType: r[0], MediaType: r[1], FileName: r[2], BlobPath: r[3]})
	}

	p.Pricing = pricing.Input{
		Vendor:        p.Vendor,
		SKU:           p.SKU,
		ProductStatus: p.Status,
		Fields:        form,
	}
	return p
}

type formValues map[string][]string

func (f formValues) scalar(name string) string {
	if v := f[name]; len(v) > 0 {
		return strings.TrimSpace(v[0])
	}
	return ""
}

// section zips parallel arrays into rows. The first name is the change type
// column: it defaults to "A" and does not on its own keep a row. Rows with
// nothing else entered are dropped.
func (f formValues) section(names ...string) [][]string {
	n := 0
	for _, name := range names {
		n = max(n, len(f[name]))
	}
	var rows [][]string
	for i := 0; i < n; i++ {
		row := make([]string, len(names))
		blank := true
		for j, name := range names {
			if vals := f[name]; i < len(vals) {
				row[j] = strings.TrimSpace(vals[i])
			}
			if j > 0 && row[j] != "" {
				blank = false
			}
		}
		if blank {
			continue
		}
		if row[0] == "" {
			row[0] = defaultChangeType
		}
		rows = append(rows, row)
	}
	return rows
}
