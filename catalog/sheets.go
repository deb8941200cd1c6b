package catalog

import "vendorportal/pricing"

// Sheet names of the batch workbook.
const (
	SheetItemMaster    = "Item_Master"
	SheetDescriptions  = "Descriptions"
	SheetExtendedInfo  = "Extended_Info"
	SheetAttributes    = "Attributes"
	SheetInterchange   = "Part_Interchange"
	SheetPackages      = "Packages"
	SheetDigitalAssets = "Digital_Assets"
	SheetPricing       = "Pricing"
)

var sheetOrder = []string{
	SheetItemMaster, SheetDescriptions, SheetExtendedInfo, SheetAttributes,
	SheetInterchange, SheetPackages, SheetDigitalAssets, SheetPricing,
}

var headers = map[string][]string{
	SheetItemMaster: {
		"Vendor", "Part Number", "UNSPSC", "HazmatFlag", "Product Status",
		"Barcode Type", "Barcode Number", "Quantity UOM", "Quantity Size", "VMRS Code",
	},
	SheetDescriptions: {"SKU", "Description Change Type", "Description Code", "Description Value", "Sequence"},
	SheetExtendedInfo: {"SKU", "Extended Info Change Type", "Extended Info Code", "Extended Info Value"},
	SheetAttributes:   {"SKU", "Attribute Change Type", "Attribute Name", "Attribute Value"},
	SheetInterchange:  {"SKU", "Part Interchange Change Type", "Brand Label", "Part Number"},
	SheetPackages: {
		"SKU", "Package Change Type", "Package UOM", "Package Quantity of Eaches", "Weight UOM", "Weight",
	},
	SheetDigitalAssets: {"SKU", "Digital Change Type", "Media Type", "FileName", "FileLocalPath"},
	SheetPricing:       pricing.Columns(),
}

// SheetNames returns the workbook sheets in tab order.
func SheetNames() []string {
	return append([]string(nil), sheetOrder...)
}

// Header returns the column header of a sheet, nil for an unknown sheet.
func Header(sheet string) []string {
	h, ok := headers[sheet]
	if !ok {
		return nil
	}
	return append([]string(nil), h...)
}

// Book holds workbook rows per sheet name.
type Book map[string][][]string

func (b Book) Append(sheet string, rows ...[]string) {
	b[sheet] = append(b[sheet], rows...)
}

// Merge appends every sheet of o to b.
func (b Book) Merge(o Book) {
	for _, sheet := range sheetOrder {
		if rows := o[sheet]; len(rows) > 0 {
			b.Append(sheet, rows...)
		}
	}
}

// Len returns the number of data rows on a sheet.
func (b Book) Len(sheet string) int { return len(b[sheet]) }

// Rows lays out the product and its normalized pricing rows as sheet rows.
func (p Product) Rows(prices []pricing.Row) Book {
	b := Book{}
	b.Append(SheetItemMaster, []string{
		p.Vendor, p.SKU, p.UNSPSC, p.Hazmat, p.Status,
		p.BarcodeType, p.BarcodeNumber, p.QuantityUOM, p.QuantitySize, p.VMRS,
	})
	for _, d := range p.Descriptions {
		b.Append(SheetDescriptions, []string{p.SKU, d.ChangeType, d.Code, d.Value, d.Sequence})
	}
	for _, e := range p.ExtendedInfo {
		b.Append(SheetExtendedInfo, []string{p.SKU, e.ChangeType, e.Code, e.Value})
	}
	for _, a := range p.Attributes {
		b.Append(SheetAttributes, []string{p.SKU, a.ChangeType, a.Name, a.Value})
	}
	for _, ic := range p.Interchanges {
		b.Append(SheetInterchange, []string{p.SKU, ic.ChangeType, ic.BrandLabel, ic.PartNumber})
	}
	for _, pk := range p.Packages {
		b.Append(SheetPackages, []string{p.SKU, pk.ChangeType, pk.UOM, pk.QtyEaches, pk.WeightUOM, pk.Weight})
	}
	for _, a := range p.Assets {
		b.Append(SheetDigitalAssets, []string{p.SKU, a.ChangeType, a.MediaType, a.FileName, a.BlobPath})
	}
	for _, r := range prices {
		b.Append(SheetPricing, r.Values())
	}
	return b
}
