package pricing

import "encoding/json"

// Column is a Pricing sheet column. The order of the constants is the export
// column order and must not change.
type Column int

const (
	ColVendor Column = iota
	ColPartNumber
	ColPricingMethod
	ColCurrency
	ColMOQUnit
	ColMOQ
	ColChangeType
	ColPricingType
	ColListPrice
	ColJobberPrice
	ColDiscountPct
	ColMultiplier
	ColPricingAmount
	ColEHCABMBSKEach
	ColEHCABMBSKCase
	ColEHCBCEach
	ColEHCBCCase
	ColEHCNLEach
	ColEHCNLCase
	ColEHCNSEach
	ColEHCNSCase
	ColEHCNBQCEach
	ColEHCNBQCCase
	ColEHCPEIEach
	ColEHCPEICase
	ColEHCYKEach
	ColEHCYKCase
	ColTierMinQty
	ColTierMaxQty
	ColEffectiveDate
	ColStartDate
	ColEndDate
	ColCorePartNumber
	ColCoreCost
	ColNotes
	columnCount
)

var columnNames = [columnCount]string{
	"Vendor", "Part Number", "Pricing Method", "Currency",
	"MOQ Unit", "MOQ", "Pricing Change Type", "Pricing Type",
	"List Price", "Jobber Price", "Discount %", "Multiplier",
	"Pricing Amount",
	"EHC AB_MB_SK Each", "EHC AB_MB_SK Case",
	"EHC BC Each", "EHC BC Case",
	"EHC NL Each", "EHC NL Case",
	"EHC NS Each", "EHC NS Case",
	"EHC NB_QC Each", "EHC NB_QC Case",
	"EHC PEI Each", "EHC PEI Case",
	"EHC YK Each", "EHC YK Case",
	"Tier Min Qty", "Tier Max Qty",
	"Effective Date", "Start Date", "End Date",
	"Core Part Number", "Core Cost", "Notes",
}

func (c Column) String() string {
	if c < 0 || c >= columnCount {
		return ""
	}
	return columnNames[c]
}

// Columns returns the Pricing sheet header in export order.
func Columns() []string {
	out := make([]string, columnCount)
	copy(out, columnNames[:])
	return out
}

// ehcColumns returns the Each and Case columns of region r.
func ehcColumns(r Region) (each, cas Column) {
	each = ColEHCABMBSKEach + Column(2*r)
	return each, each + 1
}

// Row is one flattened pricing level. Every row has every column; cells that do
// not apply to the level's method hold "".
type Row [columnCount]string

func (r Row) Get(c Column) string { return r[c] }

func (r *Row) Set(c Column, v string) { r[c] = v }

// Values returns the cells in column order.
func (r Row) Values() []string {
	out := make([]string, columnCount)
	copy(out, r[:])
	return out
}

// Map returns the cells keyed by column header.
func (r Row) Map() map[string]string {
	out := make(map[string]string, columnCount)
	for i, name := range columnNames {
		out[name] = r[i]
	}
	return out
}

func (r Row) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Map())
}

func (r *Row) UnmarshalJSON(data []byte) error {
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*r = Row{}
	for i, name := range columnNames {
		r[i] = m[name]
	}
	return nil
}
