package pricing

import (
	"time"

	"github.com/shopspring/decimal"
)

const isoDate = "2006-01-02"

// maxExponent bounds the exponent of a form number; anything beyond it is not
// numeric.
const maxExponent = 30

var (
	zero = decimal.Zero
	one  = decimal.NewFromInt(1)
)

func parseNumber(s string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	if exp := d.Exponent(); exp > maxExponent || exp < -maxExponent {
		return decimal.Zero, false
	}
	return d, true
}

func isNumber(s string) bool {
	_, ok := parseNumber(s)
	return ok
}

func isDate(s string) bool {
	_, err := time.Parse(isoDate, s)
	return err == nil
}

// discountedAmount computes base*(1-discount) to 4 places. A discount that does
// not parse counts as zero; a base that does not parse is returned unchanged.
func discountedAmount(base, discount string) string {
	b, ok := parseNumber(base)
	if !ok {
		return base
	}
	d, ok := parseNumber(discount)
	if !ok {
		d = decimal.Zero
	}
	return b.Mul(one.Sub(d)).StringFixed(4)
}
