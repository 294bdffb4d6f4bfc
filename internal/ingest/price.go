package ingest

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// priceGrammar accepts an optional single currency symbol, digits, and an
// optional fractional part.
var priceGrammar = regexp.MustCompile(`^[$€£¥]?([0-9]+(?:\.[0-9]+)?)$`)

// ParsePrice converts a currency string such as "$3.00" into a decimal.
func ParsePrice(s string) (decimal.Decimal, error) {
	m := priceGrammar.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return decimal.Decimal{}, fmt.Errorf("%w: '%s'", ErrMalformedPrice, s)
	}
	d, err := decimal.NewFromString(m[1])
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: '%s'", ErrMalformedPrice, s)
	}
	return d, nil
}
