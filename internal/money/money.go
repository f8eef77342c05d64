// Package money holds the decimal arithmetic used for PO values, GST and payment caps.
// Amounts are stored as float64 columns and rounded to two places on every write.
package money

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Places is the number of decimal places every stored amount is rounded to.
const Places = 2

// Parse reads a numeric string. Anything that is not a number counts as zero.
func Parse(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// LineValue is qty × rate rounded to two decimals.
func LineValue(qty, rate decimal.Decimal) decimal.Decimal {
	return qty.Mul(rate).Round(Places)
}

// Round rounds a float amount to two decimals.
func Round(v float64) float64 {
	return decimal.NewFromFloat(v).Round(Places).InexactFloat64()
}

// Sum adds float amounts without accumulating binary rounding error.
func Sum(values ...float64) float64 {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(decimal.NewFromFloat(v))
	}
	return total.Round(Places).InexactFloat64()
}

// Percent returns pct% of amount, rounded.
func Percent(amount, pct float64) float64 {
	return decimal.NewFromFloat(amount).
		Mul(decimal.NewFromFloat(pct)).
		Div(decimal.NewFromInt(100)).
		Round(Places).
		InexactFloat64()
}

// Flex is a number that unmarshals from a JSON number or a JSON string.
// Form inputs arrive as strings; non-numeric text decodes to zero instead of failing.
type Flex struct {
	decimal.Decimal
}

// NewFlex wraps a float.
func NewFlex(v float64) Flex {
	return Flex{decimal.NewFromFloat(v)}
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *Flex) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		f.Decimal = decimal.Zero
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		f.Decimal = Parse(s)
		return nil
	}
	f.Decimal = Parse(string(data))
	return nil
}

// MarshalJSON writes the value as a bare JSON number.
func (f Flex) MarshalJSON() ([]byte, error) {
	return []byte(f.Decimal.String()), nil
}

// Float returns the value rounded to two decimals.
func (f Flex) Float() float64 {
	return f.Decimal.Round(Places).InexactFloat64()
}

// Int returns the integer part of the value.
func (f Flex) Int() int {
	return int(f.Decimal.IntPart())
}
