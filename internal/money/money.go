// Package money formats decimal amounts for messages and terminal output.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Format renders an amount as dollars with cents and comma separators.
// e.g., -1234.5 -> "-$1,234.50"
func Format(d decimal.Decimal) string {
	return format(d, 2)
}

// FormatWhole renders an amount rounded to whole dollars.
// e.g., 10000 -> "$10,000"
func FormatWhole(d decimal.Decimal) string {
	return format(d, 0)
}

// FormatSigned is Format with an explicit '+' on positive amounts.
func FormatSigned(d decimal.Decimal) string {
	if d.IsPositive() {
		return "+" + Format(d)
	}
	return Format(d)
}

func format(d decimal.Decimal, places int32) string {
	s := d.Abs().StringFixed(places)
	intPart, frac, hasFrac := strings.Cut(s, ".")

	var b strings.Builder
	if d.Round(places).IsNegative() {
		b.WriteByte('-')
	}
	b.WriteByte('$')
	b.WriteString(group(intPart))
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}

// group adds comma separators to a string of digits.
func group(s string) string {
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}
