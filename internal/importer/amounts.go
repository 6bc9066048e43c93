package importer

import (
	"errors"
	"regexp"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// DecimalStyle is the decimal separator convention of a file.
type DecimalStyle string

const (
	StyleAuto  DecimalStyle = "auto"  // decide per value
	StylePoint DecimalStyle = "point" // 1,234.56
	StyleComma DecimalStyle = "comma" // 1.234,56
)

var (
	errEmptyAmount   = errors.New("empty amount")
	errInvalidAmount = errors.New("not a number")

	commaDecimalRe = regexp.MustCompile(`,\d{1,2}$`)
	pointDecimalRe = regexp.MustCompile(`\.\d{1,2}$`)
	plainNumberRe  = regexp.MustCompile(`^\d*\.?\d+$|^\d+\.$`)
)

const currencySymbols = "$£€¥₹"

// inferStyle looks at every amount value in the file and picks the
// convention with more evidence. Semicolon-delimited files lean European
// when the values are inconclusive.
func inferStyle(values []string, delim rune) DecimalStyle {
	comma, point := 0, 0
	for _, v := range values {
		v = strings.TrimRight(strings.TrimSpace(v), ")-")
		v = strings.TrimRightFunc(v, unicode.IsLetter)
		v = strings.TrimSpace(v)
		switch {
		case commaDecimalRe.MatchString(v):
			comma++
		case pointDecimalRe.MatchString(v):
			point++
		}
	}
	switch {
	case comma > point:
		return StyleComma
	case point > comma:
		return StylePoint
	case delim == ';':
		return StyleComma
	}
	return StyleAuto
}

// ParseAmount parses a bank amount such as "$1,234.56", "(45.00)",
// "1.234,56 EUR" or "12.50-". Negative markers are a leading or trailing
// minus, parentheses, or a DR suffix.
func ParseAmount(s string, style DecimalStyle) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, errEmptyAmount
	}

	var b strings.Builder
	for _, r := range s {
		if strings.ContainsRune(currencySymbols, r) || r == '\'' || unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	s = b.String()
	if s == "" {
		return decimal.Zero, errEmptyAmount
	}

	neg := false
	upper := strings.ToUpper(s)
	switch {
	case strings.HasSuffix(upper, "DR"):
		neg = true
		s = s[:len(s)-2]
	case strings.HasSuffix(upper, "CR"):
		s = s[:len(s)-2]
	}
	s = strings.TrimFunc(s, func(r rune) bool { return r < unicode.MaxASCII && unicode.IsLetter(r) })

	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = s[1 : len(s)-1]
	}
	switch {
	case strings.HasPrefix(s, "-"):
		neg = true
		s = s[1:]
	case strings.HasSuffix(s, "-"):
		neg = true
		s = s[:len(s)-1]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}
	if s == "" {
		return decimal.Zero, errInvalidAmount
	}

	s = normalizeSeparators(s, style)
	if !plainNumberRe.MatchString(s) {
		return decimal.Zero, errInvalidAmount
	}

	s = strings.TrimSuffix(s, ".")
	if strings.HasPrefix(s, ".") {
		s = "0" + s
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, errInvalidAmount
	}
	if neg {
		d = d.Neg()
	}
	return d, nil
}

// normalizeSeparators rewrites s so that '.' is the only decimal separator
// and thousands separators are gone.
func normalizeSeparators(s string, style DecimalStyle) string {
	switch style {
	case StyleComma:
		return strings.ReplaceAll(strings.ReplaceAll(s, ".", ""), ",", ".")
	case StylePoint:
		return strings.ReplaceAll(s, ",", "")
	}

	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")
	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			return normalizeSeparators(s, StyleComma)
		}
		return normalizeSeparators(s, StylePoint)
	case lastComma >= 0:
		if strings.Count(s, ",") > 1 || len(s)-lastComma-1 == 3 {
			return strings.ReplaceAll(s, ",", "")
		}
		return strings.Replace(s, ",", ".", 1)
	case lastDot >= 0:
		if strings.Count(s, ".") > 1 || len(s)-lastDot-1 == 3 {
			return strings.ReplaceAll(s, ".", "")
		}
	}
	return s
}
