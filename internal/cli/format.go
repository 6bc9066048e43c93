// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/bankmint/internal/money"
)

// FormatMoney formats an amount with cents.
func FormatMoney(d decimal.Decimal) string {
	return money.Format(d)
}

// FormatSignedMoney formats an amount with an explicit sign on inflows.
func FormatSignedMoney(d decimal.Decimal) string {
	return money.FormatSigned(d)
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
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

// FormatPercent formats a 0-1 float as a percentage string.
func FormatPercent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

// FormatConfidence formats a 0-1 confidence with two decimals.
func FormatConfidence(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// FormatDate formats a calendar date.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}

// FormatDays formats a day offset. e.g., 0 -> "today", 1 -> "1 day", 12 -> "12 days"
func FormatDays(n int) string {
	switch n {
	case 0:
		return "today"
	case 1:
		return "1 day"
	default:
		return fmt.Sprintf("%d days", n)
	}
}

// Truncate shortens s to at most n runes, marking the cut with "...".
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n || n < 4 {
		return s
	}
	return string(r[:n-3]) + "..."
}
