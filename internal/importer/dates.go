package importer

import (
	"strings"
	"time"
)

// DateFamily groups date layouts that share a field order.
type DateFamily string

const (
	DateISO  DateFamily = "iso"  // year-month-day
	DateUS   DateFamily = "us"   // month-day-year
	DateEU   DateFamily = "eu"   // day-month-year
	DateText DateFamily = "text" // month names
)

// dateFamilies is the default preference order.
var dateFamilies = []DateFamily{DateISO, DateUS, DateEU, DateText}

// Single-digit layout elements ("1", "2") accept one or two digits.
var dateLayouts = map[DateFamily][]string{
	DateISO: {
		"2006-1-2", "2006/1/2", "2006.1.2", "20060102",
		time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05",
	},
	DateUS: {"1/2/2006", "1-2-2006", "1/2/06", "1-2-06"},
	DateEU: {"2/1/2006", "2.1.2006", "2-1-2006", "2/1/06", "2.1.06"},
	DateText: {
		"Jan 2, 2006", "January 2, 2006", "Jan 2 2006", "2 Jan 2006",
		"2 January 2006", "02-Jan-2006", "2-Jan-06",
	},
}

const (
	minYear = 1900
	maxYear = 2100
)

// parseFamily parses s with any layout of the family. Impossible dates such
// as 02/30/2024 fail every layout because time.Parse validates day ranges.
func parseFamily(f DateFamily, s string) (time.Time, bool) {
	for _, layout := range dateLayouts[f] {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		if t.Year() < minYear || t.Year() > maxYear {
			continue
		}
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}

// dateOrder ranks families by how many of the file's date values they parse,
// so an unambiguous 13/04/2024 elsewhere in the file settles 03/04/2024.
// Ties keep the default order.
func dateOrder(values []string) []DateFamily {
	counts := make(map[DateFamily]int, len(dateFamilies))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		for _, f := range dateFamilies {
			if _, ok := parseFamily(f, v); ok {
				counts[f]++
			}
		}
	}

	order := make([]DateFamily, len(dateFamilies))
	copy(order, dateFamilies)
	// Insertion sort keeps ties stable.
	for i := 1; i < len(order); i++ {
		for j := i; j > 0 && counts[order[j]] > counts[order[j-1]]; j-- {
			order[j], order[j-1] = order[j-1], order[j]
		}
	}
	return order
}

// parseDate tries families in order and reports which one matched.
func parseDate(s string, order []DateFamily) (time.Time, DateFamily, bool) {
	s = strings.TrimSpace(s)
	for _, f := range order {
		if t, ok := parseFamily(f, s); ok {
			return t, f, true
		}
	}
	return time.Time{}, "", false
}
