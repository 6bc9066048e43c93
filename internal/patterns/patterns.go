// Package patterns detects recurring vendor cash flows in transaction history.
package patterns

import (
	"cmp"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/bankmint/internal/category"
	"github.com/cleared-dev/bankmint/internal/model"
	"github.com/cleared-dev/bankmint/internal/vendor"
)

// DefaultMinOccurrences is the smallest group that can form a pattern.
const DefaultMinOccurrences = 3

// RegularFraction is the share of intervals that must fall inside a
// frequency's tolerance for the pattern to count as regular.
const RegularFraction = 0.75

type cadence struct {
	freq      model.Frequency
	days      int
	tolerance int
}

var cadences = []cadence{
	{model.FrequencyWeekly, 7, 2},
	{model.FrequencyBiweekly, 14, 2},
	{model.FrequencyMonthly, 30, 3},
}

// Options configures Detect.
type Options struct {
	MinOccurrences int
	Catalog        *category.Catalog // nil uses the default catalog
}

// Key identifies a group of transactions from the same vendor flowing in
// the same direction.
type Key struct {
	Vendor    string
	Direction model.Direction
}

// KeyFor returns the grouping key of a transaction. The vendor is empty when
// the description carries no usable token.
func KeyFor(t model.Transaction) Key {
	v := t.Vendor
	if v == "" {
		v = vendor.Token(t.NormalizedDescription)
	}
	return Key{Vendor: v, Direction: model.DirectionOf(t.Amount)}
}

// KeyOf returns the grouping key of a detected pattern.
func KeyOf(p model.RecurringPattern) Key {
	return Key{Vendor: p.VendorKey, Direction: p.Direction}
}

// Detect groups txns by vendor and direction and classifies each group's
// cadence. Groups smaller than MinOccurrences are dropped. Irregular groups
// are returned with FrequencyIrregular so callers can list them; the
// forecast ignores them.
func Detect(txns []model.Transaction, opts Options) []model.RecurringPattern {
	if opts.MinOccurrences <= 0 {
		opts.MinOccurrences = DefaultMinOccurrences
	}
	if opts.Catalog == nil {
		opts.Catalog = category.NewCatalog(category.Defaults())
	}

	groups := make(map[Key][]model.Transaction)
	for _, t := range txns {
		if t.Amount.IsZero() {
			continue
		}
		k := KeyFor(t)
		if k.Vendor == "" {
			continue
		}
		groups[k] = append(groups[k], t)
	}

	var out []model.RecurringPattern
	for k, g := range groups {
		if len(g) < opts.MinOccurrences {
			continue
		}
		out = append(out, analyze(k, g, opts.Catalog))
	}

	slices.SortFunc(out, func(a, b model.RecurringPattern) int {
		if c := cmp.Compare(b.Criticality, a.Criticality); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Confidence, a.Confidence); c != 0 {
			return c
		}
		if c := cmp.Compare(a.VendorKey, b.VendorKey); c != 0 {
			return c
		}
		return cmp.Compare(a.Direction, b.Direction)
	})
	return out
}

func analyze(k Key, g []model.Transaction, catalog *category.Catalog) model.RecurringPattern {
	slices.SortStableFunc(g, func(a, b model.Transaction) int { return a.Date.Compare(b.Date) })

	deltas := make([]int, 0, len(g)-1)
	for i := 1; i < len(g); i++ {
		deltas = append(deltas, daysBetween(g[i-1].Date, g[i].Date))
	}

	freq, interval, fraction := classify(deltas)

	total := decimal.Zero
	for _, t := range g {
		total = total.Add(t.Amount)
	}
	avg := total.Div(decimal.NewFromInt(int64(len(g)))).Round(2)

	last := g[len(g)-1].Date
	p := model.RecurringPattern{
		VendorKey:    k.Vendor,
		Category:     dominantCategory(g),
		Direction:    k.Direction,
		AvgAmount:    avg,
		Frequency:    freq,
		IntervalDays: interval,
		Occurrences:  len(g),
		LastDate:     last,
		NextExpected: Advance(last, freq, interval),
		Confidence:   round2(fraction),
	}

	class := catalog.ClassOf(p.Category)
	if class == category.ClassOther {
		class = inferClass(k.Vendor)
	}
	p.Criticality = round2(clamp(0.8*class.Weight() + 0.2*p.Confidence))
	return p
}

// classify picks the cadence with the highest in-tolerance fraction. Ties go
// to the shorter cadence. Below RegularFraction the group is irregular with
// the median delta as its interval.
func classify(deltas []int) (model.Frequency, int, float64) {
	best := -1
	bestFrac := 0.0
	for i, c := range cadences {
		hits := 0
		for _, d := range deltas {
			if abs(d-c.days) <= c.tolerance {
				hits++
			}
		}
		frac := float64(hits) / float64(len(deltas))
		if frac > bestFrac {
			best, bestFrac = i, frac
		}
	}
	if best >= 0 && bestFrac >= RegularFraction {
		return cadences[best].freq, cadences[best].days, bestFrac
	}
	return model.FrequencyIrregular, median(deltas), bestFrac
}

// Advance returns the occurrence after from for the given cadence. Monthly
// patterns move one calendar month, clamped to the month's last day.
func Advance(from time.Time, freq model.Frequency, intervalDays int) time.Time {
	return Occurrence(from, from.Day(), 1, freq, intervalDays)
}

// Occurrence returns the n-th occurrence after first; n=0 is first itself.
// Monthly occurrences land on anchorDay, clamped to each month's last day,
// so a month-end cadence does not drift after a short month.
func Occurrence(first time.Time, anchorDay, n int, freq model.Frequency, intervalDays int) time.Time {
	if freq == model.FrequencyMonthly {
		if n == 0 {
			return first
		}
		return addMonths(first, anchorDay, n)
	}
	if intervalDays < 1 {
		intervalDays = 1
	}
	return first.AddDate(0, 0, n*intervalDays)
}

// AnchorDay is the day of month a monthly pattern recurs on.
func AnchorDay(p model.RecurringPattern) int {
	if !p.LastDate.IsZero() {
		return p.LastDate.Day()
	}
	return p.NextExpected.Day()
}

func addMonths(t time.Time, day, n int) time.Time {
	y, m, _ := t.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	if lastDay := first.AddDate(0, 1, -1).Day(); day > lastDay {
		day = lastDay
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, t.Location())
}

func dominantCategory(g []model.Transaction) string {
	counts := make(map[string]int)
	for _, t := range g {
		if t.Category != "" {
			counts[t.Category]++
		}
	}
	best, bestN := model.Uncategorized, 0
	for c, n := range counts {
		if n > bestN || (n == bestN && c < best) {
			best, bestN = c, n
		}
	}
	return best
}

var classKeywords = []struct {
	class    category.Class
	keywords []string
}{
	{category.ClassPayroll, []string{"payroll", "gusto", "adp", "paychex", "salary", "wages"}},
	{category.ClassRent, []string{"rent", "lease", "landlord"}},
	{category.ClassDebt, []string{"loan", "credit", "mortgage"}},
	{category.ClassTax, []string{"irs", "tax", "eftps"}},
	{category.ClassInsurance, []string{"insurance"}},
	{category.ClassUtilities, []string{"utilities", "electric", "water", "comcast", "verizon", "pg&e"}},
	{category.ClassSoftware, []string{"saas", "software", "aws", "google", "microsoft", "adobe"}},
}

func inferClass(vendorKey string) category.Class {
	for _, ck := range classKeywords {
		for _, kw := range ck.keywords {
			if strings.Contains(vendorKey, kw) {
				return ck.class
			}
		}
	}
	return category.ClassOther
}

func daysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	da := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}

func median(xs []int) int {
	if len(xs) == 0 {
		return 0
	}
	s := slices.Clone(xs)
	slices.Sort(s)
	mid := len(s) / 2
	if len(s)%2 == 1 {
		return s[mid]
	}
	return (s[mid-1] + s[mid]) / 2
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
