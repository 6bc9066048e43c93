package forecast

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/bankmint/internal/model"
)

// CategoryFlow is the recurring-pattern flow of one category in a week.
type CategoryFlow struct {
	Category string
	Amount   decimal.Decimal // signed
}

// WeekProjection rolls seven projected days into one week. Categories only
// covers recurring patterns; trend flow has no category.
type WeekProjection struct {
	Week          int // 1-based
	Start         time.Time
	End           time.Time
	EndingBalance decimal.Decimal
	Inflows       decimal.Decimal
	Outflows      decimal.Decimal // non-positive
	NetFlow       decimal.Decimal
	Categories    []CategoryFlow
}

// weekly groups days 1..N of daily into consecutive weeks. Day 0 carries no
// flow and is skipped.
func weekly(daily []model.ForecastProjection, exp []expected) []WeekProjection {
	byWeek := make(map[int]map[string]decimal.Decimal)
	for _, e := range exp {
		w := (e.day-1)/7 + 1
		if byWeek[w] == nil {
			byWeek[w] = make(map[string]decimal.Decimal)
		}
		cat := e.pattern.Category
		if cat == "" {
			cat = model.Uncategorized
		}
		byWeek[w][cat] = byWeek[w][cat].Add(e.amount)
	}

	var out []WeekProjection
	for start := 1; start < len(daily); start += 7 {
		end := min(start+6, len(daily)-1)
		wp := WeekProjection{
			Week:          len(out) + 1,
			Start:         daily[start].Date,
			End:           daily[end].Date,
			EndingBalance: daily[end].Balance,
			Inflows:       decimal.Zero,
			Outflows:      decimal.Zero,
			NetFlow:       decimal.Zero,
		}
		for _, d := range daily[start : end+1] {
			wp.Inflows = wp.Inflows.Add(d.Inflows)
			wp.Outflows = wp.Outflows.Add(d.Outflows)
			wp.NetFlow = wp.NetFlow.Add(d.NetFlow)
		}
		for cat, amt := range byWeek[wp.Week] {
			wp.Categories = append(wp.Categories, CategoryFlow{Category: cat, Amount: amt})
		}
		sort.Slice(wp.Categories, func(i, j int) bool {
			return wp.Categories[i].Category < wp.Categories[j].Category
		})
		out = append(out, wp)
	}
	return out
}
