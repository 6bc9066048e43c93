package recommend

import (
	"cmp"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/bankmint/internal/model"
)

// CategoryShare is one category's slice of trailing outflows.
type CategoryShare struct {
	Category string
	Amount   decimal.Decimal // positive
	Share    float64
}

// MonthNet is the net flow of one complete calendar month.
type MonthNet struct {
	Month time.Time // first day of the month
	Net   decimal.Decimal
}

// Metrics are spending signals from trailing history.
type Metrics struct {
	TotalOutflow   decimal.Decimal
	CategoryShares []CategoryShare // largest first
	MonthlyNet     []MonthNet      // oldest first
}

// ComputeMetrics summarizes history in the windowDays before today. Only
// calendar months wholly inside the window and before today's month are
// reported in MonthlyNet.
func ComputeMetrics(history []model.Transaction, today time.Time, windowDays int) Metrics {
	today = dateOf(today)
	from := today.AddDate(0, 0, -windowDays)
	thisMonth := monthOf(today)

	firstMonth := monthOf(from)
	if firstMonth.Before(from) {
		firstMonth = firstMonth.AddDate(0, 1, 0)
	}

	m := Metrics{TotalOutflow: decimal.Zero}
	byCategory := make(map[string]decimal.Decimal)
	byMonth := make(map[time.Time]decimal.Decimal)

	for _, t := range history {
		d := dateOf(t.Date)
		if d.Before(from) || d.After(today) {
			continue
		}
		if t.Amount.IsNegative() {
			cat := t.Category
			if cat == "" {
				cat = model.Uncategorized
			}
			byCategory[cat] = byCategory[cat].Add(t.Amount.Abs())
			m.TotalOutflow = m.TotalOutflow.Add(t.Amount.Abs())
		}
		if mo := monthOf(d); !mo.Before(firstMonth) && mo.Before(thisMonth) {
			byMonth[mo] = byMonth[mo].Add(t.Amount)
		}
	}

	for cat, amt := range byCategory {
		share, _ := amt.Div(m.TotalOutflow).Float64()
		m.CategoryShares = append(m.CategoryShares, CategoryShare{Category: cat, Amount: amt, Share: share})
	}
	slices.SortFunc(m.CategoryShares, func(a, b CategoryShare) int {
		if c := b.Amount.Cmp(a.Amount); c != 0 {
			return c
		}
		return cmp.Compare(a.Category, b.Category)
	})

	for mo := firstMonth; mo.Before(thisMonth); mo = mo.AddDate(0, 1, 0) {
		net, ok := byMonth[mo]
		if !ok {
			net = decimal.Zero
		}
		m.MonthlyNet = append(m.MonthlyNet, MonthNet{Month: mo, Net: net})
	}
	return m
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func monthOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
