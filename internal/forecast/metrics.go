package forecast

import (
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/bankmint/internal/model"
)

// RunwayUnlimited is reported when the projection never burns cash.
const RunwayUnlimited = 999

// CriticalPattern is the criticality above which a pattern is critical.
const CriticalPattern = 0.8

// Metrics are business-level figures derived from a projection.
type Metrics struct {
	RunwayDays               int
	MonthlyRecurringRevenue  decimal.Decimal
	MonthlyRecurringExpenses decimal.Decimal // positive
	PatternCount             int
	CriticalPatternCount     int
}

// MonthlyFactor converts one occurrence of a cadence into a monthly amount.
func MonthlyFactor(f model.Frequency) decimal.Decimal {
	switch f {
	case model.FrequencyWeekly:
		return decimal.NewFromInt(52).Div(decimal.NewFromInt(12))
	case model.FrequencyBiweekly:
		return decimal.NewFromInt(26).Div(decimal.NewFromInt(12))
	case model.FrequencyMonthly:
		return decimal.NewFromInt(1)
	default:
		return decimal.Zero
	}
}

func computeMetrics(balance decimal.Decimal, daily []model.ForecastProjection, pats []model.RecurringPattern) Metrics {
	m := Metrics{
		RunwayDays:               runway(balance, daily),
		MonthlyRecurringRevenue:  decimal.Zero,
		MonthlyRecurringExpenses: decimal.Zero,
	}
	for _, p := range pats {
		if !p.Recurring() {
			continue
		}
		m.PatternCount++
		if p.Criticality > CriticalPattern {
			m.CriticalPatternCount++
		}
		monthly := p.AvgAmount.Mul(MonthlyFactor(p.Frequency))
		if monthly.IsPositive() {
			m.MonthlyRecurringRevenue = m.MonthlyRecurringRevenue.Add(monthly)
		} else {
			m.MonthlyRecurringExpenses = m.MonthlyRecurringExpenses.Add(monthly.Abs())
		}
	}
	m.MonthlyRecurringRevenue = m.MonthlyRecurringRevenue.Round(2)
	m.MonthlyRecurringExpenses = m.MonthlyRecurringExpenses.Round(2)
	return m
}

// runway divides the balance by the average daily net burn over the horizon.
func runway(balance decimal.Decimal, daily []model.ForecastProjection) int {
	if !balance.IsPositive() {
		return 0
	}
	if len(daily) < 2 {
		return RunwayUnlimited
	}
	change := daily[len(daily)-1].Balance.Sub(daily[0].Balance)
	if !change.IsNegative() {
		return RunwayUnlimited
	}
	burn := change.Neg().Div(decimal.NewFromInt(int64(len(daily) - 1)))
	days := balance.Div(burn).IntPart()
	if days > RunwayUnlimited {
		return RunwayUnlimited
	}
	return int(days)
}
