// Package forecast projects daily cash balances from recurring patterns and
// the residual spending trend.
package forecast

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/bankmint/internal/model"
	"github.com/cleared-dev/bankmint/internal/patterns"
)

// ConfidenceLevel buckets the forecast confidence score.
type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "high"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceLow    ConfidenceLevel = "low"
)

// InsufficientHistoryCap bounds confidence when history is thin.
const InsufficientHistoryCap = 0.3

// Input is everything a projection reads.
type Input struct {
	Today           time.Time
	CurrentBalance  decimal.Decimal
	History         []model.Transaction
	Patterns        []model.RecurringPattern
	TrendWindowDays int
	MinHistoryDays  int
	LargePayment    decimal.Decimal // zero uses DefaultLargePayment
}

// Trend is the average daily flow not explained by recurring patterns.
type Trend struct {
	InflowPerDay  decimal.Decimal
	OutflowPerDay decimal.Decimal // non-positive
}

// LargePayment is a big recurring outflow expected soon.
type LargePayment struct {
	Date          time.Time
	DaysFromToday int
	Vendor        string
	Category      string
	Amount        decimal.Decimal
	Criticality   float64
}

// ScenarioOutcome summarizes one scenario over the horizon.
type ScenarioOutcome struct {
	Scenario       Scenario
	EndingBalance  decimal.Decimal
	MinimumBalance decimal.Decimal
	CrisisDays     int
	CashChange     decimal.Decimal
}

// Result is a complete forecast.
type Result struct {
	Params              Params
	Daily               []model.ForecastProjection
	Weekly              []WeekProjection
	Alerts              []model.CrisisAlert
	LargePayments       []LargePayment
	Scenarios           []ScenarioOutcome
	Metrics             Metrics
	Trend               Trend
	Confidence          float64
	ConfidenceLevel     ConfidenceLevel
	InsufficientHistory bool
	HistoryDays         int
}

// Project validates p and projects in.CurrentBalance forward p.Weeks weeks.
// Day 0 is today with no flows. The projection is deterministic.
func Project(in Input, p Params) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	in = withDefaults(in)

	pl := newPlan(in, p.Weeks*7)
	sim := pl.simulate(in.CurrentBalance, p.Scenario, p.CrisisThreshold)

	res := &Result{
		Params:        p,
		Daily:         sim.daily,
		Weekly:        weekly(sim.daily, sim.expected),
		Alerts:        crisisAlerts(sim.daily, p.CrisisThreshold, in.Patterns),
		LargePayments: largePayments(sim.expected, in.LargePayment),
		Metrics:       computeMetrics(in.CurrentBalance, sim.daily, in.Patterns),
		Trend:         pl.trend,
		HistoryDays:   pl.historyDays,
	}

	for _, s := range Scenarios {
		res.Scenarios = append(res.Scenarios, pl.simulate(in.CurrentBalance, s, p.CrisisThreshold).outcome(s))
	}

	res.InsufficientHistory = pl.historyDays < in.MinHistoryDays || !pl.hasPattern
	res.Confidence = confidence(sim.patternFlow, sim.trendFlow)
	if res.InsufficientHistory {
		res.Confidence = math.Min(res.Confidence, InsufficientHistoryCap)
		res.ConfidenceLevel = ConfidenceLow
	} else {
		res.ConfidenceLevel = levelFor(res.Confidence)
	}
	return res, nil
}

func withDefaults(in Input) Input {
	y, m, d := in.Today.Date()
	in.Today = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	if in.TrendWindowDays <= 0 {
		in.TrendWindowDays = DefaultTrendWindowDays
	}
	if in.MinHistoryDays <= 0 {
		in.MinHistoryDays = DefaultMinHistoryDays
	}
	if !in.LargePayment.IsPositive() {
		in.LargePayment = DefaultLargePayment
	}
	return in
}

// plan holds the scenario-independent inputs of a simulation.
type plan struct {
	today       time.Time
	days        int
	occurrences [][]model.RecurringPattern // by day offset
	trend       Trend
	historyDays int
	hasPattern  bool
}

func newPlan(in Input, days int) plan {
	pl := plan{
		today:       in.Today,
		days:        days,
		occurrences: make([][]model.RecurringPattern, days+1),
	}
	end := in.Today.AddDate(0, 0, days)

	recognized := make(map[patterns.Key]bool)
	for _, p := range in.Patterns {
		if !p.Recurring() || p.IntervalDays <= 0 {
			continue
		}
		pl.hasPattern = true
		recognized[patterns.KeyOf(p)] = true

		first, anchor := dateOf(p.NextExpected), patterns.AnchorDay(p)
		if first.Before(in.Today.AddDate(0, 0, -2*p.IntervalDays)) {
			continue // stale
		}
		n := 0
		next := first
		for !next.After(in.Today) {
			n++
			next = patterns.Occurrence(first, anchor, n, p.Frequency, p.IntervalDays)
		}
		for !next.After(end) {
			day := daysBetween(in.Today, next)
			pl.occurrences[day] = append(pl.occurrences[day], p)
			n++
			next = patterns.Occurrence(first, anchor, n, p.Frequency, p.IntervalDays)
		}
	}

	pl.trend, pl.historyDays = residualTrend(in, recognized)
	return pl
}

// residualTrend averages the flows in the trailing window that no recurring
// pattern accounts for.
func residualTrend(in Input, recognized map[patterns.Key]bool) (Trend, int) {
	if len(in.History) == 0 {
		return Trend{InflowPerDay: decimal.Zero, OutflowPerDay: decimal.Zero}, 0
	}

	earliest := dateOf(in.History[0].Date)
	for _, t := range in.History[1:] {
		if d := dateOf(t.Date); d.Before(earliest) {
			earliest = d
		}
	}
	historyDays := max(daysBetween(earliest, in.Today), 0)

	from := in.Today.AddDate(0, 0, -in.TrendWindowDays)
	inflow, outflow := decimal.Zero, decimal.Zero
	for _, t := range in.History {
		d := dateOf(t.Date)
		if !d.After(from) || d.After(in.Today) {
			continue
		}
		if recognized[patterns.KeyFor(t)] {
			continue
		}
		if t.IsInflow() {
			inflow = inflow.Add(t.Amount)
		} else {
			outflow = outflow.Add(t.Amount)
		}
	}

	span := decimal.NewFromInt(int64(max(min(in.TrendWindowDays, historyDays), 1)))
	return Trend{
		InflowPerDay:  inflow.Div(span).Round(2),
		OutflowPerDay: outflow.Div(span).Round(2),
	}, historyDays
}

type expected struct {
	day     int
	date    time.Time
	pattern model.RecurringPattern
	amount  decimal.Decimal
}

type simulation struct {
	start       decimal.Decimal
	daily       []model.ForecastProjection
	expected    []expected
	patternFlow decimal.Decimal
	trendFlow   decimal.Decimal
}

func (pl plan) simulate(start decimal.Decimal, s Scenario, threshold decimal.Decimal) simulation {
	rev, exp := s.Multipliers()
	scale := func(amt decimal.Decimal) decimal.Decimal {
		if amt.IsPositive() {
			return amt.Mul(rev).Round(2)
		}
		return amt.Mul(exp).Round(2)
	}

	sim := simulation{
		start:       start,
		daily:       make([]model.ForecastProjection, 0, pl.days+1),
		patternFlow: decimal.Zero,
		trendFlow:   decimal.Zero,
	}
	sim.daily = append(sim.daily, model.ForecastProjection{
		Date:          pl.today,
		Balance:       start,
		Inflows:       decimal.Zero,
		Outflows:      decimal.Zero,
		NetFlow:       decimal.Zero,
		CrisisWarning: start.LessThan(threshold),
	})

	trendIn := scale(pl.trend.InflowPerDay)
	trendOut := scale(pl.trend.OutflowPerDay)

	balance := start
	for day := 1; day <= pl.days; day++ {
		date := pl.today.AddDate(0, 0, day)
		inflows, outflows := trendIn, trendOut
		var vendors []string

		for _, p := range pl.occurrences[day] {
			amt := scale(p.AvgAmount)
			if amt.IsPositive() {
				inflows = inflows.Add(amt)
			} else {
				outflows = outflows.Add(amt)
			}
			vendors = append(vendors, p.VendorKey)
			sim.patternFlow = sim.patternFlow.Add(amt.Abs())
			sim.expected = append(sim.expected, expected{day: day, date: date, pattern: p, amount: amt})
		}
		sim.trendFlow = sim.trendFlow.Add(trendIn).Add(trendOut.Abs())

		net := inflows.Add(outflows)
		balance = balance.Add(net)
		sim.daily = append(sim.daily, model.ForecastProjection{
			Date:            date,
			DaysFromToday:   day,
			Balance:         balance,
			Inflows:         inflows,
			Outflows:        outflows,
			NetFlow:         net,
			CrisisWarning:   balance.LessThan(threshold),
			ExpectedVendors: vendors,
		})
	}
	return sim
}

func (sim simulation) outcome(s Scenario) ScenarioOutcome {
	o := ScenarioOutcome{Scenario: s, MinimumBalance: sim.start}
	for _, d := range sim.daily {
		if d.Balance.LessThan(o.MinimumBalance) {
			o.MinimumBalance = d.Balance
		}
		if d.CrisisWarning {
			o.CrisisDays++
		}
	}
	o.EndingBalance = sim.daily[len(sim.daily)-1].Balance
	o.CashChange = o.EndingBalance.Sub(sim.start)
	return o
}

func largePayments(exp []expected, limit decimal.Decimal) []LargePayment {
	var out []LargePayment
	for _, e := range exp {
		if e.day > LargePaymentDays || !e.amount.IsNegative() || e.amount.Abs().LessThan(limit) {
			continue
		}
		out = append(out, LargePayment{
			Date:          e.date,
			DaysFromToday: e.day,
			Vendor:        e.pattern.VendorKey,
			Category:      e.pattern.Category,
			Amount:        e.amount,
			Criticality:   e.pattern.Criticality,
		})
	}
	return out
}

func confidence(patternFlow, trendFlow decimal.Decimal) float64 {
	total := patternFlow.Add(trendFlow)
	if total.IsZero() {
		return 0
	}
	f, _ := patternFlow.Div(total).Float64()
	return math.Round(f*100) / 100
}

func levelFor(c float64) ConfidenceLevel {
	switch {
	case c >= 0.7:
		return ConfidenceHigh
	case c >= 0.4:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func daysBetween(a, b time.Time) int {
	return int(dateOf(b).Sub(dateOf(a)).Hours() / 24)
}
