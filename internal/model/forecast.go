package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Frequency classifies the cadence of a recurring pattern.
type Frequency string

const (
	FrequencyWeekly    Frequency = "weekly"
	FrequencyBiweekly  Frequency = "biweekly"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyIrregular Frequency = "irregular"
)

// Direction is the cash direction of a pattern.
type Direction string

const (
	DirectionInflow  Direction = "inflow"
	DirectionOutflow Direction = "outflow"
)

// DirectionOf returns the direction of a signed amount.
func DirectionOf(amount decimal.Decimal) Direction {
	if amount.IsPositive() {
		return DirectionInflow
	}
	return DirectionOutflow
}

// RecurringPattern is a vendor-level cash flow that repeats at a regular interval.
type RecurringPattern struct {
	VendorKey    string
	Category     string
	Direction    Direction
	AvgAmount    decimal.Decimal // signed
	Frequency    Frequency
	IntervalDays int
	Occurrences  int
	LastDate     time.Time
	NextExpected time.Time
	Confidence   float64
	Criticality  float64
}

// Recurring reports whether the pattern is regular enough to forecast.
func (p RecurringPattern) Recurring() bool {
	return p.Frequency != FrequencyIrregular
}

// ForecastProjection is one projected day.
type ForecastProjection struct {
	Date            time.Time
	DaysFromToday   int
	Balance         decimal.Decimal
	Inflows         decimal.Decimal
	Outflows        decimal.Decimal // non-positive
	NetFlow         decimal.Decimal
	CrisisWarning   bool
	ExpectedVendors []string
}

// Severity ranks crisis alerts.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
)

// CrisisAlert flags a projected drop below the crisis threshold.
type CrisisAlert struct {
	Date               time.Time
	DaysFromToday      int
	Severity           Severity
	Balance            decimal.Decimal
	Shortfall          decimal.Decimal
	Message            string
	RecommendedActions []string
}

// Priority ranks recommendations.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Rank orders priorities, high first.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	default:
		return 2
	}
}

// Recommendation is a suggested action derived from forecast signals.
type Recommendation struct {
	Title       string
	Description string
	Priority    Priority
	Category    string
	Actions     []string
}
