package forecast

import (
	"errors"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"
)

// ErrInvalidForecastParameters is matched by every *ParamError.
var ErrInvalidForecastParameters = errors.New("invalid forecast parameters")

// ParamError describes a rejected forecast parameter.
type ParamError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("%s %q: %s", e.Field, e.Value, e.Reason)
}

func (e *ParamError) Is(target error) bool {
	return target == ErrInvalidForecastParameters
}

// Scenario adjusts projected flows.
type Scenario string

const (
	ScenarioBase        Scenario = "base"
	ScenarioOptimistic  Scenario = "optimistic"
	ScenarioPessimistic Scenario = "pessimistic"
)

// Scenarios lists every scenario in analysis order.
var Scenarios = []Scenario{ScenarioOptimistic, ScenarioBase, ScenarioPessimistic}

// Multipliers returns the revenue and expense scale factors.
func (s Scenario) Multipliers() (revenue, expense decimal.Decimal) {
	switch s {
	case ScenarioOptimistic:
		return decimal.RequireFromString("1.15"), decimal.RequireFromString("0.95")
	case ScenarioPessimistic:
		return decimal.RequireFromString("0.85"), decimal.RequireFromString("1.10")
	default:
		return decimal.NewFromInt(1), decimal.NewFromInt(1)
	}
}

// AllowedWeeks are the supported horizons.
var AllowedWeeks = []int{4, 6, 8}

const (
	DefaultWeeks           = 6
	DefaultTrendWindowDays = 90
	DefaultMinHistoryDays  = 90
	LargePaymentDays       = 14
)

var (
	DefaultCrisisThreshold = decimal.NewFromInt(10000)
	DefaultLargePayment    = decimal.NewFromInt(5000)
)

// Params are the caller-controlled forecast knobs.
type Params struct {
	Weeks           int
	Scenario        Scenario
	CrisisThreshold decimal.Decimal
}

// Validate checks the horizon, scenario and threshold.
func (p Params) Validate() error {
	if !slices.Contains(AllowedWeeks, p.Weeks) {
		return &ParamError{Field: "weeks", Value: fmt.Sprint(p.Weeks), Reason: "must be 4, 6 or 8"}
	}
	if !slices.Contains(Scenarios, p.Scenario) {
		return &ParamError{Field: "scenario", Value: string(p.Scenario), Reason: "must be base, optimistic or pessimistic"}
	}
	if p.CrisisThreshold.IsNegative() {
		return &ParamError{Field: "crisis_threshold", Value: p.CrisisThreshold.String(), Reason: "must not be negative"}
	}
	return nil
}
