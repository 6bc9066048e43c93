package forecast

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/bankmint/internal/model"
	"github.com/cleared-dev/bankmint/internal/money"
)

// DeferrableCriticality is the criticality below which an outflow pattern
// counts as deferrable during a shortfall.
const DeferrableCriticality = 0.7

// SeverityFor maps days until a breach onto a severity.
func SeverityFor(days int) model.Severity {
	switch {
	case days <= 7:
		return model.SeverityCritical
	case days <= 14:
		return model.SeverityHigh
	default:
		return model.SeverityMedium
	}
}

// crisisAlerts emits one alert per maximal run of days below threshold.
func crisisAlerts(daily []model.ForecastProjection, threshold decimal.Decimal, pats []model.RecurringPattern) []model.CrisisAlert {
	var alerts []model.CrisisAlert
	for i := 0; i < len(daily); i++ {
		if !daily[i].CrisisWarning {
			continue
		}
		first := daily[i]
		lowest := first.Balance
		for i+1 < len(daily) && daily[i+1].CrisisWarning {
			i++
			if daily[i].Balance.LessThan(lowest) {
				lowest = daily[i].Balance
			}
		}
		alerts = append(alerts, newAlert(first, threshold.Sub(lowest), threshold, pats))
	}
	return alerts
}

func newAlert(first model.ForecastProjection, shortfall, threshold decimal.Decimal, pats []model.RecurringPattern) model.CrisisAlert {
	return model.CrisisAlert{
		Date:          first.Date,
		DaysFromToday: first.DaysFromToday,
		Severity:      SeverityFor(first.DaysFromToday),
		Balance:       first.Balance,
		Shortfall:     shortfall,
		Message: fmt.Sprintf("Cash balance projected to fall below %s in %d days (%s on %s)",
			money.FormatWhole(threshold), first.DaysFromToday, money.Format(first.Balance),
			first.Date.Format("2006-01-02")),
		RecommendedActions: crisisActions(shortfall, pats),
	}
}

func crisisActions(shortfall decimal.Decimal, pats []model.RecurringPattern) []string {
	actions := []string{"Contact clients to accelerate outstanding invoice payments"}

	deferrable := decimal.Zero
	for _, p := range pats {
		if p.Recurring() && p.Direction == model.DirectionOutflow && p.Criticality < DeferrableCriticality {
			deferrable = deferrable.Add(p.AvgAmount.Abs())
		}
	}
	if deferrable.IsPositive() {
		actions = append(actions, fmt.Sprintf("Consider deferring %s in non-critical recurring payments", money.FormatWhole(deferrable)))
	}

	credit := shortfall.Mul(decimal.RequireFromString("1.5"))
	actions = append(actions,
		fmt.Sprintf("Ensure a %s line of credit is available", money.FormatWhole(credit)),
		"Review subscriptions and cancel unused services",
	)
	return actions
}
