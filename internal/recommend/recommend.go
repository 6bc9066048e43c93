// Package recommend turns forecast signals into suggested actions.
package recommend

import (
	"fmt"
	"slices"
	"strings"

	"github.com/cleared-dev/bankmint/internal/category"
	"github.com/cleared-dev/bankmint/internal/forecast"
	"github.com/cleared-dev/bankmint/internal/model"
	"github.com/cleared-dev/bankmint/internal/money"
)

// Thresholds for the rule table.
const (
	ReserveRunwayDays  = 90
	UrgentRunwayDays   = 30
	ConcentrationShare = 0.40
	NegativeMonths     = 2
)

// Recommendation categories.
const (
	CategoryCashFlow    = "cash-flow"
	CategoryReserve     = "cash-reserve"
	CategoryCostReview  = "cost-review"
	CategoryRevenue     = "revenue-growth"
	CategoryExpenseCut  = "expense-cut"
	CategoryDataQuality = "data-quality"
)

// Input is everything Generate reads.
type Input struct {
	Forecast *forecast.Result
	Patterns []model.RecurringPattern
	Metrics  Metrics
	Catalog  *category.Catalog // nil uses the default catalog
}

// Generate applies the rule table and returns recommendations ordered by
// priority. Rules that fire at the same priority keep table order.
func Generate(in Input) []model.Recommendation {
	if in.Catalog == nil {
		in.Catalog = category.NewCatalog(category.Defaults())
	}

	var recs []model.Recommendation
	if in.Forecast != nil {
		recs = append(recs, shortfall(in.Forecast)...)
		recs = append(recs, reserve(in.Forecast)...)
	}
	recs = append(recs, concentration(in.Metrics)...)
	recs = append(recs, netTrend(in)...)
	if in.Forecast != nil && in.Forecast.ConfidenceLevel == forecast.ConfidenceLow {
		recs = append(recs, dataQuality(in.Forecast, in.Patterns))
	}

	slices.SortStableFunc(recs, func(a, b model.Recommendation) int {
		return a.Priority.Rank() - b.Priority.Rank()
	})
	return recs
}

func shortfall(f *forecast.Result) []model.Recommendation {
	for _, a := range f.Alerts {
		if a.Severity != model.SeverityCritical && a.Severity != model.SeverityHigh {
			continue
		}
		return []model.Recommendation{{
			Title:       "Address projected cash shortfall",
			Description: a.Message,
			Priority:    model.PriorityHigh,
			Category:    CategoryCashFlow,
			Actions:     a.RecommendedActions,
		}}
	}
	return nil
}

func reserve(f *forecast.Result) []model.Recommendation {
	days := f.Metrics.RunwayDays
	if days >= ReserveRunwayDays {
		return nil
	}
	prio := model.PriorityMedium
	if days < UrgentRunwayDays {
		prio = model.PriorityHigh
	}
	return []model.Recommendation{{
		Title:       "Build a cash reserve",
		Description: fmt.Sprintf("Projected cash runway is %d days; aim for at least %d.", days, ReserveRunwayDays),
		Priority:    prio,
		Category:    CategoryReserve,
		Actions: []string{
			"Set aside a fixed share of each customer payment",
			"Open or extend a business line of credit before it is needed",
		},
	}}
}

func concentration(m Metrics) []model.Recommendation {
	var recs []model.Recommendation
	for _, s := range m.CategoryShares {
		if s.Share <= ConcentrationShare || s.Category == model.Uncategorized || s.Category == category.Transfers {
			continue
		}
		recs = append(recs, model.Recommendation{
			Title: fmt.Sprintf("Review %s spending", s.Category),
			Description: fmt.Sprintf("%s accounts for %.0f%% of recent outflows (%s).",
				s.Category, s.Share*100, money.FormatWhole(s.Amount)),
			Priority: model.PriorityMedium,
			Category: CategoryCostReview,
			Actions: []string{
				"Compare vendor pricing and renegotiate contracts",
				"Check for duplicate or unused services",
			},
		})
	}
	return recs
}

func netTrend(in Input) []model.Recommendation {
	sustained := sustainedLosses(in.Metrics.MonthlyNet)
	trending := false
	if in.Forecast != nil {
		trending = in.Forecast.Trend.InflowPerDay.Add(in.Forecast.Trend.OutflowPerDay).IsNegative()
	}
	if !sustained && !trending {
		return nil
	}

	var recs []model.Recommendation
	if sustained {
		recs = append(recs, model.Recommendation{
			Title:       "Grow revenue",
			Description: fmt.Sprintf("Net cash flow has been negative for %d consecutive months.", len(in.Metrics.MonthlyNet)),
			Priority:    model.PriorityHigh,
			Category:    CategoryRevenue,
			Actions: []string{
				"Follow up on overdue invoices",
				"Offer early-payment discounts to key customers",
				"Review pricing against current costs",
			},
		})
	}
	recs = append(recs, model.Recommendation{
		Title:       "Cut discretionary expenses",
		Description: "Spending is outpacing income.",
		Priority:    model.PriorityMedium,
		Category:    CategoryExpenseCut,
		Actions:     discretionaryActions(in),
	})
	return recs
}

func sustainedLosses(months []MonthNet) bool {
	if len(months) < NegativeMonths {
		return false
	}
	for _, m := range months {
		if !m.Net.IsNegative() {
			return false
		}
	}
	return true
}

func discretionaryActions(in Input) []string {
	var cats []string
	for _, s := range in.Metrics.CategoryShares {
		if in.Catalog.ClassOf(s.Category) == category.ClassDiscretionary {
			cats = append(cats, fmt.Sprintf("%s (%s)", s.Category, money.FormatWhole(s.Amount)))
		}
	}
	actions := []string{"Pause non-essential subscriptions"}
	if len(cats) > 0 {
		actions = append(actions, "Reduce "+strings.Join(cats, ", "))
	}
	return actions
}

func dataQuality(f *forecast.Result, pats []model.RecurringPattern) model.Recommendation {
	desc := fmt.Sprintf("Forecast confidence is %.0f%%.", f.Confidence*100)
	if f.InsufficientHistory {
		desc += fmt.Sprintf(" Only %d days of history and %d recurring patterns are available.", f.HistoryDays, recurringCount(pats))
	}
	return model.Recommendation{
		Title:       "Improve forecast data quality",
		Description: desc,
		Priority:    model.PriorityLow,
		Category:    CategoryDataQuality,
		Actions: []string{
			"Import at least three months of statements",
			"Review pending transactions so categories stay accurate",
		},
	}
}

func recurringCount(pats []model.RecurringPattern) int {
	n := 0
	for _, p := range pats {
		if p.Recurring() {
			n++
		}
	}
	return n
}
