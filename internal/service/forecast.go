package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/bankmint/internal/auditlog"
	"github.com/cleared-dev/bankmint/internal/forecast"
	"github.com/cleared-dev/bankmint/internal/model"
	"github.com/cleared-dev/bankmint/internal/patterns"
	"github.com/cleared-dev/bankmint/internal/recommend"
	"github.com/cleared-dev/bankmint/internal/store"
)

// ForecastRequest selects the horizon and scenario. Zero values take the
// configured defaults; an empty AccountID forecasts across all accounts.
type ForecastRequest struct {
	Weeks           int
	Scenario        forecast.Scenario
	AccountID       string
	CrisisThreshold *decimal.Decimal
}

// ForecastResponse is a forecast plus the signals derived from it.
type ForecastResponse struct {
	AccountID           string
	CurrentCash         decimal.Decimal
	CrisisThreshold     decimal.Decimal
	DailyProjections    []model.ForecastProjection
	WeeklyProjections   []forecast.WeekProjection
	Patterns            []model.RecurringPattern
	CrisisAlerts        []model.CrisisAlert
	LargePayments       []forecast.LargePayment
	ScenarioAnalysis    []forecast.ScenarioOutcome
	Recommendations     []model.Recommendation
	Metrics             forecast.Metrics
	Spending            recommend.Metrics
	Trend               forecast.Trend
	Confidence          float64
	ConfidenceLevel     forecast.ConfidenceLevel
	InsufficientHistory bool
	HistoryDays         int
}

// Patterns detects recurring patterns over the configured lookback window.
// An empty accountID covers all accounts.
func (s *Service) Patterns(ctx context.Context, accountID string) ([]model.RecurringPattern, error) {
	history, err := s.history(ctx, accountID)
	if err != nil {
		return nil, err
	}
	ps := patterns.Detect(history, patterns.Options{Catalog: s.catalog})

	recurring := 0
	for _, p := range ps {
		if p.Recurring() {
			recurring++
		}
	}
	s.record(auditlog.Entry{
		Actor:     auditlog.ActorSystem,
		Action:    auditlog.ActionPatterns,
		AccountID: accountID,
		Details:   fmt.Sprintf("%d patterns (%d recurring) from %d transactions", len(ps), recurring, len(history)),
	})
	oplog := s.opLog(ctx, "patterns", map[string]any{"account_id": accountID})
	oplog.Info().
		Int("transactions", len(history)).Int("patterns", len(ps)).Int("recurring", recurring).
		Msg("patterns detected")
	return ps, nil
}

// Forecast projects the cash balance. Parameters are validated before any
// history is read; invalid ones return an error matching
// forecast.ErrInvalidForecastParameters.
func (s *Service) Forecast(ctx context.Context, req ForecastRequest) (*ForecastResponse, error) {
	fc := s.cfg.Forecast
	p := forecast.Params{
		Weeks:           req.Weeks,
		Scenario:        req.Scenario,
		CrisisThreshold: decimal.NewFromFloat(fc.CrisisThreshold),
	}
	if p.Weeks == 0 {
		p.Weeks = fc.DefaultWeeks
	}
	if p.Scenario == "" {
		p.Scenario = forecast.ScenarioBase
	}
	if req.CrisisThreshold != nil {
		p.CrisisThreshold = *req.CrisisThreshold
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	log := s.opLog(ctx, "forecast", map[string]any{"account_id": req.AccountID})

	balance, err := s.store.Balance(ctx, req.AccountID)
	if err != nil {
		return nil, fmt.Errorf("reading balance: %w", err)
	}
	history, err := s.history(ctx, req.AccountID)
	if err != nil {
		return nil, err
	}
	ps := patterns.Detect(history, patterns.Options{Catalog: s.catalog})

	today := s.today()
	res, err := forecast.Project(forecast.Input{
		Today:           today,
		CurrentBalance:  balance,
		History:         history,
		Patterns:        ps,
		TrendWindowDays: fc.TrendWindowDays,
		MinHistoryDays:  fc.MinHistoryDays,
		LargePayment:    decimal.NewFromFloat(fc.LargePayment),
	}, p)
	if err != nil {
		return nil, err
	}

	spending := recommend.ComputeMetrics(history, today, fc.TrendWindowDays)
	recs := recommend.Generate(recommend.Input{
		Forecast: res,
		Patterns: ps,
		Metrics:  spending,
		Catalog:  s.catalog,
	})

	resp := &ForecastResponse{
		AccountID:           req.AccountID,
		CurrentCash:         balance,
		CrisisThreshold:     p.CrisisThreshold,
		DailyProjections:    res.Daily,
		WeeklyProjections:   res.Weekly,
		Patterns:            ps,
		CrisisAlerts:        res.Alerts,
		LargePayments:       res.LargePayments,
		ScenarioAnalysis:    res.Scenarios,
		Recommendations:     recs,
		Metrics:             res.Metrics,
		Spending:            spending,
		Trend:               res.Trend,
		Confidence:          res.Confidence,
		ConfidenceLevel:     res.ConfidenceLevel,
		InsufficientHistory: res.InsufficientHistory,
		HistoryDays:         res.HistoryDays,
	}

	s.record(auditlog.Entry{
		Actor:     auditlog.ActorSystem,
		Action:    auditlog.ActionForecast,
		AccountID: req.AccountID,
		Details: fmt.Sprintf("%d weeks %s: %d alerts, confidence %.2f (%s)",
			p.Weeks, p.Scenario, len(res.Alerts), res.Confidence, res.ConfidenceLevel),
	})
	log.Info().
		Int("weeks", p.Weeks).
		Str("scenario", string(p.Scenario)).
		Str("current_cash", balance.StringFixed(2)).
		Int("patterns", len(ps)).
		Int("alerts", len(res.Alerts)).
		Float64("confidence", res.Confidence).
		Bool("insufficient_history", res.InsufficientHistory).
		Msg("forecast complete")
	return resp, nil
}

// UploadHistory lists recent import batches, newest first. An empty
// accountID lists all accounts.
func (s *Service) UploadHistory(ctx context.Context, accountID string, limit int) ([]model.Upload, error) {
	return s.store.ListUploads(ctx, accountID, limit)
}

// Transactions lists stored transactions in date order.
func (s *Service) Transactions(ctx context.Context, f store.TransactionFilter) ([]model.Transaction, error) {
	return s.store.ListTransactions(ctx, f)
}

// Accounts lists known accounts with their balances.
func (s *Service) Accounts(ctx context.Context) ([]model.Account, error) {
	return s.store.ListAccounts(ctx)
}

func (s *Service) history(ctx context.Context, accountID string) ([]model.Transaction, error) {
	f := store.TransactionFilter{AccountID: accountID}
	if days := s.cfg.Forecast.PatternLookbackDays; days > 0 {
		f.Since = s.today().AddDate(0, 0, -days)
	}
	txns, err := s.store.ListTransactions(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}
	return txns, nil
}
