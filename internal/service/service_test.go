package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/bankmint/internal/auditlog"
	"github.com/cleared-dev/bankmint/internal/categorize"
	"github.com/cleared-dev/bankmint/internal/category"
	"github.com/cleared-dev/bankmint/internal/forecast"
	"github.com/cleared-dev/bankmint/internal/importer"
	"github.com/cleared-dev/bankmint/internal/logger"
	"github.com/cleared-dev/bankmint/internal/model"
	"github.com/cleared-dev/bankmint/internal/recommend"
	"github.com/cleared-dev/bankmint/internal/store"
)

type fixture struct {
	svc   *Service
	store *store.Store
	audit *auditlog.Log
}

func newFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "bankmint.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	audit := auditlog.New(filepath.Join(dir, "logs"))
	svc := New(st, Options{
		Audit: audit,
		Now:   func() time.Time { return now },
	})
	return &fixture{svc: svc, store: st, audit: audit}
}

func readTestdata(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", "testdata", name))
	require.NoError(t, err)
	return data
}

type row struct {
	date   string
	desc   string
	amount string
}

func csvOf(rows ...row) []byte {
	var b strings.Builder
	b.WriteString("Date,Description,Amount\n")
	for _, r := range rows {
		fmt.Fprintf(&b, "%s,%s,%s\n", r.date, r.desc, r.amount)
	}
	return []byte(b.String())
}

func TestUploadIdempotent(t *testing.T) {
	f := newFixture(t, time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC))
	ctx := context.Background()
	data := readTestdata(t, "office_supplies.csv")

	first, err := f.svc.Upload(ctx, data, UploadOptions{FileName: "office_supplies.csv"})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Imported)
	assert.Equal(t, 0, first.Duplicates)
	assert.Equal(t, model.DefaultAccountID, first.AccountID)
	require.Len(t, first.Transactions, 1)

	txn := first.Transactions[0]
	assert.Equal(t, category.OfficeExpenses, txn.Category)
	assert.Equal(t, model.TierHeuristic, txn.Explanation.Tier)
	assert.Equal(t, model.StatusCategorized, txn.Status)
	assert.True(t, decimal.RequireFromString("-150").Equal(first.AmountSummary.Net))
	assert.InDelta(t, 100.0, first.CategorizedPct, 0.001)

	second, err := f.svc.Upload(ctx, data, UploadOptions{FileName: "office_supplies.csv"})
	require.NoError(t, err)
	assert.Equal(t, 0, second.Imported)
	assert.Equal(t, 1, second.Duplicates)

	txns, err := f.store.ListTransactions(ctx, store.TransactionFilter{})
	require.NoError(t, err)
	assert.Len(t, txns, 1)

	balance, err := f.store.Balance(ctx, model.DefaultAccountID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("-150").Equal(balance))

	ups, err := f.svc.UploadHistory(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, ups, 2)

	entries, err := f.audit.Read()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, auditlog.ActionImport, entries[0].Action)
}

func TestOperationsLogThroughContextLogger(t *testing.T) {
	f := newFixture(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
	var buf bytes.Buffer
	ctx := logger.WithContext(context.Background(), logger.NewWithWriter(&buf))

	_, err := f.svc.Upload(ctx, csvOf(row{"2024-01-10", "UBER TRIP", "-18.00"}), UploadOptions{FileName: "jan.csv"})
	require.NoError(t, err)
	_, err = f.svc.CreateRule(ctx, model.Rule{Pattern: "uber", MatchType: model.MatchContains, Category: category.Travel, Confidence: 0.9})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"component":"service"`)
	assert.Contains(t, out, `"op":"upload"`)
	assert.Contains(t, out, `"file":"jan.csv"`)
	assert.Contains(t, out, `"op":"create_rule"`)
}

func TestUploadWithinFileDuplicate(t *testing.T) {
	f := newFixture(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
	data := csvOf(
		row{"2024-01-02", "Starbucks #123", "-4.50"},
		row{"2024-01-02", "Starbucks #123", "-4.50"},
		row{"2024-01-03", "Starbucks #123", "-4.50"},
	)

	res, err := f.svc.Upload(context.Background(), data, UploadOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Imported)
	assert.Equal(t, 1, res.Duplicates)
	assert.Equal(t, 3, res.TotalProcessed)
}

func TestUploadMissingDescriptionStoresNothing(t *testing.T) {
	f := newFixture(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
	ctx := context.Background()

	_, err := f.svc.Upload(ctx, readTestdata(t, "missing_description.csv"), UploadOptions{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, importer.ErrMissingRequiredColumns))
	assert.True(t, errors.Is(err, importer.ErrMalformedFile))

	txns, err := f.store.ListTransactions(ctx, store.TransactionFilter{})
	require.NoError(t, err)
	assert.Empty(t, txns)

	ups, err := f.svc.UploadHistory(ctx, "", 0)
	require.NoError(t, err)
	assert.Empty(t, ups)
}

func TestUploadRowErrorsSkipped(t *testing.T) {
	f := newFixture(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
	data := csvOf(
		row{"2024-01-02", "Gusto Payroll", "-2500.00"},
		row{"not a date", "Mystery", "-1.00"},
		row{"2024-01-04", "Stripe Payout", "abc"},
	)

	res, err := f.svc.Upload(context.Background(), data, UploadOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Imported)
	assert.Equal(t, 2, res.ParseErrors)
	assert.Len(t, res.RowErrors, 2)
}

func TestUploadConcurrentIdenticalImportsOnce(t *testing.T) {
	f := newFixture(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
	data := csvOf(
		row{"2024-01-02", "Adobe Creative Cloud", "-54.99"},
		row{"2024-01-05", "Stripe Payout", "1200.00"},
		row{"2024-01-09", "Comcast Business", "-89.00"},
	)

	const n = 6
	results := make([]*UploadResult, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = f.svc.Upload(context.Background(), data, UploadOptions{AccountID: "ops"})
		}()
	}
	wg.Wait()

	imported, duplicates := 0, 0
	for i := range n {
		require.NoError(t, errs[i])
		imported += results[i].Imported
		duplicates += results[i].Duplicates
	}
	assert.Equal(t, 3, imported)
	assert.Equal(t, 3*(n-1), duplicates)

	balance, err := f.store.Balance(context.Background(), "ops")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("1056.01").Equal(balance), balance.String())
}

func TestUploadConfidenceBounds(t *testing.T) {
	f := newFixture(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	data := csvOf(
		row{"2024-02-01", "Gusto Payroll 0412 PPD", "-8200.00"},
		row{"2024-02-02", "XYZZY 99812", "-12.00"},
		row{"2024-02-03", "Stripe Payout", "4300.00"},
		row{"2024-02-04", "Transfer to savings", "-1000.00"},
		row{"2024-02-05", "Unknown Merchant", "77.10"},
	)

	res, err := f.svc.Upload(context.Background(), data, UploadOptions{})
	require.NoError(t, err)
	require.Len(t, res.Transactions, 5)
	for _, txn := range res.Transactions {
		assert.NotEmpty(t, txn.Category, txn.Description)
		assert.GreaterOrEqual(t, txn.Confidence, 0.0)
		assert.LessOrEqual(t, txn.Confidence, 1.0)
		assert.NotEmpty(t, txn.Explanation.Tier)
	}

	uncat := res.Transactions[1]
	assert.Equal(t, model.Uncategorized, uncat.Category)
	assert.Equal(t, model.TierNone, uncat.Explanation.Tier)
	assert.Equal(t, model.StatusPendingReview, uncat.Status)
	assert.Positive(t, res.PendingReview)
}

func TestRulePrecedesHeuristic(t *testing.T) {
	f := newFixture(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
	ctx := context.Background()

	r, err := f.svc.CreateRule(ctx, model.Rule{
		Pattern:    "starbucks|coffee",
		MatchType:  model.MatchRegex,
		Category:   category.Meals,
		Confidence: 0.90,
		Priority:   DefaultRulePriority,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, r.ID)
	assert.Equal(t, DefaultRulePriority, r.Priority)
	assert.Equal(t, model.SourceUser, r.Source)

	res, err := f.svc.Upload(ctx, csvOf(row{"2024-01-10", "STARBUCKS STORE 4411", "-6.25"}), UploadOptions{})
	require.NoError(t, err)
	require.Len(t, res.Transactions, 1)

	txn := res.Transactions[0]
	assert.Equal(t, category.Meals, txn.Category)
	assert.InDelta(t, 0.90, txn.Confidence, 1e-9)
	assert.Equal(t, model.TierRule, txn.Explanation.Tier)
	assert.Equal(t, "starbucks|coffee", txn.Explanation.Pattern)

	rules, err := f.svc.ListRules(ctx)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, 1, rules[0].HitCount)
}

func TestCreateRuleKeepsPriority(t *testing.T) {
	tests := []struct {
		name     string
		priority int
	}{
		{"zero", 0},
		{"default", DefaultRulePriority},
		{"custom", 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
			r, err := f.svc.CreateRule(context.Background(), model.Rule{
				Pattern: "uber", MatchType: model.MatchContains, Category: category.Travel, Confidence: 0.9, Priority: tt.priority,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.priority, r.Priority)

			rules, err := f.svc.ListRules(context.Background())
			require.NoError(t, err)
			require.Len(t, rules, 1)
			assert.Equal(t, tt.priority, rules[0].Priority)
		})
	}
}

func TestZeroPriorityRuleWins(t *testing.T) {
	f := newFixture(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
	ctx := context.Background()

	_, err := f.svc.CreateRule(ctx, model.Rule{
		Pattern: "uber", MatchType: model.MatchContains, Category: category.Travel, Confidence: 0.9, Priority: DefaultRulePriority,
	})
	require.NoError(t, err)
	_, err = f.svc.CreateRule(ctx, model.Rule{
		Pattern: "uber eats", MatchType: model.MatchContains, Category: category.Meals, Confidence: 0.9, Priority: 0,
	})
	require.NoError(t, err)

	res, err := f.svc.Upload(ctx, csvOf(row{"2024-01-10", "UBER EATS ORDER", "-22.00"}), UploadOptions{})
	require.NoError(t, err)
	require.Len(t, res.Transactions, 1)
	assert.Equal(t, category.Meals, res.Transactions[0].Category)
	assert.Equal(t, "uber eats", res.Transactions[0].Explanation.Pattern)
}

func TestCreateRuleRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		rule model.Rule
	}{
		{"bad regex", model.Rule{Pattern: "([a-z", MatchType: model.MatchRegex, Category: category.Meals, Confidence: 0.9}},
		{"empty pattern", model.Rule{MatchType: model.MatchContains, Category: category.Meals, Confidence: 0.9}},
		{"no category", model.Rule{Pattern: "uber", MatchType: model.MatchContains, Confidence: 0.9}},
		{"confidence above one", model.Rule{Pattern: "uber", MatchType: model.MatchContains, Category: category.Travel, Confidence: 1.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
			ctx := context.Background()

			_, err := f.svc.CreateRule(ctx, tt.rule)
			require.Error(t, err)
			assert.True(t, errors.Is(err, categorize.ErrInvalidRule))

			rules, err := f.svc.ListRules(ctx)
			require.NoError(t, err)
			assert.Empty(t, rules)
		})
	}
}

func TestCreateRuleBadRegexIsPatternError(t *testing.T) {
	f := newFixture(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
	_, err := f.svc.CreateRule(context.Background(), model.Rule{
		Pattern: "([a-z", MatchType: model.MatchRegex, Category: category.Meals, Confidence: 0.9,
	})
	assert.True(t, errors.Is(err, categorize.ErrInvalidRulePattern))
}

func TestDeleteRule(t *testing.T) {
	f := newFixture(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
	ctx := context.Background()

	r, err := f.svc.CreateRule(ctx, model.Rule{Pattern: "uber", MatchType: model.MatchContains, Category: category.Travel, Confidence: 0.9})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteRule(ctx, r.ID))
	assert.ErrorIs(t, f.svc.DeleteRule(ctx, r.ID), store.ErrNotFound)

	res, err := f.svc.Upload(ctx, csvOf(row{"2024-01-10", "UBER TRIP", "-18.00"}), UploadOptions{})
	require.NoError(t, err)
	assert.NotEqual(t, model.TierRule, res.Transactions[0].Explanation.Tier)
}

func TestCorrectPromotesMemoryRule(t *testing.T) {
	f := newFixture(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC))
	ctx := context.Background()

	res, err := f.svc.Upload(ctx, csvOf(
		row{"2024-01-05", "Zenith Widgets", "-320.00"},
		row{"2024-02-05", "Zenith Widgets", "-310.00"},
		row{"2024-03-05", "Zenith Widgets", "-305.00"},
	), UploadOptions{})
	require.NoError(t, err)
	require.Len(t, res.Transactions, 3)
	for _, txn := range res.Transactions {
		require.Equal(t, model.Uncategorized, txn.Category)
	}

	var last *CorrectionResult
	for i, txn := range res.Transactions {
		last, err = f.svc.Correct(ctx, CorrectionRequest{TransactionID: txn.ID, NewCategory: category.Equipment})
		require.NoError(t, err)
		assert.Equal(t, model.StatusUserCorrected, last.Transaction.Status)
		assert.Equal(t, model.TierManual, last.Transaction.Explanation.Tier)
		assert.InDelta(t, 1.0, last.Transaction.Confidence, 1e-9)
		if i < 2 {
			assert.Empty(t, last.Promoted)
		}
	}
	require.Len(t, last.Promoted, 1)
	promoted := last.Promoted[0]
	assert.Equal(t, model.SourceMemory, promoted.Source)
	assert.Equal(t, "zenith widgets", promoted.Pattern)
	assert.Equal(t, category.Equipment, promoted.Category)
	assert.NotEmpty(t, promoted.ID)

	stored, err := f.store.GetTransaction(ctx, res.Transactions[0].ID)
	require.NoError(t, err)
	assert.Equal(t, category.Equipment, stored.Category)

	next, err := f.svc.Upload(ctx, csvOf(row{"2024-04-05", "ZENITH WIDGETS INV 5531", "-298.00"}), UploadOptions{})
	require.NoError(t, err)
	require.Len(t, next.Transactions, 1)
	txn := next.Transactions[0]
	assert.Equal(t, category.Equipment, txn.Category)
	assert.Equal(t, model.TierMemory, txn.Explanation.Tier)
	assert.InDelta(t, 0.85, txn.Confidence, 1e-9)

	entries, err := f.audit.Read()
	require.NoError(t, err)
	actions := make(map[string]int)
	for _, e := range entries {
		actions[e.Action]++
	}
	assert.Equal(t, 3, actions[auditlog.ActionCorrect])
	assert.Equal(t, 1, actions[auditlog.ActionRulePromote])
}

func TestCorrectWithRule(t *testing.T) {
	f := newFixture(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
	ctx := context.Background()

	res, err := f.svc.Upload(ctx, csvOf(row{"2024-01-03", "Figma Monthly", "-15.00"}), UploadOptions{})
	require.NoError(t, err)

	out, err := f.svc.Correct(ctx, CorrectionRequest{
		TransactionID: res.Transactions[0].ID,
		NewCategory:   category.Software,
		MakeRule:      true,
	})
	require.NoError(t, err)
	require.NotNil(t, out.Rule)
	assert.Equal(t, "figma monthly", out.Rule.Pattern)
	assert.Equal(t, model.MatchContains, out.Rule.MatchType)
	assert.InDelta(t, CorrectionRuleConfidence, out.Rule.Confidence, 1e-9)

	next, err := f.svc.Upload(ctx, csvOf(row{"2024-02-03", "Figma Monthly", "-15.00"}), UploadOptions{})
	require.NoError(t, err)
	assert.Equal(t, category.Software, next.Transactions[0].Category)
	assert.Equal(t, model.TierRule, next.Transactions[0].Explanation.Tier)
}

func TestCorrectWithInvalidRuleLeavesTransaction(t *testing.T) {
	tests := []struct {
		name      string
		pattern   string
		matchType model.MatchType
	}{
		{"unbalanced regex", "acme(", model.MatchRegex},
		{"unknown match type", "acme", model.MatchType("glob")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
			ctx := context.Background()

			res, err := f.svc.Upload(ctx, csvOf(row{"2024-01-03", "ACME PAPER CO", "-40.00"}), UploadOptions{})
			require.NoError(t, err)
			before := res.Transactions[0]

			_, err = f.svc.Correct(ctx, CorrectionRequest{
				TransactionID: before.ID,
				NewCategory:   category.OfficeExpenses,
				MakeRule:      true,
				Pattern:       tt.pattern,
				MatchType:     tt.matchType,
			})
			require.Error(t, err)
			assert.ErrorIs(t, err, categorize.ErrInvalidRule)

			stored, err := f.store.GetTransaction(ctx, before.ID)
			require.NoError(t, err)
			assert.Equal(t, before.Category, stored.Category)
			assert.Equal(t, before.Status, stored.Status)

			cs, err := f.store.ListCorrections(ctx, stored.Vendor)
			require.NoError(t, err)
			assert.Empty(t, cs)

			rules, err := f.svc.ListRules(ctx)
			require.NoError(t, err)
			assert.Empty(t, rules)
		})
	}
}

func TestCorrectErrors(t *testing.T) {
	f := newFixture(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
	ctx := context.Background()

	_, err := f.svc.Correct(ctx, CorrectionRequest{TransactionID: "txn_missing", NewCategory: category.Meals})
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = f.svc.Correct(ctx, CorrectionRequest{TransactionID: "txn_missing", NewCategory: "  "})
	assert.ErrorIs(t, err, ErrInvalidCorrection)
}

func TestSuggest(t *testing.T) {
	f := newFixture(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
	ctx := context.Background()

	got, err := f.svc.Suggest(ctx, "Starbucks Coffee #12", decimal.RequireFromString("-5"))
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.Equal(t, category.Meals, got[0].Category)
	assert.LessOrEqual(t, len(got), SuggestLimit)
}

func TestForecastInvalidParams(t *testing.T) {
	f := newFixture(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
	negative := decimal.RequireFromString("-1")

	tests := []struct {
		name string
		req  ForecastRequest
	}{
		{"weeks", ForecastRequest{Weeks: 5}},
		{"scenario", ForecastRequest{Scenario: "doom"}},
		{"threshold", ForecastRequest{CrisisThreshold: &negative}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Forecast(context.Background(), tt.req)
			require.Error(t, err)
			assert.True(t, errors.Is(err, forecast.ErrInvalidForecastParameters))
		})
	}
}

func TestForecastInsufficientHistory(t *testing.T) {
	f := newFixture(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
	ctx := context.Background()

	_, err := f.svc.Upload(ctx, readTestdata(t, "office_supplies.csv"), UploadOptions{})
	require.NoError(t, err)

	resp, err := f.svc.Forecast(ctx, ForecastRequest{})
	require.NoError(t, err)
	assert.True(t, resp.InsufficientHistory)
	assert.Equal(t, forecast.ConfidenceLow, resp.ConfidenceLevel)
	assert.LessOrEqual(t, resp.Confidence, forecast.InsufficientHistoryCap)
	assert.Len(t, resp.DailyProjections, 6*7+1)
	assert.True(t, decimal.RequireFromString("10000").Equal(resp.CrisisThreshold))

	var categories []string
	for _, r := range resp.Recommendations {
		categories = append(categories, r.Category)
	}
	assert.Contains(t, categories, recommend.CategoryDataQuality)
}

func TestForecastCrisis(t *testing.T) {
	f := newFixture(t, time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()

	rows := []row{{"2024-02-01", "Owner Investment", "30000.00"}}
	for _, d := range []string{"2024-02-01", "2024-03-01", "2024-04-01", "2024-05-01", "2024-06-01"} {
		rows = append(rows, row{d, "Acme Property Rent", "-4000.00"})
	}
	_, err := f.svc.Upload(ctx, csvOf(rows...), UploadOptions{})
	require.NoError(t, err)

	ps, err := f.svc.Patterns(ctx, "")
	require.NoError(t, err)
	require.Len(t, ps, 1)
	assert.Equal(t, model.FrequencyMonthly, ps[0].Frequency)
	assert.Equal(t, category.Rent, ps[0].Category)

	resp, err := f.svc.Forecast(ctx, ForecastRequest{Weeks: 6})
	require.NoError(t, err)
	assert.False(t, resp.InsufficientHistory)
	assert.True(t, decimal.RequireFromString("10000").Equal(resp.CurrentCash))
	require.NotEmpty(t, resp.CrisisAlerts)

	alert := resp.CrisisAlerts[0]
	assert.Equal(t, 1, alert.DaysFromToday)
	assert.Equal(t, model.SeverityCritical, alert.Severity)
	assert.True(t, alert.Balance.LessThan(resp.CrisisThreshold))
	assert.NotEmpty(t, alert.RecommendedActions)

	for _, day := range resp.DailyProjections {
		assert.Equal(t, day.Balance.LessThan(resp.CrisisThreshold), day.CrisisWarning, day.Date)
	}
	assert.Len(t, resp.ScenarioAnalysis, len(forecast.Scenarios))
	require.NotEmpty(t, resp.Recommendations)
	assert.Equal(t, model.PriorityHigh, resp.Recommendations[0].Priority)

	entries, err := f.audit.Read()
	require.NoError(t, err)
	assert.Equal(t, auditlog.ActionForecast, entries[len(entries)-1].Action)
}
