package service

import (
	"context"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/cleared-dev/bankmint/internal/auditlog"
	"github.com/cleared-dev/bankmint/internal/categorize"
	"github.com/cleared-dev/bankmint/internal/dedup"
	"github.com/cleared-dev/bankmint/internal/id"
	"github.com/cleared-dev/bankmint/internal/importer"
	"github.com/cleared-dev/bankmint/internal/model"
	"github.com/cleared-dev/bankmint/internal/vendor"
)

// UploadOptions identifies the target account of an upload. The account is
// created on first use.
type UploadOptions struct {
	AccountID   string
	AccountName string
	AccountType model.AccountType
	FileName    string
}

// DateRange spans the imported transactions.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// AmountSummary totals the imported transactions.
type AmountSummary struct {
	Credits decimal.Decimal
	Debits  decimal.Decimal // non-positive
	Net     decimal.Decimal
}

// UploadResult reports one upload.
type UploadResult struct {
	UploadID           string
	AccountID          string
	Imported           int
	Duplicates         int
	ParseErrors        int
	TotalProcessed     int
	CategorizedPct     float64 // share of imported rows not Uncategorized, 0-100
	PendingReview      int
	DateRange          DateRange
	AmountSummary      AmountSummary
	CategoriesDetected []string
	RowErrors          []importer.RowError
	Encoding           string
	Transactions       []model.Transaction
}

// Upload normalizes a CSV export, drops duplicates, categorizes the rest and
// stores them. File-level problems return an error wrapping
// importer.ErrMalformedFile and store nothing; bad rows are skipped and
// reported in RowErrors.
func (s *Service) Upload(ctx context.Context, data []byte, opts UploadOptions) (*UploadResult, error) {
	accountID := accountOrDefault(opts.AccountID)
	log := s.opLog(ctx, "upload", map[string]any{"account_id": accountID, "file": opts.FileName})

	norm, err := importer.Normalize(data, importer.Options{
		Currency: s.cfg.Business.Currency,
		MaxBytes: s.cfg.Import.MaxBytes,
		MaxRows:  s.cfg.Import.MaxRows,
	})
	if err != nil {
		log.Warn().Err(err).Msg("upload rejected")
		return nil, fmt.Errorf("normalizing %s: %w", displayName(opts.FileName), err)
	}

	if opts.AccountType == "" {
		opts.AccountType = model.AccountTypeChecking
	}
	if opts.AccountName == "" {
		opts.AccountName = accountID
	}
	if _, err := s.store.EnsureAccount(ctx, model.Account{ID: accountID, Name: opts.AccountName, Type: opts.AccountType}); err != nil {
		return nil, err
	}

	eng, err := s.engine(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading rules: %w", err)
	}

	var stored []model.Transaction
	dres, err := s.dedup.Admit(ctx, accountID, norm.Candidates, func(ctx context.Context, admitted []dedup.Admitted) error {
		txns, err := s.categorizeAll(ctx, eng, accountID, admitted)
		if err != nil {
			return err
		}
		if err := s.store.InsertTransactions(ctx, accountID, txns); err != nil {
			return err
		}
		stored = txns
		return nil
	})
	if err != nil {
		return nil, err
	}

	hits := eng.Hits()
	if err := s.store.RecordHits(ctx, hits.Rules, hits.Keywords); err != nil {
		log.Error().Err(err).Msg("recording match counters failed")
	}

	res := summarize(stored)
	res.UploadID = id.New(id.PrefixUpload)
	res.AccountID = accountID
	res.Duplicates = dres.Duplicates
	res.ParseErrors = norm.ErrorCount()
	res.TotalProcessed = norm.TotalRows
	res.RowErrors = norm.Errors
	res.Encoding = norm.Encoding

	if err := s.store.RecordUpload(ctx, model.Upload{
		ID:          res.UploadID,
		AccountID:   accountID,
		FileName:    opts.FileName,
		Imported:    res.Imported,
		Duplicates:  res.Duplicates,
		ParseErrors: res.ParseErrors,
		CreatedAt:   s.now(),
	}); err != nil {
		return nil, err
	}

	s.record(auditlog.Entry{
		Actor:     auditlog.ActorUser,
		Action:    auditlog.ActionImport,
		AccountID: accountID,
		Details: fmt.Sprintf("%s: imported %d, duplicates %d, parse errors %d",
			displayName(opts.FileName), res.Imported, res.Duplicates, res.ParseErrors),
	})
	log.Info().
		Str("upload_id", res.UploadID).
		Int("imported", res.Imported).
		Int("duplicates", res.Duplicates).
		Int("parse_errors", res.ParseErrors).
		Int("pending_review", res.PendingReview).
		Str("encoding", norm.Encoding).
		Msg("upload complete")
	return res, nil
}

// categorizeAll categorizes admitted rows in parallel. Output order matches
// input order.
func (s *Service) categorizeAll(ctx context.Context, eng *categorize.Engine, accountID string, admitted []dedup.Admitted) ([]model.Transaction, error) {
	now := s.now().UTC()
	txns := make([]model.Transaction, len(admitted))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(s.cfg.Import.Workers, 1))
	for i, a := range admitted {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			txns[i] = s.buildTransaction(eng, accountID, a, now)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("categorizing: %w", err)
	}
	return txns, nil
}

func (s *Service) buildTransaction(eng *categorize.Engine, accountID string, a dedup.Admitted, now time.Time) model.Transaction {
	r := eng.Categorize(a.NormalizedDescription, a.Amount)
	return model.Transaction{
		ID:                    id.New(id.PrefixTransaction),
		AccountID:             accountID,
		Date:                  a.Date,
		Description:           a.Description,
		NormalizedDescription: a.NormalizedDescription,
		Amount:                a.Amount,
		Currency:              a.Currency,
		Category:              r.Category,
		Confidence:            r.Confidence,
		Explanation:           r.Explanation,
		Vendor:                vendor.Token(a.NormalizedDescription),
		Status:                model.StatusFor(r.Confidence, s.cfg.Thresholds.AutoConfirm, s.cfg.Thresholds.ReviewFlag),
		Fingerprint:           a.Fingerprint,
		CreatedAt:             now,
	}
}

func summarize(txns []model.Transaction) *UploadResult {
	res := &UploadResult{
		Imported:     len(txns),
		Transactions: txns,
		AmountSummary: AmountSummary{
			Credits: decimal.Zero,
			Debits:  decimal.Zero,
			Net:     decimal.Zero,
		},
	}

	categorized := 0
	seen := make(map[string]bool)
	for _, t := range txns {
		if t.IsInflow() {
			res.AmountSummary.Credits = res.AmountSummary.Credits.Add(t.Amount)
		} else {
			res.AmountSummary.Debits = res.AmountSummary.Debits.Add(t.Amount)
		}
		if t.Category != model.Uncategorized {
			categorized++
			if !seen[t.Category] {
				seen[t.Category] = true
				res.CategoriesDetected = append(res.CategoriesDetected, t.Category)
			}
		}
		if t.Status == model.StatusPendingReview {
			res.PendingReview++
		}
		if res.DateRange.Start.IsZero() || t.Date.Before(res.DateRange.Start) {
			res.DateRange.Start = t.Date
		}
		if t.Date.After(res.DateRange.End) {
			res.DateRange.End = t.Date
		}
	}
	res.AmountSummary.Net = res.AmountSummary.Credits.Add(res.AmountSummary.Debits)
	slices.Sort(res.CategoriesDetected)
	if len(txns) > 0 {
		res.CategorizedPct = math.Round(float64(categorized)/float64(len(txns))*1000) / 10
	}
	return res
}

func displayName(fileName string) string {
	if fileName == "" {
		return "upload"
	}
	return fileName
}
