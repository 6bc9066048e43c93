package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cleared-dev/bankmint/internal/auditlog"
	"github.com/cleared-dev/bankmint/internal/categorize"
	"github.com/cleared-dev/bankmint/internal/id"
	"github.com/cleared-dev/bankmint/internal/model"
	"github.com/cleared-dev/bankmint/internal/vendor"
)

// ErrInvalidCorrection is returned for a correction without a category.
var ErrInvalidCorrection = errors.New("invalid correction")

// CorrectionRuleConfidence is the confidence of a rule created alongside a
// correction.
const CorrectionRuleConfidence = 0.95

// CorrectionRequest recategorizes one transaction. Vendor overrides the
// learned vendor token. With MakeRule a user rule is created from Pattern,
// or from the vendor token when Pattern is empty.
type CorrectionRequest struct {
	TransactionID string
	NewCategory   string
	Vendor        string
	MakeRule      bool
	Pattern       string
	MatchType     model.MatchType
}

// CorrectionResult reports a correction.
type CorrectionResult struct {
	Transaction model.Transaction
	Rule        *model.Rule  // set when MakeRule created a rule
	Promoted    []model.Rule // memory rules created or updated
}

// Correct applies a user correction, then re-runs memory promotion for the
// vendor.
func (s *Service) Correct(ctx context.Context, req CorrectionRequest) (*CorrectionResult, error) {
	req.NewCategory = strings.TrimSpace(req.NewCategory)
	if req.NewCategory == "" {
		return nil, fmt.Errorf("%w: new category must not be empty", ErrInvalidCorrection)
	}
	log := s.opLog(ctx, "correct", map[string]any{"transaction_id": req.TransactionID})

	t, err := s.store.GetTransaction(ctx, req.TransactionID)
	if err != nil {
		return nil, err
	}
	if !s.catalog.Exists(req.NewCategory) {
		log.Debug().Str("category", req.NewCategory).Msg("category not in catalog")
	}

	token := t.Vendor
	if req.Vendor != "" {
		token = vendor.Normalize(req.Vendor)
	}
	if token == "" {
		token = vendor.Token(t.NormalizedDescription)
	}

	var rule *model.Rule
	if req.MakeRule {
		r := model.Rule{
			Pattern:    req.Pattern,
			MatchType:  req.MatchType,
			Category:   req.NewCategory,
			Confidence: CorrectionRuleConfidence,
			Priority:   DefaultRulePriority,
			Source:     model.SourceUser,
		}
		if r.Pattern == "" {
			r.Pattern = token
			r.MatchType = model.MatchContains
		}
		r = categorize.NormalizeRule(r)
		if err := categorize.ValidateRule(r); err != nil {
			return nil, fmt.Errorf("creating rule from correction: %w", err)
		}
		rule = &r
	}

	c := model.Correction{
		ID:            id.New(id.PrefixCorrection),
		TransactionID: t.ID,
		VendorToken:   token,
		OldCategory:   t.Category,
		NewCategory:   req.NewCategory,
		CreatedAt:     s.now(),
	}
	t.Category = req.NewCategory
	t.Confidence = 1
	t.Explanation = model.Explanation{Tier: model.TierManual}
	t.Status = model.StatusUserCorrected
	t.Vendor = token

	if err := s.store.ApplyCorrection(ctx, t, c); err != nil {
		return nil, err
	}
	res := &CorrectionResult{Transaction: t}

	s.record(auditlog.Entry{
		Actor:         auditlog.ActorUser,
		Action:        auditlog.ActionCorrect,
		TransactionID: t.ID,
		AccountID:     t.AccountID,
		Details:       fmt.Sprintf("%s -> %s (vendor %q)", c.OldCategory, c.NewCategory, token),
	})

	if rule != nil {
		created, err := s.CreateRule(ctx, *rule)
		if err != nil {
			return nil, fmt.Errorf("creating rule from correction: %w", err)
		}
		res.Rule = &created
	}

	if token != "" {
		promoted, err := s.promote(ctx, token)
		if err != nil {
			return nil, err
		}
		res.Promoted = promoted
	}

	log.Info().
		Str("old_category", c.OldCategory).
		Str("new_category", c.NewCategory).
		Str("vendor", token).
		Int("promoted", len(res.Promoted)).
		Msg("transaction corrected")
	return res, nil
}

// promote recounts corrections for one vendor and stores any memory rule
// that crossed the promotion threshold.
func (s *Service) promote(ctx context.Context, token string) ([]model.Rule, error) {
	cs, err := s.store.ListCorrections(ctx, token)
	if err != nil {
		return nil, err
	}
	rules, err := s.store.ListRules(ctx)
	if err != nil {
		return nil, err
	}

	promoted := categorize.Promotions(categorize.TallyCorrections(cs), s.cfg.Learning.PromotionThreshold, rules)
	for i := range promoted {
		r := &promoted[i]
		if r.ID == "" {
			r.ID = id.New(id.PrefixRule)
			r.CreatedAt = s.now()
		}
		if err := s.store.UpsertRule(ctx, *r); err != nil {
			return nil, err
		}
		s.record(auditlog.Entry{
			Actor:   auditlog.ActorSystem,
			Action:  auditlog.ActionRulePromote,
			Details: fmt.Sprintf("%s: %q -> %s (%.2f)", r.ID, r.Pattern, r.Category, r.Confidence),
		})
		oplog := s.opLog(ctx, "promote", nil)
		oplog.Info().Str("rule_id", r.ID).Str("vendor", r.Pattern).Str("category", r.Category).
			Float64("confidence", r.Confidence).Msg("memory rule promoted")
	}
	return promoted, nil
}
