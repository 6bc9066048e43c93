package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/bankmint/internal/auditlog"
	"github.com/cleared-dev/bankmint/internal/categorize"
	"github.com/cleared-dev/bankmint/internal/id"
	"github.com/cleared-dev/bankmint/internal/model"
	"github.com/cleared-dev/bankmint/internal/vendor"
)

// DefaultRulePriority is the priority callers give a rule when the user did
// not pick one. Priority 0 is a valid value and outranks every other rule.
const DefaultRulePriority = 100

// SuggestLimit caps Suggest results.
const SuggestLimit = 5

// CreateRule validates and stores a user rule with the priority it was given.
// Invalid rules return an error matching categorize.ErrInvalidRule and are
// never stored.
func (s *Service) CreateRule(ctx context.Context, r model.Rule) (model.Rule, error) {
	r = categorize.NormalizeRule(r)
	r.Source = model.SourceUser
	if err := categorize.ValidateRule(r); err != nil {
		oplog := s.opLog(ctx, "create_rule", nil)
		oplog.Warn().Err(err).Msg("rule rejected")
		return model.Rule{}, err
	}

	r.ID = id.New(id.PrefixRule)
	r.HitCount = 0
	r.CreatedAt = s.now()
	if _, err := s.compiler.Compile(r); err != nil {
		return model.Rule{}, err
	}
	if err := s.store.CreateRule(ctx, r); err != nil {
		s.compiler.Forget(r.ID)
		return model.Rule{}, err
	}

	s.record(auditlog.Entry{
		Actor:   auditlog.ActorUser,
		Action:  auditlog.ActionRuleCreate,
		Details: fmt.Sprintf("%s: %s %q -> %s (%.2f, priority %d)", r.ID, r.MatchType, r.Pattern, r.Category, r.Confidence, r.Priority),
	})
	oplog := s.opLog(ctx, "create_rule", nil)
	oplog.Info().Str("rule_id", r.ID).Str("pattern", r.Pattern).Msg("rule created")
	return r, nil
}

// DeleteRule removes a rule by ID.
func (s *Service) DeleteRule(ctx context.Context, ruleID string) error {
	if err := s.store.DeleteRule(ctx, ruleID); err != nil {
		return err
	}
	s.compiler.Forget(ruleID)

	s.record(auditlog.Entry{
		Actor:   auditlog.ActorUser,
		Action:  auditlog.ActionRuleDelete,
		Details: ruleID,
	})
	oplog := s.opLog(ctx, "delete_rule", nil)
	oplog.Info().Str("rule_id", ruleID).Msg("rule deleted")
	return nil
}

// ListRules returns all rules ordered by priority.
func (s *Service) ListRules(ctx context.Context) ([]model.Rule, error) {
	return s.store.ListRules(ctx)
}

// KeywordHits returns how often each built-in keyword has matched.
func (s *Service) KeywordHits(ctx context.Context) (map[string]int, error) {
	return s.store.KeywordHits(ctx)
}

// Suggest lists candidate categories for a description from every tier.
func (s *Service) Suggest(ctx context.Context, description string, amount decimal.Decimal) ([]categorize.Result, error) {
	eng, err := s.engine(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading rules: %w", err)
	}
	out := eng.Suggest(vendor.Normalize(description), amount, SuggestLimit)
	oplog := s.opLog(ctx, "suggest", nil)
	oplog.Debug().Str("description", description).Int("results", len(out)).Msg("suggested categories")
	return out, nil
}
