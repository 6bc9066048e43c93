package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cleared-dev/bankmint/internal/model"
)

const ruleColumns = `rule_id, pattern, match_type, category, confidence, priority, hit_count, source, created_at`

// CreateRule inserts a new rule. The ID must be set and unused.
func (s *Store) CreateRule(ctx context.Context, r model.Rule) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO rules (`+ruleColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`, ruleArgs(r)...)
	if err != nil {
		return fmt.Errorf("inserting rule %s: %w", r.ID, err)
	}
	return nil
}

// UpsertRule inserts a rule or replaces every field except created_at.
func (s *Store) UpsertRule(ctx context.Context, r model.Rule) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO rules (`+ruleColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(rule_id) DO UPDATE SET
			pattern = excluded.pattern,
			match_type = excluded.match_type,
			category = excluded.category,
			confidence = excluded.confidence,
			priority = excluded.priority,
			hit_count = excluded.hit_count,
			source = excluded.source`, ruleArgs(r)...)
	if err != nil {
		return fmt.Errorf("upserting rule %s: %w", r.ID, err)
	}
	return nil
}

// GetRule returns a rule by ID.
func (s *Store) GetRule(ctx context.Context, id string) (model.Rule, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+ruleColumns+` FROM rules WHERE rule_id = ?`, id)
	r, err := scanRule(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Rule{}, fmt.Errorf("rule %s: %w", id, ErrNotFound)
	}
	return r, err
}

// DeleteRule removes a rule by ID.
func (s *Store) DeleteRule(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM rules WHERE rule_id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting rule %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("rule %s: %w", id, ErrNotFound)
	}
	return nil
}

// ListRules returns all rules ordered by priority, then ID.
func (s *Store) ListRules(ctx context.Context) ([]model.Rule, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+ruleColumns+` FROM rules ORDER BY priority, rule_id`)
	if err != nil {
		return nil, fmt.Errorf("listing rules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.Rule
	for rows.Next() {
		r, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// RecordHits adds rule and heuristic keyword hit counts in one transaction.
// Unknown rule IDs are ignored; a rule deleted mid-import simply loses its hits.
func (s *Store) RecordHits(ctx context.Context, ruleHits, keywordHits map[string]int) error {
	if len(ruleHits) == 0 && len(keywordHits) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning hit update: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for ruleID, n := range ruleHits {
		if _, err := tx.ExecContext(ctx, `UPDATE rules SET hit_count = hit_count + ? WHERE rule_id = ?`, n, ruleID); err != nil {
			return fmt.Errorf("updating hits for rule %s: %w", ruleID, err)
		}
	}
	for kw, n := range keywordHits {
		if _, err := tx.ExecContext(ctx, `INSERT INTO heuristic_hits (keyword, hit_count) VALUES (?, ?)
			ON CONFLICT(keyword) DO UPDATE SET hit_count = hit_count + excluded.hit_count`, kw, n); err != nil {
			return fmt.Errorf("updating hits for keyword %q: %w", kw, err)
		}
	}

	return tx.Commit()
}

// KeywordHits returns accumulated heuristic keyword hits.
func (s *Store) KeywordHits(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT keyword, hit_count FROM heuristic_hits`)
	if err != nil {
		return nil, fmt.Errorf("listing keyword hits: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make(map[string]int)
	for rows.Next() {
		var kw string
		var n int
		if err := rows.Scan(&kw, &n); err != nil {
			return nil, err
		}
		out[kw] = n
	}
	return out, rows.Err()
}

func ruleArgs(r model.Rule) []any {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	return []any{
		r.ID, r.Pattern, string(r.MatchType), r.Category, r.Confidence, r.Priority,
		r.HitCount, string(r.Source), r.CreatedAt.UTC().Format(timeLayout),
	}
}

func scanRule(sc scanner) (model.Rule, error) {
	var r model.Rule
	var matchType, source, created string
	err := sc.Scan(&r.ID, &r.Pattern, &matchType, &r.Category, &r.Confidence, &r.Priority,
		&r.HitCount, &source, &created)
	if err != nil {
		return model.Rule{}, err
	}
	r.MatchType = model.MatchType(matchType)
	r.Source = model.RuleSource(source)
	if r.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
		return model.Rule{}, fmt.Errorf("rule %s: parsing created_at %q: %w", r.ID, created, err)
	}
	return r, nil
}
