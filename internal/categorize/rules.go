package categorize

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/cleared-dev/bankmint/internal/model"
	"github.com/cleared-dev/bankmint/internal/vendor"
)

var (
	// ErrInvalidRule is matched by every rule validation failure.
	ErrInvalidRule = errors.New("invalid rule")
	// ErrInvalidRulePattern is matched when the pattern itself is unusable.
	ErrInvalidRulePattern = errors.New("invalid rule pattern")
)

// RuleError describes why a rule was rejected.
type RuleError struct {
	Field  string
	Value  string
	Reason string
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("invalid rule %s %q: %s", e.Field, e.Value, e.Reason)
}

// Is matches ErrInvalidRule, and ErrInvalidRulePattern for pattern problems.
func (e *RuleError) Is(target error) bool {
	switch target {
	case ErrInvalidRule:
		return true
	case ErrInvalidRulePattern:
		return e.Field == "pattern" || e.Field == "match_type"
	}
	return false
}

// NormalizeRule fills defaults: an empty match type means regex.
func NormalizeRule(r model.Rule) model.Rule {
	r.Pattern = strings.TrimSpace(r.Pattern)
	r.Category = strings.TrimSpace(r.Category)
	if r.MatchType == "" {
		r.MatchType = model.MatchRegex
	}
	if r.Source == "" {
		r.Source = model.SourceUser
	}
	return r
}

// ValidateRule checks a rule before it is stored.
func ValidateRule(r model.Rule) error {
	r = NormalizeRule(r)
	if r.Pattern == "" {
		return &RuleError{Field: "pattern", Reason: "must not be empty"}
	}
	switch r.MatchType {
	case model.MatchExact, model.MatchContains:
	case model.MatchRegex:
		if _, err := regexp.Compile("(?i)" + r.Pattern); err != nil {
			return &RuleError{Field: "pattern", Value: r.Pattern, Reason: err.Error()}
		}
	default:
		return &RuleError{Field: "match_type", Value: string(r.MatchType), Reason: "must be exact, contains or regex"}
	}
	if r.Category == "" {
		return &RuleError{Field: "category", Reason: "must not be empty"}
	}
	if r.Confidence < 0 || r.Confidence > 1 {
		return &RuleError{Field: "confidence", Value: fmt.Sprint(r.Confidence), Reason: "must be between 0 and 1"}
	}
	if r.Priority < 0 {
		return &RuleError{Field: "priority", Value: fmt.Sprint(r.Priority), Reason: "must not be negative"}
	}
	return nil
}

// CompiledRule is a validated rule ready for matching.
type CompiledRule struct {
	Rule   model.Rule
	needle string
	re     *regexp.Regexp
}

// Match returns the length of the matched text in a normalized description.
func (c *CompiledRule) Match(desc string) (int, bool) {
	switch c.Rule.MatchType {
	case model.MatchExact:
		if desc == c.needle {
			return len(desc), true
		}
	case model.MatchContains:
		if strings.Contains(desc, c.needle) {
			return len(c.needle), true
		}
	case model.MatchRegex:
		if loc := c.re.FindStringIndex(desc); loc != nil && loc[1] > loc[0] {
			return loc[1] - loc[0], true
		}
	}
	return 0, false
}

// matchMemory matches a learned vendor token against a description.
func (c *CompiledRule) matchMemory(desc string) (int, bool) {
	if vendor.Token(desc) == c.needle || vendor.ContainsWord(desc, c.needle) {
		return len(c.needle), true
	}
	return 0, false
}

// Compiler caches compiled rules by rule ID. A cached entry is reused only
// while the rule's pattern and match type are unchanged.
type Compiler struct {
	mu    sync.Mutex
	cache map[string]*CompiledRule
}

// NewCompiler creates an empty Compiler.
func NewCompiler() *Compiler {
	return &Compiler{cache: make(map[string]*CompiledRule)}
}

// Compile validates and compiles r, reusing a cached form when possible.
func (c *Compiler) Compile(r model.Rule) (*CompiledRule, error) {
	r = NormalizeRule(r)

	c.mu.Lock()
	defer c.mu.Unlock()

	if cached, ok := c.cache[r.ID]; ok && r.ID != "" &&
		cached.Rule.Pattern == r.Pattern && cached.Rule.MatchType == r.MatchType {
		out := *cached
		out.Rule = r
		return &out, nil
	}

	if err := ValidateRule(r); err != nil {
		return nil, fmt.Errorf("rule %s: %w", r.ID, err)
	}
	cr := &CompiledRule{Rule: r, needle: vendor.Normalize(r.Pattern)}
	if r.MatchType == model.MatchRegex {
		cr.re = regexp.MustCompile("(?i)" + r.Pattern)
	}
	if r.ID != "" {
		c.cache[r.ID] = cr
	}
	return cr, nil
}

// Forget drops a rule from the cache.
func (c *Compiler) Forget(ruleID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.cache, ruleID)
}

