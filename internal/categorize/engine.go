// Package categorize assigns a category, a confidence and an explanation to
// transactions using three tiers in strict order: user rules, the built-in
// keyword dictionary, and memory rules learned from corrections.
package categorize

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/bankmint/internal/model"
	"github.com/cleared-dev/bankmint/internal/vendor"
)

// DefaultReviewThreshold is the confidence below which results need review.
const DefaultReviewThreshold = 0.60

// Result is the categorization of one description.
type Result struct {
	Category    string
	Confidence  float64
	Explanation model.Explanation
	RuleID      string // set for rule and memory tiers
}

// Options configures an Engine.
type Options struct {
	ReviewThreshold float64
	Heuristics      []Heuristic // nil selects DefaultHeuristics
	Compiler        *Compiler   // nil compiles without caching
}

// Hits counts matches since the engine was created.
type Hits struct {
	Rules    map[string]int // rule ID -> matches
	Keywords map[string]int // heuristic keyword -> matches
}

// Engine categorizes descriptions against a fixed rule set. It is safe for
// concurrent use.
type Engine struct {
	user       []*CompiledRule
	memory     []*CompiledRule
	heuristics []Heuristic
	uncatConf  float64

	mu          sync.Mutex
	ruleHits    map[string]int
	keywordHits map[string]int
}

// NewEngine compiles rules and splits them into the user and memory tiers.
func NewEngine(rules []model.Rule, opts Options) (*Engine, error) {
	if opts.ReviewThreshold <= 0 {
		opts.ReviewThreshold = DefaultReviewThreshold
	}
	if opts.Heuristics == nil {
		opts.Heuristics = DefaultHeuristics()
	}
	if opts.Compiler == nil {
		opts.Compiler = NewCompiler()
	}

	e := &Engine{
		heuristics:  opts.Heuristics,
		uncatConf:   math.Min(0.20, opts.ReviewThreshold/2),
		ruleHits:    make(map[string]int),
		keywordHits: make(map[string]int),
	}
	for _, r := range rules {
		cr, err := opts.Compiler.Compile(r)
		if err != nil {
			return nil, fmt.Errorf("compiling rules: %w", err)
		}
		if cr.Rule.Source == model.SourceMemory {
			e.memory = append(e.memory, cr)
		} else {
			e.user = append(e.user, cr)
		}
	}
	return e, nil
}

// Categorize assigns a category to a normalized description. The first tier
// that matches wins; with no match the result is Uncategorized.
func (e *Engine) Categorize(desc string, amount decimal.Decimal) Result {
	if r, ok := e.matchRules(desc); ok {
		e.hitRule(r.RuleID)
		return r
	}
	if r, ok := e.matchHeuristics(desc, amount); ok {
		e.hitKeyword(r.Explanation.Pattern)
		return r
	}
	if r, ok := e.matchMemory(desc); ok {
		e.hitRule(r.RuleID)
		return r
	}
	return Result{
		Category:    model.Uncategorized,
		Confidence:  e.uncatConf,
		Explanation: model.Explanation{Tier: model.TierNone},
	}
}

// matchRules picks the winning user rule: lowest priority, then longest
// matched text, then lowest ID.
func (e *Engine) matchRules(desc string) (Result, bool) {
	var best *CompiledRule
	bestLen := 0
	for _, cr := range e.user {
		n, ok := cr.Match(desc)
		if !ok {
			continue
		}
		if best == nil || rulePrecedes(cr.Rule, n, best.Rule, bestLen) {
			best, bestLen = cr, n
		}
	}
	if best == nil {
		return Result{}, false
	}
	return Result{
		Category:    best.Rule.Category,
		Confidence:  clamp(best.Rule.Confidence),
		Explanation: model.Explanation{Tier: model.TierRule, Pattern: best.Rule.Pattern},
		RuleID:      best.Rule.ID,
	}, true
}

func rulePrecedes(a model.Rule, aLen int, b model.Rule, bLen int) bool {
	if a.Priority != b.Priority {
		return a.Priority < b.Priority
	}
	if aLen != bLen {
		return aLen > bLen
	}
	return a.ID < b.ID
}

// matchHeuristics picks the longest matching keyword; earlier entries win ties.
func (e *Engine) matchHeuristics(desc string, amount decimal.Decimal) (Result, bool) {
	dir := model.DirectionOf(amount)
	var best *Heuristic
	for i := range e.heuristics {
		h := &e.heuristics[i]
		if h.Direction != "" && h.Direction != dir {
			continue
		}
		if !vendor.ContainsWord(desc, h.Keyword) {
			continue
		}
		if best == nil || len(h.Keyword) > len(best.Keyword) {
			best = h
		}
	}
	if best == nil {
		return Result{}, false
	}
	return Result{
		Category:    best.Category,
		Confidence:  clamp(best.Confidence),
		Explanation: model.Explanation{Tier: model.TierHeuristic, Pattern: best.Keyword},
	}, true
}

// matchMemory picks the most confident learned vendor, then the longest.
func (e *Engine) matchMemory(desc string) (Result, bool) {
	var best *CompiledRule
	bestLen := 0
	for _, cr := range e.memory {
		n, ok := cr.matchMemory(desc)
		if !ok {
			continue
		}
		if best == nil || cr.Rule.Confidence > best.Rule.Confidence ||
			(cr.Rule.Confidence == best.Rule.Confidence && (n > bestLen || (n == bestLen && cr.Rule.ID < best.Rule.ID))) {
			best, bestLen = cr, n
		}
	}
	if best == nil {
		return Result{}, false
	}
	return Result{
		Category:    best.Rule.Category,
		Confidence:  clamp(best.Rule.Confidence),
		Explanation: model.Explanation{Tier: model.TierMemory, Pattern: best.Rule.Pattern},
		RuleID:      best.Rule.ID,
	}, true
}

func (e *Engine) hitRule(id string) {
	if id == "" {
		return
	}
	e.mu.Lock()
	e.ruleHits[id]++
	e.mu.Unlock()
}

func (e *Engine) hitKeyword(kw string) {
	e.mu.Lock()
	e.keywordHits[kw]++
	e.mu.Unlock()
}

// Hits returns a snapshot of match counters.
func (e *Engine) Hits() Hits {
	e.mu.Lock()
	defer e.mu.Unlock()
	h := Hits{
		Rules:    make(map[string]int, len(e.ruleHits)),
		Keywords: make(map[string]int, len(e.keywordHits)),
	}
	for k, v := range e.ruleHits {
		h.Rules[k] = v
	}
	for k, v := range e.keywordHits {
		h.Keywords[k] = v
	}
	return h
}



// Suggest lists up to limit candidate categories from every tier, most
// confident first. Counters are not touched.
func (e *Engine) Suggest(desc string, amount decimal.Decimal, limit int) []Result {
	byCat := make(map[string]Result)
	add := func(r Result) {
		if cur, ok := byCat[r.Category]; !ok || r.Confidence > cur.Confidence {
			byCat[r.Category] = r
		}
	}

	for _, cr := range e.user {
		if _, ok := cr.Match(desc); ok {
			add(Result{Category: cr.Rule.Category, Confidence: clamp(cr.Rule.Confidence),
				Explanation: model.Explanation{Tier: model.TierRule, Pattern: cr.Rule.Pattern}, RuleID: cr.Rule.ID})
		}
	}
	dir := model.DirectionOf(amount)
	for _, h := range e.heuristics {
		if (h.Direction == "" || h.Direction == dir) && vendor.ContainsWord(desc, h.Keyword) {
			add(Result{Category: h.Category, Confidence: clamp(h.Confidence),
				Explanation: model.Explanation{Tier: model.TierHeuristic, Pattern: h.Keyword}})
		}
	}
	for _, cr := range e.memory {
		if _, ok := cr.matchMemory(desc); ok {
			add(Result{Category: cr.Rule.Category, Confidence: clamp(cr.Rule.Confidence),
				Explanation: model.Explanation{Tier: model.TierMemory, Pattern: cr.Rule.Pattern}, RuleID: cr.Rule.ID})
		}
	}

	out := make([]Result, 0, len(byCat))
	for _, r := range byCat {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Confidence != out[j].Confidence {
			return out[i].Confidence > out[j].Confidence
		}
		return out[i].Category < out[j].Category
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
