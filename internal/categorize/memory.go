package categorize

import (
	"math"
	"sort"

	"github.com/cleared-dev/bankmint/internal/model"
)

// DefaultPromotionThreshold is the number of identical corrections needed
// before a vendor gets a memory rule.
const DefaultPromotionThreshold = 3

const (
	memoryBaseConfidence = 0.85
	memoryMaxConfidence  = 0.95
	memoryStep           = 0.02
)

// Tally counts corrections by vendor token and new category.
type Tally map[string]map[string]int

// TallyCorrections builds a Tally. Corrections without a vendor token are ignored.
func TallyCorrections(cs []model.Correction) Tally {
	t := make(Tally)
	for _, c := range cs {
		if c.VendorToken == "" || c.NewCategory == "" {
			continue
		}
		if t[c.VendorToken] == nil {
			t[c.VendorToken] = make(map[string]int)
		}
		t[c.VendorToken][c.NewCategory]++
	}
	return t
}

// top returns the most corrected category for a vendor; ties go alphabetically.
func (t Tally) top(vendorToken string) (string, int) {
	best, bestN := "", 0
	for cat, n := range t[vendorToken] {
		if n > bestN || (n == bestN && cat < best) {
			best, bestN = cat, n
		}
	}
	return best, bestN
}

// MemoryConfidence is the confidence of a memory rule backed by count
// corrections: 0.85 at the threshold, rising 0.02 per extra correction to 0.95.
func MemoryConfidence(count, threshold int) float64 {
	c := memoryBaseConfidence + memoryStep*float64(count-threshold)
	return math.Round(math.Min(memoryMaxConfidence, c)*100) / 100
}

// Promotions returns the memory rules to create or update. A vendor is
// promoted when its most corrected category reaches threshold. Existing
// memory rules keep their ID; new rules have an empty ID for the caller to
// assign. Output is sorted by vendor token.
func Promotions(t Tally, threshold int, existing []model.Rule) []model.Rule {
	if threshold <= 0 {
		threshold = DefaultPromotionThreshold
	}

	byVendor := make(map[string]model.Rule)
	for _, r := range existing {
		if r.Source == model.SourceMemory {
			byVendor[r.Pattern] = r
		}
	}

	vendors := make([]string, 0, len(t))
	for v := range t {
		vendors = append(vendors, v)
	}
	sort.Strings(vendors)

	var out []model.Rule
	for _, v := range vendors {
		cat, n := t.top(v)
		if n < threshold {
			continue
		}
		conf := MemoryConfidence(n, threshold)

		r, ok := byVendor[v]
		if ok && r.Category == cat && r.Confidence == conf {
			continue
		}
		if !ok {
			r = model.Rule{
				Pattern:   v,
				MatchType: model.MatchContains,
				Source:    model.SourceMemory,
			}
		}
		r.Category = cat
		r.Confidence = conf
		out = append(out, r)
	}
	return out
}
