package model

import "time"

// MatchType selects how a rule pattern is compared to a description.
type MatchType string

const (
	MatchExact    MatchType = "exact"
	MatchContains MatchType = "contains"
	MatchRegex    MatchType = "regex"
)

// RuleSource records who created a rule.
type RuleSource string

const (
	SourceUser   RuleSource = "user"
	SourceMemory RuleSource = "memory" // synthesized from repeated corrections
)

// Rule maps a description pattern to a category.
type Rule struct {
	ID         string
	Pattern    string
	MatchType  MatchType
	Category   string
	Confidence float64
	Priority   int // lower value wins
	HitCount   int
	Source     RuleSource
	CreatedAt  time.Time
}

// Correction is a user override of a transaction's category.
type Correction struct {
	ID            string
	TransactionID string
	VendorToken   string
	OldCategory   string
	NewCategory   string
	CreatedAt     time.Time
}
