package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status represents the review state of a categorized transaction.
type Status string

const (
	StatusAutoConfirmed Status = "auto-confirmed"
	StatusCategorized   Status = "categorized"
	StatusPendingReview Status = "pending-review"
	StatusUserCorrected Status = "user-corrected"
)

// Tier identifies which categorization strategy produced a result.
type Tier string

const (
	TierRule      Tier = "rule"
	TierHeuristic Tier = "heuristic"
	TierMemory    Tier = "memory"
	TierNone      Tier = "none"
	TierManual    Tier = "manual" // set by a user correction
)

// Explanation records why a transaction received its category.
type Explanation struct {
	Tier    Tier
	Pattern string // rule pattern, heuristic keyword, or learned vendor
}

// Uncategorized is the category assigned when no tier matches.
const Uncategorized = "Uncategorized"

// Transaction is a stored, categorized bank transaction.
type Transaction struct {
	ID                    string
	AccountID             string
	Date                  time.Time
	Description           string // raw, as it appeared in the file
	NormalizedDescription string
	Amount                decimal.Decimal // negative = outflow, positive = inflow
	Currency              string
	Category              string
	Confidence            float64
	Explanation           Explanation
	Vendor                string
	Status                Status
	Fingerprint           string
	CreatedAt             time.Time
}

// IsInflow reports whether the transaction adds cash.
func (t Transaction) IsInflow() bool {
	return t.Amount.IsPositive()
}

// StatusFor maps a confidence score onto a review status.
func StatusFor(confidence, autoConfirm, reviewFlag float64) Status {
	switch {
	case confidence >= autoConfirm:
		return StatusAutoConfirmed
	case confidence >= reviewFlag:
		return StatusCategorized
	default:
		return StatusPendingReview
	}
}
