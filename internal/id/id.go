package id

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Prefixes for generated identifiers.
const (
	PrefixTransaction = "txn"
	PrefixRule        = "rule"
	PrefixCorrection  = "cor"
	PrefixUpload      = "upl"
)

// New returns an identifier like "txn_2f1c...".
func New(prefix string) string {
	return prefix + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Fingerprint returns the dedup key for a transaction: the hex SHA-256 of
// account, ISO date, two-decimal amount and normalized description.
func Fingerprint(accountID string, date time.Time, amount decimal.Decimal, normalizedDescription string) string {
	key := strings.Join([]string{
		accountID,
		date.Format(time.DateOnly),
		amount.StringFixed(2),
		normalizedDescription,
	}, "|")
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}
