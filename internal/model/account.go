package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType classifies bank accounts.
type AccountType string

const (
	AccountTypeChecking   AccountType = "checking"
	AccountTypeSavings    AccountType = "savings"
	AccountTypeCreditCard AccountType = "credit_card"
)

// DefaultAccountID is used when an upload names no account.
const DefaultAccountID = "default"

// Account is a bank account that owns transactions.
type Account struct {
	ID        string
	Name      string
	Type      AccountType
	Balance   decimal.Decimal // running balance of all stored transactions
	CreatedAt time.Time
}

// Upload records one import batch against an account.
type Upload struct {
	ID          string
	AccountID   string
	FileName    string
	Imported    int
	Duplicates  int
	ParseErrors int
	CreatedAt   time.Time
}
