// Package store persists accounts, transactions, rules and corrections in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/bankmint/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("not found")

const (
	dateLayout = time.DateOnly
	// Fixed-width fractions keep text order equal to time order.
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// Store is a SQLite-backed repository.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at dbPath.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)&_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("opening db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// EnsureAccount creates the account if it does not exist and returns the
// stored row. An existing account keeps its name, type and balance.
func (s *Store) EnsureAccount(ctx context.Context, a model.Account) (model.Account, error) {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO accounts
		(account_id, name, account_type, balance, created_at) VALUES (?, ?, ?, '0', ?)`,
		a.ID, a.Name, string(a.Type), a.CreatedAt.UTC().Format(timeLayout))
	if err != nil {
		return model.Account{}, fmt.Errorf("inserting account %s: %w", a.ID, err)
	}
	return s.GetAccount(ctx, a.ID)
}

// GetAccount returns an account by ID.
func (s *Store) GetAccount(ctx context.Context, id string) (model.Account, error) {
	row := s.db.QueryRowContext(ctx, `SELECT account_id, name, account_type, balance, created_at
		FROM accounts WHERE account_id = ?`, id)
	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Account{}, fmt.Errorf("account %s: %w", id, ErrNotFound)
	}
	return a, err
}

// ListAccounts returns all accounts ordered by ID.
func (s *Store) ListAccounts(ctx context.Context) ([]model.Account, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT account_id, name, account_type, balance, created_at
		FROM accounts ORDER BY account_id`)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Balance returns the running balance of an account, or the sum over all
// accounts when accountID is empty.
func (s *Store) Balance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	if accountID != "" {
		a, err := s.GetAccount(ctx, accountID)
		if err != nil {
			return decimal.Zero, err
		}
		return a.Balance, nil
	}

	accts, err := s.ListAccounts(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, a := range accts {
		total = total.Add(a.Balance)
	}
	return total, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(sc scanner) (model.Account, error) {
	var a model.Account
	var typ, balance, created string
	if err := sc.Scan(&a.ID, &a.Name, &typ, &balance, &created); err != nil {
		return model.Account{}, err
	}
	a.Type = model.AccountType(typ)

	var err error
	if a.Balance, err = decimal.NewFromString(balance); err != nil {
		return model.Account{}, fmt.Errorf("account %s: parsing balance %q: %w", a.ID, balance, err)
	}
	if a.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
		return model.Account{}, fmt.Errorf("account %s: parsing created_at %q: %w", a.ID, created, err)
	}
	return a, nil
}
