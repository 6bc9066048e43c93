package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/bankmint/internal/model"
)

const txnColumns = `transaction_id, account_id, date, description, normalized_description,
	amount, currency, category, confidence, tier, matched_pattern, vendor, status,
	fingerprint, created_at`

// HasFingerprint reports whether a transaction with this fingerprint is
// stored for the account.
func (s *Store) HasFingerprint(ctx context.Context, accountID, fingerprint string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions
		WHERE account_id = ? AND fingerprint = ?`, accountID, fingerprint).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("looking up fingerprint: %w", err)
	}
	return n > 0, nil
}

// InsertTransactions stores txns for one account and adds their amounts to
// the account balance in a single transaction. A repeated fingerprint fails
// the whole batch.
func (s *Store) InsertTransactions(ctx context.Context, accountID string, txns []model.Transaction) error {
	if len(txns) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning insert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO transactions (`+txnColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	sum := decimal.Zero
	for _, t := range txns {
		if t.AccountID != accountID {
			return fmt.Errorf("transaction %s belongs to account %s, not %s", t.ID, t.AccountID, accountID)
		}
		if _, err := stmt.ExecContext(ctx, txnArgs(t)...); err != nil {
			return fmt.Errorf("inserting transaction %s: %w", t.ID, err)
		}
		sum = sum.Add(t.Amount)
	}

	var balance string
	if err := tx.QueryRowContext(ctx, `SELECT balance FROM accounts WHERE account_id = ?`, accountID).Scan(&balance); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("account %s: %w", accountID, ErrNotFound)
		}
		return fmt.Errorf("reading balance: %w", err)
	}
	current, err := decimal.NewFromString(balance)
	if err != nil {
		return fmt.Errorf("parsing balance %q: %w", balance, err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE accounts SET balance = ? WHERE account_id = ?`,
		current.Add(sum).String(), accountID); err != nil {
		return fmt.Errorf("updating balance: %w", err)
	}

	return tx.Commit()
}

// GetTransaction returns a transaction by ID.
func (s *Store) GetTransaction(ctx context.Context, id string) (model.Transaction, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+txnColumns+` FROM transactions WHERE transaction_id = ?`, id)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Transaction{}, fmt.Errorf("transaction %s: %w", id, ErrNotFound)
	}
	return t, err
}

// TransactionFilter narrows ListTransactions. Zero fields match everything.
type TransactionFilter struct {
	AccountID string
	Since     time.Time
	Status    model.Status
}

// ListTransactions returns matching transactions ordered by date, then
// insertion order.
func (s *Store) ListTransactions(ctx context.Context, f TransactionFilter) ([]model.Transaction, error) {
	var where []string
	var args []any
	if f.AccountID != "" {
		where = append(where, "account_id = ?")
		args = append(args, f.AccountID)
	}
	if !f.Since.IsZero() {
		where = append(where, "date >= ?")
		args = append(args, f.Since.Format(dateLayout))
	}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(f.Status))
	}

	q := `SELECT ` + txnColumns + ` FROM transactions`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY date, rowid"

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ApplyCorrection updates the transaction's category fields and logs the
// correction atomically.
func (s *Store) ApplyCorrection(ctx context.Context, t model.Transaction, c model.Correction) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning correction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `UPDATE transactions
		SET category = ?, confidence = ?, tier = ?, matched_pattern = ?, vendor = ?, status = ?
		WHERE transaction_id = ?`,
		t.Category, t.Confidence, string(t.Explanation.Tier), t.Explanation.Pattern, t.Vendor, string(t.Status), t.ID)
	if err != nil {
		return fmt.Errorf("updating transaction %s: %w", t.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("transaction %s: %w", t.ID, ErrNotFound)
	}

	_, err = tx.ExecContext(ctx, `INSERT INTO corrections
		(correction_id, transaction_id, vendor_token, old_category, new_category, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.TransactionID, c.VendorToken, c.OldCategory, c.NewCategory, c.CreatedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("logging correction: %w", err)
	}

	return tx.Commit()
}

// ListCorrections returns corrections for a vendor token, or all corrections
// when vendorToken is empty, oldest first.
func (s *Store) ListCorrections(ctx context.Context, vendorToken string) ([]model.Correction, error) {
	q := `SELECT correction_id, transaction_id, vendor_token, old_category, new_category, created_at
		FROM corrections`
	var args []any
	if vendorToken != "" {
		q += " WHERE vendor_token = ?"
		args = append(args, vendorToken)
	}
	q += " ORDER BY created_at, rowid"

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("listing corrections: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.Correction
	for rows.Next() {
		var c model.Correction
		var created string
		if err := rows.Scan(&c.ID, &c.TransactionID, &c.VendorToken, &c.OldCategory, &c.NewCategory, &created); err != nil {
			return nil, err
		}
		if c.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
			return nil, fmt.Errorf("correction %s: parsing created_at: %w", c.ID, err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func txnArgs(t model.Transaction) []any {
	return []any{
		t.ID, t.AccountID, t.Date.Format(dateLayout), t.Description, t.NormalizedDescription,
		t.Amount.String(), t.Currency, t.Category, t.Confidence, string(t.Explanation.Tier),
		t.Explanation.Pattern, t.Vendor, string(t.Status), t.Fingerprint,
		t.CreatedAt.UTC().Format(timeLayout),
	}
}

func scanTransaction(sc scanner) (model.Transaction, error) {
	var t model.Transaction
	var date, amount, tier, status, created string
	err := sc.Scan(&t.ID, &t.AccountID, &date, &t.Description, &t.NormalizedDescription,
		&amount, &t.Currency, &t.Category, &t.Confidence, &tier, &t.Explanation.Pattern,
		&t.Vendor, &status, &t.Fingerprint, &created)
	if err != nil {
		return model.Transaction{}, err
	}
	t.Explanation.Tier = model.Tier(tier)
	t.Status = model.Status(status)

	if t.Date, err = time.Parse(dateLayout, date); err != nil {
		return model.Transaction{}, fmt.Errorf("transaction %s: parsing date %q: %w", t.ID, date, err)
	}
	if t.Amount, err = decimal.NewFromString(amount); err != nil {
		return model.Transaction{}, fmt.Errorf("transaction %s: parsing amount %q: %w", t.ID, amount, err)
	}
	if t.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
		return model.Transaction{}, fmt.Errorf("transaction %s: parsing created_at %q: %w", t.ID, created, err)
	}
	return t, nil
}
