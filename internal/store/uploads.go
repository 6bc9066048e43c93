package store

import (
	"context"
	"fmt"
	"time"

	"github.com/cleared-dev/bankmint/internal/model"
)

// RecordUpload stores an upload summary.
func (s *Store) RecordUpload(ctx context.Context, u model.Upload) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO uploads
		(upload_id, account_id, file_name, imported, duplicates, parse_errors, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.AccountID, u.FileName, u.Imported, u.Duplicates, u.ParseErrors,
		u.CreatedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("recording upload %s: %w", u.ID, err)
	}
	return nil
}

// ListUploads returns uploads newest first. An empty accountID lists all
// accounts; limit <= 0 means no limit.
func (s *Store) ListUploads(ctx context.Context, accountID string, limit int) ([]model.Upload, error) {
	q := `SELECT upload_id, account_id, file_name, imported, duplicates, parse_errors, created_at FROM uploads`
	var args []any
	if accountID != "" {
		q += " WHERE account_id = ?"
		args = append(args, accountID)
	}
	q += " ORDER BY created_at DESC, rowid DESC"
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("listing uploads: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.Upload
	for rows.Next() {
		var u model.Upload
		var created string
		if err := rows.Scan(&u.ID, &u.AccountID, &u.FileName, &u.Imported, &u.Duplicates, &u.ParseErrors, &created); err != nil {
			return nil, err
		}
		if u.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
			return nil, fmt.Errorf("upload %s: parsing created_at: %w", u.ID, err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
