package database

import (
	"context"
	"fmt"
	"time"

	"github.com/nao1215/staffscan/internal/model"
)

// SetException stores an include or exclude decision for a name.
// A zero UpdatedAt is stamped with the current time.
func (s *Store) SetException(ctx context.Context, ex model.NameException) error {
	return s.SaveExceptions(ctx, []model.NameException{ex})
}

// SaveExceptions stores several decisions in one transaction.
func (s *Store) SaveExceptions(ctx context.Context, exceptions []model.NameException) error {
	if len(exceptions) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }() //nolint:errcheck // no-op after commit

	for _, ex := range exceptions {
		if ex.Key == "" {
			ex.Key = model.NameKeyFromFull(ex.Name)
		}
		if ex.UpdatedAt.IsZero() {
			ex.UpdatedAt = time.Now()
		}
		_, err := tx.ExecContext(ctx, `
		INSERT INTO exceptions (key, name, include, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			name = excluded.name,
			include = excluded.include,
			updated_at = excluded.updated_at
		`, ex.Key, ex.Name, ex.Include, formatTimestamp(ex.UpdatedAt))
		if err != nil {
			return fmt.Errorf("failed to save exception %s: %w", ex.Key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit exceptions: %w", err)
	}
	return nil
}

// RemoveException deletes the decision for key and reports whether one existed.
func (s *Store) RemoveException(ctx context.Context, key string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM exceptions WHERE key = ?`, key)
	if err != nil {
		return false, fmt.Errorf("failed to remove exception: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to remove exception: %w", err)
	}
	return n > 0, nil
}

// ListExceptions returns every stored decision ordered by key.
func (s *Store) ListExceptions(ctx context.Context) ([]model.NameException, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, name, include, updated_at FROM exceptions ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("failed to list exceptions: %w", err)
	}
	defer rows.Close()

	var out []model.NameException
	for rows.Next() {
		var ex model.NameException
		var updated string
		if err := rows.Scan(&ex.Key, &ex.Name, &ex.Include, &updated); err != nil {
			return nil, fmt.Errorf("failed to scan exception: %w", err)
		}
		ex.UpdatedAt = parseTimestamp(updated)
		out = append(out, ex)
	}
	return out, rows.Err()
}
