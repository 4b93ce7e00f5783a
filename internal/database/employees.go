package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nao1215/staffscan/internal/model"
)

// StoredEmployee is an employee with its history in the store.
type StoredEmployee struct {
	model.Employee

	FirstSeen time.Time
	LastSeen  time.Time
	LastRunID string
}

// UpsertResult counts what UpsertEmployees did.
type UpsertResult struct {
	// Added records were not in the store.
	Added int

	// Updated records existed with different report fields.
	Updated int

	// Unchanged records only had last_seen refreshed.
	Unchanged int
}

// UpsertEmployees records a run's roster for company. Records are keyed by
// company and name key; change detection uses the record fingerprint.
func (s *Store) UpsertEmployees(ctx context.Context, company, runID string, employees []model.Employee) (UpsertResult, error) {
	var result UpsertResult
	now := formatTimestamp(time.Now())

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return result, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }() //nolint:errcheck // no-op after commit

	for _, e := range employees {
		key := e.Key()
		fingerprint := e.Fingerprint()

		var stored string
		err := tx.QueryRowContext(ctx,
			`SELECT fingerprint FROM employees WHERE company = ? AND key = ?`, company, key).Scan(&stored)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			result.Added++
		case err != nil:
			return result, fmt.Errorf("failed to look up %s: %w", key, err)
		case stored == fingerprint:
			result.Unchanged++
		default:
			result.Updated++
		}

		_, err = tx.ExecContext(ctx, `
		INSERT INTO employees (company, key, first_name, last_name, title, location, source, confidence, link,
			needs_verification, verification_status, fingerprint, first_seen, last_seen, last_run_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(company, key) DO UPDATE SET
			first_name = excluded.first_name,
			last_name = excluded.last_name,
			title = excluded.title,
			location = excluded.location,
			source = excluded.source,
			confidence = excluded.confidence,
			link = excluded.link,
			needs_verification = excluded.needs_verification,
			verification_status = excluded.verification_status,
			fingerprint = excluded.fingerprint,
			last_seen = excluded.last_seen,
			last_run_id = excluded.last_run_id
		`,
			company, key, e.FirstName, e.LastName, e.Title, e.Location, e.Source, e.Confidence.String(), e.Link,
			e.NeedsVerification, e.VerificationStatus, fingerprint, now, now, runID,
		)
		if err != nil {
			return result, fmt.Errorf("failed to upsert %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return result, fmt.Errorf("failed to commit employees: %w", err)
	}
	return result, nil
}

// ListEmployees returns the stored employees of company ordered by last
// name then first name.
func (s *Store) ListEmployees(ctx context.Context, company string) ([]StoredEmployee, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT company, first_name, last_name, title, location, source, confidence, link,
		needs_verification, verification_status, first_seen, last_seen, last_run_id
	FROM employees
	WHERE company = ?
	ORDER BY last_name COLLATE NOCASE, first_name COLLATE NOCASE
	`, company)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var out []StoredEmployee
	for rows.Next() {
		var se StoredEmployee
		var title, location, source, confidence, link, status, runID sql.NullString
		var firstSeen, lastSeen string
		if err := rows.Scan(&se.Company, &se.FirstName, &se.LastName, &title, &location, &source, &confidence, &link,
			&se.NeedsVerification, &status, &firstSeen, &lastSeen, &runID); err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		se.Title = title.String
		se.Location = location.String
		se.Source = source.String
		se.Confidence = model.ParseConfidence(confidence.String)
		se.Link = link.String
		se.VerificationStatus = status.String
		se.FirstSeen = parseTimestamp(firstSeen)
		se.LastSeen = parseTimestamp(lastSeen)
		se.LastRunID = runID.String
		out = append(out, se)
	}
	return out, rows.Err()
}
