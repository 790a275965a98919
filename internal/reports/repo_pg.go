package reports

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new report row. The extraction result is stored as jsonb.
func (r *PGRepo) Create(ctx context.Context, report Report) error {
	const query = `
INSERT INTO reports (
    id,
    user_id,
    file_name,
    mime_type,
    size_bytes,
    storage_key,
    num_pages,
    result,
    created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	resultJSON, err := json.Marshal(report.Result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	var storageKey sql.NullString
	if report.StorageKey != "" {
		storageKey = sql.NullString{String: report.StorageKey, Valid: true}
	}

	_, err = r.DB.ExecContext(
		ctx,
		query,
		report.ID,
		report.UserID,
		report.FileName,
		report.MimeType,
		report.SizeBytes,
		storageKey,
		report.NumPages,
		resultJSON,
		report.CreatedAt,
	)
	return err
}

const selectColumns = `id, user_id, file_name, mime_type, size_bytes, storage_key, num_pages, result, created_at`

// GetByID fetches a report by ID for a user.
func (r *PGRepo) GetByID(ctx context.Context, userID, reportID string) (Report, error) {
	const query = `
SELECT ` + selectColumns + `
FROM reports
WHERE user_id = $1 AND id = $2
LIMIT 1`
	return scanReport(r.DB.QueryRowContext(ctx, query, userID, reportID))
}

// GetCurrentByUser returns the latest report for a user.
func (r *PGRepo) GetCurrentByUser(ctx context.Context, userID string) (Report, error) {
	const query = `
SELECT ` + selectColumns + `
FROM reports
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT 1`
	return scanReport(r.DB.QueryRowContext(ctx, query, userID))
}

// ListByUser lists reports ordered newest-first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Report, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
SELECT ` + selectColumns + `
FROM reports
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Report
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, report)
	}
	return out, rows.Err()
}

// DeleteByUser removes every report owned by the user.
func (r *PGRepo) DeleteByUser(ctx context.Context, userID string) (int, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM reports WHERE user_id = $1`, userID)
	if err != nil {
		return 0, err
	}
	deleted, _ := res.RowsAffected()
	return int(deleted), nil
}

// ClaimGuest reassigns reports owned by a guest user to an authenticated user.
func (r *PGRepo) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error) {
	const query = `
UPDATE reports
SET user_id = $1
WHERE user_id = $2`
	res, err := r.DB.ExecContext(ctx, query, authedUserID, guestUserID)
	if err != nil {
		return 0, err
	}
	updated, _ := res.RowsAffected()
	return int(updated), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (Report, error) {
	var report Report
	var storageKey sql.NullString
	var resultJSON []byte
	err := row.Scan(
		&report.ID,
		&report.UserID,
		&report.FileName,
		&report.MimeType,
		&report.SizeBytes,
		&storageKey,
		&report.NumPages,
		&resultJSON,
		&report.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Report{}, ErrNotFound
		}
		return Report{}, err
	}
	if storageKey.Valid {
		report.StorageKey = storageKey.String
	}
	if len(resultJSON) > 0 {
		if err := json.Unmarshal(resultJSON, &report.Result); err != nil {
			return Report{}, fmt.Errorf("unmarshal result: %w", err)
		}
	}
	return report, nil
}

var _ Repo = (*PGRepo)(nil)
