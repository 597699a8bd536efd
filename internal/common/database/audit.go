// internal/common/database/audit.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// AuditStore persists served predictions to the prediction_audit table.
type AuditStore struct {
	db *sql.DB
}

// AuditRecord is one served prediction.
type AuditRecord struct {
	ID         string
	CreatedAt  time.Time
	Features   string // canonical feature JSON
	Prediction int
	Source     string // "model" or "cache"
}

func NewAuditStore(db *sql.DB) *AuditStore {
	return &AuditStore{db: db}
}

// EnsureSchema creates the audit table if it does not exist.
func (s *AuditStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS prediction_audit (
			id         TEXT PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL,
			features   JSONB NOT NULL,
			prediction INT NOT NULL,
			source     TEXT NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("failed to create prediction_audit table: %w", err)
	}
	return nil
}

// Insert appends one audit record.
func (s *AuditStore) Insert(ctx context.Context, rec AuditRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO prediction_audit (id, created_at, features, prediction, source) VALUES ($1, $2, $3, $4, $5)`,
		rec.ID, rec.CreatedAt, rec.Features, rec.Prediction, rec.Source,
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit record: %w", err)
	}
	return nil
}

// CountSince returns how many predictions were served after the given time.
func (s *AuditStore) CountSince(ctx context.Context, since time.Time) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM prediction_audit WHERE created_at >= $1`, since,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count audit records: %w", err)
	}
	return n, nil
}
