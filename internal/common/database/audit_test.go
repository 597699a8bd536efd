// internal/common/database/audit_test.go
package database

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditStore_EnsureSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS prediction_audit").
		WillReturnResult(sqlmock.NewResult(0, 0))

	store := NewAuditStore(db)
	assert.NoError(t, store.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditStore_Insert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rec := AuditRecord{
		ID:         "run-1",
		CreatedAt:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Features:   `[1,0.5]`,
		Prediction: 1,
		Source:     "model",
	}

	mock.ExpectExec("INSERT INTO prediction_audit").
		WithArgs(rec.ID, rec.CreatedAt, rec.Features, rec.Prediction, rec.Source).
		WillReturnResult(sqlmock.NewResult(1, 1))

	store := NewAuditStore(db)
	assert.NoError(t, store.Insert(context.Background(), rec))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditStore_InsertError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO prediction_audit").
		WillReturnError(assert.AnError)

	store := NewAuditStore(db)
	err = store.Insert(context.Background(), AuditRecord{ID: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to insert audit record")
}

func TestAuditStore_CountSince(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	since := time.Now().Add(-time.Hour)
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM prediction_audit").
		WithArgs(since).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	store := NewAuditStore(db)
	n, err := store.CountSince(context.Background(), since)
	require.NoError(t, err)
	assert.Equal(t, 7, n)
}
