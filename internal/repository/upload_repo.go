package repository

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/invoicedesk/invoicedesk/internal/domain"
)

// UploadRepository persists the per-page audit trail of upload batches.
type UploadRepository struct {
	db *sql.DB
}

// NewUploadRepository opens the database and verifies the connection.
func NewUploadRepository(databaseURL string) (*UploadRepository, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	return &UploadRepository{db: db}, nil
}

// Close closes the database connection.
func (r *UploadRepository) Close() error {
	return r.db.Close()
}

// EnsureSchema creates the upload_history table if it does not exist.
func (r *UploadRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS upload_history (
			id           UUID PRIMARY KEY,
			user_uuid    TEXT NOT NULL,
			file_name    TEXT NOT NULL,
			size_bytes   BIGINT NOT NULL DEFAULT 0,
			invoice_uuid TEXT,
			status       TEXT NOT NULL,
			created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_upload_history_user
			ON upload_history (user_uuid, created_at DESC);
	`)
	if err != nil {
		return fmt.Errorf("failed to create upload_history table: %w", err)
	}
	return nil
}

// Record inserts one upload outcome.
func (r *UploadRepository) Record(ctx context.Context, rec *domain.UploadRecord) error {
	query := `
		INSERT INTO upload_history (id, user_uuid, file_name, size_bytes, invoice_uuid, status, created_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		rec.ID,
		rec.UserUUID,
		rec.FileName,
		rec.SizeBytes,
		rec.InvoiceUUID,
		rec.Status,
		rec.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to record upload: %w", err)
	}

	return nil
}

// ListByUser returns the most recent upload records for a user.
func (r *UploadRepository) ListByUser(ctx context.Context, userUUID string, limit int) ([]domain.UploadRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, user_uuid, file_name, size_bytes, COALESCE(invoice_uuid, ''), status, created_at
		FROM upload_history
		WHERE user_uuid = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, userUUID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list uploads: %w", err)
	}
	defer rows.Close()

	var records []domain.UploadRecord
	for rows.Next() {
		var rec domain.UploadRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.UserUUID,
			&rec.FileName,
			&rec.SizeBytes,
			&rec.InvoiceUUID,
			&rec.Status,
			&rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan upload record: %w", err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}
