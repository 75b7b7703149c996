package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/unclebandit/donorlink-backend/internal/model"
)

// MessageRepositoryInterface is the append-only message audit log.
type MessageRepositoryInterface interface {
	AppendBatch(ctx context.Context, entries []*model.AuditEntry) error
	UpdateStatus(ctx context.Context, id string, status model.MessageStatus) error
	ListByDonor(ctx context.Context, donorID string) ([]model.AuditEntry, error)
}

type MessageRepository struct {
	DB *sql.DB
}

// AppendBatch writes all entries in one transaction: either every entry is
// durable or none is.
func (r *MessageRepository) AppendBatch(ctx context.Context, entries []*model.AuditEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin audit batch: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO messages (id, donor_id, message_text, message_type, status, sent_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`)
	if err != nil {
		return fmt.Errorf("prepare audit insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, e := range entries {
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		if e.Status == "" {
			e.Status = model.MessageStatusPending
		}
		if e.SentAt.IsZero() {
			e.SentAt = now
		}
		if _, err := stmt.ExecContext(ctx, e.ID, e.DonorID, e.MessageText, e.MessageType, e.Status, e.SentAt); err != nil {
			return fmt.Errorf("insert audit entry for donor %s: %w", e.DonorID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit audit batch: %w", err)
	}
	return nil
}

func (r *MessageRepository) UpdateStatus(ctx context.Context, id string, status model.MessageStatus) error {
	_, err := r.DB.ExecContext(ctx, `UPDATE messages SET status=$1 WHERE id=$2`, status, id)
	if err != nil {
		return fmt.Errorf("update audit status: %w", err)
	}
	return nil
}

func (r *MessageRepository) ListByDonor(ctx context.Context, donorID string) ([]model.AuditEntry, error) {
	query := `
		SELECT id, donor_id, message_text, message_type, status, sent_at
		FROM messages
		WHERE donor_id=$1
		ORDER BY sent_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, donorID)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	entries := []model.AuditEntry{}
	for rows.Next() {
		var e model.AuditEntry
		if err := rows.Scan(&e.ID, &e.DonorID, &e.MessageText, &e.MessageType, &e.Status, &e.SentAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

var _ MessageRepositoryInterface = (*MessageRepository)(nil)
