package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unclebandit/donorlink-backend/internal/model"
)

func TestAppendBatch_SingleTransaction(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := &MessageRepository{DB: db}

	entries := []*model.AuditEntry{
		{DonorID: "a", MessageText: "hello", MessageType: model.ChannelWhatsApp},
		{DonorID: "b", MessageText: "hello", MessageType: model.ChannelWhatsApp},
	}

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(regexp.QuoteMeta(`INSERT INTO messages`))
	prep.ExpectExec().
		WithArgs(sqlmock.AnyArg(), "a", "hello", "whatsapp", "pending", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	prep.ExpectExec().
		WithArgs(sqlmock.AnyArg(), "b", "hello", "whatsapp", "pending", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.AppendBatch(context.Background(), entries))
	for _, e := range entries {
		assert.NotEmpty(t, e.ID)
		assert.Equal(t, model.MessageStatusPending, e.Status)
		assert.False(t, e.SentAt.IsZero())
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppendBatch_RollsBackOnFailure(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := &MessageRepository{DB: db}

	entries := []*model.AuditEntry{
		{DonorID: "a", MessageText: "hi", MessageType: model.ChannelWhatsApp},
		{DonorID: "b", MessageText: "hi", MessageType: model.ChannelWhatsApp},
	}

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(regexp.QuoteMeta(`INSERT INTO messages`))
	prep.ExpectExec().WillReturnResult(sqlmock.NewResult(1, 1))
	prep.ExpectExec().WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := repo.AppendBatch(context.Background(), entries)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppendBatch_EmptyIsNoop(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := &MessageRepository{DB: db}

	require.NoError(t, repo.AppendBatch(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMessageUpdateStatus(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := &MessageRepository{DB: db}

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE messages SET status=$1 WHERE id=$2`)).
		WithArgs("sent", "m1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateStatus(context.Background(), "m1", model.MessageStatusSent))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListByDonor(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := &MessageRepository{DB: db}
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM messages`)).
		WithArgs("d1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "donor_id", "message_text", "message_type", "status", "sent_at"}).
			AddRow("m2", "d1", "second", "whatsapp_api", "failed", now).
			AddRow("m1", "d1", "first", "whatsapp", "sent", now.Add(-time.Hour)))

	entries, err := repo.ListByDonor(context.Background(), "d1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, model.ChannelWhatsAppAPI, entries[0].MessageType)
	assert.Equal(t, model.MessageStatusFailed, entries[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}
