package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/unclebandit/donorlink-backend/internal/errors"
	"github.com/unclebandit/donorlink-backend/internal/model"
)

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open mock db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

var donorRowColumns = []string{"id", "name", "blood_group", "city", "phone", "email", "donation_count", "created_at"}

func TestDonorList_AppliesFilters(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := &DonorRepository{DB: db}
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM donors WHERE 1=1 AND blood_group=$1 AND LOWER(city) LIKE LOWER($2) ORDER BY created_at DESC`)).
		WithArgs("O+", "%pune%").
		WillReturnRows(sqlmock.NewRows(donorRowColumns).
			AddRow("d1", "Asha", "O+", "Pune", "9876543210", "asha@example.com", 2, now))

	donors, err := repo.List(context.Background(), model.DonorFilter{BloodGroup: "O+", City: "pune"})
	require.NoError(t, err)
	require.Len(t, donors, 1)
	assert.Equal(t, "Asha", donors[0].Name)
	assert.Equal(t, model.BloodGroupOPos, donors[0].BloodGroup)
	assert.Equal(t, 2, donors[0].DonationCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDonorList_AllGroupMeansNoFilter(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := &DonorRepository{DB: db}

	mock.ExpectQuery(regexp.QuoteMeta(`FROM donors WHERE 1=1 ORDER BY created_at DESC`)).
		WithArgs().
		WillReturnRows(sqlmock.NewRows(donorRowColumns))

	donors, err := repo.List(context.Background(), model.DonorFilter{BloodGroup: "_all"})
	require.NoError(t, err)
	assert.Empty(t, donors)
	assert.NotNil(t, donors)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDonorGetByID_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := &DonorRepository{DB: db}

	mock.ExpectQuery(regexp.QuoteMeta(`FROM donors WHERE id=$1`)).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	d, err := repo.GetByID(context.Background(), "missing")
	assert.Nil(t, d)
	assert.True(t, errors.Is(err, appErrors.ErrDonorNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDonorCreate_AssignsID(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := &DonorRepository{DB: db}

	d := &model.Donor{Name: "Ravi", BloodGroup: model.BloodGroupBNeg, City: "Delhi", Phone: "9000000001", Email: "ravi@example.com"}

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO donors`)).
		WithArgs(sqlmock.AnyArg(), "Ravi", "B-", "Delhi", "9000000001", "ravi@example.com", 0, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Create(context.Background(), d))
	assert.NotEmpty(t, d.ID)
	assert.False(t, d.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDonorUpdateAndDelete_NoRowsIsNotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := &DonorRepository{DB: db}

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE donors`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM donors WHERE id=$1`)).
		WithArgs("gone").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &model.Donor{ID: "gone"})
	assert.True(t, errors.Is(err, appErrors.ErrDonorNotFound))

	err = repo.Delete(context.Background(), "gone")
	assert.True(t, errors.Is(err, appErrors.ErrDonorNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}
