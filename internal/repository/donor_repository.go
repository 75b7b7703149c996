package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	appErrors "github.com/unclebandit/donorlink-backend/internal/errors"
	"github.com/unclebandit/donorlink-backend/internal/model"
)

// DonorRepositoryInterface is the Donor Store as the rest of the system sees it.
type DonorRepositoryInterface interface {
	List(ctx context.Context, filter model.DonorFilter) ([]model.Donor, error)
	GetByID(ctx context.Context, id string) (*model.Donor, error)
	Create(ctx context.Context, d *model.Donor) error
	Update(ctx context.Context, d *model.Donor) error
	Delete(ctx context.Context, id string) error
}

type DonorRepository struct {
	DB *sql.DB
}

const donorColumns = `id, name, blood_group, city, phone, email, donation_count, created_at`

// List returns donors newest first. Blood group matches exactly, city is a
// case-insensitive substring match.
func (r *DonorRepository) List(ctx context.Context, filter model.DonorFilter) ([]model.Donor, error) {
	filter = filter.Normalized()

	query := `SELECT ` + donorColumns + ` FROM donors WHERE 1=1`
	args := []interface{}{}
	argPos := 1

	if filter.BloodGroup != "" {
		query += fmt.Sprintf(" AND blood_group=$%d", argPos)
		args = append(args, filter.BloodGroup)
		argPos++
	}
	if filter.City != "" {
		query += fmt.Sprintf(" AND LOWER(city) LIKE LOWER($%d)", argPos)
		args = append(args, "%"+filter.City+"%")
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list donors: %w", err)
	}
	defer rows.Close()

	donors := []model.Donor{}
	for rows.Next() {
		var d model.Donor
		if err := rows.Scan(&d.ID, &d.Name, &d.BloodGroup, &d.City, &d.Phone, &d.Email, &d.DonationCount, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan donor: %w", err)
		}
		donors = append(donors, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list donors: %w", err)
	}
	return donors, nil
}

func (r *DonorRepository) GetByID(ctx context.Context, id string) (*model.Donor, error) {
	query := `SELECT ` + donorColumns + ` FROM donors WHERE id=$1`

	var d model.Donor
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&d.ID, &d.Name, &d.BloodGroup, &d.City, &d.Phone, &d.Email, &d.DonationCount, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NewDonorNotFound(id)
		}
		return nil, fmt.Errorf("get donor: %w", err)
	}
	return &d, nil
}

// Create inserts a donor, assigning its ID and creation time.
func (r *DonorRepository) Create(ctx context.Context, d *model.Donor) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	d.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO donors (id, name, blood_group, city, phone, email, donation_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.DB.ExecContext(ctx, query, d.ID, d.Name, d.BloodGroup, d.City, d.Phone, d.Email, d.DonationCount, d.CreatedAt)
	if err != nil {
		return fmt.Errorf("create donor: %w", err)
	}
	return nil
}

func (r *DonorRepository) Update(ctx context.Context, d *model.Donor) error {
	query := `
		UPDATE donors
		SET name=$1, blood_group=$2, city=$3, phone=$4, email=$5, donation_count=$6
		WHERE id=$7
	`
	res, err := r.DB.ExecContext(ctx, query, d.Name, d.BloodGroup, d.City, d.Phone, d.Email, d.DonationCount, d.ID)
	if err != nil {
		return fmt.Errorf("update donor: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return appErrors.NewDonorNotFound(d.ID)
	}
	return nil
}

func (r *DonorRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM donors WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete donor: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return appErrors.NewDonorNotFound(id)
	}
	return nil
}

var _ DonorRepositoryInterface = (*DonorRepository)(nil)
