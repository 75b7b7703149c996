package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/unclebandit/donorlink-backend/internal/model"
)

// ProfileRepositoryInterface defines methods used by the settings resolver
type ProfileRepositoryInterface interface {
	GetByID(ctx context.Context, id string) (*model.Profile, error)
	FindAdminWithWhatsApp(ctx context.Context) (*model.Profile, error)
	SaveWhatsAppNumber(ctx context.Context, id, number string) error
}

type ProfileRepository struct {
	DB *sql.DB
}

// GetByID returns nil, nil when the profile does not exist.
func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*model.Profile, error) {
	var (
		p      model.Profile
		number sql.NullString
	)
	err := r.DB.QueryRowContext(ctx, `SELECT id, whatsapp_number, is_admin FROM profiles WHERE id=$1`, id).
		Scan(&p.ID, &number, &p.IsAdmin)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	if number.Valid {
		p.WhatsAppNumber = &number.String
	}
	return &p, nil
}

// FindAdminWithWhatsApp returns any admin that has a number configured, or nil.
func (r *ProfileRepository) FindAdminWithWhatsApp(ctx context.Context) (*model.Profile, error) {
	query := `
		SELECT id, whatsapp_number, is_admin
		FROM profiles
		WHERE is_admin = TRUE AND whatsapp_number IS NOT NULL AND whatsapp_number <> ''
		LIMIT 1
	`
	var (
		p      model.Profile
		number sql.NullString
	)
	err := r.DB.QueryRowContext(ctx, query).Scan(&p.ID, &number, &p.IsAdmin)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find admin profile: %w", err)
	}
	p.WhatsAppNumber = &number.String
	return &p, nil
}

// SaveWhatsAppNumber keeps only digits and '+' before storing.
func (r *ProfileRepository) SaveWhatsAppNumber(ctx context.Context, id, number string) error {
	query := `
		INSERT INTO profiles (id, whatsapp_number, is_admin)
		VALUES ($1, $2, FALSE)
		ON CONFLICT (id) DO UPDATE SET whatsapp_number = excluded.whatsapp_number
	`
	if _, err := r.DB.ExecContext(ctx, query, id, CleanWhatsAppNumber(number)); err != nil {
		return fmt.Errorf("save whatsapp number: %w", err)
	}
	return nil
}

// CleanWhatsAppNumber strips everything except digits and '+'.
func CleanWhatsAppNumber(number string) string {
	return strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '+' {
			return r
		}
		return -1
	}, number)
}

var _ ProfileRepositoryInterface = (*ProfileRepository)(nil)
