package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

type SecretRepositoryInterface interface {
	Get(ctx context.Context, names ...string) (map[string]string, error)
}

type SecretRepository struct {
	DB *sql.DB
}

// Get returns the secrets that exist among names; missing names are simply absent.
func (r *SecretRepository) Get(ctx context.Context, names ...string) (map[string]string, error) {
	secrets := map[string]string{}
	if len(names) == 0 {
		return secrets, nil
	}

	placeholders := make([]string, len(names))
	args := make([]interface{}, len(names))
	for i, n := range names {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = n
	}

	query := `SELECT name, secret FROM secrets WHERE name IN (` + strings.Join(placeholders, ", ") + `)`
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("get secrets: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name, secret string
		if err := rows.Scan(&name, &secret); err != nil {
			return nil, fmt.Errorf("scan secret: %w", err)
		}
		secrets[name] = secret
	}
	return secrets, rows.Err()
}

var _ SecretRepositoryInterface = (*SecretRepository)(nil)
