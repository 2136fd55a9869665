package tenant

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGDirectory maps tenant slugs to tenant ids using the tenants table.
type PGDirectory struct {
	pool *pgxpool.Pool
}

// NewPGDirectory returns a directory backed by the given pool.
func NewPGDirectory(pool *pgxpool.Pool) *PGDirectory {
	return &PGDirectory{pool: pool}
}

// LookupSlug resolves a subdomain label to the tenant it belongs to.
func (d *PGDirectory) LookupSlug(ctx context.Context, slug string) (string, error) {
	var id string
	err := d.pool.QueryRow(ctx, `
		SELECT id FROM tenants WHERE slug = $1 AND deleted_at IS NULL`, slug).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("tenant: lookup slug: %w", err)
	}
	return id, nil
}
