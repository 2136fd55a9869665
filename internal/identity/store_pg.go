package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/inkwell-cms/inkwell/internal/authz"
)

// PGStore loads principals and their tenant memberships from Postgres.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore returns a store backed by the given pool.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

// FindBySubject loads the principal registered under the token subject.
func (s *PGStore) FindBySubject(ctx context.Context, subject string) (*Principal, error) {
	var principal Principal
	err := s.pool.QueryRow(ctx, `
		SELECT id, email, is_super_admin
		FROM users
		WHERE subject = $1 AND deleted_at IS NULL`, subject).
		Scan(&principal.ID, &principal.Email, &principal.IsSuperAdmin)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("identity: find principal: %w", err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT tenant_id, role
		FROM tenant_memberships
		WHERE user_id = $1`, principal.ID)
	if err != nil {
		return nil, fmt.Errorf("identity: load memberships: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			membership TenantMembership
			role       string
		)
		if err := rows.Scan(&membership.TenantID, &role); err != nil {
			return nil, fmt.Errorf("identity: scan membership: %w", err)
		}
		membership.Role = authz.Role(role)
		principal.Memberships = append(principal.Memberships, membership)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("identity: load memberships: %w", err)
	}
	return &principal, nil
}
