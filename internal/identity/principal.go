// Package identity models the authenticated principal and the collaborators
// that resolve one from a verified bearer token.
package identity

import (
	"context"
	"errors"

	"github.com/inkwell-cms/inkwell/internal/authz"
)

// ErrNotFound indicates that no principal exists for the given subject.
var ErrNotFound = errors.New("identity: principal not found")

// TenantMembership ties a principal to one account with a single role.
type TenantMembership struct {
	TenantID string     `json:"tenant_id"`
	Role     authz.Role `json:"role"`
}

// Principal is the identity resolved from a verified token.
//
// IsSuperAdmin is a principal-level flag, not a role: it grants unconditional
// cross-tenant access and is evaluated before any membership, hierarchy or
// permission lookup.
type Principal struct {
	ID           string             `json:"id"`
	Email        string             `json:"email"`
	Memberships  []TenantMembership `json:"memberships,omitempty"`
	IsSuperAdmin bool               `json:"is_super_admin"`
}

// MembershipFor returns the principal's membership for a tenant, if any.
func (p *Principal) MembershipFor(tenantID string) (TenantMembership, bool) {
	if p == nil {
		return TenantMembership{}, false
	}
	for _, m := range p.Memberships {
		if m.TenantID == tenantID {
			return m, true
		}
	}
	return TenantMembership{}, false
}

// RoleFor returns the principal's role for a tenant, if a membership exists.
func (p *Principal) RoleFor(tenantID string) (authz.Role, bool) {
	m, ok := p.MembershipFor(tenantID)
	return m.Role, ok
}

// PrincipalLookup resolves principals by token subject. Implementations live
// outside the authorization core (user store, directory service).
type PrincipalLookup interface {
	FindBySubject(ctx context.Context, subject string) (*Principal, error)
}

// Claims are the verified token claims the core consumes.
type Claims struct {
	Subject string
	Email   string
	Roles   []string
}

// TokenVerifier validates a third-party-issued token and yields its claims.
// Signature verification is entirely the verifier's concern; the core treats
// it as a black box that either succeeds or fails.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}
