package shared

import (
	"context"

	"github.com/inkwell-cms/inkwell/internal/authz"
	"github.com/inkwell-cms/inkwell/internal/identity"
)

// Scope is the per-request bundle of tenant, principal and audit metadata.
// The tenant resolution stage builds exactly one Scope per inbound request
// and attaches it to the request context; from then on it is read-only except
// for the two late-bound fields the guard records for downstream audit use.
//
// Isolation comes from context.Context itself: a Scope travels with one
// request's context chain, survives internal suspension points, and is never
// visible to a concurrent request.
type Scope struct {
	TenantID      string
	Principal     *identity.Principal
	TransactionID string
	ClientIP      string
	UserAgent     string

	resolvedRole      authz.Role
	systemAdminAccess bool
}

// SetResolvedRole records the role the guard resolved for the current tenant.
func (s *Scope) SetResolvedRole(role authz.Role) {
	s.resolvedRole = role
}

// ResolvedRole returns the role recorded by the guard, if any.
func (s *Scope) ResolvedRole() (authz.Role, bool) {
	return s.resolvedRole, s.resolvedRole != ""
}

// MarkSystemAdminAccess flags the request as a super-admin bypass so the
// audit trail can distinguish it from ordinary membership access.
func (s *Scope) MarkSystemAdminAccess() {
	s.systemAdminAccess = true
}

// SystemAdminAccess reports whether the super-admin bypass fired.
func (s *Scope) SystemAdminAccess() bool {
	return s.systemAdminAccess
}

type scopeContextKey struct{}

// ContextWithScope attaches the request scope to the context.
func ContextWithScope(ctx context.Context, scope *Scope) context.Context {
	return context.WithValue(ctx, scopeContextKey{}, scope)
}

// ScopeFromContext returns the request scope. It fails with ErrContextMissing
// when no scope is attached or the scope was never fully resolved; public
// routes must never call this accessor.
func ScopeFromContext(ctx context.Context) (*Scope, error) {
	scope, ok := ctx.Value(scopeContextKey{}).(*Scope)
	if !ok || scope == nil || scope.TenantID == "" || scope.Principal == nil {
		return nil, ErrContextMissing
	}
	return scope, nil
}

// TryScopeFromContext is the non-failing variant for code paths that tolerate
// absence, such as fallback re-resolution or event emission on public routes.
func TryScopeFromContext(ctx context.Context) (*Scope, bool) {
	scope, ok := ctx.Value(scopeContextKey{}).(*Scope)
	return scope, ok && scope != nil
}
