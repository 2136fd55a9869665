// Package guard implements the per-route authorization pipeline. The stage
// order is an explicit contract: public check, authentication, role check,
// permission check, short-circuiting on the first failure.
package guard

import (
	"log/slog"
	"net/http"

	"github.com/inkwell-cms/inkwell/internal/authz"
	"github.com/inkwell-cms/inkwell/internal/observability"
	"github.com/inkwell-cms/inkwell/internal/platform/httpx"
	"github.com/inkwell-cms/inkwell/internal/shared"
)

// Pipeline stage names, used for decision metrics and logs.
const (
	StagePublic     = "public"
	StageAuthn      = "authn"
	StageRole       = "role"
	StagePermission = "permission"
)

// Guard builds authorization middleware from declarative route policies.
type Guard struct {
	Logger  *slog.Logger
	Metrics *observability.Metrics
}

// Protect merges a group-level policy with a route-level override and returns
// the middleware enforcing the result.
func (g Guard) Protect(group, route authz.Policy) func(http.Handler) http.Handler {
	return g.Require(authz.Merge(group, route))
}

// Require returns middleware enforcing the given (already merged) policy.
func (g Guard) Require(policy authz.Policy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Stage 1: public routes skip everything, authentication included.
			if policy.Public() {
				g.Metrics.ObserveDecision(StagePublic, true)
				next.ServeHTTP(w, r)
				return
			}

			// Stage 2: an authenticated principal must be present.
			scope, ok := shared.TryScopeFromContext(r.Context())
			if !ok || scope.Principal == nil || scope.TenantID == "" {
				g.deny(w, r, StageAuthn, httpx.ErrUnauthorized)
				return
			}
			principal := scope.Principal

			// Stage 3: role hierarchy. The super-admin bypass fires before
			// the membership lookup so it also covers principals with no
			// membership row for this tenant at all.
			if policy.RequiresRole() {
				if principal.IsSuperAdmin {
					scope.MarkSystemAdminAccess()
					g.Metrics.ObserveDecision(StageRole, true)
				} else {
					role, ok := principal.RoleFor(scope.TenantID)
					if !ok {
						g.deny(w, r, StageRole, httpx.ErrForbidden)
						return
					}
					scope.SetResolvedRole(role)
					if !authz.HasMinimumRole(role, policy.MinimumRole, policy.AdditionalRoles...) {
						g.deny(w, r, StageRole, httpx.ErrForbidden)
						return
					}
					g.Metrics.ObserveDecision(StageRole, true)
				}
			}

			// Stage 4: permission matrix. Super-admins bypass this stage
			// unconditionally as well.
			if policy.RequiresPermissions() {
				if principal.IsSuperAdmin {
					scope.MarkSystemAdminAccess()
					g.Metrics.ObserveDecision(StagePermission, true)
				} else {
					role, resolved := scope.ResolvedRole()
					if !resolved {
						var ok bool
						role, ok = principal.RoleFor(scope.TenantID)
						if !ok {
							g.deny(w, r, StagePermission, httpx.ErrForbidden)
							return
						}
						scope.SetResolvedRole(role)
					}
					if !permitted(role, policy) {
						g.deny(w, r, StagePermission, httpx.ErrForbidden)
						return
					}
					g.Metrics.ObserveDecision(StagePermission, true)
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func permitted(role authz.Role, policy authz.Policy) bool {
	if policy.PermissionLogic == authz.LogicAll {
		return authz.HasAllPermissions(role, policy.RequiredPermissions)
	}
	return authz.HasAnyPermission(role, policy.RequiredPermissions)
}

func (g Guard) deny(w http.ResponseWriter, r *http.Request, stage string, err error) {
	g.Metrics.ObserveDecision(stage, false)
	if g.Logger != nil {
		g.Logger.Warn("request denied",
			slog.String("stage", stage),
			slog.String("path", r.URL.Path))
	}
	httpx.RespondError(w, err)
}
