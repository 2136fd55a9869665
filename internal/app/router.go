package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	audithttp "github.com/inkwell-cms/inkwell/internal/audit/http"
	"github.com/inkwell-cms/inkwell/internal/authz"
	"github.com/inkwell-cms/inkwell/internal/guard"
	"github.com/inkwell-cms/inkwell/internal/observability"
	"github.com/inkwell-cms/inkwell/internal/platform/httpx"
	"github.com/inkwell-cms/inkwell/internal/shared"
	"github.com/inkwell-cms/inkwell/internal/tenant"
	"github.com/inkwell-cms/inkwell/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger       *slog.Logger
	Config       *Config
	Tenant       *tenant.Stage
	Guard        guard.Guard
	AuditHandler *audithttp.Handler
	JobHandler   *jobs.Handler
	Metrics      *observability.Metrics
}

// NewRouter constructs the chi.Router with Inkwell defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}

	// Everything below runs tenant-scoped: the stage resolves the account,
	// authenticates the caller and seeds the request scope.
	r.Group(func(r chi.Router) {
		if params.Tenant != nil {
			r.Use(params.Tenant.Middleware)
		}

		r.Group(func(r chi.Router) {
			r.Use(params.Guard.Require(authz.Policy{Access: authz.AccessProtected}))
			r.Get("/me", meHandler)
		})

		if params.AuditHandler != nil {
			r.Route("/audit", func(r chi.Router) {
				r.Use(params.Guard.Require(authz.Policy{
					Access:      authz.AccessProtected,
					MinimumRole: authz.RoleAdmin,
				}))
				params.AuditHandler.MountRoutes(r)
			})
		}
	})

	return r
}

// meHandler reports the caller's identity and standing within the current
// account. Handy for smoke tests and client session bootstrap.
func meHandler(w http.ResponseWriter, r *http.Request) {
	scope, err := shared.ScopeFromContext(r.Context())
	if err != nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	resp := map[string]any{
		"user_id":        scope.Principal.ID,
		"email":          scope.Principal.Email,
		"tenant_id":      scope.TenantID,
		"transaction_id": scope.TransactionID,
		"super_admin":    scope.Principal.IsSuperAdmin,
	}
	if role, ok := scope.ResolvedRole(); ok {
		resp["role"] = role
	}
	httpx.JSON(w, http.StatusOK, resp)
}
