// Package audithttp exposes the audit timeline over HTTP. Routes are mounted
// behind the guard; reads are always scoped to the request's tenant.
package audithttp

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/inkwell-cms/inkwell/internal/audit"
	"github.com/inkwell-cms/inkwell/internal/platform/httpx"
	"github.com/inkwell-cms/inkwell/internal/shared"
)

// Handler serves audit trail reads.
type Handler struct {
	service  *audit.Service
	logger   *slog.Logger
	validate *validator.Validate
}

// NewHandler constructs the audit HTTP handler.
func NewHandler(service *audit.Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger, validate: validator.New()}
}

// MountRoutes registers the audit endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.Timeline)
	r.Get("/export", h.Export)
}

type timelineQuery struct {
	Actor    string `validate:"omitempty,max=128"`
	Entity   string `validate:"omitempty,max=128"`
	Type     string `validate:"omitempty,oneof=CREATE UPDATE SOFT_DELETE DELETE LOGIN LOGOUT"`
	Page     int    `validate:"omitempty,min=1"`
	PageSize int    `validate:"omitempty,min=1,max=50"`
}

type recordPayload struct {
	ID              string         `json:"id"`
	TransactionID   string         `json:"transaction_id"`
	TenantID        string         `json:"tenant_id"`
	ActorUserID     string         `json:"actor_user_id,omitempty"`
	Entity          string         `json:"entity"`
	EntityID        string         `json:"entity_id"`
	TransactionType string         `json:"transaction_type"`
	Payload         map[string]any `json:"payload,omitempty"`
	ClientIP        string         `json:"client_ip,omitempty"`
	UserAgent       string         `json:"user_agent,omitempty"`
	OccurredAt      time.Time      `json:"occurred_at"`
}

type timelineResponse struct {
	Rows   []recordPayload  `json:"rows"`
	Paging audit.PagingInfo `json:"paging"`
}

// Timeline serves one page of the current tenant's audit trail.
func (h *Handler) Timeline(w http.ResponseWriter, r *http.Request) {
	scope, err := shared.ScopeFromContext(r.Context())
	if err != nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	filters, ok := h.filters(w, r)
	if !ok {
		return
	}
	filters.TenantID = scope.TenantID

	result, err := h.service.Timeline(r.Context(), filters)
	if err != nil {
		h.logger.Error("audit timeline", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, timelineResponse{
		Rows:   toPayload(result.Rows),
		Paging: result.Paging,
	})
}

// Export serves the full filtered timeline without paging.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	scope, err := shared.ScopeFromContext(r.Context())
	if err != nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	filters, ok := h.filters(w, r)
	if !ok {
		return
	}
	filters.TenantID = scope.TenantID

	rows, err := h.service.Export(r.Context(), filters)
	if err != nil {
		h.logger.Error("audit export", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toPayload(rows))
}

func (h *Handler) filters(w http.ResponseWriter, r *http.Request) (audit.TimelineFilters, bool) {
	values := r.URL.Query()
	query := timelineQuery{
		Actor:    values.Get("actor"),
		Entity:   values.Get("entity"),
		Type:     values.Get("type"),
		Page:     intParam(values.Get("page")),
		PageSize: intParam(values.Get("page_size")),
	}
	if err := h.validate.Struct(query); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return audit.TimelineFilters{}, false
	}
	filters := audit.TimelineFilters{
		ActorUserID:     query.Actor,
		Entity:          query.Entity,
		TransactionType: audit.TransactionType(query.Type),
		Page:            query.Page,
		PageSize:        query.PageSize,
	}
	if from := values.Get("from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			httpx.RespondError(w, httpx.ErrValidation)
			return audit.TimelineFilters{}, false
		}
		filters.From = t
	}
	if to := values.Get("to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			httpx.RespondError(w, httpx.ErrValidation)
			return audit.TimelineFilters{}, false
		}
		filters.To = t
	}
	return filters, true
}

func intParam(raw string) int {
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return -1
	}
	return n
}

func toPayload(rows []audit.Record) []recordPayload {
	out := make([]recordPayload, 0, len(rows))
	for _, row := range rows {
		out = append(out, recordPayload{
			ID:              row.ID,
			TransactionID:   row.TransactionID,
			TenantID:        row.TenantID,
			ActorUserID:     row.ActorUserID,
			Entity:          row.Entity,
			EntityID:        row.EntityID,
			TransactionType: string(row.TransactionType),
			Payload:         row.Payload,
			ClientIP:        row.ClientIP,
			UserAgent:       row.UserAgent,
			OccurredAt:      row.OccurredAt,
		})
	}
	return out
}
