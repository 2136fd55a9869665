package audithttp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/inkwell-cms/inkwell/internal/audit"
	"github.com/inkwell-cms/inkwell/internal/identity"
	"github.com/inkwell-cms/inkwell/internal/shared"
)

func newTimelineServer(t *testing.T, repo *audit.MemoryRepository) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewHandler(audit.NewService(repo), logger)

	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scope := &shared.Scope{
				TenantID:      "t-acme",
				Principal:     &identity.Principal{ID: "u-1", Email: "admin@acme.test"},
				TransactionID: "txn-test",
			}
			next.ServeHTTP(w, r.WithContext(shared.ContextWithScope(r.Context(), scope)))
		})
	})
	router.Route("/audit", handler.MountRoutes)
	return router
}

func seedTenantRecords(t *testing.T, repo *audit.MemoryRepository, tenantID string, n int) {
	t.Helper()
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		err := repo.Append(context.Background(), audit.Record{
			ID:              fmt.Sprintf("%s-%03d", tenantID, i),
			TenantID:        tenantID,
			Entity:          "post",
			EntityID:        fmt.Sprintf("%d", i),
			TransactionType: audit.TransactionCreate,
			OccurredAt:      base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
}

func TestTimelineReturnsTenantPage(t *testing.T) {
	repo := audit.NewMemoryRepository()
	seedTenantRecords(t, repo, "t-acme", 7)
	seedTenantRecords(t, repo, "t-other", 3)
	server := newTimelineServer(t, repo)

	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/audit/?page_size=5", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Rows []struct {
			ID       string `json:"id"`
			TenantID string `json:"tenant_id"`
		} `json:"rows"`
		Paging struct {
			HasNext  bool `json:"has_next"`
			NextPage int  `json:"next_page"`
		} `json:"paging"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Rows) != 5 {
		t.Fatalf("rows = %d, want 5", len(body.Rows))
	}
	for _, row := range body.Rows {
		if row.TenantID != "t-acme" {
			t.Fatalf("leaked record from tenant %s", row.TenantID)
		}
	}
	if !body.Paging.HasNext || body.Paging.NextPage != 2 {
		t.Fatalf("paging = %+v", body.Paging)
	}
}

func TestTimelineRejectsBadFilters(t *testing.T) {
	repo := audit.NewMemoryRepository()
	server := newTimelineServer(t, repo)

	for _, target := range []string{
		"/audit/?type=TRUNCATE",
		"/audit/?page=zero",
		"/audit/?page_size=9000",
		"/audit/?from=yesterday",
	} {
		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: status = %d, want 400", target, rec.Code)
		}
	}
}

func TestTimelineFiltersByType(t *testing.T) {
	repo := audit.NewMemoryRepository()
	seedTenantRecords(t, repo, "t-acme", 3)
	if err := repo.Append(context.Background(), audit.Record{
		ID:              "login-1",
		TenantID:        "t-acme",
		Entity:          "user",
		EntityID:        "u-1",
		TransactionType: audit.TransactionLogin,
		OccurredAt:      time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	server := newTimelineServer(t, repo)

	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/audit/?type=LOGIN", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Rows []struct {
			ID string `json:"id"`
		} `json:"rows"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Rows) != 1 || body.Rows[0].ID != "login-1" {
		t.Fatalf("rows = %+v", body.Rows)
	}
}

func TestExportReturnsEverything(t *testing.T) {
	repo := audit.NewMemoryRepository()
	seedTenantRecords(t, repo, "t-acme", 30)
	server := newTimelineServer(t, repo)

	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/audit/export", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var rows []json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &rows); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(rows) != 30 {
		t.Fatalf("rows = %d, want 30", len(rows))
	}
}

func TestTimelineWithoutScopeIsUnauthorized(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewHandler(audit.NewService(audit.NewMemoryRepository()), logger)
	router := chi.NewRouter()
	router.Route("/audit", handler.MountRoutes)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/audit/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}
