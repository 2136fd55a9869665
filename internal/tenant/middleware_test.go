package tenant_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"

	"github.com/inkwell-cms/inkwell/internal/identity"
	"github.com/inkwell-cms/inkwell/internal/shared"
	"github.com/inkwell-cms/inkwell/internal/tenant"
)

type stubLookup struct {
	principals map[string]*identity.Principal
}

func (s *stubLookup) FindBySubject(ctx context.Context, subject string) (*identity.Principal, error) {
	if p, ok := s.principals[subject]; ok {
		return p, nil
	}
	return nil, identity.ErrNotFound
}

func testToken(t *testing.T, subject string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": subject})
	signed, err := token.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return signed
}

func newStage(t *testing.T, lookup identity.PrincipalLookup) tenant.Stage {
	t.Helper()
	decoder, err := identity.NewDecoder("roles")
	if err != nil {
		t.Fatalf("decoder: %v", err)
	}
	return tenant.Stage{
		Resolver: tenant.HeaderResolver{},
		Lookup:   lookup,
		Decoder:  decoder,
	}
}

func captureScope(scopes chan<- *shared.Scope) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scope, err := shared.ScopeFromContext(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		scopes <- scope
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestStagePopulatesScope(t *testing.T) {
	lookup := &stubLookup{principals: map[string]*identity.Principal{
		"sub-1": {ID: "u-1", Email: "one@acme.test"},
	}}
	scopes := make(chan *shared.Scope, 1)
	handler := newStage(t, lookup).Middleware(captureScope(scopes))

	req := httptest.NewRequest(http.MethodGet, "/posts", nil)
	req.Header.Set(tenant.HeaderAccountID, "t1")
	req.Header.Set("Authorization", "Bearer "+testToken(t, "sub-1"))
	req.Header.Set("User-Agent", "inkwell-test")
	req.RemoteAddr = "203.0.113.9:4711"

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusNoContent {
		t.Fatalf("status = %d, body %s", res.Code, res.Body.String())
	}

	scope := <-scopes
	if scope.TenantID != "t1" || scope.Principal.ID != "u-1" {
		t.Fatalf("scope = %+v", scope)
	}
	if scope.TransactionID == "" {
		t.Fatalf("expected generated transaction id")
	}
	if scope.ClientIP != "203.0.113.9" {
		t.Fatalf("client ip = %q", scope.ClientIP)
	}
	if scope.UserAgent != "inkwell-test" {
		t.Fatalf("user agent = %q", scope.UserAgent)
	}
}

func TestStageRejectsMissingAccountHeader(t *testing.T) {
	handler := newStage(t, &stubLookup{}).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler must not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/posts", nil)
	req.Header.Set("Authorization", "Bearer "+testToken(t, "sub-1"))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", res.Code)
	}
}

func TestStageRejectsMissingToken(t *testing.T) {
	handler := newStage(t, &stubLookup{}).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler must not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/posts", nil)
	req.Header.Set(tenant.HeaderAccountID, "t1")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", res.Code)
	}
}

func TestStageFailuresAreIndistinguishable(t *testing.T) {
	// Missing header, garbage token and unknown principal must produce the
	// same response body.
	handler := newStage(t, &stubLookup{}).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	bodies := map[string]struct{}{}
	for _, prepare := range []func(*http.Request){
		func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+testToken(t, "sub-1"))
		},
		func(r *http.Request) {
			r.Header.Set(tenant.HeaderAccountID, "t1")
			r.Header.Set("Authorization", "Bearer not-a-token")
		},
		func(r *http.Request) {
			r.Header.Set(tenant.HeaderAccountID, "t1")
			r.Header.Set("Authorization", "Bearer "+testToken(t, "ghost"))
		},
	} {
		req := httptest.NewRequest(http.MethodGet, "/posts", nil)
		prepare(req)
		res := httptest.NewRecorder()
		handler.ServeHTTP(res, req)
		if res.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d", res.Code)
		}
		bodies[res.Body.String()] = struct{}{}
	}
	if len(bodies) != 1 {
		t.Fatalf("expected one uniform body, got %d variants", len(bodies))
	}
}

type verifierFunc func(ctx context.Context, token string) (identity.Claims, error)

func (f verifierFunc) Verify(ctx context.Context, token string) (identity.Claims, error) {
	return f(ctx, token)
}

func TestStageUsesVerifierWhenConfigured(t *testing.T) {
	lookup := &stubLookup{principals: map[string]*identity.Principal{
		"verified-sub": {ID: "u-9"},
	}}
	stage := newStage(t, lookup)
	stage.Verifier = verifierFunc(func(ctx context.Context, token string) (identity.Claims, error) {
		if token != "opaque-token" {
			t.Fatalf("unexpected token %q", token)
		}
		return identity.Claims{Subject: "verified-sub"}, nil
	})

	scopes := make(chan *shared.Scope, 1)
	handler := stage.Middleware(captureScope(scopes))
	req := httptest.NewRequest(http.MethodGet, "/posts", nil)
	req.Header.Set(tenant.HeaderAccountID, "t1")
	req.Header.Set("Authorization", "Bearer opaque-token")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusNoContent {
		t.Fatalf("status = %d", res.Code)
	}
	if scope := <-scopes; scope.Principal.ID != "u-9" {
		t.Fatalf("principal = %+v", scope.Principal)
	}
}

func TestStageUnknownSubdomainIs404(t *testing.T) {
	stage := newStage(t, &stubLookup{})
	stage.Resolver = tenant.SubdomainResolver{
		BaseDomain: "inkwell.app",
		Directory:  directoryFunc(func(ctx context.Context, slug string) (string, error) { return "", tenant.ErrNotFound }),
	}
	handler := stage.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler must not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/posts", nil)
	req.Host = "ghost.inkwell.app"
	req.Header.Set("Authorization", "Bearer "+testToken(t, "sub-1"))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusNotFound {
		t.Fatalf("status = %d", res.Code)
	}
}
