package shared

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/inkwell-cms/inkwell/internal/authz"
	"github.com/inkwell-cms/inkwell/internal/identity"
)

func resolvedScope(tenant, user string) *Scope {
	return &Scope{
		TenantID:      tenant,
		Principal:     &identity.Principal{ID: user},
		TransactionID: "txn-" + user,
	}
}

func TestScopeRoundTrip(t *testing.T) {
	ctx := ContextWithScope(context.Background(), resolvedScope("t1", "u1"))
	scope, err := ScopeFromContext(ctx)
	if err != nil {
		t.Fatalf("scope: %v", err)
	}
	if scope.TenantID != "t1" || scope.Principal.ID != "u1" {
		t.Fatalf("unexpected scope: %+v", scope)
	}
}

func TestScopeFromContextMissing(t *testing.T) {
	if _, err := ScopeFromContext(context.Background()); !errors.Is(err, ErrContextMissing) {
		t.Fatalf("expected ErrContextMissing, got %v", err)
	}
}

func TestScopeFromContextPartiallyResolved(t *testing.T) {
	// A scope without tenant or principal is a bug, not a public route.
	ctx := ContextWithScope(context.Background(), &Scope{TenantID: "t1"})
	if _, err := ScopeFromContext(ctx); !errors.Is(err, ErrContextMissing) {
		t.Fatalf("expected ErrContextMissing for partial scope, got %v", err)
	}
	if _, ok := TryScopeFromContext(ctx); !ok {
		t.Fatalf("TryScopeFromContext should still expose the partial scope")
	}
}

func TestTryScopeFromContextAbsent(t *testing.T) {
	if _, ok := TryScopeFromContext(context.Background()); ok {
		t.Fatalf("expected no scope")
	}
}

func TestScopeLateBoundFields(t *testing.T) {
	scope := resolvedScope("t1", "u1")
	if _, ok := scope.ResolvedRole(); ok {
		t.Fatalf("resolved role must start unset")
	}
	scope.SetResolvedRole(authz.RoleEditor)
	scope.MarkSystemAdminAccess()
	role, ok := scope.ResolvedRole()
	if !ok || role != authz.RoleEditor {
		t.Fatalf("resolved role = %v, %v", role, ok)
	}
	if !scope.SystemAdminAccess() {
		t.Fatalf("system admin marker lost")
	}
}

func TestScopeIsolationAcrossRequests(t *testing.T) {
	// Two concurrent "requests" with their own contexts must never observe
	// each other's scope.
	var wg sync.WaitGroup
	for _, tenant := range []string{"t1", "t2", "t3", "t4"} {
		wg.Add(1)
		go func(tenant string) {
			defer wg.Done()
			ctx := ContextWithScope(context.Background(), resolvedScope(tenant, "u-"+tenant))
			done := make(chan struct{})
			go func() {
				// Simulates work after an internal suspension point.
				scope, err := ScopeFromContext(ctx)
				if err != nil || scope.TenantID != tenant {
					t.Errorf("tenant %s: got %+v, err %v", tenant, scope, err)
				}
				close(done)
			}()
			<-done
		}(tenant)
	}
	wg.Wait()
}
