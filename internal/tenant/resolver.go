// Package tenant resolves the target account for an inbound request and
// populates the request scope consumed by the guard pipeline.
package tenant

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// ErrNotFound indicates that a candidate tenant string matched no account.
// It surfaces as 404, distinct from authentication failures.
var ErrNotFound = errors.New("tenant: not found")

// HeaderAccountID is the header carrying the tenant identifier.
const HeaderAccountID = "account-id"

// Resolver extracts the tenant identifier from request metadata. Strategies
// differ (header, subdomain, path) but share one contract: return a tenant id
// or fail.
type Resolver interface {
	Resolve(r *http.Request) (string, error)
}

// Directory maps a public tenant slug (subdomain or path segment) to an
// account identifier. Implementations live in the accounts store.
type Directory interface {
	LookupSlug(ctx context.Context, slug string) (string, error)
}

// HeaderResolver reads the tenant id verbatim from a request header.
type HeaderResolver struct {
	Header string
}

// Resolve returns the header value or fails when it is absent.
func (h HeaderResolver) Resolve(r *http.Request) (string, error) {
	header := h.Header
	if header == "" {
		header = HeaderAccountID
	}
	id := strings.TrimSpace(r.Header.Get(header))
	if id == "" {
		return "", fmt.Errorf("tenant: missing %s header", header)
	}
	return id, nil
}

// SubdomainResolver derives the tenant slug from the request host, e.g.
// acme.inkwell.app -> acme, and maps it through the directory.
type SubdomainResolver struct {
	BaseDomain string
	Directory  Directory
}

// Resolve extracts the leftmost host label and looks it up.
func (s SubdomainResolver) Resolve(r *http.Request) (string, error) {
	host := r.Host
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	suffix := "." + s.BaseDomain
	if !strings.HasSuffix(host, suffix) {
		return "", fmt.Errorf("%w: host %q outside base domain", ErrNotFound, host)
	}
	slug := strings.TrimSuffix(host, suffix)
	if slug == "" || strings.Contains(slug, ".") {
		return "", fmt.Errorf("%w: host %q has no tenant label", ErrNotFound, host)
	}
	id, err := s.Directory.LookupSlug(r.Context(), slug)
	if err != nil {
		return "", fmt.Errorf("%w: slug %q", ErrNotFound, slug)
	}
	return id, nil
}

// PathResolver reads the tenant slug from the chi route parameter "account".
type PathResolver struct {
	Directory Directory
}

// Resolve maps the path segment through the directory.
func (p PathResolver) Resolve(r *http.Request) (string, error) {
	slug := chi.URLParam(r, "account")
	if slug == "" {
		return "", fmt.Errorf("%w: no account path segment", ErrNotFound)
	}
	id, err := p.Directory.LookupSlug(r.Context(), slug)
	if err != nil {
		return "", fmt.Errorf("%w: slug %q", ErrNotFound, slug)
	}
	return id, nil
}
