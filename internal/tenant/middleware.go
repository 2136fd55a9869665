package tenant

import (
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/inkwell-cms/inkwell/internal/identity"
	"github.com/inkwell-cms/inkwell/internal/platform/httpx"
	"github.com/inkwell-cms/inkwell/internal/shared"
)

const bearerPrefix = "Bearer "

// Stage runs once per inbound request, before any protected-route logic.
// It resolves the tenant, authenticates the bearer token subject, resolves
// the principal and populates the request scope.
//
// Every authentication-path failure answers with the same Unauthorized body;
// the concrete cause is only logged.
type Stage struct {
	Resolver Resolver
	Lookup   identity.PrincipalLookup
	Decoder  *identity.Decoder
	// Verifier is optional. When configured the token signature is checked
	// here; otherwise verification is assumed to have happened upstream and
	// only the payload is decoded.
	Verifier identity.TokenVerifier
	Logger   *slog.Logger
}

// Middleware wires the stage into a chi middleware chain.
func (s Stage) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tenantID, err := s.Resolver.Resolve(r)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				s.log("tenant resolution failed", r, err)
				httpx.RespondError(w, httpx.ErrNotFound)
				return
			}
			s.deny(w, r, err)
			return
		}

		token, ok := bearerToken(r)
		if !ok {
			s.deny(w, r, errors.New("missing bearer token"))
			return
		}

		subject, err := s.subject(r, token)
		if err != nil {
			s.deny(w, r, err)
			return
		}

		principal, err := s.Lookup.FindBySubject(r.Context(), subject)
		if err != nil {
			s.deny(w, r, err)
			return
		}

		scope := &shared.Scope{
			TenantID:      tenantID,
			Principal:     principal,
			TransactionID: uuid.NewString(),
			ClientIP:      clientIP(r),
			UserAgent:     r.UserAgent(),
		}
		next.ServeHTTP(w, r.WithContext(shared.ContextWithScope(r.Context(), scope)))
	})
}

func (s Stage) subject(r *http.Request, token string) (string, error) {
	if s.Verifier != nil {
		claims, err := s.Verifier.Verify(r.Context(), token)
		if err != nil {
			return "", err
		}
		return claims.Subject, nil
	}
	return s.Decoder.Subject(token)
}

func (s Stage) deny(w http.ResponseWriter, r *http.Request, cause error) {
	s.log("request unauthorized", r, cause)
	httpx.RespondError(w, httpx.ErrUnauthorized)
}

func (s Stage) log(msg string, r *http.Request, err error) {
	if s.Logger != nil {
		s.Logger.Warn(msg,
			slog.String("path", r.URL.Path),
			slog.Any("error", err))
	}
}

func bearerToken(r *http.Request) (string, bool) {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw == "" || !strings.HasPrefix(raw, bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(raw, bearerPrefix))
	return token, token != ""
}

func clientIP(r *http.Request) string {
	// middleware.RealIP has already rewritten RemoteAddr when the request
	// came through a trusted proxy.
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
