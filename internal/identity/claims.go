package identity

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// ErrConfiguration indicates a missing required configuration constant.
// It is fatal at startup, never a per-request failure.
var ErrConfiguration = errors.New("identity: configuration error")

// Decoder extracts claims from a bearer token without verifying its
// signature. Verification happens upstream in the TokenVerifier; the decoder
// only needs the subject and the implementation-specific roles claim.
type Decoder struct {
	rolesClaim string
	parser     *jwt.Parser
}

// NewDecoder builds a Decoder. The roles claim name is required; its absence
// is a deployment misconfiguration and must abort startup.
func NewDecoder(rolesClaim string) (*Decoder, error) {
	if rolesClaim == "" {
		return nil, fmt.Errorf("%w: roles claim name is required", ErrConfiguration)
	}
	return &Decoder{rolesClaim: rolesClaim, parser: jwt.NewParser()}, nil
}

// Decode parses the token payload and returns its claims.
func (d *Decoder) Decode(token string) (Claims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := d.parser.ParseUnverified(token, claims); err != nil {
		return Claims{}, fmt.Errorf("identity: decode token: %w", err)
	}
	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return Claims{}, errors.New("identity: token has no subject")
	}
	out := Claims{Subject: subject}
	if email, ok := claims["email"].(string); ok {
		out.Email = email
	}
	out.Roles = stringSlice(claims[d.rolesClaim])
	return out, nil
}

// Subject is a shortcut for callers that only need the token subject.
func (d *Decoder) Subject(token string) (string, error) {
	claims, err := d.Decode(token)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

func stringSlice(raw any) []string {
	switch v := raw.(type) {
	case string:
		return []string{v}
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return v
	default:
		return nil
	}
}
