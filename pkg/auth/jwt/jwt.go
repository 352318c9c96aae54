// Package jwt provides a JWT authenticator for HS256-signed bearer
// tokens with a shared secret. Expiry is always enforced; the issuer
// claim is validated when configured.
package jwt

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"github.com/councilofminds/council/pkg/auth"
)

// Config holds the JWT authenticator configuration.
type Config struct {
	// Secret is the HMAC signing secret (required).
	Secret string

	// Issuer is the expected JWT issuer (iss claim). If empty, the
	// issuer is not validated.
	Issuer string
}

// Authenticator validates HS256 JWT bearer tokens.
type Authenticator struct {
	config Config
}

// New creates a JWT authenticator with the given configuration.
func New(cfg Config) *Authenticator {
	return &Authenticator{config: cfg}
}

// Authenticate extracts a bearer token from the Authorization header,
// validates it as a JWT, and returns an identity on success.
//
// Decision outcomes:
//   - Abstain: no Authorization header or not a Bearer scheme
//   - No: bearer token present but invalid (expired, wrong issuer, bad signature)
//   - Yes: valid JWT with populated Identity
func (a *Authenticator) Authenticate(_ context.Context, r *http.Request) auth.AuthResult {
	header := r.Header.Get("Authorization")
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		return auth.AuthResult{Decision: auth.Abstain}
	}

	tokenStr := strings.TrimPrefix(header, "Bearer ")
	if tokenStr == "" {
		return auth.AuthResult{Decision: auth.No, Err: fmt.Errorf("empty bearer token")}
	}

	opts := []jwtlib.ParserOption{
		jwtlib.WithValidMethods([]string{"HS256"}),
		jwtlib.WithExpirationRequired(),
	}
	if a.config.Issuer != "" {
		opts = append(opts, jwtlib.WithIssuer(a.config.Issuer))
	}

	claims := jwtlib.MapClaims{}
	_, err := jwtlib.ParseWithClaims(tokenStr, claims, func(t *jwtlib.Token) (interface{}, error) {
		return []byte(a.config.Secret), nil
	}, opts...)
	if err != nil {
		return auth.AuthResult{Decision: auth.No, Err: fmt.Errorf("invalid token: %w", err)}
	}

	subject, _ := claims.GetSubject()
	if subject == "" {
		return auth.AuthResult{Decision: auth.No, Err: fmt.Errorf("token missing sub claim")}
	}

	return auth.AuthResult{
		Decision: auth.Yes,
		Identity: &auth.Identity{Subject: subject},
	}
}
