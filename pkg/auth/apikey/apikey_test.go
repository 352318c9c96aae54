package apikey

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/councilofminds/council/pkg/auth"
)

func newTestAuthenticator() *Authenticator {
	return New([]RawKeyEntry{
		{Key: "secret-key-1", Identity: auth.Identity{Subject: "alice"}},
		{Key: "secret-key-2", Identity: auth.Identity{Subject: "bob"}},
	})
}

func requestWithBearer(token string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/query", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	return r
}

func TestAuthenticateValidKey(t *testing.T) {
	a := newTestAuthenticator()

	result := a.Authenticate(context.Background(), requestWithBearer("secret-key-2"))
	if result.Decision != auth.Yes {
		t.Fatalf("Decision = %v, want Yes", result.Decision)
	}
	if result.Identity.Subject != "bob" {
		t.Errorf("Subject = %q, want bob", result.Identity.Subject)
	}
}

func TestAuthenticateXAPIKeyHeader(t *testing.T) {
	a := newTestAuthenticator()

	r := httptest.NewRequest(http.MethodPost, "/query", nil)
	r.Header.Set("X-API-Key", "secret-key-1")

	result := a.Authenticate(context.Background(), r)
	if result.Decision != auth.Yes {
		t.Fatalf("Decision = %v, want Yes", result.Decision)
	}
	if result.Identity.Subject != "alice" {
		t.Errorf("Subject = %q, want alice", result.Identity.Subject)
	}
}

func TestAuthenticateInvalidKey(t *testing.T) {
	a := newTestAuthenticator()

	result := a.Authenticate(context.Background(), requestWithBearer("wrong-key"))
	if result.Decision != auth.No {
		t.Fatalf("Decision = %v, want No", result.Decision)
	}
	if result.Err == nil {
		t.Error("Err is nil, want error")
	}
}

func TestAuthenticateAbstains(t *testing.T) {
	a := newTestAuthenticator()

	// No credentials at all.
	r := httptest.NewRequest(http.MethodPost, "/query", nil)
	if result := a.Authenticate(context.Background(), r); result.Decision != auth.Abstain {
		t.Errorf("no header: Decision = %v, want Abstain", result.Decision)
	}

	// Non-bearer scheme belongs to someone else.
	r = httptest.NewRequest(http.MethodPost, "/query", nil)
	r.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	if result := a.Authenticate(context.Background(), r); result.Decision != auth.Abstain {
		t.Errorf("basic auth: Decision = %v, want Abstain", result.Decision)
	}
}

func TestAuthenticateIdentityIsCopied(t *testing.T) {
	a := newTestAuthenticator()

	first := a.Authenticate(context.Background(), requestWithBearer("secret-key-1"))
	first.Identity.Subject = "mutated"

	second := a.Authenticate(context.Background(), requestWithBearer("secret-key-1"))
	if second.Identity.Subject != "alice" {
		t.Errorf("Subject = %q, identity state leaked across requests", second.Identity.Subject)
	}
}
