package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/councilofminds/council/pkg/api"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(Config{APIKey: "sk-test", Model: "claude-3-5-sonnet-20241022", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestClient_Invoke(t *testing.T) {
	var gotReq messagesRequest
	var gotKey, gotVersion string

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("path = %q", r.URL.Path)
		}
		gotKey = r.Header.Get("x-api-key")
		gotVersion = r.Header.Get("anthropic-version")
		json.NewDecoder(r.Body).Decode(&gotReq)

		json.NewEncoder(w).Encode(messagesResponse{
			Content: []contentBlock{
				{Type: "text", Text: "The initial answer "},
				{Type: "text", Text: "overlooks edge cases."},
			},
		})
	})

	text, err := c.Invoke(context.Background(), "You are a critic.", "Critique this.", nil)
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if text != "The initial answer overlooks edge cases." {
		t.Errorf("text = %q, want concatenated text blocks", text)
	}

	if gotKey != "sk-test" {
		t.Errorf("x-api-key = %q", gotKey)
	}
	if gotVersion != apiVersion {
		t.Errorf("anthropic-version = %q", gotVersion)
	}
	if gotReq.System != "You are a critic." {
		t.Errorf("system = %q, want top-level system field", gotReq.System)
	}
	if len(gotReq.Messages) != 1 || gotReq.Messages[0].Role != "user" {
		t.Errorf("messages = %+v, want single user message", gotReq.Messages)
	}
}

func TestClient_Invoke_ErrorMapping(t *testing.T) {
	tests := []struct {
		status   int
		wantKind api.ErrorKind
	}{
		{http.StatusUnauthorized, api.ErrorKindAuth},
		{http.StatusTooManyRequests, api.ErrorKindRateLimited},
		{http.StatusServiceUnavailable, api.ErrorKindTransient},
		{http.StatusBadRequest, api.ErrorKindProvider},
	}

	for _, tt := range tests {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
			json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]string{"type": "error", "message": "nope"},
			})
		})

		_, err := c.Invoke(context.Background(), "sys", "user", nil)
		if err == nil {
			t.Fatalf("status %d: expected error", tt.status)
		}
		if pe := api.AsPipelineError("anthropic", err); pe.Kind != tt.wantKind {
			t.Errorf("status %d: kind = %q, want %q", tt.status, pe.Kind, tt.wantKind)
		}
	}
}

func TestClient_Invoke_EmptyContent(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(messagesResponse{
			Content: []contentBlock{{Type: "tool_use", Text: ""}},
		})
	})

	_, err := c.Invoke(context.Background(), "sys", "user", nil)
	if err == nil {
		t.Fatal("expected error")
	}
	pe := api.AsPipelineError("anthropic", err)
	if pe.Kind != api.ErrorKindMalformedResponse {
		t.Errorf("kind = %q, want malformed_response", pe.Kind)
	}
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(Config{Model: "m"}); err == nil {
		t.Error("missing APIKey should fail")
	}
	if _, err := New(Config{APIKey: "k"}); err == nil {
		t.Error("missing Model should fail")
	}
}
