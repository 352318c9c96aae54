package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/councilofminds/council/pkg/api"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(Config{APIKey: "g-key", Model: "gemini-pro", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestClient_Invoke(t *testing.T) {
	var gotReq generateRequest
	var gotPath, gotKey string

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		json.NewDecoder(r.Body).Decode(&gotReq)

		json.NewEncoder(w).Encode(generateResponse{
			Candidates: []candidate{
				{Content: content{Parts: []part{{Text: "Verified: "}, {Text: "the claim holds."}}}},
			},
		})
	})

	text, err := c.Invoke(context.Background(), "You are a verifier.", "Fact-check this.", nil)
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if text != "Verified: the claim holds." {
		t.Errorf("text = %q, want concatenated parts", text)
	}

	if !strings.Contains(gotPath, "models/gemini-pro:generateContent") {
		t.Errorf("path = %q", gotPath)
	}
	if gotKey != "g-key" {
		t.Errorf("key = %q, want API key as query parameter", gotKey)
	}
	if gotReq.SystemInstruction == nil ||
		len(gotReq.SystemInstruction.Parts) != 1 ||
		gotReq.SystemInstruction.Parts[0].Text != "You are a verifier." {
		t.Errorf("systemInstruction = %+v", gotReq.SystemInstruction)
	}
	if len(gotReq.Contents) != 1 || gotReq.Contents[0].Role != "user" {
		t.Errorf("contents = %+v", gotReq.Contents)
	}
}

func TestClient_Invoke_ErrorMapping(t *testing.T) {
	tests := []struct {
		status   int
		wantKind api.ErrorKind
	}{
		{http.StatusForbidden, api.ErrorKindAuth},
		{http.StatusTooManyRequests, api.ErrorKindRateLimited},
		{http.StatusInternalServerError, api.ErrorKindTransient},
		{http.StatusBadRequest, api.ErrorKindProvider},
	}

	for _, tt := range tests {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
			json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]any{"code": tt.status, "message": "denied"},
			})
		})

		_, err := c.Invoke(context.Background(), "sys", "user", nil)
		if err == nil {
			t.Fatalf("status %d: expected error", tt.status)
		}
		if pe := api.AsPipelineError("gemini", err); pe.Kind != tt.wantKind {
			t.Errorf("status %d: kind = %q, want %q", tt.status, pe.Kind, tt.wantKind)
		}
	}
}

func TestClient_Invoke_NoCandidates(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(generateResponse{})
	})

	_, err := c.Invoke(context.Background(), "sys", "user", nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if pe := api.AsPipelineError("gemini", err); pe.Kind != api.ErrorKindMalformedResponse {
		t.Errorf("kind = %q, want malformed_response", pe.Kind)
	}
}
