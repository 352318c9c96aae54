package huggingface

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

	c, err := New(Config{
		APIKey:  "hf-key",
		Model:   "mistralai/Mistral-7B-Instruct-v0.2",
		BaseURL: srv.URL,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestClient_Invoke_SynthesizesInstructionFormat(t *testing.T) {
	var gotReq inferenceRequest
	var gotPath string

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotReq)
		w.Write([]byte(`[{"generated_text": "A synthesized view."}]`))
	})

	text, err := c.Invoke(context.Background(), "You are a synthesizer.", "Synthesize the debate.", nil)
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if text != "A synthesized view." {
		t.Errorf("text = %q", text)
	}

	if gotPath != "/models/mistralai/Mistral-7B-Instruct-v0.2" {
		t.Errorf("path = %q", gotPath)
	}

	// System and user content must both be inside one [INST] block.
	if !strings.HasPrefix(gotReq.Inputs, "<s>[INST] You are a synthesizer.") {
		t.Errorf("inputs = %q, want instruction-delimited system prompt", gotReq.Inputs)
	}
	if !strings.Contains(gotReq.Inputs, "Synthesize the debate. [/INST]") {
		t.Errorf("inputs = %q, want user message before [/INST]", gotReq.Inputs)
	}
	if gotReq.Parameters.ReturnFullText {
		t.Error("return_full_text must be false")
	}
	if len(gotReq.Parameters.Stop) == 0 {
		t.Error("stop sequences must be set")
	}
}

func TestClient_Invoke_ModelLoadingIsTransient(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]string{"error": "Model is currently loading"})
	})

	_, err := c.Invoke(context.Background(), "sys", "user", nil)
	if err == nil {
		t.Fatal("expected error")
	}
	pe := api.AsPipelineError("huggingface", err)
	if pe.Kind != api.ErrorKindTransient {
		t.Errorf("kind = %q, want transient_transport (503 = model loading)", pe.Kind)
	}
	if !pe.Retryable() {
		t.Error("model-loading errors must be retryable")
	}
	if !strings.Contains(pe.Message, "loading") {
		t.Errorf("message = %q, want backend message preserved", pe.Message)
	}
}

func TestClient_Invoke_AuthError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := c.Invoke(context.Background(), "sys", "user", nil)
	if err == nil {
		t.Fatal("expected error")
	}
	pe := api.AsPipelineError("huggingface", err)
	if pe.Kind != api.ErrorKindAuth {
		t.Errorf("kind = %q, want auth_error", pe.Kind)
	}
	if pe.Retryable() {
		t.Error("auth errors must not be retryable")
	}
}

func TestClient_Invoke_MarkerEchoStripped(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"generated_text": " The real answer.</s>"}`))
	})

	text, err := c.Invoke(context.Background(), "sys", "user", nil)
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if text != "The real answer." {
		t.Errorf("text = %q, want markers stripped and trimmed", text)
	}
}
