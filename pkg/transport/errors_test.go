package transport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/councilofminds/council/pkg/api"
)

func TestHTTPStatusFromError(t *testing.T) {
	tests := []struct {
		err  *api.PipelineError
		want int
	}{
		{api.NewInvalidQueryError("empty"), http.StatusBadRequest},
		{api.NewRateLimitedError("", "overloaded"), http.StatusServiceUnavailable},
		{api.NewAuthError("openai", "bad key"), http.StatusBadGateway},
		{api.NewTransientError("gemini", "connection reset"), http.StatusBadGateway},
		{api.NewMalformedResponseError("grok", "no choices"), http.StatusBadGateway},
		{api.NewProviderError("anthropic", "overloaded_error"), http.StatusBadGateway},
	}

	for _, tt := range tests {
		if got := HTTPStatusFromError(tt.err); got != tt.want {
			t.Errorf("HTTPStatusFromError(%s) = %d, want %d", tt.err.Kind, got, tt.want)
		}
	}
}

func TestWritePipelineError(t *testing.T) {
	rec := httptest.NewRecorder()
	WritePipelineError(rec, api.NewInvalidQueryError("query must not be empty"))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	var resp api.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if resp.Error == nil || resp.Error.Kind != api.ErrorKindInvalidQuery {
		t.Errorf("decoded error = %+v, want invalid_query", resp.Error)
	}
	if resp.Error.Message != "query must not be empty" {
		t.Errorf("Message = %q", resp.Error.Message)
	}
}
