package api

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestPipelineError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *PipelineError
		want []string
	}{
		{
			name: "message only",
			err:  NewInvalidQueryError("query must be a non-empty string"),
			want: []string{"invalid_query", "non-empty string"},
		},
		{
			name: "provider attribution",
			err:  NewAuthError("openai", "invalid API key"),
			want: []string{"auth_error", "provider=openai"},
		},
		{
			name: "stage attribution",
			err:  NewTransientError("gemini", "connection refused").WithStage("VERIFIER"),
			want: []string{"transient_transport", "provider=gemini", "stage=VERIFIER"},
		},
		{
			name: "attempt count",
			err: &PipelineError{
				Kind:     ErrorKindTransient,
				Provider: "grok",
				Message:  "backend server error",
				Attempts: 3,
			},
			want: []string{"after 3 attempts"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			for _, want := range tt.want {
				if !strings.Contains(got, want) {
					t.Errorf("Error() = %q, want substring %q", got, want)
				}
			}
		})
	}
}

func TestPipelineError_Retryable(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want bool
	}{
		{ErrorKindInvalidQuery, false},
		{ErrorKindAuth, false},
		{ErrorKindRateLimited, true},
		{ErrorKindTransient, true},
		{ErrorKindMalformedResponse, false},
		{ErrorKindProvider, false},
	}

	for _, tt := range tests {
		err := &PipelineError{Kind: tt.kind, Message: "x"}
		if got := err.Retryable(); got != tt.want {
			t.Errorf("Retryable(%s) = %v, want %v", tt.kind, got, tt.want)
		}
	}
}

func TestPipelineError_WithStage(t *testing.T) {
	orig := NewRateLimitedError("anthropic", "throttled")
	tagged := orig.WithStage("CRITIC")

	if orig.Stage != "" {
		t.Errorf("WithStage mutated the original error: stage = %q", orig.Stage)
	}
	if tagged.Stage != "CRITIC" {
		t.Errorf("tagged.Stage = %q, want CRITIC", tagged.Stage)
	}
	if tagged.Provider != "anthropic" || tagged.Kind != ErrorKindRateLimited {
		t.Errorf("WithStage dropped fields: %+v", tagged)
	}
}

func TestErrorResponse_JSON(t *testing.T) {
	resp := ErrorResponse{Error: NewMalformedResponseError("huggingface", "empty response")}

	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded ErrorResponse
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Error.Kind != ErrorKindMalformedResponse {
		t.Errorf("kind = %q, want %q", decoded.Error.Kind, ErrorKindMalformedResponse)
	}
	if decoded.Error.Provider != "huggingface" {
		t.Errorf("provider = %q, want huggingface", decoded.Error.Provider)
	}
}

func TestAsPipelineError(t *testing.T) {
	pe := NewAuthError("openai", "bad key")
	if got := AsPipelineError("openai", pe); got != pe {
		t.Error("AsPipelineError should pass through PipelineErrors unchanged")
	}

	wrapped := AsPipelineError("gemini", errPlain("boom"))
	if wrapped.Kind != ErrorKindProvider {
		t.Errorf("kind = %q, want provider_error", wrapped.Kind)
	}
	if wrapped.Provider != "gemini" {
		t.Errorf("provider = %q, want gemini", wrapped.Provider)
	}
}

type errPlain string

func (e errPlain) Error() string { return string(e) }
