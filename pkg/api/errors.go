package api

import "fmt"

// ErrorKind classifies a pipeline failure.
type ErrorKind string

const (
	// ErrorKindInvalidQuery is a caller mistake: empty, whitespace-only,
	// or oversized query. Never retried, reported as a 4xx.
	ErrorKindInvalidQuery ErrorKind = "invalid_query"

	// ErrorKindAuth means a backend rejected our credentials. Fatal to
	// the session, never retried.
	ErrorKindAuth ErrorKind = "auth_error"

	// ErrorKindRateLimited means a backend signalled throttling. Retried
	// with backoff by the adapter wrapper.
	ErrorKindRateLimited ErrorKind = "rate_limited"

	// ErrorKindTransient covers network failures, timeouts, and backend
	// 5xx responses. Retried with backoff.
	ErrorKindTransient ErrorKind = "transient_transport"

	// ErrorKindMalformedResponse means the backend replied with a success
	// status but the body matched no recognized shape, or normalized to
	// empty text. Not retried.
	ErrorKindMalformedResponse ErrorKind = "malformed_response"

	// ErrorKindProvider is any other backend failure. Not retried.
	ErrorKindProvider ErrorKind = "provider_error"
)

// PipelineError is the structured error surfaced by adapters and the
// orchestrator. Provider and Stage attribute the failure to the backend
// and debate role where it occurred; Attempts is set when a retryable
// error exhausted its retry budget.
type PipelineError struct {
	Kind     ErrorKind `json:"kind"`
	Provider string    `json:"provider,omitempty"`
	Stage    string    `json:"stage,omitempty"`
	Message  string    `json:"message"`
	Attempts int       `json:"attempts,omitempty"`
}

// Error implements the error interface.
func (e *PipelineError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	if e.Provider != "" {
		msg = fmt.Sprintf("%s [provider=%s]", msg, e.Provider)
	}
	if e.Stage != "" {
		msg = fmt.Sprintf("%s [stage=%s]", msg, e.Stage)
	}
	if e.Attempts > 0 {
		msg = fmt.Sprintf("%s after %d attempts", msg, e.Attempts)
	}
	return msg
}

// Retryable reports whether the adapter retry wrapper may retry this error.
func (e *PipelineError) Retryable() bool {
	return e.Kind == ErrorKindRateLimited || e.Kind == ErrorKindTransient
}

// WithStage returns a copy of the error tagged with the debate stage role.
// Used by the orchestrator so failures are attributable without the
// adapters knowing which stage invoked them.
func (e *PipelineError) WithStage(stage string) *PipelineError {
	cp := *e
	cp.Stage = stage
	return &cp
}

// ErrorResponse wraps a PipelineError for JSON serialization as the
// top-level error response.
type ErrorResponse struct {
	Error *PipelineError `json:"error"`
}

// NewInvalidQueryError creates a PipelineError for rejected input.
func NewInvalidQueryError(message string) *PipelineError {
	return &PipelineError{Kind: ErrorKindInvalidQuery, Message: message}
}

// NewAuthError creates a PipelineError for rejected backend credentials.
func NewAuthError(provider, message string) *PipelineError {
	return &PipelineError{Kind: ErrorKindAuth, Provider: provider, Message: message}
}

// NewRateLimitedError creates a PipelineError for backend throttling.
func NewRateLimitedError(provider, message string) *PipelineError {
	return &PipelineError{Kind: ErrorKindRateLimited, Provider: provider, Message: message}
}

// NewTransientError creates a PipelineError for network failures and
// backend 5xx responses.
func NewTransientError(provider, message string) *PipelineError {
	return &PipelineError{Kind: ErrorKindTransient, Provider: provider, Message: message}
}

// NewMalformedResponseError creates a PipelineError for unrecognized or
// empty success bodies.
func NewMalformedResponseError(provider, message string) *PipelineError {
	return &PipelineError{Kind: ErrorKindMalformedResponse, Provider: provider, Message: message}
}

// NewProviderError creates a PipelineError for any other backend failure.
func NewProviderError(provider, message string) *PipelineError {
	return &PipelineError{Kind: ErrorKindProvider, Provider: provider, Message: message}
}

// AsPipelineError converts an arbitrary error to a PipelineError. Errors
// that are already PipelineErrors pass through unchanged; anything else
// becomes a provider_error so raw transport errors never leak upward.
func AsPipelineError(provider string, err error) *PipelineError {
	if pe, ok := err.(*PipelineError); ok {
		return pe
	}
	return NewProviderError(provider, err.Error())
}
