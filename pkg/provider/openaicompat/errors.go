package openaicompat

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/councilofminds/council/pkg/api"
)

// MapHTTPError converts a non-2xx backend response into a PipelineError,
// attributed to the named provider. It attempts to parse the body as a
// chatErrorResponse to extract a descriptive message.
func MapHTTPError(name string, resp *http.Response) *api.PipelineError {
	message := ExtractErrorMessage(resp.Body)

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		if message == "" {
			message = "backend rejected credentials"
		}
		return api.NewAuthError(name, message)

	case resp.StatusCode == http.StatusTooManyRequests:
		if message == "" {
			message = "backend rate limit exceeded"
		}
		return api.NewRateLimitedError(name, message)

	case resp.StatusCode >= http.StatusInternalServerError:
		if message == "" {
			message = fmt.Sprintf("backend server error (HTTP %d)", resp.StatusCode)
		}
		return api.NewTransientError(name, message)

	default:
		if message == "" {
			message = fmt.Sprintf("unexpected backend error (HTTP %d)", resp.StatusCode)
		}
		return api.NewProviderError(name, message)
	}
}

// MapNetworkError converts a network-level error (connection refused,
// timeout, DNS failure) into a retryable PipelineError.
func MapNetworkError(name string, err error) *api.PipelineError {
	return api.NewTransientError(name, fmt.Sprintf("backend connection error: %s", err.Error()))
}

// ExtractErrorMessage tries to parse the response body as a
// chatErrorResponse and returns the error message if found. The body
// read is capped at 4 KiB.
func ExtractErrorMessage(body io.Reader) string {
	if body == nil {
		return ""
	}

	data, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil || len(data) == 0 {
		return ""
	}

	var errResp chatErrorResponse
	if err := json.Unmarshal(data, &errResp); err == nil && errResp.Error.Message != "" {
		return errResp.Error.Message
	}

	return ""
}
