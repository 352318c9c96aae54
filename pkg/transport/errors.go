package transport

import (
	"encoding/json"
	"net/http"

	"github.com/councilofminds/council/pkg/api"
)

// HTTPStatusFromError maps a pipeline error kind to an HTTP status code.
// Caller mistakes are 400, overload is 503, and every backend failure is
// 502: the council itself is healthy, an upstream model is not.
func HTTPStatusFromError(err *api.PipelineError) int {
	switch err.Kind {
	case api.ErrorKindInvalidQuery:
		return http.StatusBadRequest
	case api.ErrorKindRateLimited:
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

// WriteErrorResponse writes a JSON error response using the
// ErrorResponse wrapper from pkg/api. It sets the Content-Type header
// and writes the HTTP status code.
func WriteErrorResponse(w http.ResponseWriter, perr *api.PipelineError, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(api.ErrorResponse{Error: perr})
}

// WritePipelineError writes a pipeline error response, deriving the
// HTTP status code from the error kind.
func WritePipelineError(w http.ResponseWriter, perr *api.PipelineError) {
	WriteErrorResponse(w, perr, HTTPStatusFromError(perr))
}
