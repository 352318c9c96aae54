package api

import (
	"fmt"
	"strings"
)

// DefaultMaxQueryBytes bounds query length when no limit is configured.
const DefaultMaxQueryBytes = 8 * 1024

// ValidateQuery checks an inbound query string. It returns a PipelineError
// of kind invalid_query for empty, whitespace-only, or oversized input,
// or nil if the query is acceptable.
//
// The orchestrator calls this before any provider is invoked.
func ValidateQuery(query string, maxBytes int) *PipelineError {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxQueryBytes
	}
	if strings.TrimSpace(query) == "" {
		return NewInvalidQueryError("query must be a non-empty string")
	}
	if len(query) > maxBytes {
		return NewInvalidQueryError(
			fmt.Sprintf("query exceeds maximum of %d bytes", maxBytes))
	}
	return nil
}
