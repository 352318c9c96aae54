// Package anthropic implements the provider contract for the Anthropic
// Messages API (the Claude critic in the default council profile).
//
// The Messages API differs from Chat Completions in three ways the
// adapter hides: authentication via x-api-key plus anthropic-version
// headers, the system prompt as a top-level field rather than a message,
// and the response text nested in a content block list.
package anthropic
