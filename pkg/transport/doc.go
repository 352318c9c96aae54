// Package transport defines the handler contract between the HTTP layer
// and the debate pipeline, plus handler-level middleware for concerns
// that apply to every session regardless of how it arrived: panic
// recovery, request IDs, structured logging, and the concurrent session
// limit.
//
// Middleware compose with Chain and wrap a DebateRunner, keeping the
// HTTP adapter free of cross-cutting logic.
package transport
