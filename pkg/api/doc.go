// Package api defines the wire types and error taxonomy shared between
// the debate orchestrator, the provider adapters, and the transport layer.
//
// The types here form the external contract of the council service: the
// PipelineResult returned from a debate run, and the PipelineError kinds
// that classify every failure the pipeline can surface.
package api
