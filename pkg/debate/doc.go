// Package debate implements the council's core: declarative debate
// profiles and the orchestrator that drives one profile to completion
// for one query.
//
// A Profile is an ordered sequence of stages. Each stage names a debate
// role, the backend provider that executes it, the identity displayed in
// the transcript (which may differ from the backend), whether the
// stage's entry appears in the returned responses, and the prompt
// builder that assembles its input from the transcript so far.
//
// The orchestrator walks the stages strictly in order: stage i's
// provider call is issued only after stage i-1's result is appended.
// Any stage failure aborts the session with no partial result.
package debate
