package debate

import "time"

// Entry is one completed stage's record in the transcript. Identity is
// the displayed label, not the backend that produced the content.
type Entry struct {
	Identity string
	Role     Role
	Content  string
	Visible  bool

	// Elapsed is the time from session start to this stage's completion.
	Elapsed time.Duration
}

// Transcript is the append-only record of one session's stage results.
// It is owned exclusively by the session's orchestrator: entries are
// appended as stages complete and only read afterwards, by later prompt
// builders. Hidden entries are readable here; visibility only controls
// the externally returned responses.
type Transcript struct {
	query   string
	entries []Entry
}

// NewTranscript creates an empty transcript for the given query.
func NewTranscript(query string) *Transcript {
	return &Transcript{query: query}
}

// Query returns the session's original query.
func (t *Transcript) Query() string { return t.query }

// Len returns the number of completed stages.
func (t *Transcript) Len() int { return len(t.entries) }

// Entries returns all completed stages in execution order, hidden ones
// included. The returned slice is a copy.
func (t *Transcript) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Visible returns the entries that belong in the returned responses:
// visible stages, in execution order, FINAL always excluded.
func (t *Transcript) Visible() []Entry {
	var out []Entry
	for _, e := range t.entries {
		if e.Visible && e.Role != RoleFinal {
			out = append(out, e)
		}
	}
	return out
}

// ContentFor returns the content of the first entry with the given role,
// or the empty string if that role has not run yet. Prompt builders use
// this to reference earlier stages.
func (t *Transcript) ContentFor(role Role) string {
	for _, e := range t.entries {
		if e.Role == role {
			return e.Content
		}
	}
	return ""
}

// append records a completed stage. Only the orchestrator calls this.
func (t *Transcript) append(e Entry) {
	t.entries = append(t.entries, e)
}
