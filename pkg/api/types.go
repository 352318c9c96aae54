package api

// QueryRequest is the inbound body of POST /query.
type QueryRequest struct {
	Query string `json:"query"`

	// Profile optionally selects a debate profile by name. Empty means
	// the server default.
	Profile string `json:"profile,omitempty"`
}

// StageResult is one visible entry of the debate transcript. Agent is the
// displayed identity of the stage, which may differ from the backend that
// actually produced the content. Timestamp is elapsed milliseconds from
// session start to stage completion.
type StageResult struct {
	Agent     string `json:"agent"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
}

// Metadata carries session-level timing information.
type Metadata struct {
	// TotalTime is wall-clock milliseconds from session start to the
	// last stage's completion.
	TotalTime int64 `json:"totalTime"`

	// CompletedAt is the session completion time in RFC 3339 format.
	CompletedAt string `json:"completedAt"`
}

// PipelineResult is the terminal artifact of one debate session: the
// original query, the visible transcript in execution order, the final
// synthesized answer, and timing metadata. It is created once at the end
// of a successful run and never mutated.
type PipelineResult struct {
	Query       string        `json:"query"`
	Responses   []StageResult `json:"responses"`
	FinalAnswer string        `json:"finalAnswer"`
	Metadata    Metadata      `json:"metadata"`
}
