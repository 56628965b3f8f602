package coordinator

import (
	"github.com/bioreason/bioreason/internal/schema"
	"github.com/bioreason/bioreason/internal/triage"
)

// State is the position of a query in the dispatch loop.
type State string

const (
	StateAwaitingModel State = "AWAITING_MODEL"
	StateAwaitingTools State = "AWAITING_TOOLS"
	StateDone          State = "DONE"
	StateFailed        State = "FAILED"
)

// Result is the outcome of one query. A failed query still carries the
// transcript accumulated up to the failure.
type Result struct {
	SessionID      string                 `json:"session_id"`
	Query          string                 `json:"query"`
	Mode           string                 `json:"mode,omitempty"`
	Classification *triage.Classification `json:"classification,omitempty"`
	Answer         string                 `json:"answer,omitempty"`
	Transcript     schema.Messages        `json:"-"`
	Iterations     int                    `json:"iterations"`
	State          State                  `json:"state"`
	ToolsUsed      []string               `json:"tools_used,omitempty"`
	Usage          schema.Usage           `json:"usage"`
}

// Messages returns the transcript entries.
func (r *Result) Messages() []schema.Message { return r.Transcript.Messages }
