package harness

import (
	"time"

	"github.com/roach88/ovenledger/internal/ledger"
)

// TraceEvent records one executed flow step.
type TraceEvent struct {
	Seq     int       `json:"seq"`
	Op      string    `json:"op"` // "add", "advance" or "unload"
	ID      string    `json:"id,omitempty"`
	Outcome string    `json:"outcome"`
	At      time.Time `json:"at"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall success: every expect clause and assertion held.
	Pass bool `json:"pass"`

	// Trace contains every flow step in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// View is the board after the last step.
	View ledger.View `json:"view"`

	// Export is the last projection handed to the exporter.
	Export []ledger.Record `json:"export"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
		Export: []ledger.Record{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// addTrace appends a trace event with the next sequence number.
func (r *Result) addTrace(op, id, outcome string, at time.Time) {
	r.Trace = append(r.Trace, TraceEvent{
		Seq:     len(r.Trace) + 1,
		Op:      op,
		ID:      id,
		Outcome: outcome,
		At:      at,
	})
}
