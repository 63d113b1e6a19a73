package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/roach88/ovenledger/internal/ledger"
	"github.com/roach88/ovenledger/internal/store"
	"github.com/roach88/ovenledger/internal/testutil"
)

// Harness is the scenario execution engine.
// It runs scenarios with a deterministic clock and record IDs.
type Harness struct {
	ledger   *ledger.Ledger
	clock    *testutil.FakeClock
	exporter *captureExporter
}

// captureExporter keeps the last projection instead of writing a file.
type captureExporter struct {
	last []ledger.Record
}

func (c *captureExporter) Export(_ context.Context, unloaded []ledger.Record) error {
	c.last = slices.Clone(unloaded)
	return nil
}

func (c *captureExporter) Path() string { return "memory" }

// Run executes a scenario and returns the result.
//
// Each scenario runs against a fresh in-memory store for isolation.
// Execution errors (not assertion failures) are returned as err.
func Run(scenario *Scenario) (*Result, error) {
	start, err := scenario.startTime()
	if err != nil {
		return nil, fmt.Errorf("invalid start: %w", err)
	}

	h := &Harness{
		clock:    testutil.NewFakeClock(start),
		exporter: &captureExporter{last: []ledger.Record{}},
	}

	ctx := context.Background()
	opts := []ledger.Option{
		ledger.WithClock(h.clock),
		ledger.WithIDGenerator(testutil.NewSequentialIDs("")),
		ledger.WithExporter(h.exporter),
		ledger.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))), // Suppress logs in tests
	}
	if len(scenario.Ovens) > 0 {
		opts = append(opts, ledger.WithOvens(scenario.Ovens))
	}
	h.ledger, err = ledger.Load(ctx, store.NewMemory(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create ledger: %w", err)
	}

	result := NewResult()
	if err := h.executeFlow(ctx, scenario.Flow, result); err != nil {
		return nil, fmt.Errorf("failed to execute flow: %w", err)
	}

	result.View = h.ledger.View()
	result.Export = h.exporter.last

	for _, errMsg := range EvaluateAssertions(result, h.ledger.Len(), scenario.Assertions) {
		result.AddError(errMsg)
	}

	return result, nil
}

// executeFlow runs all flow steps, checking each against its expect clause.
func (h *Harness) executeFlow(ctx context.Context, flow []FlowStep, result *Result) error {
	for i, step := range flow {
		switch {
		case step.Advance != "":
			d, err := time.ParseDuration(step.Advance)
			if err != nil {
				return fmt.Errorf("flow[%d]: %w", i, err)
			}
			at := h.clock.Advance(d)
			result.addTrace("advance", "", OutcomeOK, at)

		case step.Add != nil:
			rec, err := h.ledger.AddCylinder(ctx, step.Add.NewCylinder())
			outcome := outcomeOf(err)
			result.addTrace("add", rec.ID, outcome, h.clock.Now())
			checkExpect(i, step.Expect, outcome, err, result)

		case step.Unload != "":
			_, err := h.ledger.UnloadCylinder(ctx, step.Unload)
			outcome := outcomeOf(err)
			result.addTrace("unload", step.Unload, outcome, h.clock.Now())
			checkExpect(i, step.Expect, outcome, err, result)

		default:
			return fmt.Errorf("flow[%d]: no action", i)
		}
	}
	return nil
}

// outcomeOf classifies a ledger error.
func outcomeOf(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case ledger.IsValidation(err):
		return OutcomeValidation
	case ledger.IsNotFound(err):
		return OutcomeNotFound
	case ledger.IsAlreadyUnloaded(err):
		return OutcomeAlreadyUnloaded
	case ledger.IsStorageWrite(err):
		return OutcomeStorageWrite
	default:
		return "error"
	}
}

// checkExpect records a failure when the step outcome differs from expect.
// A nil expect means the step must succeed.
func checkExpect(index int, expect *ExpectClause, outcome string, err error, result *Result) {
	want := OutcomeOK
	if expect != nil {
		want = expect.Outcome
	}
	if outcome != want {
		msg := fmt.Sprintf("flow[%d]: expected outcome %q, got %q", index, want, outcome)
		if err != nil {
			msg += ": " + err.Error()
		}
		result.AddError(msg)
		return
	}

	if expect == nil || len(expect.Fields) == 0 {
		return
	}
	var verr *ledger.ValidationError
	if !errors.As(err, &verr) {
		return
	}
	if got := verr.FieldNames(); !slices.Equal(got, expect.Fields) {
		result.AddError(fmt.Sprintf("flow[%d]: expected invalid fields %v, got %v", index, expect.Fields, got))
	}
}
