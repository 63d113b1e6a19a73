package harness

import (
	"fmt"
	"slices"
	"strings"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, event := range e.Trace {
		if event.ID != "" {
			fmt.Fprintf(&buf, "  [%d] %s %s -> %s\n", event.Seq, event.Op, event.ID, event.Outcome)
		} else {
			fmt.Fprintf(&buf, "  [%d] %s -> %s\n", event.Seq, event.Op, event.Outcome)
		}
	}

	return buf.String()
}

// EvaluateAssertions checks every assertion against the result and returns
// the failure messages. records is the total record count.
func EvaluateAssertions(result *Result, records int, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluate(result, records, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

func evaluate(result *Result, records int, a Assertion) error {
	switch a.Type {
	case AssertSummary:
		return assertSummary(result, a)
	case AssertInOven:
		return assertInOven(result, a)
	case AssertExport:
		return assertExport(result, a)
	case AssertRecordCount:
		if records != a.Count {
			return &AssertionError{
				Type:     AssertRecordCount,
				Expected: fmt.Sprintf("%d record(s)", a.Count),
				Actual:   fmt.Sprintf("%d record(s)", records),
				Trace:    result.Trace,
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

// assertSummary compares the final summary exactly, in order.
func assertSummary(result *Result, a Assertion) error {
	got := make([]SummaryRow, len(result.View.Summary))
	for i, row := range result.View.Summary {
		got[i] = SummaryRow{Oven: row.OvenNumber, Count: row.Count}
	}
	want := a.Summary
	if want == nil {
		want = []SummaryRow{}
	}
	if slices.Equal(got, want) {
		return nil
	}
	return &AssertionError{
		Type:     AssertSummary,
		Expected: fmt.Sprintf("%v", want),
		Actual:   fmt.Sprintf("%v", got),
		Trace:    result.Trace,
	}
}

// assertInOven compares the final detail exactly, in order.
func assertInOven(result *Result, a Assertion) error {
	got := make([]InOvenRow, len(result.View.InOven))
	for i, item := range result.View.InOven {
		got[i] = InOvenRow{ID: item.Record.ID, Elapsed: item.ElapsedMinutes, Overdue: item.Overdue}
	}
	want := a.InOven
	if want == nil {
		want = []InOvenRow{}
	}
	if slices.Equal(got, want) {
		return nil
	}
	return &AssertionError{
		Type:     AssertInOven,
		Expected: fmt.Sprintf("%v", want),
		Actual:   fmt.Sprintf("%v", got),
		Trace:    result.Trace,
	}
}

// assertExport compares the IDs of the last export, in order.
func assertExport(result *Result, a Assertion) error {
	got := make([]string, len(result.Export))
	for i, rec := range result.Export {
		got[i] = rec.ID
	}
	want := a.IDs
	if want == nil {
		want = []string{}
	}
	if slices.Equal(got, want) {
		return nil
	}
	return &AssertionError{
		Type:     AssertExport,
		Expected: fmt.Sprintf("%v", want),
		Actual:   fmt.Sprintf("%v", got),
		Trace:    result.Trace,
	}
}
