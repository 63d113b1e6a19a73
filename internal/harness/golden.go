package harness

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
)

// Snapshot captures a scenario run for golden comparison.
type Snapshot struct {
	ScenarioName string          `json:"scenario_name"`
	Trace        []TraceEvent    `json:"trace"`
	Summary      []SnapshotCount `json:"summary"`
	InOven       []SnapshotItem  `json:"in_oven"`
	Export       []SnapshotItem  `json:"export"`
}

// SnapshotCount is one summary row of a Snapshot.
type SnapshotCount struct {
	Oven  string `json:"oven"`
	Count int    `json:"count"`
}

// SnapshotItem is one record of a Snapshot.
type SnapshotItem struct {
	ID         string     `json:"id"`
	Oven       string     `json:"oven"`
	LoadTime   time.Time  `json:"load_time"`
	UnloadTime *time.Time `json:"unload_time,omitempty"`
	Elapsed    *int       `json:"elapsed,omitempty"`
	Overdue    bool       `json:"overdue,omitempty"`
}

// NewSnapshot builds the snapshot of result.
func NewSnapshot(name string, result *Result) Snapshot {
	s := Snapshot{
		ScenarioName: name,
		Trace:        result.Trace,
		Summary:      []SnapshotCount{},
		InOven:       []SnapshotItem{},
		Export:       []SnapshotItem{},
	}
	for _, row := range result.View.Summary {
		s.Summary = append(s.Summary, SnapshotCount{Oven: row.OvenNumber, Count: row.Count})
	}
	for _, item := range result.View.InOven {
		elapsed := item.ElapsedMinutes
		s.InOven = append(s.InOven, SnapshotItem{
			ID:       item.Record.ID,
			Oven:     item.Record.OvenNumber,
			LoadTime: item.Record.LoadTime,
			Elapsed:  &elapsed,
			Overdue:  item.Overdue,
		})
	}
	for _, rec := range result.Export {
		s.Export = append(s.Export, SnapshotItem{
			ID:         rec.ID,
			Oven:       rec.OvenNumber,
			LoadTime:   rec.LoadTime,
			UnloadTime: rec.UnloadTime,
		})
	}
	return s
}

// MarshalSnapshot renders s as indented JSON with a trailing newline.
func MarshalSnapshot(s Snapshot) ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// RunWithGolden executes a scenario and compares its snapshot against a
// golden file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the snapshot doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	data, err := MarshalSnapshot(NewSnapshot(scenario.Name, result))
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)

	return result, nil
}
