package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scenarioFiles(t *testing.T) []string {
	t.Helper()
	files, err := filepath.Glob(filepath.Join("testdata", "scenarios", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, files)
	return files
}

func TestScenarios_Golden(t *testing.T) {
	for _, file := range scenarioFiles(t) {
		t.Run(filepath.Base(file), func(t *testing.T) {
			scenario, err := LoadScenario(file)
			require.NoError(t, err)

			result, err := RunWithGolden(t, scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
			assert.Empty(t, result.Errors)
		})
	}
}

func cylinderArgs(oven string, minutes int) *CylinderArgs {
	return &CylinderArgs{
		OrderNumber:       "O1",
		CurrentID:         "C1",
		NeededID:          "C2",
		OvenNumber:        oven,
		EstimatedDuration: minutes,
		Operator:          "Alice",
		Material:          "Steel",
		Thickness:         2,
	}
}

func TestRun_UnexpectedOutcomeFails(t *testing.T) {
	scenario := &Scenario{
		Name:        "unexpected",
		Description: "unload of an unknown id without an expect clause",
		Flow: []FlowStep{
			{Unload: "cyl-0042"},
		},
		Assertions: []Assertion{{Type: AssertRecordCount, Count: 0}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], `expected outcome "ok", got "not_found"`)
}

func TestRun_ValidationFieldsMismatch(t *testing.T) {
	args := cylinderArgs("Oven 1", 0)
	scenario := &Scenario{
		Name:        "fields",
		Description: "expected fields differ from the reported ones",
		Flow: []FlowStep{
			{Add: args, Expect: &ExpectClause{Outcome: OutcomeValidation, Fields: []string{"Thickness"}}},
		},
		Assertions: []Assertion{{Type: AssertRecordCount, Count: 0}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "expected invalid fields [Thickness], got [EstimatedDuration]")
}

func TestRun_AssertionFailureIncludesTrace(t *testing.T) {
	scenario := &Scenario{
		Name:        "wrong_summary",
		Description: "summary assertion that does not hold",
		Flow: []FlowStep{
			{Add: cylinderArgs("Oven 1", 30)},
		},
		Assertions: []Assertion{
			{Type: AssertSummary, Summary: []SummaryRow{{Oven: "Oven 2", Count: 1}}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Assertion failed: summary")
	assert.Contains(t, result.Errors[0], "[1] add cyl-0001 -> ok")
}

func TestRun_CustomOvensAndStart(t *testing.T) {
	scenario := &Scenario{
		Name:        "custom",
		Description: "custom oven set and start instant",
		Ovens:       []string{"Kiln A"},
		Start:       "2024-03-01T06:00:00Z",
		Flow: []FlowStep{
			{Add: cylinderArgs("Kiln A", 30)},
			{Add: cylinderArgs("Oven 1", 30), Expect: &ExpectClause{Outcome: OutcomeValidation, Fields: []string{"OvenNumber"}}},
			{Advance: "5m"},
		},
		Assertions: []Assertion{
			{Type: AssertSummary, Summary: []SummaryRow{{Oven: "Kiln A", Count: 1}}},
			{Type: AssertInOven, InOven: []InOvenRow{{ID: "cyl-0001", Elapsed: 5}}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, "2024-03-01T06:05:00Z", result.View.Now.Format("2006-01-02T15:04:05Z07:00"))
}
