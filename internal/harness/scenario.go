package harness

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/ovenledger/internal/ledger"
)

// Scenario defines a ledger scenario: a flow of actions followed by
// assertions on the final board and export.
type Scenario struct {
	// Name uniquely identifies this scenario; it names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Ovens overrides the configured oven set. Defaults to Oven 1..3.
	Ovens []string `yaml:"ovens,omitempty"`

	// Start is the RFC 3339 instant the clock starts at. Defaults to
	// testutil.DefaultStart.
	Start string `yaml:"start,omitempty"`

	// Flow contains the steps, executed in order.
	Flow []FlowStep `yaml:"flow"`

	// Assertions validate the final state.
	// Supported types: summary, in_oven, export, record_count
	Assertions []Assertion `yaml:"assertions"`
}

// FlowStep is one step of the flow. Exactly one of Add, Advance and Unload
// is set.
type FlowStep struct {
	// Add logs a cylinder.
	Add *CylinderArgs `yaml:"add,omitempty"`

	// Advance moves the clock forward by a Go duration (e.g. "45m").
	Advance string `yaml:"advance,omitempty"`

	// Unload unloads the record with this ID.
	Unload string `yaml:"unload,omitempty"`

	// Expect specifies the expected outcome. If nil the step must succeed.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// CylinderArgs are the add fields as written in YAML.
type CylinderArgs struct {
	OrderNumber       string  `yaml:"order_number"`
	CurrentID         string  `yaml:"current_id"`
	NeededID          string  `yaml:"needed_id"`
	OvenNumber        string  `yaml:"oven_number"`
	EstimatedDuration int     `yaml:"estimated_duration"`
	Operator          string  `yaml:"operator"`
	Material          string  `yaml:"material"`
	Thickness         float64 `yaml:"thickness"`
}

// NewCylinder converts the args to the ledger request type.
func (a CylinderArgs) NewCylinder() ledger.NewCylinder {
	return ledger.NewCylinder{
		OrderNumber:       a.OrderNumber,
		CurrentID:         a.CurrentID,
		NeededID:          a.NeededID,
		OvenNumber:        a.OvenNumber,
		EstimatedDuration: a.EstimatedDuration,
		Operator:          a.Operator,
		Material:          a.Material,
		Thickness:         a.Thickness,
	}
}

// ExpectClause specifies the expected outcome of a step.
type ExpectClause struct {
	// Outcome is one of the Outcome* constants.
	Outcome string `yaml:"outcome"`

	// Fields lists the rejected fields, in report order (validation only).
	Fields []string `yaml:"fields,omitempty"`
}

// Step outcomes.
const (
	OutcomeOK              = "ok"
	OutcomeValidation      = "validation"
	OutcomeNotFound        = "not_found"
	OutcomeAlreadyUnloaded = "already_unloaded"
	OutcomeStorageWrite    = "storage_write"
)

// Assertion validates the final state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "summary": in-oven count per oven, exact and in order
	// - "in_oven": in-oven detail rows, exact and in order
	// - "export": IDs of the exported records, exact and in order
	// - "record_count": total number of records
	Type string `yaml:"type"`

	// Summary is the expected summary (used by summary).
	Summary []SummaryRow `yaml:"summary,omitempty"`

	// InOven is the expected detail (used by in_oven).
	InOven []InOvenRow `yaml:"in_oven,omitempty"`

	// IDs are the expected export IDs (used by export).
	IDs []string `yaml:"ids,omitempty"`

	// Count is the expected record count (used by record_count).
	Count int `yaml:"count,omitempty"`
}

// SummaryRow is one expected summary row.
type SummaryRow struct {
	Oven  string `yaml:"oven"`
	Count int    `yaml:"count"`
}

// InOvenRow is one expected detail row.
type InOvenRow struct {
	ID      string `yaml:"id"`
	Elapsed int    `yaml:"elapsed"`
	Overdue bool   `yaml:"overdue"`
}

// Assertion type constants.
const (
	AssertSummary     = "summary"
	AssertInOven      = "in_oven"
	AssertExport      = "export"
	AssertRecordCount = "record_count"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// startTime returns the parsed Start, or zero when unset.
func (s *Scenario) startTime() (time.Time, error) {
	if s.Start == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, s.Start)
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if _, err := s.startTime(); err != nil {
		return fmt.Errorf("start: %w", err)
	}

	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Flow {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateStep checks that exactly one action is set and the expect clause
// is well formed.
func validateStep(index int, step *FlowStep) error {
	actions := 0
	if step.Add != nil {
		actions++
	}
	if step.Advance != "" {
		actions++
		d, err := time.ParseDuration(step.Advance)
		if err != nil {
			return fmt.Errorf("flow[%d]: advance: %w", index, err)
		}
		if d < 0 {
			return fmt.Errorf("flow[%d]: advance must not be negative", index)
		}
	}
	if step.Unload != "" {
		actions++
	}
	if actions != 1 {
		return fmt.Errorf("flow[%d]: exactly one of add, advance or unload is required", index)
	}

	if step.Expect == nil {
		return nil
	}
	if step.Advance != "" {
		return fmt.Errorf("flow[%d]: advance takes no expect clause", index)
	}
	switch step.Expect.Outcome {
	case OutcomeOK, OutcomeNotFound, OutcomeAlreadyUnloaded, OutcomeStorageWrite:
	case OutcomeValidation:
		if step.Add == nil {
			return fmt.Errorf("flow[%d].expect: validation applies to add only", index)
		}
	case "":
		return fmt.Errorf("flow[%d].expect: outcome is required", index)
	default:
		return fmt.Errorf("flow[%d].expect: unknown outcome %q", index, step.Expect.Outcome)
	}
	if len(step.Expect.Fields) > 0 && step.Expect.Outcome != OutcomeValidation {
		return fmt.Errorf("flow[%d].expect: fields apply to validation only", index)
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertSummary, AssertInOven, AssertExport:
		// An empty expectation asserts emptiness.
	case AssertRecordCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for record_count", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
