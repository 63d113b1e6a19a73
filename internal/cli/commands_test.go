package cli

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/roach88/ovenledger/internal/ledger"
)

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

// shift loads three cylinders, unloads the third and leaves the clock at
// 08:45 with cyl-0002 overdue.
func shift(t *testing.T, f *cliFixture) {
	t.Helper()
	f.add(t, "O1", "C1", "C2", "Oven 2", "60", "Alice", "Steel", "2")
	f.clock.Advance(10 * time.Minute)
	f.add(t, "O2", "C3", "C4", "Oven 1", "30", "Bob", "Brass", "1.5")
	f.clock.Advance(5 * time.Minute)
	f.add(t, "O3", "C5", "C6", "Oven 2", "120", "Alice", "Steel", "3")
	f.clock.Advance(30 * time.Minute)

	_, _, err := f.run("unload", "cyl-0003")
	require.NoError(t, err)
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	fh, err := os.Open(path)
	require.NoError(t, err)
	defer fh.Close()
	rows, err := csv.NewReader(fh).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestStatus_Golden(t *testing.T) {
	f := newCLIFixture(t)
	shift(t, f)

	stdout, stderr, err := f.run("status")
	require.NoError(t, err)
	assert.Empty(t, stderr)

	newGoldie(t).Assert(t, "status_board", []byte(stdout))
}

func TestStatus_EmptyLedger(t *testing.T) {
	f := newCLIFixture(t)

	stdout, _, err := f.run("status")
	require.NoError(t, err)

	newGoldie(t).Assert(t, "status_empty", []byte(stdout))
}

func TestStatus_JSON(t *testing.T) {
	f := newCLIFixture(t)
	shift(t, f)

	stdout, _, err := f.run("--format", "json", "status")
	require.NoError(t, err)

	var resp struct {
		Status string      `json:"status"`
		Data   ledger.View `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, []ledger.OvenCount{
		{OvenNumber: "Oven 1", Count: 1},
		{OvenNumber: "Oven 2", Count: 1},
	}, resp.Data.Summary)
	require.Len(t, resp.Data.InOven, 2)
	assert.Equal(t, "cyl-0001", resp.Data.InOven[0].Record.ID)
	assert.Equal(t, 45, resp.Data.InOven[0].ElapsedMinutes)
	assert.True(t, resp.Data.InOven[1].Overdue)
	assert.Equal(t, 1, resp.Data.Unloaded)
}

func TestAdd_PersistsAcrossInvocations(t *testing.T) {
	f := newCLIFixture(t)

	stdout, _, err := f.run("add",
		"--order", "O1", "--current", "C1", "--needed", "C2", "--oven", "Oven 2",
		"--operator", "Alice", "--material", "Steel", "--thickness", "2.5")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Added cylinder cyl-0001 (order O1) to Oven 2.")

	stdout, _, err = f.run("--format", "json", "status")
	require.NoError(t, err)
	var resp struct {
		Data ledger.View `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	require.Len(t, resp.Data.InOven, 1)
	rec := resp.Data.InOven[0].Record
	assert.Equal(t, 60, rec.EstimatedDuration, "duration defaults to 60 minutes")
	assert.Equal(t, 2.5, rec.Thickness)
	assert.True(t, rec.LoadTime.Equal(f.clock.Now()))
}

func TestAdd_ValidationError(t *testing.T) {
	f := newCLIFixture(t)

	stdout, _, err := f.run("--format", "json", "add",
		"--order", "O1", "--current", "C1", "--needed", "C2", "--oven", "Oven 7",
		"--duration", "0", "--material", "Steel")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "OvenNumber: must be one of Oven 1, Oven 2, Oven 3")
	assert.Contains(t, resp.Error.Message, "EstimatedDuration")
	assert.Contains(t, resp.Error.Message, "Operator: is required")

	_, err = os.Stat(f.export)
	assert.True(t, os.IsNotExist(err), "rejected add writes no export")
}

func TestUnload_WritesExport(t *testing.T) {
	f := newCLIFixture(t)
	shift(t, f)

	rows := readCSV(t, f.export)
	require.Len(t, rows, 2)
	assert.Equal(t, ledger.Columns, rows[0])
	assert.Equal(t, []string{"O3", "C5", "C6", "Oven 2", "120", "Alice", "Steel", "3"}, rows[1][:8])
	assert.Equal(t, "2025-01-06T08:15:00Z", rows[1][8])
	assert.Equal(t, "2025-01-06T08:45:00Z", rows[1][9])
}

func TestUnload_Errors(t *testing.T) {
	f := newCLIFixture(t)
	shift(t, f)

	stdout, _, err := f.run("unload", "cyl-0042")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "Error [E102]")

	stdout, _, err = f.run("unload", "cyl-0003")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "Error [E103]")

	_, _, err = f.run("unload")
	require.Error(t, err, "id argument is required")
}

func TestUnload_ExportFailureIsWarning(t *testing.T) {
	f := newCLIFixture(t)
	f.add(t, "O1", "C1", "C2", "Oven 1", "30", "Alice", "Steel", "2")

	// A directory where the export file should be makes the write fail.
	f.export = filepath.Join(f.dir, "blocked", "unloaded.csv")
	require.NoError(t, os.MkdirAll(f.export, 0o755))

	stdout, stderr, err := f.run("unload", "cyl-0001")
	require.NoError(t, err, "the unload itself succeeded")
	assert.Contains(t, stdout, "Unloaded cylinder cyl-0001")
	assert.Contains(t, stderr, "Warning: export "+f.export)

	stdout, _, err = f.run("--format", "json", "status")
	require.NoError(t, err)
	var resp struct {
		Data ledger.View `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, 1, resp.Data.Unloaded, "mutation was persisted")
}

func TestExport_DefaultAndOut(t *testing.T) {
	f := newCLIFixture(t)
	shift(t, f)
	require.NoError(t, os.Remove(f.export))

	stdout, _, err := f.run("export")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Exported 1 unloaded cylinder(s) to "+f.export)
	assert.Len(t, readCSV(t, f.export), 2)

	out := filepath.Join(f.dir, "report.xlsx")
	stdout, _, err = f.run("--format", "json", "export", "--out", out)
	require.NoError(t, err)

	var resp struct {
		Data ExportResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, ExportResult{Path: out, Rows: 1}, resp.Data)

	wb, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer wb.Close()
	rows, err := wb.GetRows("Unloaded")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "O3", rows[1][0])
}

func TestExport_UnsupportedOut(t *testing.T) {
	f := newCLIFixture(t)

	_, _, err := f.run("export", "--out", filepath.Join(f.dir, "report.pdf"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestSession_UnreadableLedger(t *testing.T) {
	f := newCLIFixture(t)
	f.ledger = filepath.Join(f.dir, "broken.csv")
	require.NoError(t, os.WriteFile(f.ledger, []byte("not,a,ledger\n1,2,3\n"), 0o644))

	stdout, _, err := f.run("status")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stdout, "Error [E201]")
}

func TestSession_UnsupportedLedger(t *testing.T) {
	f := newCLIFixture(t)
	f.ledger = filepath.Join(f.dir, "ledger.txt")

	stdout, _, err := f.run("status")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stdout, "Error [E001]")
	assert.Contains(t, stdout, "invalid settings")
}

func TestSession_ConfigFile(t *testing.T) {
	f := newCLIFixture(t)
	cfg := filepath.Join(f.dir, "ovenledger.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("ovens: [Kiln A, Kiln B]\n"), 0o644))

	_, _, err := f.run("--config", cfg, "add",
		"--order", "O1", "--current", "C1", "--needed", "C2", "--oven", "Kiln B",
		"--operator", "Alice", "--material", "Steel", "--thickness", "1")
	require.NoError(t, err)

	stdout, _, err := f.run("--config", cfg, "status")
	require.NoError(t, err)
	assert.True(t, strings.Contains(stdout, "Kiln B  1"), stdout)

	stdout, _, err = f.run("--config", filepath.Join(f.dir, "missing.yaml"), "status")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stdout, "Error [E001]")
}
