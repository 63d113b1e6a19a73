package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/ovenledger/internal/testutil"
)

// cliFixture runs root commands against a temp-dir ledger with a fake clock
// and sequential IDs shared across invocations.
type cliFixture struct {
	dir    string
	ledger string
	export string
	clock  *testutil.FakeClock
	ids    *testutil.SequentialIDs
}

func newCLIFixture(t *testing.T) *cliFixture {
	t.Helper()
	dir := t.TempDir()
	return &cliFixture{
		dir:    dir,
		ledger: filepath.Join(dir, "cylinders.db"),
		export: filepath.Join(dir, "unloaded.csv"),
		clock:  testutil.NewFakeClock(time.Time{}),
		ids:    testutil.NewSequentialIDs(""),
	}
}

// run executes one CLI invocation and returns stdout, stderr and the error.
func (f *cliFixture) run(args ...string) (string, string, error) {
	opts := &RootOptions{Clock: f.clock, IDs: f.ids}
	cmd := newRootCommand(opts)

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--ledger", f.ledger, "--export", f.export}, args...))

	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

// add logs a cylinder with the given identity fields and fixed extras.
func (f *cliFixture) add(t *testing.T, order, current, needed, oven, duration, operator, material, thickness string) {
	t.Helper()
	_, _, err := f.run("add",
		"--order", order,
		"--current", current,
		"--needed", needed,
		"--oven", oven,
		"--duration", duration,
		"--operator", operator,
		"--material", material,
		"--thickness", thickness,
	)
	if err != nil {
		t.Fatalf("add %s: %v", current, err)
	}
}
