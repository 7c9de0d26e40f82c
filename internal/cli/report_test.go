package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordTestRun transpiles the fixture module into dbPath and returns
// the run ID.
func recordTestRun(t *testing.T, dbPath string) string {
	t.Helper()
	modulePath := writeTestModule(t)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewTranspileCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{modulePath, "--stdout", "--db", dbPath})

	require.NoError(t, cmd.Execute())

	var resp struct {
		Data TranspileResult `json:"data"`
	}
	// --stdout prefixes the JSON payload with the generated source, so
	// decode from the last line.
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &resp))
	require.NotEmpty(t, resp.Data.RunID)
	return resp.Data.RunID
}

func TestReportNoDatabase(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewReportCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, buf.String(), "no database")
}

func TestReportListAndShow(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	runID := recordTestRun(t, dbPath)

	listBuf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	listCmd := NewReportCommand(rootOpts)
	listCmd.SetOut(listBuf)
	listCmd.SetArgs([]string{"--db", dbPath})

	require.NoError(t, listCmd.Execute())
	assert.Contains(t, listBuf.String(), runID)
	assert.Contains(t, listBuf.String(), "calc")
	assert.Contains(t, listBuf.String(), "errors=0 warnings=0")

	showBuf := &bytes.Buffer{}
	showCmd := NewReportCommand(rootOpts)
	showCmd.SetOut(showBuf)
	showCmd.SetArgs([]string{runID, "--db", dbPath, "--source"})

	require.NoError(t, showCmd.Execute())
	out := showBuf.String()
	assert.Contains(t, out, "run "+runID)
	assert.Contains(t, out, "double (included)")
	assert.Contains(t, out, "x: take_ownership")
	assert.Contains(t, out, "pub fn double")
}

func TestReportListJSON(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	runID := recordTestRun(t, dbPath)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewReportCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--db", dbPath})

	require.NoError(t, cmd.Execute())

	var resp struct {
		Status string           `json:"status"`
		Data   []RunSummaryJSON `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, runID, resp.Data[0].RunID)
	assert.Equal(t, "calc", resp.Data[0].Module)
}

func TestReportListModuleFilter(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	recordTestRun(t, dbPath)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewReportCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--db", dbPath, "--module", "other"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "no runs recorded")
}

func TestReportShowUnknownRun(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	recordTestRun(t, dbPath)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewReportCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"no-such-run", "--db", dbPath})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, buf.String(), "not found")
}
