package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testModuleJSON = `{
  "name": "calc",
  "functions": [
    {
      "name": "double",
      "params": [{"name": "x", "type": {"kind": "int"}}],
      "ret": {"kind": "int"},
      "body": [
        {
          "kind": "return",
          "value": {
            "kind": "binary",
            "op": "*",
            "left": {"kind": "name", "ident": "x"},
            "right": {"kind": "int", "value": 2}
          }
        }
      ]
    }
  ]
}`

func writeTestModule(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "calc.json")
	require.NoError(t, os.WriteFile(path, []byte(testModuleJSON), 0o644))
	return path
}

func TestTranspileToStdout(t *testing.T) {
	modulePath := writeTestModule(t)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewTranspileCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{modulePath, "--stdout"})

	err := cmd.Execute()
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "// Generated by ferrule")
	assert.Contains(t, out, "pub fn double(x: i64) -> i64")
}

func TestTranspileWritesDefaultPath(t *testing.T) {
	modulePath := writeTestModule(t)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewTranspileCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{modulePath})

	err := cmd.Execute()
	require.NoError(t, err)

	rsPath := filepath.Join(filepath.Dir(modulePath), "calc.rs")
	source, err := os.ReadFile(rsPath)
	require.NoError(t, err)
	assert.Contains(t, string(source), "pub fn double")
	assert.Contains(t, buf.String(), "wrote "+rsPath)
}

func TestTranspileJSONPayload(t *testing.T) {
	modulePath := writeTestModule(t)
	outPath := filepath.Join(t.TempDir(), "calc.rs")

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewTranspileCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{modulePath, "--out", outPath})

	err := cmd.Execute()
	require.NoError(t, err)

	var resp struct {
		Status string          `json:"status"`
		Data   TranspileResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "calc", resp.Data.Module)
	assert.NotEmpty(t, resp.Data.RunID)
	assert.NotEmpty(t, resp.Data.ModuleHash)
	assert.NotEmpty(t, resp.Data.ConfigHash)
	assert.Equal(t, outPath, resp.Data.Out)
	assert.Equal(t, []string{"double"}, resp.Data.Included)
	assert.Empty(t, resp.Data.Excluded)
}

func TestTranspileWithAnnotations(t *testing.T) {
	modulePath := writeTestModule(t)
	annotationsPath := writeAnnotations(t, `module: { int_width: "i32" }`)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewTranspileCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{modulePath, "--stdout", "-a", annotationsPath})

	err := cmd.Execute()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "pub fn double(x: i32) -> i32")
}

func TestTranspileWritesManifest(t *testing.T) {
	modulePath := writeTestModule(t)
	manifestPath := filepath.Join(t.TempDir(), "Cargo.toml")

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewTranspileCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{modulePath, "--stdout", "--manifest", manifestPath})

	err := cmd.Execute()
	require.NoError(t, err)

	manifest, err := os.ReadFile(manifestPath)
	require.NoError(t, err)
	assert.Contains(t, string(manifest), `name = "calc"`)
	assert.Contains(t, string(manifest), "[dependencies]")
}

func TestTranspileMissingModule(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewTranspileCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{filepath.Join(t.TempDir(), "absent.json")})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, buf.String(), ErrCodeModuleRead)
}

func TestTranspileMalformedModule(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"name": `), 0o644))

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewTranspileCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{path})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, buf.String(), ErrCodeModuleParse)
}

func TestDefaultOutputPath(t *testing.T) {
	assert.Equal(t, "calc.rs", defaultOutputPath("calc.json"))
	assert.Equal(t, filepath.Join("a", "b.rs"), defaultOutputPath(filepath.Join("a", "b.json")))
}
