package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const greetYAML = `
name: greet
stages:
  - func: get
    args: [name]
  - func: trim
  - func: format
    args: ["hello %s", {$ref: X}]
`

func writeFile(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRunCommand(t *testing.T) {
	path := writeFile(t, "pipeline.yaml", greetYAML)

	out, _, err := execute(t, `{"name": "  Ada "}`, "run", "-f", path)
	require.NoError(t, err)
	assert.Equal(t, "\"hello Ada\"\n", out)
}

func TestRunCommandInputFile(t *testing.T) {
	path := writeFile(t, "pipeline.yaml", greetYAML)
	input := writeFile(t, "input.json", `{"name": "Grace"}`)

	out, _, err := execute(t, "", "run", "-f", path, "-i", input)
	require.NoError(t, err)
	assert.Equal(t, "\"hello Grace\"\n", out)
}

func TestRunCommandMetrics(t *testing.T) {
	path := writeFile(t, "pipeline.yaml", greetYAML)

	_, errOut, err := execute(t, `{"name": "Ada"}`, "run", "-f", path, "--metrics")
	require.NoError(t, err)
	assert.Contains(t, errOut, "pipefunc_stage_applications_total")
	assert.Contains(t, errOut, `stage="f(trim)"`)
}

func TestRunCommandTrace(t *testing.T) {
	path := writeFile(t, "pipeline.yaml", greetYAML)

	out, errOut, err := execute(t, `{"name": "Ada"}`, "run", "-f", path, "--trace")
	require.NoError(t, err)
	assert.Equal(t, "\"hello Ada\"\n", out)
	assert.Equal(t, 3, strings.Count(errOut, `"Name": "pipefunc.apply"`))
}

func TestRunCommandErrors(t *testing.T) {
	path := writeFile(t, "pipeline.yaml", greetYAML)

	t.Run("no_file", func(t *testing.T) {
		_, _, err := execute(t, "{}", "run")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no pipeline definition")
	})

	t.Run("bad_input", func(t *testing.T) {
		_, _, err := execute(t, "{", "run", "-f", path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to decode input")
	})

	t.Run("stage_failure", func(t *testing.T) {
		_, _, err := execute(t, `{"other": 1}`, "run", "-f", path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "stage 0")
	})
}

func TestDescribeCommand(t *testing.T) {
	path := writeFile(t, "pipeline.yaml", greetYAML)

	out, _, err := execute(t, "", "describe", "-f", path)
	require.NoError(t, err)
	assert.Equal(t, "greet: f(get, \"name\") | f(trim) | f(format, \"hello %s\", X)\n", out)
}

func TestDescribeUsesConfigPipeline(t *testing.T) {
	path := writeFile(t, "pipeline.yaml", greetYAML)
	t.Setenv("PIPEFUNC_PIPELINE", path)

	out, _, err := execute(t, "", "describe")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "greet: "))
}

func TestSchemaCommand(t *testing.T) {
	out, _, err := execute(t, "", "schema")
	require.NoError(t, err)
	assert.Contains(t, out, `"stages"`)
}

func TestFuncsCommand(t *testing.T) {
	out, _, err := execute(t, "", "funcs")
	require.NoError(t, err)

	names := strings.Fields(out)
	assert.Contains(t, names, "upper")
	assert.Contains(t, names, "format")
}
