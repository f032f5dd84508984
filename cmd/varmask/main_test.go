package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/deepnoodle-ai/varmask/errors"
	"github.com/deepnoodle-ai/varmask/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const identity = `function f(a) { return a; }`

const maskedIdentity = `Object.defineProperty(f, "length", { value: 1, configurable: true });
function f(...s0_varMask) {
  return s0_varMask[0];
}
`

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--no-color"}, args...))
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCode(t *testing.T) {
	out, _, err := execute(t, "", "--names", "sequence", "--code", identity)
	require.NoError(t, err)
	assert.Equal(t, maskedIdentity, out)
}

func TestStdin(t *testing.T) {
	out, _, err := execute(t, identity, "--names", "sequence", "--stdin")
	require.NoError(t, err)
	assert.Equal(t, maskedIdentity, out)
}

func TestArityNone(t *testing.T) {
	out, _, err := execute(t, "", "--names", "sequence", "--arity", "none", "--code", identity)
	require.NoError(t, err)
	assert.Equal(t, `function f(...s0_varMask) {
  return s0_varMask[0];
}
`, out)
}

func TestKeep(t *testing.T) {
	out, _, err := execute(t, "", "--keep", "f", "--code", identity)
	require.NoError(t, err)
	assert.Equal(t, `function f(a) {
  return a;
}
`, out)
}

func TestProbabilityFalse(t *testing.T) {
	out, _, err := execute(t, "", "--probability", "false", "--code", identity)
	require.NoError(t, err)
	assert.NotContains(t, out, "_varMask")
}

func TestEnvironment(t *testing.T) {
	t.Setenv("VARMASK_NAMES", "sequence")
	t.Setenv("VARMASK_ARITY", "none")
	out, _, err := execute(t, "", "--code", identity)
	require.NoError(t, err)
	assert.Contains(t, out, "function f(...s0_varMask) {")
	assert.NotContains(t, out, "defineProperty")
}

func TestInputSources(t *testing.T) {
	_, _, err := execute(t, identity, "--stdin", "--code", identity)
	require.EqualError(t, err, "multiple input sources specified")

	_, _, err = execute(t, "")
	require.EqualError(t, err, "no input provided")

	_, _, err = execute(t, "", "--write", "--code", identity)
	require.EqualError(t, err, "--write requires file arguments")
}

func TestInvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		args []string
		key  string
		code errors.ErrorCode
	}{
		{"names", []string{"--names", "rnadom"}, "names", errors.E3002},
		{"arity", []string{"--arity", "patch"}, "arity", errors.E3002},
		{"probability", []string{"--probability", "often"}, "probability", errors.E3001},
		{"probability range", []string{"--probability", "1.5"}, "probability", errors.E3001},
		{"log level", []string{"--log-level", "loud"}, "log-level", errors.E3002},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, "", append(tt.args, "--code", identity)...)
			require.Error(t, err)
			var cerr *errors.ConfigError
			require.ErrorAs(t, err, &cerr)
			assert.Equal(t, tt.key, cerr.Key)
			assert.Equal(t, tt.code, cerr.Code)
			assert.Contains(t, formatError(err, false), "config error["+string(tt.code)+"]")
		})
	}
}

func TestUnknownNameSuggestion(t *testing.T) {
	_, _, err := execute(t, "", "--names", "sequense", "--code", identity)
	require.Error(t, err)
	assert.Contains(t, formatError(err, false), "sequence")
}

func TestFiles(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.js", identity)
	b := writeFile(t, dir, "b.js", `var x = 1;`)

	out, _, err := execute(t, "", "--names", "sequence", a, b)
	require.NoError(t, err)
	assert.Equal(t, "// "+a+"\n"+maskedIdentity+"// "+b+"\nvar x = 1;\n", out)
}

func TestWrite(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.js", identity)

	out, _, err := execute(t, "", "--names", "sequence", "-w", path)
	require.NoError(t, err)
	assert.Empty(t, out)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, maskedIdentity, string(data))
}

func TestOutput(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "out.js")

	_, _, err := execute(t, "", "--names", "sequence", "-o", target, "--code", identity)
	require.NoError(t, err)
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, maskedIdentity, string(data))

	a := writeFile(t, dir, "a.js", identity)
	b := writeFile(t, dir, "b.js", identity)
	_, _, err = execute(t, "", "-o", target, a, b)
	require.EqualError(t, err, "--output requires a single input")
}

func TestParseErrorsAreCollected(t *testing.T) {
	dir := t.TempDir()
	bad := writeFile(t, dir, "bad.js", "var = ;\n")
	worse := writeFile(t, dir, "worse.js", "if (\n")
	good := writeFile(t, dir, "good.js", identity)

	out, _, err := execute(t, "", "--names", "sequence", bad, good, worse)
	require.Error(t, err)
	assert.Equal(t, "// "+good+"\n"+maskedIdentity, out)

	var perr *parser.Errors
	require.ErrorAs(t, err, &perr)
	msg := formatError(err, false)
	assert.Contains(t, msg, "bad.js")
	assert.Contains(t, msg, "worse.js")
	assert.Contains(t, msg, "2 inputs failed")
}

func TestReport(t *testing.T) {
	code := identity + `
function g() { "use strict"; var x = 1; return x; }
function h(o) { return o.v; }`
	_, errOut, err := execute(t, "", "--report", "--code", code)
	require.NoError(t, err)
	assert.Contains(t, errOut, "<code>: 2 of 3 functions masked\n")
	assert.Contains(t, errOut, "  skipped strict mode: 1\n")
}

func TestReportMethods(t *testing.T) {
	code := `var o = { m(a) { var b = a; return b; } };`
	out, errOut, err := execute(t, "", "--report", "--code", code)
	require.NoError(t, err)
	assert.NotContains(t, out, "_varMask")
	assert.Contains(t, errOut, "  skipped length cannot be restored: 1\n")
	assert.Contains(t, errOut, "1 methods kept their parameters")

	out, _, err = execute(t, "", "--arity", "none", "--code", code)
	require.NoError(t, err)
	assert.Contains(t, out, "_varMask")
}

func TestReportKept(t *testing.T) {
	code := `function f(a) { var b = 1, c = 2; var d = a; return b + c + d; }`
	_, errOut, err := execute(t, "", "--report", "--code", code)
	require.NoError(t, err)
	assert.Contains(t, errOut, "f kept b (multiple declarators), c (multiple declarators)")
}

func TestDebugLogging(t *testing.T) {
	_, errOut, err := execute(t, "", "--log-level", "debug", "--code", identity)
	require.NoError(t, err)
	assert.Contains(t, errOut, "configured")
	assert.Contains(t, errOut, "function=f")
	assert.Contains(t, errOut, "transformed")
}
