package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"atomicgo.dev/keyboard/keys"
	"github.com/fatih/color"
	"github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/require"
)

const helloAST = `[{"kind": "println", "args": [{"kind": "char", "value": "h"}, {"kind": "int", "value": 1}]}]`

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	homedir.DisableCache = true
	t.Setenv("HOME", t.TempDir())
	color.NoColor = true
	var stdout, stderr bytes.Buffer
	root := newRootCommand()
	root.SetArgs(args)
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCompileCommand(t *testing.T) {
	out, _, err := execute(t, "", "compile", "--code", helloAST)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "VAL_COPY 1000 s0\n"))
	require.Contains(t, out, "OUT_CHAR s")
	require.Contains(t, out, "OUT_NUM s")
	require.True(t, strings.HasSuffix(out, "OUT_CHAR '%n'\n"))
}

func TestCompileToFile(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out.psyki")
	out, _, err := execute(t, "", "compile", "--code", helloAST, "-o", dest, "--heap-base", "7")
	require.NoError(t, err)
	require.Empty(t, out)
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(data), "VAL_COPY 7 s0\n"))
}

func TestCompileEchoesTree(t *testing.T) {
	_, errOut, err := execute(t, "", "compile", "--code", helloAST, "--ast-json")
	require.NoError(t, err)
	require.Contains(t, errOut, `"kind": "println"`)
}

func TestEvalCommand(t *testing.T) {
	path := writeFile(t, "hello.json", helloAST)
	out, _, err := execute(t, "", "eval", path)
	require.NoError(t, err)
	require.Equal(t, "h1\n", out)
}

func TestRunCommandReadsInput(t *testing.T) {
	path := writeFile(t, "echo.psyki", "IN_CHAR s1\nOUT_CHAR s1\nOUT_CHAR s1\n")
	out, _, err := execute(t, "k", "run", path)
	require.NoError(t, err)
	require.Equal(t, "kk", out)
}

func TestRunFromStdinGetsEmptyInput(t *testing.T) {
	out, _, err := execute(t, "IN_CHAR s1\nOUT_CHAR s1\n", "run", "--stdin")
	require.NoError(t, err)
	require.Equal(t, "\n", out)
}

func TestRunSeedAndRange(t *testing.T) {
	out, _, err := execute(t, "", "run", "--code", "RANDOM s1\nOUT_NUM s1\n",
		"--seed", "3", "--random-min", "4", "--random-max", "4")
	require.NoError(t, err)
	require.Equal(t, "4", out)
}

func TestRunRuntimeError(t *testing.T) {
	out, _, err := execute(t, "", "run", "--code", "OUT_NUM 1\nIDIV 1 0 s1\n")
	require.Error(t, err)
	require.Equal(t, "1", out)
	var buf bytes.Buffer
	printError(&buf, err)
	require.Contains(t, buf.String(), "[E3001]")
}

func TestEnvironmentConfiguresHeapBase(t *testing.T) {
	t.Setenv("PSYK_HEAP_BASE", "300")
	out, _, err := execute(t, "", "run", "--code", "OUT_NUM s0\n")
	require.NoError(t, err)
	require.Equal(t, "300", out)
}

func TestConfigFile(t *testing.T) {
	path := writeFile(t, "psyk.yaml", "heap-base: 42\n")
	out, _, err := execute(t, "", "run", "--config", path, "--code", "OUT_NUM s0\n")
	require.NoError(t, err)
	require.Equal(t, "42", out)
}

func TestMissingConfigFile(t *testing.T) {
	_, _, err := execute(t, "", "run", "--config", "/nonexistent/psyk.yaml", "--code", "OUT_NUM 1\n")
	require.Error(t, err)
}

func TestTraceLogsSteps(t *testing.T) {
	_, errOut, err := execute(t, "", "run", "--trace", "--code", "OUT_NUM 1\n")
	require.NoError(t, err)
	require.Contains(t, errOut, "step")
	require.Contains(t, errOut, "run_id=")
	require.Contains(t, errOut, "OUT_NUM")
}

func TestDisCommand(t *testing.T) {
	out, _, err := execute(t, "", "dis", "--code", "top:\nJUMP top\n")
	require.NoError(t, err)
	require.Contains(t, out, "| LINE |")
	require.Contains(t, out, "-> line 2")

	out, _, err = execute(t, "", "dis", "--json", "--code", "OUT_NUM 5\n")
	require.NoError(t, err)
	require.Contains(t, out, `"opcode": "OUT_NUM"`)
}

func TestCheckCommand(t *testing.T) {
	out, _, err := execute(t, "", "check", "--code", "top:\nJUMP top\n")
	require.NoError(t, err)
	require.Equal(t, "ok: 2 lines\n", out)

	_, _, err = execute(t, "", "check", "--code", "BOGUS\nJUMP nowhere\nADD 1\n")
	require.Error(t, err)
	var buf bytes.Buffer
	printError(&buf, err)
	require.Contains(t, buf.String(), "1/2")
	require.Contains(t, buf.String(), "found 2 errors")

	_, _, err = execute(t, "", "check", "--code", "JUMP nowhere\n")
	require.ErrorContains(t, err, "nowhere")
}

func TestInputSourceConflicts(t *testing.T) {
	_, _, err := execute(t, "", "run", "--code", "OUT_NUM 1\n", "--stdin")
	require.ErrorContains(t, err, "multiple input sources")
	_, _, err = execute(t, "", "run")
	require.ErrorContains(t, err, "no input provided")
}

func TestInvalidLogLevel(t *testing.T) {
	_, _, err := execute(t, "", "version", "--log-level", "loud")
	require.ErrorContains(t, err, "invalid log level")
}

func TestVersionCommand(t *testing.T) {
	out, _, err := execute(t, "", "version")
	require.NoError(t, err)
	require.Equal(t, "psyk dev (commit unknown, built unknown)\n", out)

	out, _, err = execute(t, "", "version", "--json")
	require.NoError(t, err)
	require.Contains(t, out, `"version": "dev"`)
}

func TestKeyboardReader(t *testing.T) {
	presses := []keys.Key{
		{Code: keys.Up},
		{Code: keys.RuneKey, Runes: []rune{'é'}},
		{Code: keys.Enter},
		{Code: keys.Space},
		{Code: keys.CtrlD},
		{Code: keys.CtrlC},
	}
	reader := &keyboardReader{listen: func(onKey func(keys.Key) (bool, error)) error {
		for len(presses) > 0 {
			key := presses[0]
			presses = presses[1:]
			stop, err := onKey(key)
			if err != nil || stop {
				return err
			}
		}
		return nil
	}}
	r, size, err := reader.ReadRune()
	require.NoError(t, err)
	require.Equal(t, 'é', r)
	require.Equal(t, 2, size)

	buf := make([]byte, 4)
	n, err := reader.Read(buf)
	require.NoError(t, err)
	require.Equal(t, "\n", string(buf[:n]))

	r, _, err = reader.ReadRune()
	require.NoError(t, err)
	require.Equal(t, ' ', r)

	_, _, err = reader.ReadRune()
	require.ErrorIs(t, err, io.EOF)
	_, _, err = reader.ReadRune()
	require.ErrorIs(t, err, errInterrupted)
}
