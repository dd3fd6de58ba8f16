package cli_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/cxxlint/cxxlint/internal/adapters/inbound/cli"
	"github.com/cxxlint/cxxlint/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeToolDir builds scripts that stand in for the clang tools: the
// format stand-in reports a clean file, the tidy stand-in reports one
// warning on line 3 of whatever file it is given.
func fakeToolDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	format := "#!/bin/sh\n" +
		"if [ \"$1\" = --version ]; then echo fake 18.0.0; exit 0; fi\n" +
		"echo \"<?xml version='1.0'?><replacements></replacements>\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, domain.ToolClangFormat), []byte(format), 0o755))

	tidy := "#!/bin/sh\n" +
		"if [ \"$1\" = --version ]; then echo fake 18.0.0; exit 0; fi\n" +
		"for a in \"$@\"; do last=$a; done\n" +
		"echo \"$last:3:1: warning: do not use magic numbers [readability-magic-numbers]\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, domain.ToolClangTidy), []byte(tidy), 0o755))

	return dir
}

func sourceTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.cpp"), []byte("int x = 42;\n\nint y = 7;\n"), 0o644))
	return root
}

func TestCheckCommand_ReportsDiagnostics(t *testing.T) {
	cmd := cli.NewRootCmdForTest()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"check", sourceTree(t), "--tool-version", fakeToolDir(t)})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, buf.String(), "a.cpp")
	assert.Contains(t, buf.String(), "do not use magic numbers")
	assert.Contains(t, buf.String(), "readability-magic-numbers")
}

func TestCheckCommand_FailOnWarning(t *testing.T) {
	cmd := cli.NewRootCmdForTest()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetArgs([]string{"check", sourceTree(t), "--tool-version", fakeToolDir(t), "--fail-on", "warning"})
	assert.Error(t, cmd.Execute())
}

func TestCheckCommand_JSONToStdout(t *testing.T) {
	cmd := cli.NewRootCmdForTest()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"check", sourceTree(t), "--tool-version", fakeToolDir(t), "--json", "-"})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, buf.String(), `"diagnostics"`)
	assert.Contains(t, buf.String(), `"readability-magic-numbers"`)
}

func TestCheckCommand_ConflictingDiffSources(t *testing.T) {
	cmd := cli.NewRootCmdForTest()
	cmd.SetArgs([]string{"check", sourceTree(t), "--diff-file", "x.patch", "--diff-base", "main"})
	err := cmd.Execute()
	var cfgErr *domain.ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

func TestCheckCommand_NoMatchingFiles(t *testing.T) {
	cmd := cli.NewRootCmdForTest()
	cmd.SetArgs([]string{"check", t.TempDir(), "--tool-version", fakeToolDir(t)})
	err := cmd.Execute()
	var selErr *domain.SelectionError
	require.ErrorAs(t, err, &selErr)
}

func TestVersionCommand(t *testing.T) {
	cmd := cli.NewRootCmdForTest()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"version"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "cxxlint")
}
