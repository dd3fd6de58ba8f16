package toolrunner_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/cxxlint/cxxlint/internal/adapters/outbound/toolrunner"
	"github.com/cxxlint/cxxlint/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// installFakeTools writes executable scripts named after the clang tools into
// a fresh directory and returns it for use as the version hint.
func installFakeTools(t *testing.T, script string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range []string{domain.ToolClangFormat, domain.ToolClangTidy} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	}
	return dir
}

func newRunner() *toolrunner.Runner {
	return toolrunner.New(log.New(io.Discard))
}

func TestProbe_ResolvesFromDirectory(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.ToolVersion = installFakeTools(t, "#!/bin/sh\necho fake version 18.0.0\n")

	assert.NoError(t, newRunner().Probe(context.Background(), cfg))
}

func TestProbe_MissingTool(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.ToolVersion = t.TempDir()

	err := newRunner().Probe(context.Background(), cfg)
	var unavailable *domain.ToolUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, domain.ExitToolUnavailable, unavailable.ExitCode())
}

func TestProbe_SkipsDisabledTools(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.Style = ""
	cfg.TidyChecks = "-*"
	cfg.ToolVersion = t.TempDir()

	assert.NoError(t, newRunner().Probe(context.Background(), cfg))
}

func TestRun_CapturesOutputPerUnit(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.RepoRoot = t.TempDir()
	cfg.ToolVersion = installFakeTools(t, "#!/bin/sh\necho \"$@\"\n")

	runner := newRunner()
	require.NoError(t, runner.Probe(context.Background(), cfg))

	targets := []domain.FileTarget{{Path: "src/a.cpp"}, {Path: "src/b.cpp"}}
	outputs, err := runner.Run(context.Background(), cfg, targets, nil)
	require.NoError(t, err)
	require.Len(t, outputs, 4, "two tools per target")

	assert.Equal(t, domain.ToolClangFormat, outputs[0].Tool)
	assert.Equal(t, "src/a.cpp", outputs[0].File)
	assert.Contains(t, outputs[0].Stdout, "--style=llvm")
	assert.Contains(t, outputs[0].Stdout, "--output-replacements-xml")
	assert.Contains(t, outputs[0].Stdout, "src/a.cpp")

	assert.Equal(t, domain.ToolClangTidy, outputs[1].Tool)
	assert.Contains(t, outputs[1].Stdout, "-checks="+domain.DefaultTidyChecks)
	assert.Contains(t, outputs[1].Stdout, "src/a.cpp")
}

func TestRun_ScopedRangesReachTools(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.RepoRoot = t.TempDir()
	cfg.ToolVersion = installFakeTools(t, "#!/bin/sh\necho \"$@\"\n")
	cfg.LinesChangedOnly = domain.FilterAdded

	runner := newRunner()
	require.NoError(t, runner.Probe(context.Background(), cfg))

	scope := domain.DiffScope{
		"src/a.cpp": domain.NewFileChanges([]int{5, 6, 10}, []domain.LineRange{{First: 3, Last: 12}}),
	}
	outputs, err := runner.Run(context.Background(), cfg, []domain.FileTarget{{Path: "src/a.cpp"}}, scope)
	require.NoError(t, err)
	require.Len(t, outputs, 2)

	assert.Contains(t, outputs[0].Stdout, "--lines=5:6")
	assert.Contains(t, outputs[0].Stdout, "--lines=10:10")
	assert.Contains(t, outputs[1].Stdout, `--line-filter=[{"name":"a.cpp","lines":[[5,6],[10,10]]}]`)
}

func TestRun_NonZeroExitIsNotAnError(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.RepoRoot = t.TempDir()
	cfg.TidyChecks = "-*"
	cfg.ToolVersion = installFakeTools(t, "#!/bin/sh\nif [ \"$1\" = --version ]; then exit 0; fi\necho oops >&2\nexit 1\n")

	runner := newRunner()
	require.NoError(t, runner.Probe(context.Background(), cfg))

	outputs, err := runner.Run(context.Background(), cfg, []domain.FileTarget{{Path: "a.cpp"}}, nil)
	require.NoError(t, err)
	require.Len(t, outputs, 1)
	assert.Equal(t, 1, outputs[0].ExitCode)
	assert.Contains(t, outputs[0].Stderr, "oops")
}

func TestRun_UnitTimeoutIsRecorded(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.RepoRoot = t.TempDir()
	cfg.TidyChecks = "-*"
	cfg.ToolTimeout = 50 * time.Millisecond
	cfg.ToolVersion = installFakeTools(t, "#!/bin/sh\nif [ \"$1\" = --version ]; then exit 0; fi\nsleep 5\n")

	runner := newRunner()
	require.NoError(t, runner.Probe(context.Background(), cfg))

	outputs, err := runner.Run(context.Background(), cfg, []domain.FileTarget{{Path: "a.cpp"}}, nil)
	require.NoError(t, err)
	require.Len(t, outputs, 1)
	assert.True(t, outputs[0].TimedOut)
}

func TestRun_OneSlowFileDoesNotStallTheRest(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.RepoRoot = t.TempDir()
	cfg.TidyChecks = "-*"
	cfg.ToolTimeout = 50 * time.Millisecond
	cfg.ToolVersion = installFakeTools(t,
		"#!/bin/sh\n"+
			"if [ \"$1\" = --version ]; then exit 0; fi\n"+
			"for a in \"$@\"; do last=$a; done\n"+
			"case \"$last\" in *slow*) sleep 5;; *) echo ok;; esac\n")

	runner := newRunner()
	require.NoError(t, runner.Probe(context.Background(), cfg))

	targets := []domain.FileTarget{{Path: "fast.cpp"}, {Path: "slow.cpp"}}
	outputs, err := runner.Run(context.Background(), cfg, targets, nil)
	require.NoError(t, err)
	require.Len(t, outputs, 2)

	assert.False(t, outputs[0].TimedOut)
	assert.Contains(t, outputs[0].Stdout, "ok")
	assert.True(t, outputs[1].TimedOut)
}

func TestRun_RunTimeoutAbortsEverything(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.RepoRoot = t.TempDir()
	cfg.TidyChecks = "-*"
	cfg.ToolTimeout = 0
	cfg.RunTimeout = 50 * time.Millisecond
	cfg.ToolVersion = installFakeTools(t, "#!/bin/sh\nif [ \"$1\" = --version ]; then exit 0; fi\nsleep 5\n")

	runner := newRunner()
	require.NoError(t, runner.Probe(context.Background(), cfg))

	_, err := runner.Run(context.Background(), cfg, []domain.FileTarget{{Path: "a.cpp"}}, nil)
	var timeout *domain.RunTimeoutError
	require.ErrorAs(t, err, &timeout)
	assert.Equal(t, domain.ExitRunTimeout, timeout.ExitCode())
}
