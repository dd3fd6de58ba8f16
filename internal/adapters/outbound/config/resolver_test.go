package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cxxlint/cxxlint/internal/adapters/outbound/config"
	"github.com/cxxlint/cxxlint/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noEnv(string) string { return "" }

func envFrom(vars map[string]string) func(string) string {
	return func(key string) string { return vars[key] }
}

func strPtr(s string) *string { return &s }

func TestResolve_DefaultsWhenNothingConfigured(t *testing.T) {
	r := &config.Resolver{Env: noEnv}
	cfg, err := r.Resolve(t.TempDir(), config.Layer{})
	require.NoError(t, err)

	want := domain.DefaultConfig()
	want.RepoRoot = cfg.RepoRoot
	assert.Equal(t, want, cfg)
}

func TestResolve_Idempotent(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "style: google\njobs: 3\n")

	r := &config.Resolver{Env: envFrom(map[string]string{"CXXLINT_FAIL_ON": "warning"})}
	first, err := r.Resolve(root, config.Layer{TidyChecks: strPtr("bugprone-*")})
	require.NoError(t, err)
	second, err := r.Resolve(root, config.Layer{TidyChecks: strPtr("bugprone-*")})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestResolve_Precedence(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "style: webkit\nmax_warnings: 10\njobs: 2\n")

	env := envFrom(map[string]string{
		"CXXLINT_STYLE": "google",
		"CXXLINT_JOBS":  "4",
	})
	r := &config.Resolver{Env: env}

	// Flag beats env beats file beats default.
	cfg, err := r.Resolve(root, config.Layer{Style: strPtr("mozilla")})
	require.NoError(t, err)
	assert.Equal(t, "mozilla", cfg.Style, "flag wins over env and file")
	assert.Equal(t, 4, cfg.Jobs, "env wins over file")
	assert.Equal(t, 10, cfg.MaxWarnings, "file wins over default")
	assert.Equal(t, domain.DefaultTidyChecks, cfg.TidyChecks, "default survives")
}

func TestResolve_EnvLists(t *testing.T) {
	env := envFrom(map[string]string{
		"CXXLINT_EXTENSIONS": "cu,cuh",
		"CXXLINT_IGNORE":     "build|third_party",
		"CXXLINT_EXTRA_ARGS": "-std=c++17,-Wall",
	})
	r := &config.Resolver{Env: env}
	cfg, err := r.Resolve(t.TempDir(), config.Layer{})
	require.NoError(t, err)
	assert.Equal(t, []string{"cu", "cuh"}, cfg.Extensions)
	assert.Equal(t, []string{"build", "third_party"}, cfg.Ignore)
	assert.Equal(t, []string{"-std=c++17", "-Wall"}, cfg.ExtraArgs)
}

func TestResolve_Durations(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "tool_timeout: 90s\nrun_timeout: 10m\n")

	r := &config.Resolver{Env: noEnv}
	cfg, err := r.Resolve(root, config.Layer{})
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, cfg.ToolTimeout)
	assert.Equal(t, 10*time.Minute, cfg.RunTimeout)
}

func TestResolve_Errors(t *testing.T) {
	t.Run("malformed yaml", func(t *testing.T) {
		root := t.TempDir()
		writeProjectFile(t, root, "style: [unclosed\n")
		r := &config.Resolver{Env: noEnv}
		_, err := r.Resolve(root, config.Layer{})
		assertConfigError(t, err, config.FileName)
	})

	t.Run("unknown project file key", func(t *testing.T) {
		root := t.TempDir()
		writeProjectFile(t, root, "no_such_option: true\n")
		r := &config.Resolver{Env: noEnv}
		_, err := r.Resolve(root, config.Layer{})
		assertConfigError(t, err, config.FileName)
	})

	t.Run("bad env integer", func(t *testing.T) {
		r := &config.Resolver{Env: envFrom(map[string]string{"CXXLINT_JOBS": "many"})}
		_, err := r.Resolve(t.TempDir(), config.Layer{})
		assertConfigError(t, err, "CXXLINT_JOBS=many")
	})

	t.Run("bad env boolean", func(t *testing.T) {
		r := &config.Resolver{Env: envFrom(map[string]string{"CXXLINT_STEP_SUMMARY": "yep"})}
		_, err := r.Resolve(t.TempDir(), config.Layer{})
		assertConfigError(t, err, "CXXLINT_STEP_SUMMARY=yep")
	})

	t.Run("bad duration", func(t *testing.T) {
		r := &config.Resolver{Env: envFrom(map[string]string{"CXXLINT_RUN_TIMEOUT": "soon"})}
		_, err := r.Resolve(t.TempDir(), config.Layer{})
		assertConfigError(t, err, "soon")
	})

	t.Run("conflicting diff sources", func(t *testing.T) {
		r := &config.Resolver{Env: noEnv}
		_, err := r.Resolve(t.TempDir(), config.Layer{
			DiffFile: strPtr("changes.patch"),
			DiffBase: strPtr("origin/main"),
		})
		assertConfigError(t, err, "diff-file, diff-base")
	})
}

func writeProjectFile(t *testing.T, root, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(root, config.FileName), []byte(content), 0o644))
}

func assertConfigError(t *testing.T, err error, token string) {
	t.Helper()
	require.Error(t, err)
	var cfgErr *domain.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, token, cfgErr.Token)
}
