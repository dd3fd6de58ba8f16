package toolrunner

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/cxxlint/cxxlint/internal/domain"
)

// resolveTool locates the executable for a tool, honoring the version hint.
// A hint that names a directory points at an installation prefix; a bare
// number selects the suffixed binary ("clang-tidy-18") with fallback to the
// unsuffixed name.
func resolveTool(tool, hint string) (string, error) {
	if hint != "" {
		if info, err := os.Stat(hint); err == nil && info.IsDir() {
			path := filepath.Join(hint, tool)
			if resolved, err := exec.LookPath(path); err == nil {
				return resolved, nil
			}
			return "", &domain.ToolUnavailableError{Tool: tool, Reason: "not found under " + hint}
		}
		major := strings.SplitN(hint, ".", 2)[0]
		if resolved, err := exec.LookPath(tool + "-" + major); err == nil {
			return resolved, nil
		}
	}
	resolved, err := exec.LookPath(tool)
	if err != nil {
		return "", &domain.ToolUnavailableError{Tool: tool, Reason: "not found in PATH"}
	}
	return resolved, nil
}

// Probe resolves every enabled tool and confirms it executes, so that a
// misconfigured environment fails before any per-file work starts.
func (r *Runner) Probe(ctx context.Context, cfg domain.RunConfig) error {
	probe := func(tool string) (string, error) {
		path, err := resolveTool(tool, cfg.ToolVersion)
		if err != nil {
			return "", err
		}
		if err := exec.CommandContext(ctx, path, "--version").Run(); err != nil {
			return "", &domain.ToolUnavailableError{Tool: tool, Reason: "failed to execute: " + err.Error()}
		}
		return path, nil
	}

	if cfg.StyleEnabled() {
		path, err := probe(domain.ToolClangFormat)
		if err != nil {
			return err
		}
		r.formatPath = path
		r.log.Debug("resolved tool", "tool", domain.ToolClangFormat, "path", path)
	}
	if cfg.TidyEnabled() {
		path, err := probe(domain.ToolClangTidy)
		if err != nil {
			return err
		}
		r.tidyPath = path
		r.log.Debug("resolved tool", "tool", domain.ToolClangTidy, "path", path)
	}
	return nil
}
