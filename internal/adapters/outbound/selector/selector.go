package selector

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/cxxlint/cxxlint/internal/domain"
)

// Selector implements domain.FileSelector by walking the working tree.
type Selector struct {
	log *log.Logger
}

// New creates a Selector.
func New(logger *log.Logger) *Selector {
	return &Selector{log: logger}
}

// Select walks cfg.RepoRoot and returns every file matching the
// configured extensions and ignore rules, in lexicographic order so
// repeated runs over unchanged input are reproducible. When the run is
// diff-scoped, files without changed lines are excluded even if they
// match the patterns. An empty result is a SelectionError.
func (s *Selector) Select(cfg domain.RunConfig, scope domain.DiffScope) ([]domain.FileTarget, error) {
	ignored, notIgnored := parseIgnore(cfg.Ignore)
	ignored = append(ignored, submodulePaths(cfg.RepoRoot, notIgnored)...)

	var paths []string
	err := filepath.WalkDir(cfg.RepoRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(cfg.RepoRoot, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			// Hidden directories are always skipped; negation does not
			// resurrect them.
			if rel != "." && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			if matchesAny(rel, ignored) && !matchesAny(rel, notIgnored) && !anyUnder(rel, notIgnored) {
				return filepath.SkipDir
			}
			return nil
		}

		if !hasExtension(d.Name(), cfg.Extensions) {
			return nil
		}
		if matchesAny(rel, ignored) && !matchesAny(rel, notIgnored) {
			s.log.Debug("ignoring file", "path", rel)
			return nil
		}
		paths = append(paths, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if cfg.DiffScoped() {
		paths = narrowToScope(paths, scope, cfg.LinesChangedOnly)
	}

	sort.Strings(paths)
	if len(paths) == 0 {
		return nil, &domain.SelectionError{Root: cfg.RepoRoot, Extensions: cfg.Extensions}
	}

	targets := make([]domain.FileTarget, len(paths))
	for i, p := range paths {
		targets[i] = domain.FileTarget{Path: p}
	}
	return targets, nil
}

// parseIgnore splits the configured ignore entries into ignored and
// explicitly not-ignored path prefixes. A "!" prefix negates an entry.
func parseIgnore(entries []string) (ignored, notIgnored []string) {
	for _, raw := range entries {
		entry := strings.TrimSpace(strings.ReplaceAll(raw, "\\", "/"))
		negated := strings.HasPrefix(entry, "!")
		entry = strings.TrimPrefix(entry, "!")
		entry = strings.TrimPrefix(entry, "./")
		entry = strings.TrimSuffix(entry, "/")
		if entry == "" {
			continue
		}
		if negated && !strings.HasPrefix(entry, ".") {
			notIgnored = append(notIgnored, entry)
		} else {
			ignored = append(ignored, entry)
		}
	}
	return ignored, notIgnored
}

// submodulePaths reads .gitmodules and returns the submodule paths not
// explicitly resurrected by a negated ignore entry. Submodules are
// foreign trees; their sources are never analyzed by default.
func submodulePaths(repoRoot string, notIgnored []string) []string {
	data, err := os.ReadFile(filepath.Join(repoRoot, ".gitmodules"))
	if err != nil {
		return nil
	}
	var paths []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "path") {
			continue
		}
		_, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		sub := strings.TrimSpace(value)
		if sub != "" && !matchesAny(sub, notIgnored) {
			paths = append(paths, sub)
		}
	}
	return paths
}

// matchesAny reports whether rel equals an entry or lives under an
// entry used as a directory prefix. Entries are literal paths, not
// globs.
func matchesAny(rel string, entries []string) bool {
	for _, entry := range entries {
		if rel == entry || strings.HasPrefix(rel, entry+"/") {
			return true
		}
	}
	return false
}

// anyUnder reports whether any entry lives inside the directory rel,
// meaning the walk must descend into rel even though it is ignored.
func anyUnder(rel string, entries []string) bool {
	for _, entry := range entries {
		if strings.HasPrefix(entry, rel+"/") {
			return true
		}
	}
	return false
}

func hasExtension(name string, extensions []string) bool {
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	if ext == "" {
		return false
	}
	for _, e := range extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// narrowToScope keeps only files with applicable changed lines. Mode
// none (files-changed-only without line filtering) accepts any file
// present in the diff.
func narrowToScope(paths []string, scope domain.DiffScope, mode domain.LineFilter) []string {
	var kept []string
	for _, p := range paths {
		changes, ok := scope[p]
		if !ok {
			continue
		}
		switch mode {
		case domain.FilterAdded:
			if len(changes.AddedLines) == 0 {
				continue
			}
		case domain.FilterDiff:
			if len(changes.Chunks) == 0 {
				continue
			}
		}
		kept = append(kept, p)
	}
	return kept
}
