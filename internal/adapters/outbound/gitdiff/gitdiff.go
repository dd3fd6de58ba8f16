package gitdiff

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/cxxlint/cxxlint/internal/domain"
)

// Provider implements domain.DiffProvider. The diff either comes from
// a unified-diff file (CI hands us the event diff) or is produced from
// the local repository via go-git.
type Provider struct {
	log *log.Logger
}

// New creates a Provider.
func New(logger *log.Logger) *Provider {
	return &Provider{log: logger}
}

// Changes returns the changed-line scope for the configured diff
// source.
func (p *Provider) Changes(cfg domain.RunConfig) (domain.DiffScope, error) {
	if cfg.DiffFile != "" {
		data, err := os.ReadFile(cfg.DiffFile)
		if err != nil {
			return nil, fmt.Errorf("reading diff file %s: %w", cfg.DiffFile, err)
		}
		return ParseUnifiedDiff(string(data)), nil
	}
	return p.repoChanges(cfg)
}

// repoChanges diffs the base revision (default HEAD~1) against HEAD.
func (p *Provider) repoChanges(cfg domain.RunConfig) (domain.DiffScope, error) {
	repo, err := git.PlainOpen(cfg.RepoRoot)
	if err != nil {
		return nil, fmt.Errorf("opening repository at %s: %w", cfg.RepoRoot, err)
	}

	base := cfg.DiffBase
	if base == "" {
		base = "HEAD~1"
	}
	baseHash, err := repo.ResolveRevision(plumbing.Revision(base))
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", base, err)
	}
	headHash, err := repo.ResolveRevision("HEAD")
	if err != nil {
		return nil, fmt.Errorf("resolving HEAD: %w", err)
	}

	baseCommit, err := repo.CommitObject(*baseHash)
	if err != nil {
		return nil, err
	}
	headCommit, err := repo.CommitObject(*headHash)
	if err != nil {
		return nil, err
	}

	patch, err := baseCommit.Patch(headCommit)
	if err != nil {
		return nil, fmt.Errorf("diffing %s..HEAD: %w", base, err)
	}

	p.log.Debug("computed repository diff", "base", base, "head", headHash.String())
	return ParseUnifiedDiff(patch.String()), nil
}

var hunkHeader = regexp.MustCompile(`^@@ -\d+(?:,\d+)? \+(\d+)(?:,(\d+))? @@`)

// ParseUnifiedDiff extracts per-file added lines and hunk ranges from
// unified diff text. Line numbers are absolute positions in the new
// file content. Binary entries and deletions produce no scope entry.
// Path filtering is the selector's job; every changed file is
// reported.
func ParseUnifiedDiff(text string) domain.DiffScope {
	scope := domain.DiffScope{}

	var (
		file    string
		added   []int
		chunks  []domain.LineRange
		newLine int
		inHunk  bool
	)
	flush := func() {
		if file != "" && len(chunks) > 0 {
			scope[file] = domain.NewFileChanges(added, chunks)
		}
		file, added, chunks, inHunk = "", nil, nil, false
	}

	for _, line := range strings.Split(text, "\n") {
		switch {
		case strings.HasPrefix(line, "diff --git "):
			flush()
		case strings.HasPrefix(line, "+++ "):
			name := strings.TrimPrefix(strings.TrimPrefix(line, "+++ "), "b/")
			if name == "/dev/null" {
				file = ""
			} else {
				file = strings.TrimSpace(name)
			}
			inHunk = false
		case hunkHeader.MatchString(line):
			m := hunkHeader.FindStringSubmatch(line)
			start, _ := strconv.Atoi(m[1])
			count := 1
			if m[2] != "" {
				count, _ = strconv.Atoi(m[2])
			}
			if count > 0 {
				chunks = append(chunks, domain.LineRange{First: start, Last: start + count - 1})
			}
			newLine = start
			inHunk = true
		case inHunk && strings.HasPrefix(line, "+"):
			added = append(added, newLine)
			newLine++
		case inHunk && strings.HasPrefix(line, "-"):
			// Removed line: occupies the old side only.
		case inHunk && strings.HasPrefix(line, "\\"):
			// "\ No newline at end of file" marker.
		case inHunk:
			newLine++
		}
	}
	flush()
	return scope
}
