package domain

import (
	"fmt"
	"runtime"
	"strings"
	"time"
)

// LineFilter controls which part of a file's lines diagnostics are
// reported for.
type LineFilter string

const (
	// FilterNone reports on all lines.
	FilterNone LineFilter = "none"
	// FilterAdded reports only on lines added in the diff.
	FilterAdded LineFilter = "added"
	// FilterDiff reports on any line inside a diff hunk.
	FilterDiff LineFilter = "diff"
)

// CommentMode controls thread-comment feedback on the pull request.
type CommentMode string

const (
	CommentsOff    CommentMode = "off"
	CommentsCreate CommentMode = "create"
	CommentsUpdate CommentMode = "update"
)

// DefaultTidyChecks mirrors the glob list clang-tidy is invoked with
// when the user does not configure their own.
const DefaultTidyChecks = "boost-*,bugprone-*,performance-*,readability-*,portability-*,modernize-*,clang-analyzer-*,cppcoreguidelines-*"

// RunConfig is the resolved configuration for a single run. It is
// built once by the config resolver and never mutated afterward.
type RunConfig struct {
	RepoRoot    string
	Style       string
	TidyChecks  string
	Extensions  []string
	Ignore      []string
	ToolVersion string
	Database    string
	ExtraArgs   []string

	LinesChangedOnly LineFilter
	FilesChangedOnly bool
	DiffFile         string
	DiffBase         string

	Jobs          int
	ToolTimeout   time.Duration
	RunTimeout    time.Duration
	TimeoutsFatal bool

	FailOn      Severity
	MaxWarnings int

	JSONPath       string
	Annotations    bool
	ThreadComments CommentMode
	NoLGTM         bool
	StepSummary    bool

	Verbosity string
}

// DefaultConfig returns the built-in defaults, the lowest layer of the
// resolution precedence.
func DefaultConfig() RunConfig {
	return RunConfig{
		RepoRoot:         ".",
		Style:            "llvm",
		TidyChecks:       DefaultTidyChecks,
		Extensions:       []string{"c", "h", "C", "H", "cpp", "hpp", "cc", "hh", "c++", "h++", "cxx", "hxx"},
		Ignore:           []string{".github"},
		LinesChangedOnly: FilterNone,
		Jobs:             runtime.NumCPU(),
		ToolTimeout:      2 * time.Minute,
		FailOn:           SeverityError,
		MaxWarnings:      -1,
		ThreadComments:   CommentsOff,
		NoLGTM:           true,
		Annotations:      true,
		Verbosity:        "info",
	}
}

// StyleEnabled reports whether clang-format runs at all. An empty
// style disables it.
func (c RunConfig) StyleEnabled() bool { return c.Style != "" }

// TidyEnabled reports whether clang-tidy runs at all. The checks glob
// "-*" disables every check and therefore the tool.
func (c RunConfig) TidyEnabled() bool { return c.TidyChecks != "-*" }

// DiffScoped reports whether the run needs changed-line information.
func (c RunConfig) DiffScoped() bool {
	return c.LinesChangedOnly != FilterNone || c.FilesChangedOnly
}

// Validate checks enumerated values and mutually exclusive settings.
// It returns a *ConfigError naming the offending token.
func (c RunConfig) Validate() error {
	switch c.LinesChangedOnly {
	case FilterNone, FilterAdded, FilterDiff:
	default:
		return &ConfigError{Token: string(c.LinesChangedOnly), Reason: "lines-changed-only must be one of none, added, diff"}
	}
	switch c.FailOn {
	case SeverityError, SeverityWarning, SeverityInfo, "never":
	default:
		return &ConfigError{Token: string(c.FailOn), Reason: "fail-on must be one of error, warning, info, never"}
	}
	switch c.ThreadComments {
	case CommentsOff, CommentsCreate, CommentsUpdate:
	default:
		return &ConfigError{Token: string(c.ThreadComments), Reason: "thread-comments must be one of off, create, update"}
	}
	switch c.Verbosity {
	case "debug", "info":
	default:
		return &ConfigError{Token: c.Verbosity, Reason: "verbosity must be debug or info"}
	}
	if c.DiffFile != "" && c.DiffBase != "" {
		return &ConfigError{Token: "diff-file, diff-base", Reason: "diff-file and diff-base are mutually exclusive diff sources"}
	}
	if c.Jobs < 1 {
		return &ConfigError{Token: fmt.Sprintf("jobs=%d", c.Jobs), Reason: "jobs must be at least 1"}
	}
	if !c.StyleEnabled() && !c.TidyEnabled() {
		return &ConfigError{Token: "style, tidy-checks", Reason: "both clang-format and clang-tidy are disabled; nothing to run"}
	}
	if len(c.Extensions) == 0 {
		return &ConfigError{Token: "extensions", Reason: "at least one file extension is required"}
	}
	for _, ext := range c.Extensions {
		if strings.HasPrefix(ext, ".") {
			return &ConfigError{Token: ext, Reason: "extensions are specified without a leading dot"}
		}
	}
	return nil
}
