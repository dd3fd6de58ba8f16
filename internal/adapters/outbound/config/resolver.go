package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cxxlint/cxxlint/internal/domain"
	"gopkg.in/yaml.v3"
)

// FileName is the optional project configuration file, looked up in
// the repo root.
const FileName = ".cxxlint.yaml"

// EnvPrefix namespaces the environment variables the resolver reads.
const EnvPrefix = "CXXLINT_"

// Layer is one overlay of configuration. Nil fields leave the lower
// layer untouched. The same shape serves the project file (via yaml
// tags), the environment, and explicit CLI flags.
type Layer struct {
	Style            *string  `yaml:"style"`
	TidyChecks       *string  `yaml:"tidy_checks"`
	Extensions       []string `yaml:"extensions"`
	Ignore           []string `yaml:"ignore"`
	ToolVersion      *string  `yaml:"tool_version"`
	Database         *string  `yaml:"database"`
	ExtraArgs        []string `yaml:"extra_args"`
	LinesChangedOnly *string  `yaml:"lines_changed_only"`
	FilesChangedOnly *bool    `yaml:"files_changed_only"`
	DiffFile         *string  `yaml:"diff_file"`
	DiffBase         *string  `yaml:"diff_base"`
	Jobs             *int     `yaml:"jobs"`
	ToolTimeout      *string  `yaml:"tool_timeout"`
	RunTimeout       *string  `yaml:"run_timeout"`
	TimeoutsFatal    *bool    `yaml:"timeouts_fatal"`
	FailOn           *string  `yaml:"fail_on"`
	MaxWarnings      *int     `yaml:"max_warnings"`
	JSONPath         *string  `yaml:"json_path"`
	Annotations      *bool    `yaml:"annotations"`
	ThreadComments   *string  `yaml:"thread_comments"`
	NoLGTM           *bool    `yaml:"no_lgtm"`
	StepSummary      *bool    `yaml:"step_summary"`
	Verbosity        *string  `yaml:"verbosity"`
}

// Resolver builds an immutable RunConfig from the three configuration
// sources. Precedence, highest first: CLI flags > environment >
// project file > built-in default.
type Resolver struct {
	// Env reads an environment variable; defaults to os.Getenv.
	// Injectable for tests.
	Env func(string) string
}

// New creates a Resolver backed by the process environment.
func New() *Resolver {
	return &Resolver{Env: os.Getenv}
}

// Resolve merges defaults, the optional project file, the environment,
// and the explicit CLI overrides into a validated RunConfig.
// Resolution has no side effects and is idempotent: the same inputs
// always produce an identical configuration.
func (r *Resolver) Resolve(repoRoot string, flags Layer) (domain.RunConfig, error) {
	cfg := domain.DefaultConfig()
	cfg.RepoRoot = repoRoot

	fileLayer, err := r.loadFile(repoRoot)
	if err != nil {
		return domain.RunConfig{}, err
	}
	envLayer, err := r.envLayer()
	if err != nil {
		return domain.RunConfig{}, err
	}

	for _, layer := range []*Layer{fileLayer, envLayer, &flags} {
		if layer == nil {
			continue
		}
		if err := layer.apply(&cfg); err != nil {
			return domain.RunConfig{}, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return domain.RunConfig{}, err
	}
	return cfg, nil
}

// loadFile reads .cxxlint.yaml from the repo root. A missing file is
// not an error.
func (r *Resolver) loadFile(repoRoot string) (*Layer, error) {
	data, err := os.ReadFile(filepath.Join(repoRoot, FileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, &domain.ConfigError{Token: FileName, Reason: err.Error()}
	}

	var layer Layer
	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)
	if err := dec.Decode(&layer); err != nil {
		return nil, &domain.ConfigError{Token: FileName, Reason: fmt.Sprintf("parsing: %v", err)}
	}
	return &layer, nil
}

// envLayer builds an overlay from CXXLINT_* variables. List values use
// the same separators as the CLI: commas for extensions and extra
// args, "|" for ignore entries.
func (r *Resolver) envLayer() (*Layer, error) {
	layer := &Layer{}

	str := func(key string, dst **string) {
		if v := r.Env(EnvPrefix + key); v != "" {
			*dst = &v
		}
	}
	str("STYLE", &layer.Style)
	str("TIDY_CHECKS", &layer.TidyChecks)
	str("TOOL_VERSION", &layer.ToolVersion)
	str("DATABASE", &layer.Database)
	str("LINES_CHANGED_ONLY", &layer.LinesChangedOnly)
	str("DIFF_FILE", &layer.DiffFile)
	str("DIFF_BASE", &layer.DiffBase)
	str("TOOL_TIMEOUT", &layer.ToolTimeout)
	str("RUN_TIMEOUT", &layer.RunTimeout)
	str("FAIL_ON", &layer.FailOn)
	str("JSON", &layer.JSONPath)
	str("THREAD_COMMENTS", &layer.ThreadComments)
	str("VERBOSITY", &layer.Verbosity)

	if v := r.Env(EnvPrefix + "EXTENSIONS"); v != "" {
		layer.Extensions = splitList(v, ",")
	}
	if v := r.Env(EnvPrefix + "IGNORE"); v != "" {
		layer.Ignore = splitList(v, "|")
	}
	if v := r.Env(EnvPrefix + "EXTRA_ARGS"); v != "" {
		layer.ExtraArgs = splitList(v, ",")
	}

	for key, dst := range map[string]**int{
		"JOBS":         &layer.Jobs,
		"MAX_WARNINGS": &layer.MaxWarnings,
	} {
		v := r.Env(EnvPrefix + key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, &domain.ConfigError{Token: EnvPrefix + key + "=" + v, Reason: "not an integer"}
		}
		*dst = &n
	}

	for key, dst := range map[string]**bool{
		"FILES_CHANGED_ONLY": &layer.FilesChangedOnly,
		"TIMEOUTS_FATAL":     &layer.TimeoutsFatal,
		"ANNOTATIONS":        &layer.Annotations,
		"NO_LGTM":            &layer.NoLGTM,
		"STEP_SUMMARY":       &layer.StepSummary,
	} {
		v := r.Env(EnvPrefix + key)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, &domain.ConfigError{Token: EnvPrefix + key + "=" + v, Reason: "not a boolean"}
		}
		*dst = &b
	}

	return layer, nil
}

// apply overlays the non-nil fields onto cfg.
func (l *Layer) apply(cfg *domain.RunConfig) error {
	setStr := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	setStr(&cfg.Style, l.Style)
	setStr(&cfg.TidyChecks, l.TidyChecks)
	setStr(&cfg.ToolVersion, l.ToolVersion)
	setStr(&cfg.Database, l.Database)
	setStr(&cfg.DiffFile, l.DiffFile)
	setStr(&cfg.DiffBase, l.DiffBase)
	setStr(&cfg.JSONPath, l.JSONPath)
	setStr(&cfg.Verbosity, l.Verbosity)

	if l.LinesChangedOnly != nil {
		cfg.LinesChangedOnly = domain.LineFilter(*l.LinesChangedOnly)
	}
	if l.FailOn != nil {
		cfg.FailOn = domain.Severity(*l.FailOn)
	}
	if l.ThreadComments != nil {
		cfg.ThreadComments = domain.CommentMode(*l.ThreadComments)
	}

	if len(l.Extensions) > 0 {
		cfg.Extensions = l.Extensions
	}
	if len(l.Ignore) > 0 {
		cfg.Ignore = l.Ignore
	}
	if len(l.ExtraArgs) > 0 {
		cfg.ExtraArgs = l.ExtraArgs
	}

	if l.FilesChangedOnly != nil {
		cfg.FilesChangedOnly = *l.FilesChangedOnly
	}
	if l.TimeoutsFatal != nil {
		cfg.TimeoutsFatal = *l.TimeoutsFatal
	}
	if l.Annotations != nil {
		cfg.Annotations = *l.Annotations
	}
	if l.NoLGTM != nil {
		cfg.NoLGTM = *l.NoLGTM
	}
	if l.StepSummary != nil {
		cfg.StepSummary = *l.StepSummary
	}
	if l.Jobs != nil {
		cfg.Jobs = *l.Jobs
	}
	if l.MaxWarnings != nil {
		cfg.MaxWarnings = *l.MaxWarnings
	}

	for field, src := range map[*time.Duration]*string{
		&cfg.ToolTimeout: l.ToolTimeout,
		&cfg.RunTimeout:  l.RunTimeout,
	} {
		if src == nil {
			continue
		}
		d, err := time.ParseDuration(*src)
		if err != nil {
			return &domain.ConfigError{Token: *src, Reason: "not a duration (use forms like 90s or 5m)"}
		}
		*field = d
	}
	return nil
}

func splitList(v, sep string) []string {
	parts := strings.Split(v, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
