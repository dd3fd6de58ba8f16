package cli

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/cxxlint/cxxlint/internal/adapters/outbound/config"
	"github.com/cxxlint/cxxlint/internal/adapters/outbound/gitdiff"
	"github.com/cxxlint/cxxlint/internal/adapters/outbound/gitinfo"
	"github.com/cxxlint/cxxlint/internal/adapters/outbound/parser"
	"github.com/cxxlint/cxxlint/internal/adapters/outbound/selector"
	"github.com/cxxlint/cxxlint/internal/adapters/outbound/sinks"
	"github.com/cxxlint/cxxlint/internal/adapters/outbound/toolrunner"
	"github.com/cxxlint/cxxlint/internal/adapters/outbound/tui"
	"github.com/cxxlint/cxxlint/internal/application"
	"github.com/cxxlint/cxxlint/internal/domain"
)

func newCheckCmd() *cobra.Command {
	var flags checkFlags

	cmd := &cobra.Command{
		Use:   "check [path]",
		Short: "Lint the tree and report",
		Long:  "Run the enabled clang tools over the selected files, correlate findings with the diff when asked to, and deliver the report to every configured destination.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) > 0 {
				path = args[0]
			}
			repoRoot, err := filepath.Abs(path)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			cfg, err := config.New().Resolve(repoRoot, flags.layer(cmd))
			if err != nil {
				return err
			}

			logger := newLogger(cfg.Verbosity)
			svc := buildService(cmd, cfg, logger)

			report, err := svc.Run(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), tui.RenderReport(report))
			if code := report.ExitCode(cfg); code != domain.ExitPass {
				return &exitError{code: code}
			}
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

// checkFlags holds every CLI override. Only flags the user actually set
// make it into the overlay, so unset flags never mask the environment
// or the project file.
type checkFlags struct {
	style            string
	tidyChecks       string
	extensions       []string
	ignore           []string
	toolVersion      string
	database         string
	extraArgs        []string
	linesChangedOnly string
	filesChangedOnly bool
	diffFile         string
	diffBase         string
	jobs             int
	toolTimeout      string
	runTimeout       string
	timeoutsFatal    bool
	failOn           string
	maxWarnings      int
	jsonPath         string
	annotations      bool
	threadComments   string
	noLGTM           bool
	stepSummary      bool
	verbosity        string
}

func (f *checkFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.style, "style", "", "clang-format style (llvm, google, file, ...); empty disables formatting checks")
	fs.StringVar(&f.tidyChecks, "tidy-checks", "", "clang-tidy checks glob list; \"-*\" disables clang-tidy")
	fs.StringSliceVar(&f.extensions, "extensions", nil, "file extensions to analyze, without dots")
	fs.StringSliceVar(&f.ignore, "ignore", nil, "paths to skip; prefix with ! to re-include")
	fs.StringVar(&f.toolVersion, "tool-version", "", "tool version suffix or install directory")
	fs.StringVar(&f.database, "database", "", "path to the compile_commands.json directory")
	fs.StringArrayVar(&f.extraArgs, "extra-arg", nil, "extra compiler argument for clang-tidy (repeatable)")
	fs.StringVar(&f.linesChangedOnly, "lines-changed-only", "", "restrict findings to changed lines: none, added, or diff")
	fs.BoolVar(&f.filesChangedOnly, "files-changed-only", false, "analyze only files touched by the diff")
	fs.StringVar(&f.diffFile, "diff-file", "", "read the unified diff from a file instead of git")
	fs.StringVar(&f.diffBase, "diff-base", "", "git revision to diff HEAD against")
	fs.IntVar(&f.jobs, "jobs", 0, "maximum concurrent tool invocations")
	fs.StringVar(&f.toolTimeout, "tool-timeout", "", "per-file tool timeout (e.g. 90s)")
	fs.StringVar(&f.runTimeout, "run-timeout", "", "whole-run timeout (e.g. 10m)")
	fs.BoolVar(&f.timeoutsFatal, "timeouts-fatal", false, "treat per-file timeouts as a failure")
	fs.StringVar(&f.failOn, "fail-on", "", "minimum severity that fails the run: error, warning, info, or never")
	fs.IntVar(&f.maxWarnings, "max-warnings", -1, "fail when warnings exceed this count; -1 disables")
	fs.StringVar(&f.jsonPath, "json", "", "write the report as JSON to this path (\"-\" for stdout)")
	fs.BoolVar(&f.annotations, "annotations", true, "emit CI annotations when running in GitHub Actions")
	fs.StringVar(&f.threadComments, "thread-comments", "", "pull request comment mode: off, create, or update")
	fs.BoolVar(&f.noLGTM, "no-lgtm", true, "delete the thread comment instead of posting one when clean")
	fs.BoolVar(&f.stepSummary, "step-summary", false, "append the report to the GitHub job summary")
	fs.StringVarP(&f.verbosity, "verbosity", "v", "", "log level: debug or info")
}

// layer converts the explicitly set flags into a configuration overlay.
func (f *checkFlags) layer(cmd *cobra.Command) config.Layer {
	var layer config.Layer
	set := cmd.Flags().Changed

	strIf := func(name string, dst **string, v *string) {
		if set(name) {
			*dst = v
		}
	}
	strIf("style", &layer.Style, &f.style)
	strIf("tidy-checks", &layer.TidyChecks, &f.tidyChecks)
	strIf("tool-version", &layer.ToolVersion, &f.toolVersion)
	strIf("database", &layer.Database, &f.database)
	strIf("lines-changed-only", &layer.LinesChangedOnly, &f.linesChangedOnly)
	strIf("diff-file", &layer.DiffFile, &f.diffFile)
	strIf("diff-base", &layer.DiffBase, &f.diffBase)
	strIf("tool-timeout", &layer.ToolTimeout, &f.toolTimeout)
	strIf("run-timeout", &layer.RunTimeout, &f.runTimeout)
	strIf("fail-on", &layer.FailOn, &f.failOn)
	strIf("json", &layer.JSONPath, &f.jsonPath)
	strIf("thread-comments", &layer.ThreadComments, &f.threadComments)
	strIf("verbosity", &layer.Verbosity, &f.verbosity)

	boolIf := func(name string, dst **bool, v *bool) {
		if set(name) {
			*dst = v
		}
	}
	boolIf("files-changed-only", &layer.FilesChangedOnly, &f.filesChangedOnly)
	boolIf("timeouts-fatal", &layer.TimeoutsFatal, &f.timeoutsFatal)
	boolIf("annotations", &layer.Annotations, &f.annotations)
	boolIf("no-lgtm", &layer.NoLGTM, &f.noLGTM)
	boolIf("step-summary", &layer.StepSummary, &f.stepSummary)

	if set("extensions") {
		layer.Extensions = f.extensions
	}
	if set("ignore") {
		layer.Ignore = f.ignore
	}
	if set("extra-arg") {
		layer.ExtraArgs = f.extraArgs
	}
	if set("jobs") {
		layer.Jobs = &f.jobs
	}
	if set("max-warnings") {
		layer.MaxWarnings = &f.maxWarnings
	}
	return layer
}

func newLogger(verbosity string) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: false})
	if verbosity == "debug" {
		logger.SetLevel(log.DebugLevel)
	} else {
		logger.SetLevel(log.InfoLevel)
	}
	return logger
}

func buildService(cmd *cobra.Command, cfg domain.RunConfig, logger *log.Logger) *application.LintService {
	return application.NewLintService(
		selector.New(logger),
		gitdiff.New(logger),
		toolrunner.New(logger),
		[]domain.OutputParser{
			parser.NewTidy(logger),
			parser.NewFormat(logger, cfg.RepoRoot),
		},
		gitinfo.New(),
		buildSinks(cmd, cfg, logger),
		logger,
	)
}

// buildSinks assembles the delivery targets for this run. The CI-only
// sinks activate from their environment so local runs stay quiet.
func buildSinks(cmd *cobra.Command, cfg domain.RunConfig, logger *log.Logger) []domain.Sink {
	var out []domain.Sink

	if cfg.JSONPath != "" {
		out = append(out, sinks.NewJSON(cfg.JSONPath, cmd.OutOrStdout()))
	}
	if cfg.Annotations && os.Getenv("GITHUB_ACTIONS") == "true" {
		out = append(out, sinks.NewAnnotations(cmd.OutOrStdout()))
	}
	if cfg.StepSummary {
		out = append(out, sinks.NewStepSummary(nil))
	}
	if cfg.ThreadComments != domain.CommentsOff {
		if opts, ok := commentOptions(cfg); ok {
			out = append(out, sinks.NewComments(http.DefaultClient, opts, logger))
		} else {
			logger.Warn("thread comments requested but the GitHub context is incomplete")
		}
	}
	return out
}

// commentOptions assembles the pull request coordinates from the
// standard GitHub Actions environment.
func commentOptions(cfg domain.RunConfig) (sinks.CommentOptions, bool) {
	repo := os.Getenv("GITHUB_REPOSITORY")
	token := os.Getenv("GITHUB_TOKEN")
	issue := prNumberFromRef(os.Getenv("GITHUB_REF"))
	if repo == "" || token == "" || issue == 0 {
		return sinks.CommentOptions{}, false
	}

	base := os.Getenv("GITHUB_API_URL")
	if base == "" {
		base = "https://api.github.com"
	}
	return sinks.CommentOptions{
		BaseURL: base,
		Repo:    repo,
		Token:   token,
		Issue:   issue,
		Mode:    cfg.ThreadComments,
		NoLGTM:  cfg.NoLGTM,
	}, true
}

// prNumberFromRef extracts N from "refs/pull/N/merge".
func prNumberFromRef(ref string) int {
	parts := strings.Split(ref, "/")
	if len(parts) < 3 || parts[0] != "refs" || parts[1] != "pull" {
		return 0
	}
	n, err := strconv.Atoi(parts[2])
	if err != nil {
		return 0
	}
	return n
}
