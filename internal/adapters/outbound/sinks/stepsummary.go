package sinks

import (
	"fmt"
	"os"

	"github.com/cxxlint/cxxlint/internal/domain"
)

// SummaryEnv names the file GitHub Actions collects job summaries from.
const SummaryEnv = "GITHUB_STEP_SUMMARY"

// StepSummarySink appends the markdown report to the job summary file.
// Appending matters: other steps share the same file.
type StepSummarySink struct {
	env func(string) string
}

func NewStepSummary(env func(string) string) *StepSummarySink {
	if env == nil {
		env = os.Getenv
	}
	return &StepSummarySink{env: env}
}

func (s *StepSummarySink) Name() string { return "step-summary" }

func (s *StepSummarySink) Write(report *domain.Report) error {
	path := s.env(SummaryEnv)
	if path == "" {
		return fmt.Errorf("%s is not set", SummaryEnv)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening step summary: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(markdownReport(report) + "\n"); err != nil {
		return fmt.Errorf("appending step summary: %w", err)
	}
	return nil
}
