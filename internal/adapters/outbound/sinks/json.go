package sinks

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/cxxlint/cxxlint/internal/domain"
)

// JSONSink writes the full report as indented JSON to a file, or to the
// fallback writer when the configured path is "-".
type JSONSink struct {
	path   string
	stdout io.Writer
}

func NewJSON(path string, stdout io.Writer) *JSONSink {
	return &JSONSink{path: path, stdout: stdout}
}

func (s *JSONSink) Name() string { return "json" }

func (s *JSONSink) Write(report *domain.Report) error {
	out := s.stdout
	if s.path != "-" {
		f, err := os.Create(s.path)
		if err != nil {
			return fmt.Errorf("creating %s: %w", s.path, err)
		}
		defer f.Close()
		out = f
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return nil
}
