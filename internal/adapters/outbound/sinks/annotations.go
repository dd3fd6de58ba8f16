package sinks

import (
	"fmt"
	"io"
	"strings"

	"github.com/cxxlint/cxxlint/internal/domain"
)

// AnnotationSink emits GitHub Actions workflow commands, one per diagnostic,
// so findings surface inline on the pull request diff.
type AnnotationSink struct {
	out io.Writer
}

func NewAnnotations(out io.Writer) *AnnotationSink {
	return &AnnotationSink{out: out}
}

func (s *AnnotationSink) Name() string { return "annotations" }

func (s *AnnotationSink) Write(report *domain.Report) error {
	for _, d := range report.Diagnostics {
		title := d.Tool
		if d.Rule != "" {
			title += " [" + d.Rule + "]"
		}
		_, err := fmt.Fprintf(s.out, "::%s file=%s,line=%d,col=%d,title=%s::%s\n",
			annotationCommand(d.Severity),
			escapeProperty(d.File),
			d.Line,
			d.Col,
			escapeProperty(title),
			escapeData(d.Message),
		)
		if err != nil {
			return fmt.Errorf("writing annotation: %w", err)
		}
	}
	return nil
}

func annotationCommand(severity domain.Severity) string {
	switch severity {
	case domain.SeverityError:
		return "error"
	case domain.SeverityWarning:
		return "warning"
	default:
		return "notice"
	}
}

// Workflow commands require percent-escaping of their delimiters; see the
// GitHub Actions workflow command documentation.
func escapeData(s string) string {
	r := strings.NewReplacer("%", "%25", "\r", "%0D", "\n", "%0A")
	return r.Replace(s)
}

func escapeProperty(s string) string {
	r := strings.NewReplacer("%", "%25", "\r", "%0D", "\n", "%0A", ":", "%3A", ",", "%2C")
	return r.Replace(s)
}
