package parser

import (
	"encoding/xml"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/cxxlint/cxxlint/internal/domain"
)

// replacementsXML mirrors clang-format's --output-replacements-xml document.
type replacementsXML struct {
	XMLName      xml.Name `xml:"replacements"`
	Replacements []struct {
		Offset int    `xml:"offset,attr"`
		Length int    `xml:"length,attr"`
		Text   string `xml:",chardata"`
	} `xml:"replacement"`
}

// FormatParser converts clang-format replacement documents into diagnostics.
// Byte offsets are resolved to line and column positions against the file
// content on disk, so the file must not change between run and parse.
type FormatParser struct {
	log  *log.Logger
	root string
}

func NewFormat(logger *log.Logger, root string) *FormatParser {
	return &FormatParser{log: logger, root: root}
}

func (p *FormatParser) Tool() string { return domain.ToolClangFormat }

func (p *FormatParser) Parse(raw domain.RawToolOutput) ([]domain.Diagnostic, domain.ParseResult) {
	var result domain.ParseResult
	if strings.TrimSpace(raw.Stdout) == "" {
		if raw.ExitCode != 0 {
			result.Unreliable = true
		}
		return nil, result
	}

	var doc replacementsXML
	if err := xml.Unmarshal([]byte(raw.Stdout), &doc); err != nil {
		p.log.Debug("malformed replacements document", "file", raw.File, "err", err)
		result.Unreliable = true
		return nil, result
	}
	if len(doc.Replacements) == 0 {
		return nil, result
	}

	content, err := os.ReadFile(filepath.Join(p.root, raw.File))
	if err != nil {
		p.log.Debug("cannot resolve replacement offsets", "file", raw.File, "err", err)
		result.Unreliable = true
		return nil, result
	}

	diags := make([]domain.Diagnostic, 0, len(doc.Replacements))
	for _, rep := range doc.Replacements {
		if rep.Offset < 0 || rep.Offset > len(content) {
			result.Warnings++
			continue
		}
		line, col := positionAt(content, rep.Offset)
		diags = append(diags, domain.Diagnostic{
			File:     raw.File,
			Line:     line,
			Col:      col,
			Severity: domain.SeverityWarning,
			Tool:     domain.ToolClangFormat,
			Rule:     "format",
			Message:  "formatting does not match the configured style",
			Replacement: &domain.Replacement{
				Offset: rep.Offset,
				Length: rep.Length,
				Text:   rep.Text,
			},
		})
	}
	return diags, result
}

// positionAt converts a byte offset into a 1-based line and column pair.
func positionAt(content []byte, offset int) (line, col int) {
	line, col = 1, 1
	for _, b := range content[:offset] {
		if b == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}
