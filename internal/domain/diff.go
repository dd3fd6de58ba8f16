package domain

// LineRange is an inclusive range of 1-based line numbers.
type LineRange struct {
	First int `json:"first"`
	Last  int `json:"last"`
}

// Contains reports whether n falls inside the range.
func (r LineRange) Contains(n int) bool { return n >= r.First && n <= r.Last }

// FileChanges holds the changed-line information for one file as
// produced from a source-control diff. AddedLines are individual line
// numbers with additions; AddedRanges is the same set consolidated
// into consecutive runs; Chunks spans whole diff hunks including
// context lines.
type FileChanges struct {
	AddedLines  []int       `json:"added_lines"`
	AddedRanges []LineRange `json:"added_ranges"`
	Chunks      []LineRange `json:"chunks"`
}

// NewFileChanges builds a FileChanges, consolidating the added line
// numbers into ranges. The added slice must be sorted ascending.
func NewFileChanges(added []int, chunks []LineRange) *FileChanges {
	return &FileChanges{
		AddedLines:  added,
		AddedRanges: ConsolidateRanges(added),
		Chunks:      chunks,
	}
}

// ConsolidateRanges groups sorted line numbers into inclusive ranges
// of consecutive runs.
func ConsolidateRanges(lines []int) []LineRange {
	var ranges []LineRange
	for i, n := range lines {
		if i == 0 || n != lines[i-1]+1 {
			ranges = append(ranges, LineRange{First: n, Last: n})
			continue
		}
		ranges[len(ranges)-1].Last = n
	}
	return ranges
}

// RangesFor returns the line ranges relevant to the given filter mode.
// FilterNone has no ranges; callers treat nil as "all lines".
func (c *FileChanges) RangesFor(mode LineFilter) []LineRange {
	switch mode {
	case FilterAdded:
		return c.AddedRanges
	case FilterDiff:
		return c.Chunks
	default:
		return nil
	}
}

// DiffScope maps slash-separated file paths to their changed lines.
// It is produced externally and consumed read-only.
type DiffScope map[string]*FileChanges

// Covers reports whether the given absolute line of file is inside
// the scope for the filter mode. With FilterNone every line is
// covered.
func (s DiffScope) Covers(file string, line int, mode LineFilter) bool {
	if mode == FilterNone {
		return true
	}
	changes, ok := s[file]
	if !ok {
		return false
	}
	for _, r := range changes.RangesFor(mode) {
		if r.Contains(line) {
			return true
		}
	}
	return false
}

// ApplyDiffScope drops diagnostics on lines outside the scope. It
// returns the kept diagnostics and the number dropped; the dropped
// count feeds the report's total-detected statistic. With FilterNone
// the input is returned unchanged.
func ApplyDiffScope(diags []Diagnostic, scope DiffScope, mode LineFilter) ([]Diagnostic, int) {
	if mode == FilterNone {
		return diags, 0
	}
	kept := make([]Diagnostic, 0, len(diags))
	for _, d := range diags {
		if scope.Covers(d.File, d.Line, mode) {
			kept = append(kept, d)
		}
	}
	return kept, len(diags) - len(kept)
}
