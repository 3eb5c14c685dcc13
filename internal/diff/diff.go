// Package diff renders unified diffs between the installed file and its
// replacement.
package diff

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// ContextLines is the number of unchanged lines shown around each change.
const ContextLines = 3

const noNewlineMarker = "\\ No newline at end of file\n"

// Stats counts changed lines.
type Stats struct {
	Added   int
	Removed int
}

// Result is a rendered diff. Text is empty when the inputs are identical.
type Result struct {
	Text  string
	Stats Stats
}

// Empty reports whether there is nothing to change.
func (r Result) Empty() bool {
	return r.Text == ""
}

// Lines splits the rendered diff into lines without their line endings.
func (r Result) Lines() []string {
	if r.Text == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(r.Text, "\n"), "\n")
}

// Compute renders a unified diff of original against replacement, labelling
// the two sides fromName and toName.
func Compute(original, replacement, fromName, toName string) (Result, error) {
	if original == replacement {
		return Result{}, nil
	}

	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        splitLines(original),
		B:        splitLines(replacement),
		FromFile: fromName,
		ToFile:   toName,
		Context:  ContextLines,
	})
	if err != nil {
		return Result{}, err
	}
	return Result{Text: text, Stats: LineStats(original, replacement)}, nil
}

// LineStats counts lines added and removed between a and b.
func LineStats(a, b string) Stats {
	dmp := diffmatchpatch.New()
	runesA, runesB, lines := dmp.DiffLinesToRunes(a, b)
	diffs := dmp.DiffCharsToLines(dmp.DiffMainRunes(runesA, runesB, false), lines)

	var stats Stats
	for _, d := range diffs {
		n := countLines(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			stats.Added += n
		case diffmatchpatch.DiffDelete:
			stats.Removed += n
		}
	}
	return stats
}

func countLines(s string) int {
	if s == "" {
		return 0
	}
	n := strings.Count(s, "\n")
	if !strings.HasSuffix(s, "\n") {
		n++
	}
	return n
}

// splitLines keeps line endings. A final line without one gets the
// conventional "\ No newline at end of file" marker so that it never
// compares equal to the same text with a newline.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	last := len(lines) - 1
	if lines[last] == "" {
		return lines[:last]
	}
	lines[last] += "\n" + noNewlineMarker
	return lines
}
