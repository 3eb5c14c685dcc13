package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/sokinpui/hyfix/model"
)

var (
	HeaderColor  = color.New(color.FgBlue, color.Bold)
	InfoColor    = color.New(color.FgCyan)
	SuccessColor = color.New(color.FgGreen)
	WarningColor = color.New(color.FgYellow)
	ErrorColor   = color.New(color.FgRed)
	PathColor    = color.New(color.FgYellow)
	FaintColor   = color.New(color.Faint)

	diffHeaderColor = color.New(color.Bold)
	diffHunkColor   = color.New(color.FgCyan)
	diffAddColor    = color.New(color.FgGreen)
	diffDelColor    = color.New(color.FgRed)
)

// Printer writes user-facing messages to one writer. Each App owns its own
// Printer so concurrent runs never share output.
type Printer struct {
	w io.Writer
}

// New returns a Printer writing to w.
func New(w io.Writer) *Printer {
	if w == nil {
		w = io.Discard
	}
	return &Printer{w: w}
}

// Writer returns the destination of p.
func (p *Printer) Writer() io.Writer {
	return p.w
}

// std goes to stderr so stdout carries only the diff and test output.
var std = New(os.Stderr)

// SetOutput redirects the package-level helpers. It returns the previous writer.
func SetOutput(w io.Writer) io.Writer {
	prev := std.w
	std = New(w)
	return prev
}

// DisableColor turns off colors for everything printed by this package.
func DisableColor() {
	color.NoColor = true
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (p *Printer) Header(format string, a ...interface{}) {
	HeaderColor.Fprintf(p.w, format+"\n", a...)
}

func (p *Printer) Info(format string, a ...interface{}) {
	InfoColor.Fprintf(p.w, format+"\n", a...)
}

func (p *Printer) Success(format string, a ...interface{}) {
	SuccessColor.Fprintf(p.w, format+"\n", a...)
}

func (p *Printer) Warning(format string, a ...interface{}) {
	WarningColor.Fprintf(p.w, format+"\n", a...)
}

func (p *Printer) Error(format string, a ...interface{}) {
	ErrorColor.Fprintf(p.w, format+"\n", a...)
}

func (p *Printer) Path(format string, a ...interface{}) {
	PathColor.Fprintf(p.w, "  "+format+"\n", a...)
}

func Header(format string, a ...interface{})  { std.Header(format, a...) }
func Info(format string, a ...interface{})    { std.Info(format, a...) }
func Success(format string, a ...interface{}) { std.Success(format, a...) }
func Warning(format string, a ...interface{}) { std.Warning(format, a...) }
func Error(format string, a ...interface{})   { std.Error(format, a...) }
func Path(format string, a ...interface{})    { std.Path(format, a...) }

// PrintDiff writes a unified diff to w, coloring it when colorize is set.
func PrintDiff(w io.Writer, text string, colorize bool) {
	if !colorize {
		fmt.Fprint(w, text)
		return
	}
	for _, line := range strings.SplitAfter(text, "\n") {
		if line == "" {
			continue
		}
		switch {
		case strings.HasPrefix(line, "---"), strings.HasPrefix(line, "+++"):
			diffHeaderColor.Fprint(w, line)
		case strings.HasPrefix(line, "@@"):
			diffHunkColor.Fprint(w, line)
		case strings.HasPrefix(line, "+"):
			diffAddColor.Fprint(w, line)
		case strings.HasPrefix(line, "-"):
			diffDelColor.Fprint(w, line)
		default:
			fmt.Fprint(w, line)
		}
	}
}

// PrintTestOutput echoes the captured output of the test runner to w.
func (p *Printer) PrintTestOutput(w io.Writer, output string) {
	if strings.TrimSpace(output) == "" {
		return
	}
	p.Header("\nTest Results:")
	fmt.Fprint(w, output)
	if !strings.HasSuffix(output, "\n") {
		fmt.Fprintln(w)
	}
}

// --- Summary ---

func PrintSummary(s model.Summary) { std.PrintSummary(s) }

func (p *Printer) PrintSummary(s model.Summary) {
	p.Header("\n--- Summary ---")
	p.Path("target: %s", s.TargetPath)
	if s.Source != "" {
		p.Path("source: %s", s.Source)
	}

	switch s.Patch {
	case model.PatchApplied:
		p.Success("Patch applied: yes (+%d -%d lines)", s.Added, s.Removed)
	case model.PatchUnchanged:
		p.Info("Patch applied: no (no changes needed)")
	case model.PatchPreviewed:
		p.Info("Patch applied: no (diff only, +%d -%d lines)", s.Added, s.Removed)
	default:
		p.Error("Patch applied: no")
	}
	if s.BackupPath != "" {
		p.Path("backup: %s", s.BackupPath)
	}

	if s.Patch == model.PatchPreviewed {
		return
	}
	switch s.Verify {
	case model.VerifyPassed:
		p.Success("Tests passed: yes (%s)", s.TestDuration.Round(time.Millisecond))
	case model.VerifyFailed:
		p.Warning("Tests passed: no (exit code %d). The fix might not be working correctly.", s.TestExitCode)
	default:
		p.Warning("Tests passed: skipped")
	}
	for _, w := range s.Warnings {
		FaintColor.Fprintf(p.w, "  - %s\n", w)
	}
}
