// Package diag implements the diagnostic type and renderer: a growing
// list of (reason, optional marked range) pairs, rendered with a
// file:line:column prefix, the offending source lines, and a caret
// underline.
package diag

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/tola-lang/tola/pkg/util/source"
)

// Diagnostic is a single compiler-reported problem. File/Span are only
// meaningful when HasSpan is true; a diagnostic without a source range
// renders as a single "error: <reason>" line.
type Diagnostic struct {
	Reason  string
	File    *source.File
	Span    source.Span
	HasSpan bool
}

// New creates a diagnostic anchored at a source span.
func New(file *source.File, span source.Span, reason string) Diagnostic {
	return Diagnostic{Reason: reason, File: file, Span: span, HasSpan: true}
}

// NewUnanchored creates a diagnostic with no source range, e.g. for a
// driver-level file read failure.
func NewUnanchored(reason string) Diagnostic {
	return Diagnostic{Reason: reason}
}

// ANSI colour codes used by the renderer when colour is enabled.
const (
	colorReset = "\x1b[0m"
	colorBold  = "\x1b[1m"
	colorRed   = "\x1b[91m"
	colorGrey  = "\x1b[90m"
)

// gridPos is a zero-based (line, column) grid position, computed on
// demand from a byte offset into the source.
type gridPos struct {
	line, column int
}

// computeGridPos scans file contents once, counting '\n' as line breaks;
// column resets at a line break and otherwise increments per rune.
func computeGridPos(contents []rune, offset int) gridPos {
	line, col := 0, 0

	for i := 0; i < offset && i < len(contents); i++ {
		if contents[i] == '\n' {
			line++
			col = 0
		} else {
			col++
		}
	}

	return gridPos{line, col}
}

// Render renders d: for an anchored diagnostic,
// `<file>:<line>:<column>: error: <reason>` followed by the offending
// lines with a caret underline; for an unanchored diagnostic, a bare
// `error: <reason>` line. Colour is emitted only when withColor is true.
func (d Diagnostic) Render(withColor bool) string {
	var b strings.Builder

	if !d.HasSpan {
		if withColor {
			fmt.Fprintf(&b, "%serror:%s %s\n", boldRed(withColor), colorReset, d.Reason)
		} else {
			fmt.Fprintf(&b, "error: %s\n", d.Reason)
		}

		return b.String()
	}

	contents := d.File.Contents()
	start := computeGridPos(contents, d.Span.Start())
	end := computeGridPos(contents, d.Span.End())

	fmt.Fprintf(&b, "%s:%d:%d: ", d.File.Filename(), start.line+1, start.column+1)

	if withColor {
		fmt.Fprintf(&b, "%serror:%s %s\n", boldRed(withColor), colorReset, d.Reason)
	} else {
		fmt.Fprintf(&b, "error: %s\n", d.Reason)
	}

	lines := splitLines(contents)
	lastLineNo := end.line + 1

	for lineNo := start.line + 1; lineNo <= lastLineNo && lineNo-1 < len(lines); lineNo++ {
		renderLine(&b, lines[lineNo-1], start, end, lineNo, withColor)
	}

	return b.String()
}

// splitLines returns the text of every line in contents, in order, without
// trailing '\n'.
func splitLines(contents []rune) []string {
	var lines []string

	start := 0

	for i, r := range contents {
		if r == '\n' {
			lines = append(lines, string(contents[start:i]))
			start = i + 1
		}
	}

	lines = append(lines, string(contents[start:]))

	return lines
}

func renderLine(b *strings.Builder, text string, start, end gridPos, lineNo int, withColor bool) {
	prefix := fmt.Sprintf("%4d | ", lineNo)

	if withColor {
		fmt.Fprintf(b, "%s%s%s", colorGrey, prefix, colorReset)
	} else {
		b.WriteString(prefix)
	}

	b.WriteString(text)
	b.WriteByte('\n')

	caretStart, caretEnd := 0, len([]rune(text))

	if lineNo == start.line+1 {
		caretStart = start.column
	}

	if lineNo == end.line+1 {
		caretEnd = end.column
	}

	if caretEnd < caretStart {
		caretEnd = caretStart
	}

	b.WriteString(strings.Repeat(" ", len(prefix)))

	if withColor {
		b.WriteString(colorRed)
	}

	b.WriteString(strings.Repeat(" ", caretStart))

	carets := caretEnd - caretStart
	if carets < 1 {
		carets = 1
	}

	b.WriteString(strings.Repeat("^", carets))

	if withColor {
		b.WriteString(colorReset)
	}

	b.WriteByte('\n')
}

func boldRed(withColor bool) string {
	if !withColor {
		return ""
	}

	return colorBold + colorRed
}

// DefaultColor reports whether ANSI colour should be used by default,
// using golang.org/x/term to detect a real terminal rather than a
// redirected file or pipe.
func DefaultColor() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
