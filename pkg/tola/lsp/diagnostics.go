package lsp

import (
	"go.lsp.dev/protocol"

	"github.com/tola-lang/tola/pkg/tola/diag"
)

// position computes a zero-based (line, character) LSP position for a
// rune offset into contents, the same grid-position rule diag.Diagnostic
// itself renders by, duplicated here
// because the renderer keeps that computation private to its own string
// output.
func position(contents []rune, offset int) protocol.Position {
	var line, col uint32

	for i := 0; i < offset && i < len(contents); i++ {
		if contents[i] == '\n' {
			line++
			col = 0
		} else {
			col++
		}
	}

	return protocol.Position{Line: line, Character: col}
}

// toProtocolDiagnostic converts one compiler diagnostic into its LSP
// wire form. An unanchored diagnostic has no meaningful range; it is reported at the start
// of the file so it still surfaces in the editor.
func toProtocolDiagnostic(d diag.Diagnostic) protocol.Diagnostic {
	if !d.HasSpan {
		return protocol.Diagnostic{
			Range:    protocol.Range{},
			Severity: protocol.DiagnosticSeverityError,
			Source:   "tola",
			Message:  d.Reason,
		}
	}

	contents := d.File.Contents()

	return protocol.Diagnostic{
		Range: protocol.Range{
			Start: position(contents, d.Span.Start()),
			End:   position(contents, d.Span.End()),
		},
		Severity: protocol.DiagnosticSeverityError,
		Source:   "tola",
		Message:  d.Reason,
	}
}

// diagnosticsForFile filters diags down to those anchored at path (plus,
// if includeUnanchored is set, any driver-level diagnostic with no file at
// all) and converts them to their LSP wire form.
func diagnosticsForFile(diags []diag.Diagnostic, path string, includeUnanchored bool) []protocol.Diagnostic {
	out := make([]protocol.Diagnostic, 0, len(diags))

	for _, d := range diags {
		switch {
		case d.HasSpan && d.File.Filename() == path:
			out = append(out, toProtocolDiagnostic(d))
		case !d.HasSpan && includeUnanchored:
			out = append(out, toProtocolDiagnostic(d))
		}
	}

	return out
}
