package lsp

import (
	"testing"

	"github.com/tola-lang/tola/pkg/tola/diag"
	"github.com/tola-lang/tola/pkg/util/assert"
	"github.com/tola-lang/tola/pkg/util/source"
)

// TestPositionCountsLinesAndColumns exercises the zero-based line/column
// computation across a newline.
func TestPositionCountsLinesAndColumns(t *testing.T) {
	contents := []rune("fun f() {\n  x\n}")

	p := position(contents, 13)

	assert.Equal(t, uint32(1), p.Line)
	assert.Equal(t, uint32(3), p.Character)
}

// TestToProtocolDiagnosticUnanchored exercises that a driver-level
// diagnostic with no span still converts to a zero-value range rather
// than panicking on a nil file.
func TestToProtocolDiagnosticUnanchored(t *testing.T) {
	d := diag.NewUnanchored("file not found")

	got := toProtocolDiagnostic(d)

	assert.Equal(t, "file not found", got.Message)
}

// TestDiagnosticsForFileFiltersByPath exercises that only diagnostics
// anchored at the requested path are returned, while an unanchored
// diagnostic is included only for the triggering file.
func TestDiagnosticsForFileFiltersByPath(t *testing.T) {
	fileA := source.NewSourceFile("a.tola", []byte("fun a() {}"))
	fileB := source.NewSourceFile("b.tola", []byte("fun b() {}"))

	diags := []diag.Diagnostic{
		diag.New(fileA, source.NewSpan(0, 1), "in a"),
		diag.New(fileB, source.NewSpan(0, 1), "in b"),
		diag.NewUnanchored("read failure"),
	}

	gotA := diagnosticsForFile(diags, "a.tola", true)
	assert.Equal(t, 2, len(gotA))

	gotB := diagnosticsForFile(diags, "b.tola", false)
	assert.Equal(t, 1, len(gotB))
}
