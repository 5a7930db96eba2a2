package diag

import (
	"strings"
	"testing"

	"github.com/tola-lang/tola/pkg/util/assert"
	"github.com/tola-lang/tola/pkg/util/source"
)

func TestRenderUnanchored(t *testing.T) {
	d := NewUnanchored("file not found")
	out := d.Render(false)

	assert.True(t, strings.Contains(out, "error: file not found"))
}

func TestRenderAnchoredSingleLine(t *testing.T) {
	file := source.NewSourceFile("t.tola", []byte("fun main() { lmfao }\n"))
	span := source.NewSpan(13, 19)
	d := New(file, span, "unexpected identifier `lmfao`")

	out := d.Render(false)

	assert.True(t, strings.HasPrefix(out, "t.tola:1:14: error: unexpected identifier `lmfao`\n"))
	assert.True(t, strings.Contains(out, "^^^^^^"))
}

func TestRenderAnchoredMultiLine(t *testing.T) {
	file := source.NewSourceFile("t.tola", []byte("var x u8\n= 5;\n"))
	span := source.NewSpan(0, 13)
	d := New(file, span, "bad declaration")

	out := d.Render(false)
	lines := strings.Split(out, "\n")

	// header + two source lines + two caret lines + trailing empty
	assert.True(t, len(lines) >= 5)
}
