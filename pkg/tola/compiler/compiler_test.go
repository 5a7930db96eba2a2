package compiler

import (
	"testing"

	"github.com/tola-lang/tola/pkg/util/assert"
)

// TestParseThenCheckTypesCleanFile exercises the happy path through all
// three stages when no output was actually requested: a clean compile
// stays clean.
func TestParseThenCheckTypesCleanFile(t *testing.T) {
	c := New()
	c.Parse("a.tola", []byte(`fun add(a u32, b u32): u32 { return a + b; }`))

	assert.Equal(t, 0, len(c.Errors()))

	c.CheckTypes()
	assert.Equal(t, 0, len(c.Errors()))

	c.GenerateOutput(false)
	assert.Equal(t, 0, len(c.Errors()))
}

// TestGenerateOutputRequestedReportsUnconfigured exercises that requesting
// output on an otherwise clean compile reports the missing generator,
// rather than silently succeeding.
func TestGenerateOutputRequestedReportsUnconfigured(t *testing.T) {
	c := New()
	c.Parse("a.tola", []byte(`fun add(a u32, b u32): u32 { return a + b; }`))
	c.CheckTypes()

	c.GenerateOutput(true)
	assert.Equal(t, 1, len(c.Errors()))
	assert.Equal(t, "no output generator configured", c.Errors()[0].Reason)
}

// TestCheckTypesGatedByParseDiagnostics exercises that a syntax error
// blocks check_types from running at all.
func TestCheckTypesGatedByParseDiagnostics(t *testing.T) {
	c := New()
	c.Parse("a.tola", []byte(`fun add(a u32, b u32): u32 { return a + ; }`))

	parseErrs := len(c.Errors())
	assert.True(t, parseErrs > 0)

	c.CheckTypes()
	assert.Equal(t, parseErrs, len(c.Errors()))
}

// TestGenerateOutputGatedByTypeDiagnostics exercises that a type error
// blocks generate_output from running.
func TestGenerateOutputGatedByTypeDiagnostics(t *testing.T) {
	c := New()
	c.Parse("a.tola", []byte(`fun main() { missing(); }`))

	c.CheckTypes()
	checkErrs := len(c.Errors())
	assert.True(t, checkErrs > 0)

	c.GenerateOutput(true)
	assert.Equal(t, checkErrs, len(c.Errors()))
}

// TestReparseFiltersDiagnosticsForThatPath exercises the reparse-replaces
// semantics: fixing the one broken file drops only its diagnostics.
func TestReparseFiltersDiagnosticsForThatPath(t *testing.T) {
	c := New()
	c.Parse("a.tola", []byte(`fun add(a u32, b u32): u32 { return a + ; }`))

	assert.True(t, len(c.Errors()) > 0)

	c.Parse("a.tola", []byte(`fun add(a u32, b u32): u32 { return a + b; }`))
	assert.Equal(t, 0, len(c.Errors()))
}

// TestReparseAfterCheckTypesResetsStage exercises that re-parsing after
// the pipeline has advanced past parsing discards the prior stage's
// diagnostics and symbol table rather than leaving them stale.
func TestReparseAfterCheckTypesResetsStage(t *testing.T) {
	c := New()
	c.Parse("a.tola", []byte(`fun main() { missing(); }`))
	c.CheckTypes()

	assert.True(t, len(c.Errors()) > 0)

	c.Parse("a.tola", []byte(`fun main() { }`))
	assert.Equal(t, 0, len(c.Errors()))

	c.CheckTypes()
	assert.Equal(t, 0, len(c.Errors()))
}

// TestMultiFileDuplicateSymbol exercises check_types running across more
// than one parsed file.
func TestMultiFileDuplicateSymbol(t *testing.T) {
	c := New()
	c.Parse("a.tola", []byte(`fun add(a u32, b u32): u32 { return a + b; }`))
	c.Parse("b.tola", []byte(`fun add(a s32, b s32): s32 { return a + b; }`))

	c.CheckTypes()

	found := false

	for _, d := range c.Errors() {
		if d.Reason == "duplicate symbol `add`" {
			found = true
		}
	}

	assert.True(t, found)
}

// TestReadAndParseMissingFile exercises the driver-level read-failure
// diagnostic, which carries no source span.
func TestReadAndParseMissingFile(t *testing.T) {
	c := New()
	c.ReadAndParse("/nonexistent/path/does-not-exist.tola")

	assert.Equal(t, 1, len(c.Errors()))
	assert.Equal(t, false, c.Errors()[0].HasSpan)
}
