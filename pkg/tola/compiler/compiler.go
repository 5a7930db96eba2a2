// Package compiler packages up the per-handle state of the Tola front-end
// and orchestrates its stage progression: parse, check_types, and
// generate_output. A caller drives them one at a time rather than
// through a single entry point, since a long-lived handle (e.g. the LSP
// server) needs to re-parse one file and re-check without restarting the
// whole pipeline.
package compiler

import (
	"os"

	"github.com/tola-lang/tola/pkg/tola/ast"
	"github.com/tola-lang/tola/pkg/tola/check"
	"github.com/tola-lang/tola/pkg/tola/diag"
	"github.com/tola-lang/tola/pkg/tola/intern"
	"github.com/tola-lang/tola/pkg/tola/parser"
	"github.com/tola-lang/tola/pkg/tola/resolve"
	"github.com/tola-lang/tola/pkg/util/source"
)

// stage is the monotonic marker tracking how far the pipeline has advanced.
type stage int

const (
	stageParsing stage = iota
	stageTypes
	stageCodegen
)

// file bundles one parsed source file's AST with the data needed to
// re-derive diagnostics and spans for it.
type file struct {
	src   *source.File
	ast   *ast.File
	spans *source.Map[ast.NodeID]
}

// Compiler is the programmatic front-end facade: it owns the interners,
// the parsed files, the symbol table, and the diagnostics list, and
// gates each stage on the previous one having produced no diagnostics.
type Compiler struct {
	Strings *intern.Strings
	Paths   *intern.Paths
	Types   *intern.Types

	files  []string
	byPath map[string]*file

	table *resolve.Table
	stage stage

	Diagnostics []diag.Diagnostic
}

// New constructs a fresh compiler handle.
func New() *Compiler {
	strs := intern.NewStrings()
	paths := intern.NewPaths(strs)

	return &Compiler{
		Strings: strs,
		Paths:   paths,
		Types:   intern.NewTypes(),
		byPath:  make(map[string]*file),
		stage:   stageParsing,
	}
}

// Parse registers a source file under path, tokenises and parses it, and
// accumulates its diagnostics.
// Reparsing a path replaces its AST entry and drops diagnostics
// previously anchored to that path; if the handle had already advanced
// past the parsing stage, the whole pipeline resets to parsing and every
// diagnostic is discarded, since the symbol table and type-check results
// computed against the old file set are no longer valid.
func (c *Compiler) Parse(path string, contents []byte) {
	if c.stage != stageParsing {
		c.stage = stageParsing
		c.table = nil
		c.Diagnostics = nil
	} else {
		c.Diagnostics = filterByPath(c.Diagnostics, path)
	}

	srcFile := source.NewSourceFile(path, contents)
	p := parser.New(srcFile, c.Strings, c.Paths)
	astFile, spans := p.ParseFile()

	if _, exists := c.byPath[path]; !exists {
		c.files = append(c.files, path)
	}

	c.byPath[path] = &file{src: srcFile, ast: astFile, spans: spans}
	c.Diagnostics = append(c.Diagnostics, p.Diagnostics...)
}

func filterByPath(diags []diag.Diagnostic, path string) []diag.Diagnostic {
	out := diags[:0:0]

	for _, d := range diags {
		if d.HasSpan && d.File.Filename() == path {
			continue
		}

		out = append(out, d)
	}

	return out
}

// CheckTypes runs symbol-table construction, path expansion, and type
// checking over every currently-parsed file.
// It is a no-op, leaving the diagnostic list untouched, if parsing
// diagnostics remain.
func (c *Compiler) CheckTypes() {
	if len(c.Diagnostics) > 0 {
		return
	}

	table := resolve.NewTable(c.Strings, c.Paths)

	for _, path := range c.files {
		f := c.byPath[path]

		resolve.BuildFile(table, f.src, f.ast, f.spans, &c.Diagnostics)
	}

	if len(c.Diagnostics) > 0 {
		return
	}

	for _, path := range c.files {
		f := c.byPath[path]

		resolve.ExpandFile(table, f.ast)
	}

	checker := check.NewChecker(table, c.Types)
	checker.CheckAll()

	c.Diagnostics = append(c.Diagnostics, checker.Diagnostics...)
	c.table = table
	c.stage = stageTypes
}

// GenerateOutput advances the stage marker past code generation. Actual
// code generation is out of scope, so a caller that does not request
// output (requested is false, e.g. a type-check-only command) simply
// advances the stage; one that does request it gets a diagnostic
// reporting that no output generator is configured, rather than a
// silent no-op standing in for work that never happened.
func (c *Compiler) GenerateOutput(requested bool) {
	if len(c.Diagnostics) > 0 {
		return
	}

	if requested {
		c.Diagnostics = append(c.Diagnostics, diag.NewUnanchored("no output generator configured"))
	}

	c.stage = stageCodegen
}

// Errors borrows the accumulated diagnostics list.
func (c *Compiler) Errors() []diag.Diagnostic {
	return c.Diagnostics
}

// Table exposes the symbol table built by the most recent successful
// CheckTypes call, or nil before one has run.
func (c *Compiler) Table() *resolve.Table {
	return c.table
}

// File returns the parsed AST and span map for path, or false if path has
// not been parsed (or was dropped by a later reparse).
func (c *Compiler) File(path string) (*ast.File, *source.Map[ast.NodeID], bool) {
	f, ok := c.byPath[path]
	if !ok {
		return nil, nil, false
	}

	return f.ast, f.spans, true
}

// ReadAndParse is the driver-level helper a CLI caller uses: it reads path
// from disk and either parses its contents or appends an unanchored
// read-failure diagnostic.
func (c *Compiler) ReadAndParse(path string) {
	contents, err := os.ReadFile(path)
	if err != nil {
		c.Diagnostics = append(c.Diagnostics, diag.NewUnanchored(err.Error()))
		return
	}

	c.Parse(path, contents)
}
