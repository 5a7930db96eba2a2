// Package resolve implements the semantic passes that run between parsing
// and type checking: symbol-table construction and wildcard-aware path
// expansion. Both passes are a single walk per file.
package resolve

import (
	"fmt"

	"github.com/tola-lang/tola/pkg/tola/ast"
	"github.com/tola-lang/tola/pkg/tola/diag"
	"github.com/tola-lang/tola/pkg/tola/intern"
	"github.com/tola-lang/tola/pkg/util/source"
)

// Symbol is the symbol-table record for one globally declared name: a
// function, struct, enum, interface, variable, or constant.
type Symbol struct {
	IsPublic bool
	File     *ast.File
	SrcFile  *source.File
	Spans    *source.Map[ast.NodeID]
	Decl     ast.NodeID

	// TemplateParams holds the template parameter names in declaration
	// order; nil for a non-template symbol.
	TemplateParams []intern.StringIdx

	// Monomorphisations caches, by canonical argument-tuple key, the
	// instantiated declaration node for one concrete template argument
	// tuple.
	Monomorphisations map[string]ast.NodeID
}

// Table is the symbol table shared across every file a compiler handle
// has parsed: the set of declared module paths, a qualified-path-to-symbol
// map, and an exported-name-to-path map.
type Table struct {
	Strings *intern.Strings
	Paths   *intern.Paths

	Modules map[intern.PathIdx]bool
	Symbols map[intern.PathIdx]*Symbol
	Exports map[intern.StringIdx]intern.PathIdx
}

// NewTable constructs an empty symbol table over the given (compiler
// handle lifetime) interners.
func NewTable(strings *intern.Strings, paths *intern.Paths) *Table {
	return &Table{
		Strings: strings,
		Paths:   paths,
		Modules: make(map[intern.PathIdx]bool),
		Symbols: make(map[intern.PathIdx]*Symbol),
		Exports: make(map[intern.StringIdx]intern.PathIdx),
	}
}

// isSymbolDecl reports whether k is one of the declaration kinds that
// introduces a symbol; ModuleDecl and UsageDecl do not.
func isSymbolDecl(k ast.Kind) bool {
	switch k {
	case ast.FunctionDecl, ast.StructDecl, ast.EnumDecl, ast.InterfaceDecl, ast.VariableDecl:
		return true
	default:
		return false
	}
}

// BuildFile walks file's top-level declarations once, registering modules
// and symbols into table and appending any duplicate-module,
// duplicate-symbol, or duplicate-export diagnostics to diags. The
// "current module" path starts empty (the root module) and is updated on
// every ModuleDecl encountered.
func BuildFile(table *Table, srcFile *source.File, file *ast.File, spans *source.Map[ast.NodeID], diags *[]diag.Diagnostic) {
	currentMod := table.Paths.Intern(nil)

	for _, id := range file.Declarations() {
		n := file.Get(id)

		switch {
		case n.Kind == ast.ModuleDecl:
			p := n.PathValue()

			if table.Modules[p] {
				*diags = append(*diags, diag.New(srcFile, spans.Get(id),
					fmt.Sprintf("duplicate module `%s`", table.Paths.String(p))))
			}

			table.Modules[p] = true
			currentMod = p

		case n.Kind == ast.UsageDecl:
			// Handled by the path-expansion pass.

		case isSymbolDecl(n.Kind):
			registerSymbol(table, srcFile, file, spans, diags, currentMod, id, n)
		}
	}
}

func registerSymbol(table *Table, srcFile *source.File, file *ast.File, spans *source.Map[ast.NodeID],
	diags *[]diag.Diagnostic, currentMod intern.PathIdx, id ast.NodeID, n ast.Node) {
	nameIdx := n.StringValue()
	name := table.Strings.Lookup(nameIdx)
	qualified := table.Paths.Extend(currentMod, name)

	isPublic := false
	isExported := false

	var templateParams []intern.StringIdx

	for _, c := range n.Children {
		cn := file.Get(c)

		switch cn.Kind {
		case ast.IsPublic:
			isPublic = true
		case ast.IsExported:
			isExported = true
		case ast.TemplateArgListDef:
			for _, tp := range cn.Children {
				templateParams = append(templateParams, file.Get(tp).StringValue())
			}
		}
	}

	if isExported {
		if _, exists := table.Exports[nameIdx]; exists {
			*diags = append(*diags, diag.New(srcFile, spans.Get(id),
				fmt.Sprintf("duplicate export `%s`", name)))
		}

		table.Exports[nameIdx] = qualified
	}

	if _, exists := table.Symbols[qualified]; exists {
		*diags = append(*diags, diag.New(srcFile, spans.Get(id),
			fmt.Sprintf("duplicate symbol `%s`", table.Paths.String(qualified))))

		return
	}

	table.Symbols[qualified] = &Symbol{
		IsPublic:          isPublic,
		File:              file,
		SrcFile:           srcFile,
		Spans:             spans,
		Decl:              id,
		TemplateParams:    templateParams,
		Monomorphisations: make(map[string]ast.NodeID),
	}
}
