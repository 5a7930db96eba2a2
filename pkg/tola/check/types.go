package check

import (
	"github.com/tola-lang/tola/pkg/tola/ast"
	"github.com/tola-lang/tola/pkg/tola/intern"
)

// primitiveKeywordKinds maps a TypePrimitive node's surface text (set by
// the parser from its keyword spelling) to the corresponding Kind.
var primitiveKeywordKinds = map[string]intern.Kind{
	"u8": intern.KindU8, "u16": intern.KindU16, "u32": intern.KindU32, "u64": intern.KindU64,
	"usize": intern.KindUsize,
	"s8":    intern.KindS8, "s16": intern.KindS16, "s32": intern.KindS32, "s64": intern.KindS64,
	"f32": intern.KindF32, "f64": intern.KindF64,
	"unit": intern.KindUnit, "bool": intern.KindBoolean,
}

// resolveType converts a syntactic (pre-resolution) type node into an
// interned TypeIdx. Struct references are looked up in the symbol table
// by their (possibly use-rewritten) path; the reference-rewriting pass
// only canonicalises use-aliased references, so a same-module sibling
// struct must still be named via an explicit `use` to resolve here.
func (c *Checker) resolveType(file *ast.File, id ast.NodeID) intern.TypeIdx {
	n := file.Get(id)

	switch n.Kind {
	case ast.ResolvedType:
		return n.ResultType

	case ast.TypePrimitive:
		name := c.Strings.Lookup(n.StringValue())

		if k, ok := primitiveKeywordKinds[name]; ok {
			return c.Types.Primitive(k)
		}

		return c.Types.Primitive(intern.KindUnknown)

	case ast.TypePointer:
		return c.Types.Pointer(false, c.resolveType(file, n.Children[0]))

	case ast.TypePointerConst:
		return c.Types.Pointer(true, c.resolveType(file, n.Children[0]))

	case ast.TypeName:
		path := n.PathValue()

		sym, ok := c.Table.Symbols[path]
		if !ok {
			return c.Types.Primitive(intern.KindUnknown)
		}

		if sym.File.Get(sym.Decl).Kind != ast.StructDecl {
			c.reportNotYetImplemented(sym)
			return c.Types.Primitive(intern.KindUnknown)
		}

		return c.Types.Struct(path)

	default:
		return c.Types.Primitive(intern.KindUnknown)
	}
}
