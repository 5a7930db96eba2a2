// Package ast defines the abstract syntax tree produced by pkg/tola/parser.
// Nodes live in a per-file arena and are referenced by dense index
// (NodeID) rather than pointer, matching the arena-oriented ownership
// convention used throughout this module.
package ast

import "github.com/tola-lang/tola/pkg/tola/intern"

// NodeID is an index into a File's node arena. The zero value (0) is never
// a valid node in a populated file — index 0 is reserved for the file's
// synthetic root so that a zero NodeID can double as "no node" in contexts
// that need it (e.g. a lookup helper reporting that a declaration has no
// such child; an omitted else-branch is instead simply left out of the
// IfStmt's children).
type NodeID int32

// Kind discriminates the AST node variants: meta
// kinds, statements, expressions, and (syntactic, pre-resolution) types.
type Kind uint8

const (
	// Root is the synthetic container of every top-level declaration in a
	// file; it always occupies NodeID 0.
	Root Kind = iota

	// Meta markers. These are leaf nodes with no children, attached as a
	// declaration's child to record a modifier.
	IsPublic
	IsExternal
	IsExported
	IsConstant

	// Declarations (module scope only).
	ModuleDecl
	UsageDecl
	UsedPath
	StructDecl
	FieldDecl
	EnumDecl
	EnumVariantDecl
	InterfaceDecl
	FunctionDecl
	VariableDecl

	// Function-declaration structure.
	TemplateArgListDef
	TemplateParam
	ParamArgList
	ParamDecl

	// Statements.
	Block
	ReturnStmt
	ContinueStmt
	BreakStmt
	IfStmt
	LoopStmt
	WhileStmt
	AssignStmt
	ExprStmt

	// Expressions.
	IntegerLit
	FloatLit
	StringLit
	CStringLit
	TrueLit
	FalseLit
	PathAccess
	NamespaceAccess
	TemplateArgList
	Call
	ArgList
	FieldAccess
	AsCast
	SizeofExpr

	// Unary operators.
	Negate
	LogicalNot
	AddressOf
	Deref

	// Binary operators.
	Add
	Subtract
	Multiply
	Divide
	Remainder
	Less
	LessEq
	Greater
	GreaterEq
	Eq
	NotEq
	LogicalAnd
	LogicalOr

	// Syntactic type expressions (pre-resolution; resolved to an
	// intern.TypeIdx by pkg/tola/check).
	TypePrimitive
	TypeName
	TypePointer
	TypePointerConst

	// ResolvedType is a synthetic type node produced by monomorphisation: a
	// template parameter substituted with a concrete type carries that
	// type directly in ResultType rather than via a string/path Value.
	ResolvedType

	// Invalid marks a subtree the parser could not make sense of: downstream
	// code recurses into it structurally but must not treat it as
	// semantically meaningful.
	Invalid
)

// ValueKind discriminates what, if anything, is attached to a node as its
// NodeValue.
type ValueKind uint8

// NodeValue kinds.
const (
	ValueNone ValueKind = iota
	ValueString
	ValuePath
)

// Value is the tagged attachment carried by a node: none, an interned
// string, or an interned path.
type Value struct {
	Kind   ValueKind
	String intern.StringIdx
	Path   intern.PathIdx
}

// Node is a single AST node: a kind, an attached value, and an ordered
// list of children. Source ranges are tracked out-of-band in a
// source.Map[NodeID] owned by the File, not embedded here.
type Node struct {
	Kind     Kind
	Value    Value
	Children []NodeID
	// ResultType is only meaningful after the type-checking stage.
	ResultType intern.TypeIdx
}

// File owns the node arena for one parsed source file, plus the root
// node's children (top-level declarations, in source order).
type File struct {
	Path  string
	nodes []Node
}

// NewFile creates an empty file arena, already containing the synthetic
// Root node at NodeID 0.
func NewFile(path string) *File {
	f := &File{Path: path}
	f.nodes = append(f.nodes, Node{Kind: Root})

	return f
}

// New allocates a fresh node of the given kind and returns its ID.
func (f *File) New(kind Kind) NodeID {
	id := NodeID(len(f.nodes))
	f.nodes = append(f.nodes, Node{Kind: kind})

	return id
}

// Get returns a copy of the node at id.
func (f *File) Get(id NodeID) Node {
	return f.nodes[id]
}

// SetValue overwrites the value attached to id.
func (f *File) SetValue(id NodeID, v Value) {
	n := f.nodes[id]
	n.Value = v
	f.nodes[id] = n
}

// SetChildren overwrites the children of id.
func (f *File) SetChildren(id NodeID, children []NodeID) {
	n := f.nodes[id]
	n.Children = children
	f.nodes[id] = n
}

// AddChild appends child to id's child list.
func (f *File) AddChild(id NodeID, child NodeID) {
	n := f.nodes[id]
	n.Children = append(n.Children, child)
	f.nodes[id] = n
}

// SetResultType records the type-checker's result for id.
func (f *File) SetResultType(id NodeID, t intern.TypeIdx) {
	n := f.nodes[id]
	n.ResultType = t
	f.nodes[id] = n
}

// Declarations returns the top-level declarations of the file, in source
// order.
func (f *File) Declarations() []NodeID {
	return f.nodes[Root].Children
}

// StringValue returns the interned string attached to the node, panicking
// if it does not carry a ValueString.
func (n Node) StringValue() intern.StringIdx {
	if n.Value.Kind != ValueString {
		panic("node does not carry a string value")
	}

	return n.Value.String
}

// PathValue returns the interned path attached to n, panicking if n does
// not carry a ValuePath.
func (n Node) PathValue() intern.PathIdx {
	if n.Value.Kind != ValuePath {
		panic("node does not carry a path value")
	}

	return n.Value.Path
}
