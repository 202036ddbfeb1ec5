package ast

import "havoc/internal/interner"

// Param is one function parameter.
type Param struct {
	Name Name
	Type Type
	Pos  Position
}

// Function is a top-level function declaration. A function with nil Body
// is an external declaration (no definition in this translation unit);
// IsConst marks a constexpr function, eligible for compile-time folding
// and also registered as an ordinary callable (see the constant-evaluator
// component).
type Function struct {
	ID   NodeID
	Pos  Position
	Name Name

	Receiver *Param // non-nil for a method-style overload
	Params   []Param
	Variadic bool
	Ret      Type

	Body *Stmt // StmtBlock, or nil for an extern declaration

	IsConst    bool // constexpr function
	IsExternal bool // declared via `extern`, no body expected
	IsPrivate  bool // declared non-public; linked with internal linkage
	IsInline   bool // inline-marked; linked as always-inline
}

// StructDecl declares a named struct or union type and its fields.
type StructDecl struct {
	ID     NodeID
	Pos    Position
	Name   Name
	Fields []StructField
	Union  bool
}

// AliasDecl declares name as an alias for an existing type, transparent to
// every later lookup (aliasing never creates a distinct type identity).
type AliasDecl struct {
	ID   NodeID
	Pos  Position
	Name Name
	Type Type
}

// GlobalDecl declares a file-scope variable, optionally with an
// initializer. Globals without an initializer are zero-initialized;
// those with one are materialized in declaration order ahead of main's
// own body, mirroring a single implicit prologue.
type GlobalDecl struct {
	ID   NodeID
	Pos  Position
	Name Name
	Type Type
	Init *Expr // nil means zero-initialized

	IsPrivate bool // declared non-public; linked with internal linkage
}

// ConstDecl declares a named compile-time constant. Its Value must already
// be a literal by the time the driver registers it; constant folding of
// more complex initializers happens before registration.
type ConstDecl struct {
	ID    NodeID
	Pos   Position
	Name  Name
	Type  Type
	Value Expr
}

// LinkDecl requests the named library be passed to the system linker,
// mirroring a source-level `#link "foo"` directive.
type LinkDecl struct {
	ID      NodeID
	Pos     Position
	Library string
}

// Elem is one top-level declaration. Exactly one of the pointer fields is
// non-nil, picked by Kind.
type ElemKind uint8

const (
	ElemFunc ElemKind = iota
	ElemStruct
	ElemAlias
	ElemGlobal
	ElemConst
	ElemLink
)

type Elem struct {
	Kind ElemKind

	Func   *Function
	Struct *StructDecl
	Alias  *AliasDecl
	Global *GlobalDecl
	Const  *ConstDecl
	Link   *LinkDecl
}

// File is one parsed translation unit: a flat ordered sequence of
// top-level elements, plus the name this compilation is known by (used
// to label trace spans and the emitted module).
type File struct {
	Name interner.Name
	Elems []Elem
}
