// Package constfold implements C9: an optional AST->AST pass, run before
// C8 when enabled, that folds expressions with statically-known
// operands into literals and abstractly inlines constexpr function
// calls (spec.md §4.8).
package constfold

import "havoc/internal/ast"

// Kind discriminates Const variants.
type Kind uint8

const (
	KindNone Kind = iota // "not known" — operands were not all constant
	KindVoid
	KindInt
	KindFloat
	KindBool
	KindString
	KindStruct
	KindArray
	KindReturn // internal control marker: a `return` was evaluated
)

// Const is a compile-time-known value, or KindNone meaning the evaluator
// could not determine one.
type Const struct {
	Kind Kind

	IntVal    int64
	FloatVal  float64
	BoolVal   bool
	StrVal    string
	Fields    map[ast.Name]Const // KindStruct
	FieldKeys []ast.Name         // KindStruct, declaration order
	Elems     []Const            // KindArray

	StructName ast.Name // KindStruct
	ElemType   *ast.Type // KindArray

	Ret *Const // KindReturn: the returned value
}

// None is the "not known" sentinel.
func None() Const { return Const{Kind: KindNone} }

// IsKnown reports whether c carries an actual statically-known value.
func (c Const) IsKnown() bool { return c.Kind != KindNone }

// ToExpr converts a known constant back into an AST literal expression,
// for splicing into the tree in place of the folded subtree.
func (c Const) ToExpr(pos ast.Position) (ast.Expr, bool) {
	switch c.Kind {
	case KindInt:
		return ast.Expr{Pos: pos, Kind: ast.ExprIntLit, IntVal: c.IntVal}, true
	case KindFloat:
		return ast.Expr{Pos: pos, Kind: ast.ExprFloatLit, FloatVal: c.FloatVal}, true
	case KindBool:
		return ast.Expr{Pos: pos, Kind: ast.ExprBoolLit, BoolVal: c.BoolVal}, true
	case KindString:
		return ast.Expr{Pos: pos, Kind: ast.ExprStrLit, StrVal: c.StrVal}, true
	case KindStruct:
		inits := make([]ast.FieldInit, 0, len(c.FieldKeys))
		for _, k := range c.FieldKeys {
			fv, ok := c.Fields[k].ToExpr(pos)
			if !ok {
				return ast.Expr{}, false
			}
			inits = append(inits, ast.FieldInit{Name: k, Value: fv})
		}
		return ast.Expr{Pos: pos, Kind: ast.ExprStructLit, StructName: c.StructName, FieldInits: inits}, true
	default:
		return ast.Expr{}, false
	}
}
