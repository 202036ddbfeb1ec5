package driver

import (
	"strconv"
	"strings"

	"havoc/internal/ast"
	"havoc/internal/interner"
)

// mangleType renders t per the type-mangling table pass 2 uses to build
// a unique emitted symbol name for each overload (spec.md §4.7).
func mangleType(t ast.Type) string {
	switch t.Kind {
	case ast.KindVoid:
		return "v"
	case ast.KindBasic:
		return interner.Str(t.Name)
	case ast.KindStruct:
		return interner.Str(t.Name)
	case ast.KindPtr:
		return "ptr" + mangleType(*t.Elem)
	case ast.KindArray:
		return "ptr" + mangleType(*t.Elem)
	case ast.KindVector:
		return "vec" + mangleType(*t.Elem) + strconv.Itoa(t.Len)
	case ast.KindFunc:
		return mangleFuncType(t)
	default:
		return "unk"
	}
}

// mangleFuncType renders a function-typed value's textual signature, the
// table's "textual rendering" fallback for Func(...).
func mangleFuncType(t ast.Type) string {
	var b strings.Builder
	b.WriteString("fn(")
	for i, p := range t.Params {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(mangleType(p))
	}
	if t.Variadic {
		b.WriteString(",...")
	}
	b.WriteString(")")
	b.WriteString(mangleType(*t.Ret))
	return b.String()
}

// mangleName computes fn's emitted symbol: main keeps its source name
// verbatim, everything else concatenates the source name with the
// receiver's mangled type (if any) and each parameter's mangled type, in
// declaration order (spec.md §4.7).
func mangleName(fn *ast.Function) string {
	name := interner.Str(fn.Name)
	if name == "main" {
		return name
	}
	var b strings.Builder
	b.WriteString(name)
	if fn.Receiver != nil {
		b.WriteString(mangleType(fn.Receiver.Type))
	}
	for _, p := range fn.Params {
		b.WriteString(mangleType(p.Type))
	}
	return b.String()
}
