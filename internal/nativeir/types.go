package nativeir

import (
	"fmt"
	"strings"
)

// TypeKind discriminates the shapes of CType the native IR builder can
// construct; it mirrors the operation set in the spec verbatim (§6
// "Type constructors").
type TypeKind uint8

const (
	KindVoid TypeKind = iota
	KindInt
	KindFloat
	KindPointer
	KindArray
	KindVector
	KindStruct
	KindFuncPtr
)

// Field is one member of a struct or union type.
type Field struct {
	Name string
	Type *CType
}

// CType is a native IR type handle. It is always obtained through a
// Context constructor, never built directly by the caller.
type CType struct {
	Kind TypeKind

	IntWidth   int // KindInt: 1, 8, 16, 32, 64
	FloatWidth int // KindFloat: 32, 64

	Elem *CType // KindPointer, KindArray, KindVector
	Len  int    // KindArray, KindVector

	Name   string // KindStruct
	Fields []Field
	Union  bool

	Ret      *CType // KindFuncPtr
	Params   []*CType
	Variadic bool

	unionByteWidthHint int // KindStruct && Union
}

// VoidType returns the native void type.
func (c *Context) VoidType() *CType { return &CType{Kind: KindVoid} }

// IntType returns an integer type of the given bit width (1, 8, 16, 32,
// or 64), the "primitive-by-width" constructor from §6.
func (c *Context) IntType(width int) *CType { return &CType{Kind: KindInt, IntWidth: width} }

// BoolType is the 1-bit integer representation of bool.
func (c *Context) BoolType() *CType { return c.IntType(1) }

// FloatType returns a floating-point type of the given bit width (32 or 64).
func (c *Context) FloatType(width int) *CType { return &CType{Kind: KindFloat, FloatWidth: width} }

// PointerType returns a pointer-to-elem type.
func (c *Context) PointerType(elem *CType) *CType {
	return &CType{Kind: KindPointer, Elem: elem}
}

// ArrayType returns a fixed-length array-of-elem type.
func (c *Context) ArrayType(elem *CType, length int) *CType {
	return &CType{Kind: KindArray, Elem: elem, Len: length}
}

// VectorType returns a fixed-lane-count SIMD vector-of-elem type.
func (c *Context) VectorType(elem *CType, lanes int) *CType {
	return &CType{Kind: KindVector, Elem: elem, Len: lanes}
}

// FuncPtrType returns a function-pointer type with the given signature.
func (c *Context) FuncPtrType(ret *CType, params []*CType, variadic bool) *CType {
	return &CType{Kind: KindFuncPtr, Ret: ret, Params: params, Variadic: variadic}
}

// NewStructType materializes a named struct (or, if union is true, an
// equivalently-laid-out union) type. Creation is idempotent: a second
// call with the same name returns the cached handle from the first,
// matching the struct registry's identity contract (spec §3/§4.1) —
// every later reference to this name must use this same handle.
func (c *Context) NewStructType(name string, fields []Field, union bool) *CType {
	if existing, ok := c.structs[name]; ok {
		return existing
	}
	st := &CType{Kind: KindStruct, Name: name, Fields: fields, Union: union}
	c.structs[name] = st
	c.structOrder = append(c.structOrder, name)
	return st
}

// LookupStructType returns the previously-registered struct type named
// name, or nil if it has not been materialized yet.
func (c *Context) LookupStructType(name string) (*CType, bool) {
	st, ok := c.structs[name]
	return st, ok
}

// Builtin fetches an intrinsic/built-in function by name (e.g.
// "llvm.memcpy.p0.p0.i64"), declaring it on first use.
func (c *Context) Builtin(name string, sig *CType) (*Function, error) {
	if sig == nil || sig.Kind != KindFuncPtr {
		return nil, fmt.Errorf("nativeir: builtin %q needs a function signature", name)
	}
	if f, ok := c.funcs[name]; ok {
		return f, nil
	}
	f := &Function{ctx: c, name: name, ret: sig.Ret, paramTypes: sig.Params, variadic: sig.Variadic, linkage: LinkageExternal}
	c.funcs[name] = f
	c.funcOrderList = append(c.funcOrderList, name)
	return f, nil
}

func (t *CType) llvm() string {
	switch t.Kind {
	case KindVoid:
		return "void"
	case KindInt:
		return fmt.Sprintf("i%d", t.IntWidth)
	case KindFloat:
		if t.FloatWidth == 32 {
			return "float"
		}
		return "double"
	case KindPointer, KindFuncPtr:
		return "ptr"
	case KindArray:
		return fmt.Sprintf("[%d x %s]", t.Len, t.Elem.llvm())
	case KindVector:
		return fmt.Sprintf("<%d x %s>", t.Len, t.Elem.llvm())
	case KindStruct:
		return "%struct." + t.Name
	default:
		return "void"
	}
}

// llvmDecl returns the `%struct.Name = type { ... }` definition line for
// a struct or union; unions are laid out as a single byte array whose
// length is the width set by SetUnionByteWidth.
func (t *CType) llvmDecl() string {
	if t.Kind != KindStruct {
		return ""
	}
	if t.Union {
		// Laid out as an opaque byte blob; the sizer (C2), not nativeir,
		// decides how big, including its preserved sum-of-fields bug.
		return fmt.Sprintf("%%struct.%s = type { [%d x i8] }", t.Name, t.unionByteWidthHint)
	}
	parts := make([]string, 0, len(t.Fields))
	for _, f := range t.Fields {
		parts = append(parts, f.Type.llvm())
	}
	return fmt.Sprintf("%%struct.%s = type { %s }", t.Name, strings.Join(parts, ", "))
}

// unionByteWidthHint is set by the type lowerer (C1) via SetUnionByteWidth
// once the sizer (C2) has computed the union's size, since nativeir
// itself has no notion of AST-level byte sizes.
func (t *CType) SetUnionByteWidth(n int) { t.unionByteWidthHint = n }
