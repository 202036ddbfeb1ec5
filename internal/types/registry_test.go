package types

import (
	"testing"

	"havoc/internal/ast"
	"havoc/internal/interner"
	"havoc/internal/nativeir"
)

func newTestRegistry() *Registry {
	ctx := nativeir.NewContext(nativeir.Options{Name: "test"})
	return NewRegistry(ctx)
}

func TestLowerPrimitives(t *testing.T) {
	r := newTestRegistry()
	cases := []struct {
		name string
		kind nativeir.TypeKind
	}{
		{"i32", nativeir.KindInt},
		{"u64", nativeir.KindInt},
		{"f64", nativeir.KindFloat},
		{"bool", nativeir.KindInt},
	}
	for _, c := range cases {
		ty, err := r.Lower(ast.Basic(interner.Intern(c.name)))
		if err != nil {
			t.Fatalf("lower %s: %v", c.name, err)
		}
		if ty.Kind != c.kind {
			t.Errorf("lower %s: got kind %v, want %v", c.name, ty.Kind, c.kind)
		}
	}
}

func TestStructIdentity(t *testing.T) {
	r := newTestRegistry()
	name := interner.Intern("Point")
	fields := []ast.StructField{
		{Name: interner.Intern("x"), Type: ast.Basic(interner.Intern("i32"))},
		{Name: interner.Intern("y"), Type: ast.Basic(interner.Intern("i32"))},
	}
	r.DeclareStruct(name, false)
	if err := r.LowerFields(name, fields); err != nil {
		t.Fatalf("LowerFields: %v", err)
	}

	first, err := r.Lower(ast.StructRef(name))
	if err != nil {
		t.Fatalf("lower struct ref: %v", err)
	}
	second, err := r.Lower(ast.StructRef(name))
	if err != nil {
		t.Fatalf("lower struct ref again: %v", err)
	}
	if first != second {
		t.Fatalf("struct %q lowered to two distinct IR types", interner.Str(name))
	}
}

func TestSizeofAgreesWithStructFields(t *testing.T) {
	r := newTestRegistry()
	name := interner.Intern("P")
	fields := []ast.StructField{
		{Name: interner.Intern("x"), Type: ast.Basic(interner.Intern("i32"))},
		{Name: interner.Intern("y"), Type: ast.Basic(interner.Intern("i32"))},
	}
	r.DeclareStruct(name, false)
	if err := r.LowerFields(name, fields); err != nil {
		t.Fatalf("LowerFields: %v", err)
	}
	n, err := r.Size(ast.StructRef(name))
	if err != nil {
		t.Fatalf("size: %v", err)
	}
	if n != 8 {
		t.Fatalf("size(P) = %d, want 8", n)
	}
}

func TestUnionSizeIsSumNotMax(t *testing.T) {
	r := newTestRegistry()
	name := interner.Intern("U")
	fields := []ast.StructField{
		{Name: interner.Intern("a"), Type: ast.Basic(interner.Intern("i8"))},
		{Name: interner.Intern("b"), Type: ast.Basic(interner.Intern("i64"))},
	}
	r.DeclareStruct(name, true)
	if err := r.LowerFields(name, fields); err != nil {
		t.Fatalf("LowerFields: %v", err)
	}
	n, err := r.Size(ast.StructRef(name))
	if err != nil {
		t.Fatalf("size: %v", err)
	}
	if n != 9 {
		t.Fatalf("union size = %d, want preserved sum-of-fields 9 (not max 8)", n)
	}
}

func TestArraySizeMultipliesByLength(t *testing.T) {
	r := newTestRegistry()
	elem := ast.Basic(interner.Intern("i32"))
	n, err := r.Size(ast.ArrayOf(elem, 4))
	if err != nil {
		t.Fatalf("size: %v", err)
	}
	if n != 16 {
		t.Fatalf("size([4]i32) = %d, want 16", n)
	}
}

func TestUnboundedArrayDecaysToPointerSize(t *testing.T) {
	r := newTestRegistry()
	elem := ast.Basic(interner.Intern("i32"))
	ty, err := r.Lower(ast.ArrayOf(elem, ast.NoArrayLength))
	if err != nil {
		t.Fatalf("lower: %v", err)
	}
	if ty.Kind != nativeir.KindPointer {
		t.Fatalf("unbounded array should decay to pointer, got %v", ty.Kind)
	}
}

func TestAliasIsTransparent(t *testing.T) {
	r := newTestRegistry()
	alias := interner.Intern("MyInt")
	r.RegisterAlias(alias, ast.Basic(interner.Intern("i32")))
	ty, err := r.Lower(ast.Basic(alias))
	if err != nil {
		t.Fatalf("lower alias: %v", err)
	}
	if ty.Kind != nativeir.KindInt || ty.IntWidth != 32 {
		t.Fatalf("alias MyInt did not resolve to i32, got %+v", ty)
	}
}
