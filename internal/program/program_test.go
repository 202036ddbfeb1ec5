package program

import (
	"testing"

	"havoc/internal/ast"
	"havoc/internal/interner"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	name := interner.Intern("widget")
	p := &Program{
		File: ast.File{
			Name: interner.Intern("scenario"),
			Elems: []ast.Elem{
				{Kind: ast.ElemStruct, Struct: &ast.StructDecl{Name: name}},
			},
		},
		Types: map[ast.NodeID]ast.Type{
			1: ast.Basic(interner.Intern("i32")),
		},
	}

	data, err := Encode(p)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if interner.Str(got.File.Name) != "scenario" {
		t.Fatalf("File.Name = %q, want scenario", interner.Str(got.File.Name))
	}
	if len(got.File.Elems) != 1 || interner.Str(got.File.Elems[0].Struct.Name) != "widget" {
		t.Fatalf("struct name did not round-trip: %+v", got.File.Elems)
	}
	ty, ok := got.Types[1]
	if !ok || interner.Str(ty.Name) != "i32" {
		t.Fatalf("Types[1] did not round-trip: %+v", got.Types)
	}
}
