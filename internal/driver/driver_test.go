package driver

import (
	"strings"
	"testing"

	"havoc/internal/ast"
	"havoc/internal/interner"
)

func i32() ast.Type { return ast.Basic(interner.Intern("i32")) }

// structRoundTripFile builds spec scenario 1 as a whole file: struct P{x,
// y:i32}; func main():i32 { var p:P = P{x:3,y:4}; return p.x+p.y; }
func structRoundTripFile() *ast.File {
	structName := interner.Intern("P")
	mainName := interner.Intern("main")
	pName := interner.Intern("p")
	xName := interner.Intern("x")
	yName := interner.Intern("y")

	body := ast.Stmt{Kind: ast.StmtBlock, Body: []ast.Stmt{
		{Kind: ast.StmtVarDecl, VarName: pName, VarType: func() *ast.Type { t := ast.StructRef(structName); return &t }(),
			Init: &ast.Expr{Kind: ast.ExprStructLit, StructName: structName, FieldInits: []ast.FieldInit{
				{Name: xName, Value: ast.Expr{Kind: ast.ExprIntLit, IntVal: 3}},
				{Name: yName, Value: ast.Expr{Kind: ast.ExprIntLit, IntVal: 4}},
			}}},
		{Kind: ast.StmtReturn, Result: &ast.Expr{
			Kind: ast.ExprBinary, BinOp: ast.BinAdd,
			X: &ast.Expr{Kind: ast.ExprField, Name: xName, X: &ast.Expr{Kind: ast.ExprIdent, Name: pName}},
			Y: &ast.Expr{Kind: ast.ExprField, Name: yName, X: &ast.Expr{Kind: ast.ExprIdent, Name: pName}},
		}},
	}}

	return &ast.File{
		Name: interner.Intern("scenario1"),
		Elems: []ast.Elem{
			{Kind: ast.ElemStruct, Struct: &ast.StructDecl{Name: structName, Fields: []ast.StructField{
				{Name: xName, Type: i32()},
				{Name: yName, Type: i32()},
			}}},
			{Kind: ast.ElemFunc, Func: &ast.Function{Name: mainName, Ret: i32(), Body: &body}},
		},
	}
}

func TestCompileStructRoundTrip(t *testing.T) {
	result, err := Compile(structRoundTripFile(), Options{AllowUnreachableBlocks: true})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	ir := result.Ctx.DumpIR()
	if !strings.Contains(ir, "define i32 @main()") {
		t.Fatalf("expected a defined main, got:\n%s", ir)
	}
	if !strings.Contains(ir, "getelementptr inbounds %struct.P") {
		t.Fatalf("expected field access IR, got:\n%s", ir)
	}
}

// TestCompilePrivateFunctionGetsInternalLinkage grounds pass 2's linkage
// selection rule: a non-public function is emitted with internal
// linkage, never external or exported.
func TestCompilePrivateFunctionGetsInternalLinkage(t *testing.T) {
	helperName := interner.Intern("helper")
	mainName := interner.Intern("main")

	file := &ast.File{
		Name: interner.Intern("scenario_linkage"),
		Elems: []ast.Elem{
			{Kind: ast.ElemFunc, Func: &ast.Function{
				Name: helperName, Ret: i32(), IsPrivate: true,
				Body: &ast.Stmt{Kind: ast.StmtBlock, Body: []ast.Stmt{
					{Kind: ast.StmtReturn, Result: &ast.Expr{Kind: ast.ExprIntLit, IntVal: 1}},
				}},
			}},
			{Kind: ast.ElemFunc, Func: &ast.Function{
				Name: mainName, Ret: i32(),
				Body: &ast.Stmt{Kind: ast.StmtBlock, Body: []ast.Stmt{
					{Kind: ast.StmtReturn, Result: &ast.Expr{Kind: ast.ExprCall, CalleeName: helperName}},
				}},
			}},
		},
	}

	result, err := Compile(file, Options{AllowUnreachableBlocks: true})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	ir := result.Ctx.DumpIR()
	if !strings.Contains(ir, "define internal i32 @helper()") {
		t.Fatalf("expected helper to be emitted with internal linkage, got:\n%s", ir)
	}
}

// TestCompileFallsOffEndReturnsZero grounds the control-flow-totality
// invariant (spec.md §8): a non-void function whose body falls off the
// end without an explicit return still ends in a terminator.
func TestCompileFallsOffEndReturnsZero(t *testing.T) {
	mainName := interner.Intern("main")
	file := &ast.File{
		Name: interner.Intern("scenario_falloff"),
		Elems: []ast.Elem{
			{Kind: ast.ElemFunc, Func: &ast.Function{
				Name: mainName, Ret: i32(),
				Body: &ast.Stmt{Kind: ast.StmtBlock},
			}},
		},
	}

	result, err := Compile(file, Options{AllowUnreachableBlocks: true})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	ir := result.Ctx.DumpIR()
	if !strings.Contains(ir, "ret i32 0") {
		t.Fatalf("expected a synthesized zero return, got:\n%s", ir)
	}
}
