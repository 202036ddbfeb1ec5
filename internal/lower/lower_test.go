package lower

import (
	"strings"
	"testing"

	"havoc/internal/ast"
	"havoc/internal/interner"
	"havoc/internal/nativeir"
	"havoc/internal/symbols"
	"havoc/internal/types"
)

func newHarness(t *testing.T) (*nativeir.Context, *types.Registry, *symbols.Globals, *symbols.Constants, *symbols.OverloadTable) {
	t.Helper()
	ctx := nativeir.NewContext(nativeir.Options{Name: "test", AllowUnreachableBlocks: true})
	return ctx, types.NewRegistry(ctx), symbols.NewGlobals(), symbols.NewConstants(), symbols.NewOverloadTable()
}

func i32() ast.Type { return ast.Basic(interner.Intern("i32")) }

// TestStructFieldRoundTrip grounds spec scenario 1: a struct literal's
// fields, read back through field access, sum to the assigned values.
func TestStructFieldRoundTrip(t *testing.T) {
	ctx, reg, globals, consts, overloads := newHarness(t)

	structName := interner.Intern("P")
	reg.DeclareStruct(structName, false)
	if err := reg.LowerFields(structName, []ast.StructField{
		{Name: interner.Intern("x"), Type: i32()},
		{Name: interner.Intern("y"), Type: i32()},
	}); err != nil {
		t.Fatalf("LowerFields: %v", err)
	}

	retIR, _ := reg.Lower(i32())
	fn := ctx.NewFunction("main", retIR, nil, nil, false, nativeir.LinkageExported)
	entry := fn.EntryBlock()
	lw := New(ctx, reg, globals, consts, overloads, fn, entry)
	lw.SetReturnType(i32())

	pName := interner.Intern("p")
	xField := ast.FieldInit{Name: interner.Intern("x"), Value: ast.Expr{Kind: ast.ExprIntLit, IntVal: 3}}
	yField := ast.FieldInit{Name: interner.Intern("y"), Value: ast.Expr{Kind: ast.ExprIntLit, IntVal: 4}}
	body := ast.Stmt{Kind: ast.StmtBlock, Body: []ast.Stmt{
		{Kind: ast.StmtVarDecl, VarName: pName, VarType: func() *ast.Type { t := ast.StructRef(structName); return &t }(),
			Init: &ast.Expr{Kind: ast.ExprStructLit, StructName: structName, FieldInits: []ast.FieldInit{xField, yField}}},
		{Kind: ast.StmtReturn, Result: &ast.Expr{
			Kind: ast.ExprBinary, BinOp: ast.BinAdd,
			X:    &ast.Expr{Kind: ast.ExprField, Name: interner.Intern("x"), X: &ast.Expr{Kind: ast.ExprIdent, Name: pName}},
			Y:    &ast.Expr{Kind: ast.ExprField, Name: interner.Intern("y"), X: &ast.Expr{Kind: ast.ExprIdent, Name: pName}},
		}},
	}}

	if err := lw.LowerBody(&body); err != nil {
		t.Fatalf("LowerBody: %v", err)
	}
	ir := ctx.DumpIR()
	if !strings.Contains(ir, "getelementptr inbounds %struct.P") {
		t.Fatalf("expected field getelementptr in IR, got:\n%s", ir)
	}
	if !strings.Contains(ir, "ret i32") {
		t.Fatalf("expected an i32 return, got:\n%s", ir)
	}
}

// TestPointerIndexReturnsElement grounds spec scenario 3: `p+0` with p
// a pointer lowers as array addressing, not arithmetic, and the value
// context loads through it.
func TestPointerIndexReturnsElement(t *testing.T) {
	ctx, reg, globals, consts, overloads := newHarness(t)
	retIR, _ := reg.Lower(i32())
	fn := ctx.NewFunction("main", retIR, nil, nil, false, nativeir.LinkageExported)
	entry := fn.EntryBlock()
	lw := New(ctx, reg, globals, consts, overloads, fn, entry)
	lw.SetReturnType(i32())

	arrName := interner.Intern("a")
	pName := interner.Intern("p")
	arrType := ast.ArrayOf(i32(), 4)
	ptrType := ast.PtrTo(i32())

	body := ast.Stmt{Kind: ast.StmtBlock, Body: []ast.Stmt{
		{Kind: ast.StmtVarDecl, VarName: arrName, VarType: &arrType},
		{Kind: ast.StmtExpr, X: &ast.Expr{
			Kind: ast.ExprAssign,
			X:    &ast.Expr{Kind: ast.ExprIndex, X: &ast.Expr{Kind: ast.ExprIdent, Name: arrName}, Y: &ast.Expr{Kind: ast.ExprIntLit, IntVal: 0}},
			Y:    &ast.Expr{Kind: ast.ExprIntLit, IntVal: 9},
		}},
		{Kind: ast.StmtVarDecl, VarName: pName, VarType: &ptrType,
			Init: &ast.Expr{Kind: ast.ExprAddr, X: &ast.Expr{Kind: ast.ExprIndex, X: &ast.Expr{Kind: ast.ExprIdent, Name: arrName}, Y: &ast.Expr{Kind: ast.ExprIntLit, IntVal: 0}}}},
		{Kind: ast.StmtReturn, Result: &ast.Expr{
			Kind: ast.ExprBinary, BinOp: ast.BinAdd,
			X:    &ast.Expr{Kind: ast.ExprIdent, Name: pName},
			Y:    &ast.Expr{Kind: ast.ExprIntLit, IntVal: 0},
		}},
	}}

	if err := lw.LowerBody(&body); err != nil {
		t.Fatalf("LowerBody: %v", err)
	}
	ir := ctx.DumpIR()
	if !strings.Contains(ir, "getelementptr inbounds i32, ptr") {
		t.Fatalf("expected pointer-index getelementptr, got:\n%s", ir)
	}
	if strings.Contains(ir, "add i32") {
		t.Fatalf("pointer+int must not lower as arithmetic, got:\n%s", ir)
	}
}

// TestBreakTerminatesLoopBody grounds spec scenario 5: a while(1){
// if(c) break; } loop's body block terminates via the break jump, and
// the exit block is only reachable through that edge.
func TestBreakTerminatesLoopBody(t *testing.T) {
	ctx, reg, globals, consts, overloads := newHarness(t)
	voidTy := ctx.VoidType()
	fn := ctx.NewFunction("loop", voidTy, nil, nil, false, nativeir.LinkageExported)
	entry := fn.EntryBlock()
	lw := New(ctx, reg, globals, consts, overloads, fn, entry)
	lw.SetReturnType(ast.Void())

	cName := interner.Intern("c")
	body := ast.Stmt{Kind: ast.StmtBlock, Body: []ast.Stmt{
		{Kind: ast.StmtVarDecl, VarName: cName, VarType: func() *ast.Type { b := ast.Basic(interner.Intern("bool")); return &b }()},
		{Kind: ast.StmtWhile,
			Cond: &ast.Expr{Kind: ast.ExprBoolLit, BoolVal: true},
			Then: &ast.Stmt{Kind: ast.StmtBlock, Body: []ast.Stmt{
				{Kind: ast.StmtIf,
					Cond: &ast.Expr{Kind: ast.ExprIdent, Name: cName},
					Then: &ast.Stmt{Kind: ast.StmtBreak},
				},
			}},
		},
		{Kind: ast.StmtReturn},
	}}

	if err := lw.LowerBody(&body); err != nil {
		t.Fatalf("LowerBody: %v", err)
	}
	if !lw.CurrentBlock().Terminated() {
		t.Fatalf("expected trailing block to be terminated by the bare return")
	}
	exitLabel := lw.CurrentBlock().Label()
	ir := ctx.DumpIR()
	if !strings.Contains(ir, "  br label %"+exitLabel+"\n") {
		t.Fatalf("expected the break to jump to %s, got:\n%s", exitLabel, ir)
	}
	if n := strings.Count(ir, "label %"+exitLabel); n != 1 {
		t.Fatalf("expected the break edge to be the only edge into %s, found %d, got:\n%s", exitLabel, n, ir)
	}
}
