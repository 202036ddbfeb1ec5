package constfold

import (
	"testing"

	"havoc/internal/ast"
	"havoc/internal/interner"
)

func name(s string) ast.Name { return interner.Intern(s) }

func intLit(v int64) ast.Expr { return ast.Expr{Kind: ast.ExprIntLit, IntVal: v} }

func TestEvalWrappingArithmetic(t *testing.T) {
	e := NewEvaluator()
	expr := ast.Expr{Kind: ast.ExprBinary, BinOp: ast.BinAdd}
	x := intLit(9223372036854775807)
	y := intLit(1)
	expr.X, expr.Y = &x, &y
	got := e.Eval(&expr, nil)
	if got.Kind != KindInt || got.IntVal != -9223372036854775808 {
		t.Fatalf("got %+v, want wrapped min int64", got)
	}
}

func TestEvalComparisonMixedTypesYieldsNone(t *testing.T) {
	e := NewEvaluator()
	x := intLit(1)
	y := ast.Expr{Kind: ast.ExprBoolLit, BoolVal: true}
	expr := ast.Expr{Kind: ast.ExprBinary, BinOp: ast.BinEq, X: &x, Y: &y}
	got := e.Eval(&expr, nil)
	if got.IsKnown() {
		t.Fatalf("expected None for mismatched-kind comparison, got %+v", got)
	}
}

func TestEvalConstFnInlinesIfAndReturn(t *testing.T) {
	paramName := name("n")
	body := ast.Stmt{
		Kind: ast.StmtBlock,
		Body: []ast.Stmt{
			{
				Kind: ast.StmtIf,
				Cond: &ast.Expr{Kind: ast.ExprBinary, BinOp: ast.BinGt,
					X: &ast.Expr{Kind: ast.ExprIdent, Name: paramName},
					Y: func() *ast.Expr { v := intLit(0); return &v }(),
				},
				Then: &ast.Stmt{Kind: ast.StmtReturn, Result: func() *ast.Expr { v := intLit(1); return &v }()},
				Else: &ast.Stmt{Kind: ast.StmtReturn, Result: func() *ast.Expr { v := intLit(0); return &v }()},
			},
		},
	}
	fn := &ast.Function{Name: name("is_positive"), Params: []ast.Param{{Name: paramName, Type: ast.Basic(name("i32"))}}, Body: &body, IsConst: true}

	e := NewEvaluator()
	got, err := e.EvalConstFn(fn, []Const{{Kind: KindInt, IntVal: 5}})
	if err != nil {
		t.Fatalf("EvalConstFn: %v", err)
	}
	if got.Kind != KindInt || got.IntVal != 1 {
		t.Fatalf("got %+v, want Int(1)", got)
	}
}

func TestEvalConstFnWhileLoop(t *testing.T) {
	n := name("n")
	acc := name("acc")
	body := ast.Stmt{
		Kind: ast.StmtBlock,
		Body: []ast.Stmt{
			{Kind: ast.StmtVarDecl, VarName: acc, Init: func() *ast.Expr { v := intLit(0); return &v }()},
			{
				Kind: ast.StmtWhile,
				Cond: &ast.Expr{Kind: ast.ExprBinary, BinOp: ast.BinGt,
					X: &ast.Expr{Kind: ast.ExprIdent, Name: n},
					Y: func() *ast.Expr { v := intLit(0); return &v }(),
				},
				Then: &ast.Stmt{Kind: ast.StmtBlock, Body: []ast.Stmt{
					{Kind: ast.StmtExpr, X: &ast.Expr{Kind: ast.ExprAssign,
						X: &ast.Expr{Kind: ast.ExprIdent, Name: acc},
						Y: &ast.Expr{Kind: ast.ExprBinary, BinOp: ast.BinAdd,
							X: &ast.Expr{Kind: ast.ExprIdent, Name: acc},
							Y: &ast.Expr{Kind: ast.ExprIdent, Name: n},
						},
					}},
					{Kind: ast.StmtExpr, X: &ast.Expr{Kind: ast.ExprAssign,
						X: &ast.Expr{Kind: ast.ExprIdent, Name: n},
						Y: &ast.Expr{Kind: ast.ExprBinary, BinOp: ast.BinSub,
							X: &ast.Expr{Kind: ast.ExprIdent, Name: n},
							Y: func() *ast.Expr { v := intLit(1); return &v }(),
						},
					}},
				}},
			},
			{Kind: ast.StmtReturn, Result: &ast.Expr{Kind: ast.ExprIdent, Name: acc}},
		},
	}
	fn := &ast.Function{Name: name("sum_to"), Params: []ast.Param{{Name: n, Type: ast.Basic(name("i32"))}}, Body: &body, IsConst: true}

	e := NewEvaluator()
	got, err := e.EvalConstFn(fn, []Const{{Kind: KindInt, IntVal: 4}})
	if err != nil {
		t.Fatalf("EvalConstFn: %v", err)
	}
	if got.Kind != KindInt || got.IntVal != 10 {
		t.Fatalf("got %+v, want Int(10)", got)
	}
}

func TestEvalUnsupportedStmtIsFatal(t *testing.T) {
	body := ast.Stmt{Kind: ast.StmtFor}
	fn := &ast.Function{Name: name("bad"), Body: &body, IsConst: true}

	e := NewEvaluator()
	if _, err := e.EvalConstFn(fn, nil); err == nil {
		t.Fatalf("expected error for unsupported statement kind inside constexpr function")
	}
}

func TestRunFoldsGlobalInitializer(t *testing.T) {
	x := intLit(2)
	y := intLit(3)
	init := ast.Expr{Kind: ast.ExprBinary, BinOp: ast.BinMul, X: &x, Y: &y}
	file := &ast.File{
		Elems: []ast.Elem{
			{Kind: ast.ElemGlobal, Global: &ast.GlobalDecl{Name: name("six"), Type: ast.Basic(name("i32")), Init: &init}},
		},
	}
	if err := Run(file); err != nil {
		t.Fatalf("Run: %v", err)
	}
	got := file.Elems[0].Global.Init
	if got.Kind != ast.ExprIntLit || got.IntVal != 6 {
		t.Fatalf("got %+v, want folded literal 6", got)
	}
}

func TestRunReportsUnsupportedStatementInConstexprCall(t *testing.T) {
	badName := name("bad")
	body := ast.Stmt{Kind: ast.StmtFor}
	bad := &ast.Function{Name: badName, Body: &body, IsConst: true}

	call := ast.Expr{Kind: ast.ExprCall, CalleeName: badName}
	file := &ast.File{
		Elems: []ast.Elem{
			{Kind: ast.ElemFunc, Func: bad},
			{Kind: ast.ElemGlobal, Global: &ast.GlobalDecl{Name: name("x"), Type: ast.Basic(name("i32")), Init: &call}},
		},
	}
	if err := Run(file); err == nil {
		t.Fatalf("expected Run to report the constexpr function's unsupported statement as fatal")
	}
}
