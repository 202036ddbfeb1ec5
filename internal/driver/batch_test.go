package driver

import (
	"context"
	"testing"

	"havoc/internal/ast"
	"havoc/internal/interner"
)

func fileReturningInt(fileName, fnName string, val int64) *ast.File {
	return &ast.File{
		Name: interner.Intern(fileName),
		Elems: []ast.Elem{
			{Kind: ast.ElemFunc, Func: &ast.Function{
				Name: interner.Intern(fnName), Ret: i32(),
				Body: &ast.Stmt{Kind: ast.StmtBlock, Body: []ast.Stmt{
					{Kind: ast.StmtReturn, Result: &ast.Expr{Kind: ast.ExprIntLit, IntVal: val}},
				}},
			}},
		},
	}
}

func fileCallingUnknown(fileName, fnName string) *ast.File {
	return &ast.File{
		Name: interner.Intern(fileName),
		Elems: []ast.Elem{
			{Kind: ast.ElemFunc, Func: &ast.Function{
				Name: interner.Intern(fnName), Ret: i32(),
				Body: &ast.Stmt{Kind: ast.StmtBlock, Body: []ast.Stmt{
					{Kind: ast.StmtReturn, Result: &ast.Expr{Kind: ast.ExprCall, CalleeName: interner.Intern("does_not_exist")}},
				}},
			}},
		},
	}
}

// TestRunBatchPartialFailure grounds spec.md §7's batch-mode carve-out:
// one unit failing to lower does not prevent its siblings from
// compiling successfully.
func TestRunBatchPartialFailure(t *testing.T) {
	units := []Unit{
		{File: fileReturningInt("a", "main", 1), Opts: Options{AllowUnreachableBlocks: true}},
		{File: fileCallingUnknown("b", "main"), Opts: Options{AllowUnreachableBlocks: true}},
		{File: fileReturningInt("c", "main", 2), Opts: Options{AllowUnreachableBlocks: true}},
	}

	results := RunBatch(context.Background(), units, 0, nil, nil)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	if results[0].Err != nil {
		t.Fatalf("unit 0 should have succeeded, got %v", results[0].Err)
	}
	if results[2].Err != nil {
		t.Fatalf("unit 2 should have succeeded, got %v", results[2].Err)
	}
	if results[1].Err == nil {
		t.Fatalf("unit 1 should have failed to lower an unknown callee")
	}
}

type recordingProgress struct {
	started []int
	done    []int
}

func (p *recordingProgress) OnUnitStart(index int) { p.started = append(p.started, index) }
func (p *recordingProgress) OnUnitDone(index int, err error) { p.done = append(p.done, index) }

func TestRunBatchReportsProgressForEveryUnit(t *testing.T) {
	units := []Unit{
		{File: fileReturningInt("a", "main", 1), Opts: Options{AllowUnreachableBlocks: true}},
		{File: fileReturningInt("b", "main", 2), Opts: Options{AllowUnreachableBlocks: true}},
	}
	progress := &recordingProgress{}
	RunBatch(context.Background(), units, 0, nil, progress)

	if len(progress.started) != 2 || len(progress.done) != 2 {
		t.Fatalf("expected start/done callbacks for both units, got started=%v done=%v", progress.started, progress.done)
	}
}
