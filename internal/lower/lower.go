// Package lower implements C4 (LValue Resolver), C5 (Expression Lowerer),
// and C6 (Statement Lowerer): the three cooperating passes that turn one
// function body's AST into native IR blocks (spec.md §4.3-§4.5).
package lower

import (
	"fmt"

	"havoc/internal/ast"
	"havoc/internal/nativeir"
	"havoc/internal/symbols"
	"havoc/internal/types"
)

// Lowerer holds everything one function body's lowering needs: the
// shared native IR context and type/symbol tables (populated by the
// top-level driver before body lowering begins), plus the per-function
// mutable state — current function/block, local scope stack, and the
// break/continue target stacks spec.md §4.5 names explicitly. A fresh
// Lowerer is created per function; the shared tables are passed in by
// reference so every function of one compilation sees the same structs,
// globals, and overload sets.
type Lowerer struct {
	ctx      *nativeir.Context
	registry *types.Registry
	globals  *symbols.Globals
	consts   *symbols.Constants
	overload *symbols.OverloadTable

	fn     *nativeir.Function
	block  *nativeir.Block
	locals *symbols.Locals

	breakTargets    []*nativeir.Block
	continueTargets []*nativeir.Block

	returnType ast.Type
}

// New creates a Lowerer for fn, starting at entry with one function-level
// local scope already open.
func New(ctx *nativeir.Context, registry *types.Registry, globals *symbols.Globals, consts *symbols.Constants, overloadTable *symbols.OverloadTable, fn *nativeir.Function, entry *nativeir.Block) *Lowerer {
	return &Lowerer{
		ctx:      ctx,
		registry: registry,
		globals:  globals,
		consts:   consts,
		overload: overloadTable,
		fn:       fn,
		block:    entry,
		locals:   symbols.NewLocals(),
	}
}

// Locals exposes the local scope table so the driver (C8 pass 4) can
// declare parameter and receiver bindings before lowering the body.
func (lw *Lowerer) Locals() *symbols.Locals { return lw.locals }

// CurrentBlock returns the block the next statement will emit into. The
// driver uses this after LowerBody returns to confirm (or force) a
// trailing terminator on a function whose body fell off the end.
func (lw *Lowerer) CurrentBlock() *nativeir.Block { return lw.block }

// LowerBody lowers body (a StmtBlock) into the function starting at the
// current block.
func (lw *Lowerer) LowerBody(body *ast.Stmt) error {
	return lw.lowerStmt(body)
}

// AssignGlobalInit lowers init and stores it into dest, casting per the
// implicit-cast policy. The top-level driver (C8 pass 4) calls this once
// per global, in declaration order, into main's entry block before any
// user statement (spec.md §4.7).
func (lw *Lowerer) AssignGlobalInit(dest nativeir.LValue, destAST ast.Type, init *ast.Expr) error {
	rv, _, err := lw.lowerExpr(init)
	if err != nil {
		return err
	}
	lw.block.AddAssignment(dest, lw.castForDestination(rv, destAST, dest.Type))
	return nil
}

func (lw *Lowerer) pushLoopTargets(breakTo, continueTo *nativeir.Block) {
	lw.breakTargets = append(lw.breakTargets, breakTo)
	lw.continueTargets = append(lw.continueTargets, continueTo)
}

func (lw *Lowerer) popLoopTargets() {
	lw.breakTargets = lw.breakTargets[:len(lw.breakTargets)-1]
	lw.continueTargets = lw.continueTargets[:len(lw.continueTargets)-1]
}

func (lw *Lowerer) currentBreakTarget() (*nativeir.Block, error) {
	if len(lw.breakTargets) == 0 {
		return nil, fmt.Errorf("lower: break outside any loop")
	}
	return lw.breakTargets[len(lw.breakTargets)-1], nil
}

func (lw *Lowerer) currentContinueTarget() (*nativeir.Block, error) {
	if len(lw.continueTargets) == 0 {
		return nil, fmt.Errorf("lower: continue outside any loop")
	}
	return lw.continueTargets[len(lw.continueTargets)-1], nil
}

// castForDestination applies the implicit cast policy (spec.md §4.4):
// every destination is cast to except a struct- or array-typed one,
// which must already be type-identical.
func (lw *Lowerer) castForDestination(rv nativeir.RValue, destAST ast.Type, destIR *nativeir.CType) nativeir.RValue {
	if destAST.Kind == ast.KindStruct || destAST.Kind == ast.KindArray {
		return rv
	}
	return lw.block.Cast(rv, destIR)
}

// addressOf returns a pointer rvalue to e. If e has an lvalue, its
// address is taken directly; otherwise a fresh function-scope local is
// materialized and initialized from e's rvalue, and its address is
// taken instead (the address-of-temporary fix: spec.md §9 flags the
// source's use of an internal global with static lifetime for this
// case, which leaks; a local matches the apparent intent).
func (lw *Lowerer) addressOf(e *ast.Expr) (nativeir.RValue, error) {
	if lv, _, ok := lw.resolveLValue(e); ok {
		return lw.block.GetAddress(lv), nil
	}
	rv, astTy, err := lw.lowerExpr(e)
	if err != nil {
		return nativeir.RValue{}, err
	}
	irTy, err := lw.registry.Lower(astTy)
	if err != nil {
		return nativeir.RValue{}, err
	}
	tmp := lw.fn.NewLocal(irTy)
	lw.block.AddAssignment(tmp, rv)
	return lw.block.GetAddress(tmp), nil
}
