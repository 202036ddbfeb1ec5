package lower

import (
	"fmt"

	"havoc/internal/ast"
	"havoc/internal/nativeir"
	"havoc/internal/symbols"
)

// lowerStmt implements C6 (spec.md §4.5): emits blocks for s into the
// current function, threading the break/continue target stacks through
// nested loops.
func (lw *Lowerer) lowerStmt(s *ast.Stmt) error {
	switch s.Kind {
	case ast.StmtBlock:
		lw.locals.Push()
		defer lw.locals.Pop()
		for i := range s.Body {
			if err := lw.lowerStmt(&s.Body[i]); err != nil {
				return err
			}
			if lw.block.Terminated() {
				return nil
			}
		}
		return nil

	case ast.StmtExpr:
		_, _, err := lw.lowerExpr(s.X)
		return err

	case ast.StmtVarDecl:
		return lw.lowerVarDecl(s)

	case ast.StmtReturn:
		if s.Result == nil {
			lw.block.EndWithVoidReturn()
			return nil
		}
		rv, _, err := lw.lowerExpr(s.Result)
		if err != nil {
			return err
		}
		retIR, err := lw.registry.Lower(lw.fnReturnType())
		if err != nil {
			return err
		}
		lw.block.EndWithReturn(lw.castForDestination(rv, lw.fnReturnType(), retIR))
		return nil

	case ast.StmtBreak:
		target, err := lw.currentBreakTarget()
		if err != nil {
			return err
		}
		lw.block.EndWithJump(target)
		return nil

	case ast.StmtContinue:
		target, err := lw.currentContinueTarget()
		if err != nil {
			return err
		}
		lw.block.EndWithJump(target)
		lw.block = lw.fn.NewBlock("afterContinue")
		return nil

	case ast.StmtIf:
		return lw.lowerIf(s)
	case ast.StmtWhile:
		return lw.lowerWhile(s)
	case ast.StmtFor:
		return lw.lowerFor(s)

	default:
		return fmt.Errorf("lower: unsupported statement kind %d", s.Kind)
	}
}

// fnReturnType is a placeholder hook the driver overrides by setting
// returnType before lowering a body; see SetReturnType.
func (lw *Lowerer) fnReturnType() ast.Type { return lw.returnType }

// SetReturnType records fn's declared return type, needed to cast the
// operand of a `return expr;` to the function's IR return type.
func (lw *Lowerer) SetReturnType(t ast.Type) { lw.returnType = t }

func (lw *Lowerer) lowerVarDecl(s *ast.Stmt) error {
	declType := ast.Void()
	if s.VarType != nil {
		declType = *s.VarType
	} else if s.Init != nil {
		declType = lw.typeOf(s.Init)
	}
	irTy, err := lw.registry.Lower(declType)
	if err != nil {
		return err
	}
	lv := lw.fn.NewLocal(irTy)
	if s.Init != nil {
		rv, _, err := lw.lowerExpr(s.Init)
		if err != nil {
			return err
		}
		lw.block.AddAssignment(lv, lw.castForDestination(rv, declType, irTy))
	} else {
		lw.block.AddAssignment(lv, lw.ctx.Zero(irTy))
	}
	lw.locals.Declare(s.VarName, symbols.VarInfo{LValue: lv, ASTType: declType, IRType: irTy})
	return nil
}

// lowerIf implements the fresh then/else/merge scaffolding of spec.md
// §4.5; merge collapses onto else when no else-branch is present.
func (lw *Lowerer) lowerIf(s *ast.Stmt) error {
	cond, _, err := lw.lowerExpr(s.Cond)
	if err != nil {
		return err
	}
	thenB := lw.fn.NewBlock("ifThen")
	var elseB, mergeB *nativeir.Block
	if s.Else != nil {
		elseB = lw.fn.NewBlock("ifElse")
		mergeB = lw.fn.NewBlock("ifMerge")
	} else {
		mergeB = lw.fn.NewBlock("ifMerge")
		elseB = mergeB
	}
	lw.block.EndWithConditional(cond, thenB, elseB)

	lw.block = thenB
	if err := lw.lowerStmt(s.Then); err != nil {
		return err
	}
	if !lw.block.Terminated() {
		lw.block.EndWithJump(mergeB)
	}

	if s.Else != nil {
		lw.block = elseB
		if err := lw.lowerStmt(s.Else); err != nil {
			return err
		}
		if !lw.block.Terminated() {
			lw.block.EndWithJump(mergeB)
		}
	}

	lw.block = mergeB
	return nil
}

func (lw *Lowerer) lowerWhile(s *ast.Stmt) error {
	header := lw.fn.NewBlock("whileHeader")
	body := lw.fn.NewBlock("whileBody")
	exit := lw.fn.NewBlock("whileExit")

	lw.block.EndWithJump(header)
	lw.block = header
	if (s.Cond.Kind == ast.ExprBoolLit && s.Cond.BoolVal) || (s.Cond.Kind == ast.ExprIntLit && s.Cond.IntVal != 0) {
		lw.block.EndWithJump(body)
	} else {
		cond, _, err := lw.lowerExpr(s.Cond)
		if err != nil {
			return err
		}
		lw.block.EndWithConditional(cond, body, exit)
	}

	lw.block = body
	lw.pushLoopTargets(exit, header)
	err := lw.lowerStmt(s.Then)
	lw.popLoopTargets()
	if err != nil {
		return err
	}
	if !lw.block.Terminated() {
		lw.block.EndWithJump(header)
	}

	lw.block = exit
	return nil
}

// lowerFor implements CFor(init, cond, step, body) (spec.md §4.5): init
// runs in the current block under a fresh local scope, then header/body
// (body, then step, then jump back to header)/exit. An omitted Cond
// branches unconditionally into the body, covering the C-style
// `for(;;)` infinite-loop form without a separate AST node.
func (lw *Lowerer) lowerFor(s *ast.Stmt) error {
	lw.locals.Push()
	defer lw.locals.Pop()

	if s.ForInit != nil {
		if err := lw.lowerStmt(s.ForInit); err != nil {
			return err
		}
	}

	header := lw.fn.NewBlock("forHeader")
	body := lw.fn.NewBlock("forBody")
	exit := lw.fn.NewBlock("forExit")

	lw.block.EndWithJump(header)
	lw.block = header
	if s.Cond != nil {
		cond, _, err := lw.lowerExpr(s.Cond)
		if err != nil {
			return err
		}
		lw.block.EndWithConditional(cond, body, exit)
	} else {
		lw.block.EndWithJump(body)
	}

	lw.block = body
	lw.pushLoopTargets(exit, header)
	err := lw.lowerStmt(s.Then)
	lw.popLoopTargets()
	if err != nil {
		return err
	}
	if !lw.block.Terminated() {
		if s.ForPost != nil {
			if _, _, err := lw.lowerExpr(s.ForPost); err != nil {
				return err
			}
		}
		lw.block.EndWithJump(header)
	}

	lw.block = exit
	return nil
}
