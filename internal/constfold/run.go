package constfold

import "havoc/internal/ast"

// Run folds every statically-foldable expression in file in place,
// splicing known literals back into the tree, and registers each
// IsConst function so later folds (and the overload resolver's
// ordinary-set fallback, per the resolved open question on constexpr
// calls escaping evaluation) can see them. It mutates file's Elems
// in place; an expression this pass cannot fold (because some operand
// isn't statically known) is simply left untouched for the lowerer to
// handle normally. The one error Run does return is the fatal one
// spec.md §7 requires: a call to a constexpr function whose body uses
// a statement kind the evaluator doesn't support (anything beyond
// Block, Expr, Return, Var, If, While).
func Run(file *ast.File) error {
	e := NewEvaluator()
	for i := range file.Elems {
		if fn := file.Elems[i].Func; fn != nil && fn.IsConst {
			e.RegisterConstFn(fn)
		}
	}
	for i := range file.Elems {
		el := &file.Elems[i]
		switch el.Kind {
		case ast.ElemFunc:
			if el.Func.Body != nil {
				e.foldStmt(el.Func.Body, nil)
			}
		case ast.ElemGlobal:
			if el.Global.Init != nil {
				e.foldExprInPlace(&el.Global.Init)
			}
		case ast.ElemConst:
			e.foldExprInPlace2(&el.Const.Value)
		}
		if e.err != nil {
			return e.err
		}
	}
	return e.err
}

// foldExprInPlace replaces *slot with its folded literal if e can
// determine one, leaving *slot untouched otherwise. It first folds
// any foldable subexpressions so that e.g. a binary op over two
// already-literal operands becomes foldable even after one operand was
// itself just replaced.
func (e *Evaluator) foldExprInPlace(slot **ast.Expr) {
	if *slot == nil {
		return
	}
	e.foldChildren(*slot)
	c := e.Eval(*slot, nil)
	if !c.IsKnown() {
		return
	}
	if folded, ok := c.ToExpr((*slot).Pos); ok {
		folded.ID = (*slot).ID
		*slot = &folded
	}
}

// foldChildren recurses into expr's operand slots and folds each one
// before expr itself is attempted, so nested constant subexpressions
// collapse bottom-up.
func (e *Evaluator) foldChildren(expr *ast.Expr) {
	switch expr.Kind {
	case ast.ExprUnary, ast.ExprCast, ast.ExprDeref, ast.ExprAddr, ast.ExprSizeof:
		e.foldExprInPlace(&expr.X)
	case ast.ExprBinary, ast.ExprIndex:
		e.foldExprInPlace(&expr.X)
		e.foldExprInPlace(&expr.Y)
	case ast.ExprAssign:
		e.foldExprInPlace(&expr.Y)
	case ast.ExprField, ast.ExprArrow:
		e.foldExprInPlace(&expr.X)
	case ast.ExprCall:
		for i := range expr.Args {
			e.foldExprInPlace2(&expr.Args[i])
		}
	case ast.ExprStructLit:
		for i := range expr.FieldInits {
			e.foldExprInPlace2(&expr.FieldInits[i].Value)
		}
	}
}

// foldExprInPlace2 is foldExprInPlace specialized to a value slot
// (ast.Expr, not *ast.Expr) for slice elements that aren't pointers.
func (e *Evaluator) foldExprInPlace2(slot *ast.Expr) {
	e.foldChildren(slot)
	c := e.Eval(slot, nil)
	if !c.IsKnown() {
		return
	}
	if folded, ok := c.ToExpr(slot.Pos); ok {
		folded.ID = slot.ID
		*slot = folded
	}
}

// foldStmt walks s looking for foldable expressions, recursing into
// every nested block/branch/loop body. Unlike evalStmt (used for
// abstractly inlining a constexpr function body), this never executes
// control flow — it only folds expressions wherever they appear.
func (e *Evaluator) foldStmt(s *ast.Stmt, bindings env) {
	switch s.Kind {
	case ast.StmtBlock:
		for i := range s.Body {
			e.foldStmt(&s.Body[i], bindings)
		}
	case ast.StmtExpr:
		e.foldExprInPlace(&s.X)
	case ast.StmtVarDecl:
		if s.Init != nil {
			e.foldExprInPlace(&s.Init)
		}
	case ast.StmtIf:
		e.foldExprInPlace(&s.Cond)
		e.foldStmt(s.Then, bindings)
		if s.Else != nil {
			e.foldStmt(s.Else, bindings)
		}
	case ast.StmtWhile:
		e.foldExprInPlace(&s.Cond)
		e.foldStmt(s.Then, bindings)
	case ast.StmtFor:
		if s.ForInit != nil {
			e.foldStmt(s.ForInit, bindings)
		}
		if s.Cond != nil {
			e.foldExprInPlace(&s.Cond)
		}
		if s.ForPost != nil {
			e.foldExprInPlace(&s.ForPost)
		}
		e.foldStmt(s.Then, bindings)
	case ast.StmtReturn:
		if s.Result != nil {
			e.foldExprInPlace(&s.Result)
		}
	}
}
