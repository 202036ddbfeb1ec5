package constfold

import (
	"fmt"

	"havoc/internal/ast"
)

// evalStmt executes s against bindings, mutating bindings for Var
// declarations and assignments it can resolve. It returns the value
// passed to the nearest enclosing return (if one was hit), whether a
// return actually fired, and an error for any statement kind outside
// the supported set (spec.md §4.8: Block, Expr, Return, Var, If,
// While — everything else inside a constant function is fatal).
func (e *Evaluator) evalStmt(s *ast.Stmt, bindings env) (Const, bool, error) {
	switch s.Kind {
	case ast.StmtBlock:
		for i := range s.Body {
			v, returned, err := e.evalStmt(&s.Body[i], bindings)
			if err != nil {
				return None(), false, err
			}
			if returned {
				return v, true, nil
			}
		}
		return None(), false, nil

	case ast.StmtExpr:
		e.evalAssignOrExpr(s.X, bindings)
		return None(), false, nil

	case ast.StmtVarDecl:
		if s.Init != nil {
			bindings[s.VarName] = e.Eval(s.Init, bindings)
		} else {
			bindings[s.VarName] = None()
		}
		return None(), false, nil

	case ast.StmtReturn:
		if s.Result == nil {
			return Const{Kind: KindVoid}, true, nil
		}
		return e.Eval(s.Result, bindings), true, nil

	case ast.StmtIf:
		cond := e.Eval(s.Cond, bindings)
		if cond.Kind != KindBool {
			return None(), false, fmt.Errorf("constfold: if condition is not a statically known bool")
		}
		if cond.BoolVal {
			return e.evalStmt(s.Then, bindings)
		}
		if s.Else != nil {
			return e.evalStmt(s.Else, bindings)
		}
		return None(), false, nil

	case ast.StmtWhile:
		const iterationLimit = 1 << 20
		for i := 0; ; i++ {
			if i >= iterationLimit {
				return None(), false, fmt.Errorf("constfold: while loop exceeded the constant-evaluation iteration limit")
			}
			cond := e.Eval(s.Cond, bindings)
			if cond.Kind != KindBool {
				return None(), false, fmt.Errorf("constfold: while condition is not a statically known bool")
			}
			if !cond.BoolVal {
				return None(), false, nil
			}
			v, returned, err := e.evalStmt(s.Then, bindings)
			if err != nil {
				return None(), false, err
			}
			if returned {
				return v, true, nil
			}
		}

	default:
		return None(), false, fmt.Errorf("constfold: statement kind %d is not supported inside a constant function", s.Kind)
	}
}

// evalAssignOrExpr handles a bare expression statement: plain-value
// assignment to a bound identifier is the only StmtExpr shape constant
// functions use for mutation, since there is no heap in this abstract
// interpreter.
func (e *Evaluator) evalAssignOrExpr(expr *ast.Expr, bindings env) {
	if expr.Kind != ast.ExprAssign {
		e.Eval(expr, bindings)
		return
	}
	if expr.X.Kind != ast.ExprIdent {
		return
	}
	bindings[expr.X.Name] = e.Eval(expr.Y, bindings)
}
