package constfold

import (
	"fmt"

	"havoc/internal/ast"
	"havoc/internal/interner"
)

// Evaluator folds known values and inlines constexpr calls. It is
// stateless between top-level functions except for the constexpr
// function table, which Run populates up front so mutually-visible
// constexpr functions can call one another regardless of declaration
// order.
type Evaluator struct {
	constFns map[interner.Name]*ast.Function

	// err latches the first fatal error raised while inlining a
	// constexpr function body (spec.md §7: an unsupported statement
	// inside a constant function aborts compilation). Eval has no error
	// return of its own, so evalCall stashes the failure here instead of
	// discarding it; Run surfaces it once folding finishes.
	err error
}

// NewEvaluator creates an Evaluator with no registered constexpr
// functions.
func NewEvaluator() *Evaluator {
	return &Evaluator{constFns: make(map[interner.Name]*ast.Function)}
}

// RegisterConstFn makes fn callable from constant expressions.
func (e *Evaluator) RegisterConstFn(fn *ast.Function) {
	e.constFns[fn.Name] = fn
}

// env is the abstract-interpretation binding environment for a constexpr
// function body: parameter/local names to their currently-known value.
type env map[interner.Name]Const

// Eval computes expr's compile-time value, or None if any operand is
// not statically known. env may be nil for top-level (non-function-body)
// expressions.
func (e *Evaluator) Eval(expr *ast.Expr, bindings env) Const {
	switch expr.Kind {
	case ast.ExprIntLit:
		return Const{Kind: KindInt, IntVal: expr.IntVal}
	case ast.ExprFloatLit:
		return Const{Kind: KindFloat, FloatVal: expr.FloatVal}
	case ast.ExprBoolLit:
		return Const{Kind: KindBool, BoolVal: expr.BoolVal}
	case ast.ExprStrLit:
		return Const{Kind: KindString, StrVal: expr.StrVal}
	case ast.ExprIdent:
		if bindings != nil {
			if v, ok := bindings[expr.Name]; ok {
				return v
			}
		}
		return None()
	case ast.ExprUnary:
		return e.evalUnary(expr, bindings)
	case ast.ExprBinary:
		return e.evalBinary(expr, bindings)
	case ast.ExprCast:
		return e.evalCast(expr, bindings)
	case ast.ExprStructLit:
		return e.evalStructLit(expr, bindings)
	case ast.ExprCall:
		return e.evalCall(expr, bindings)
	default:
		return None()
	}
}

func (e *Evaluator) evalUnary(expr *ast.Expr, bindings env) Const {
	x := e.Eval(expr.X, bindings)
	if !x.IsKnown() {
		return None()
	}
	switch expr.UnOp {
	case ast.UnaryNeg:
		switch x.Kind {
		case KindInt:
			return Const{Kind: KindInt, IntVal: -x.IntVal}
		case KindFloat:
			return Const{Kind: KindFloat, FloatVal: -x.FloatVal}
		}
	case ast.UnaryNot:
		if x.Kind == KindBool {
			return Const{Kind: KindBool, BoolVal: !x.BoolVal}
		}
		if x.Kind == KindInt {
			return Const{Kind: KindInt, IntVal: ^x.IntVal}
		}
	case ast.UnaryBitNot:
		if x.Kind == KindInt {
			return Const{Kind: KindInt, IntVal: ^x.IntVal}
		}
	}
	return None()
}

// evalBinary applies wrapping integer arithmetic and defined-for-
// matching-primitive-pairs comparisons (spec.md §4.8). Mixed types, or
// any operand not statically known, yield None.
func (e *Evaluator) evalBinary(expr *ast.Expr, bindings env) Const {
	a := e.Eval(expr.X, bindings)
	b := e.Eval(expr.Y, bindings)
	if !a.IsKnown() || !b.IsKnown() || a.Kind != b.Kind {
		return None()
	}
	switch a.Kind {
	case KindInt:
		return evalIntBinary(expr.BinOp, a.IntVal, b.IntVal)
	case KindFloat:
		return evalFloatBinary(expr.BinOp, a.FloatVal, b.FloatVal)
	case KindBool:
		return evalBoolBinary(expr.BinOp, a.BoolVal, b.BoolVal)
	default:
		return None()
	}
}

func evalIntBinary(op ast.BinaryOp, a, b int64) Const {
	switch op {
	case ast.BinAdd:
		return Const{Kind: KindInt, IntVal: a + b} // wrapping: Go's int64 overflow already wraps
	case ast.BinSub:
		return Const{Kind: KindInt, IntVal: a - b}
	case ast.BinMul:
		return Const{Kind: KindInt, IntVal: a * b}
	case ast.BinDiv:
		if b == 0 {
			return None()
		}
		return Const{Kind: KindInt, IntVal: a / b}
	case ast.BinMod:
		if b == 0 {
			return None()
		}
		return Const{Kind: KindInt, IntVal: a % b}
	case ast.BinBitOr:
		return Const{Kind: KindInt, IntVal: a | b}
	case ast.BinBitAnd:
		return Const{Kind: KindInt, IntVal: a & b}
	case ast.BinBitXor:
		return Const{Kind: KindInt, IntVal: a ^ b}
	case ast.BinShl:
		return Const{Kind: KindInt, IntVal: a << uint(b)}
	case ast.BinShr:
		return Const{Kind: KindInt, IntVal: a >> uint(b)}
	case ast.BinEq:
		return Const{Kind: KindBool, BoolVal: a == b}
	case ast.BinNe:
		return Const{Kind: KindBool, BoolVal: a != b}
	case ast.BinLt:
		return Const{Kind: KindBool, BoolVal: a < b}
	case ast.BinLe:
		return Const{Kind: KindBool, BoolVal: a <= b}
	case ast.BinGt:
		return Const{Kind: KindBool, BoolVal: a > b}
	case ast.BinGe:
		return Const{Kind: KindBool, BoolVal: a >= b}
	default:
		return None()
	}
}

func evalFloatBinary(op ast.BinaryOp, a, b float64) Const {
	switch op {
	case ast.BinAdd:
		return Const{Kind: KindFloat, FloatVal: a + b}
	case ast.BinSub:
		return Const{Kind: KindFloat, FloatVal: a - b}
	case ast.BinMul:
		return Const{Kind: KindFloat, FloatVal: a * b}
	case ast.BinDiv:
		return Const{Kind: KindFloat, FloatVal: a / b}
	case ast.BinEq:
		return Const{Kind: KindBool, BoolVal: a == b}
	case ast.BinNe:
		return Const{Kind: KindBool, BoolVal: a != b}
	case ast.BinLt:
		return Const{Kind: KindBool, BoolVal: a < b}
	case ast.BinLe:
		return Const{Kind: KindBool, BoolVal: a <= b}
	case ast.BinGt:
		return Const{Kind: KindBool, BoolVal: a > b}
	case ast.BinGe:
		return Const{Kind: KindBool, BoolVal: a >= b}
	default:
		return None()
	}
}

func evalBoolBinary(op ast.BinaryOp, a, b bool) Const {
	switch op {
	case ast.BinLogAnd:
		return Const{Kind: KindBool, BoolVal: a && b}
	case ast.BinLogOr:
		return Const{Kind: KindBool, BoolVal: a || b}
	case ast.BinEq:
		return Const{Kind: KindBool, BoolVal: a == b}
	case ast.BinNe:
		return Const{Kind: KindBool, BoolVal: a != b}
	default:
		return None()
	}
}

func (e *Evaluator) evalCast(expr *ast.Expr, bindings env) Const {
	x := e.Eval(expr.X, bindings)
	if !x.IsKnown() || expr.CastTo == nil || expr.CastTo.Kind != ast.KindBasic {
		return None()
	}
	name := interner.Str(expr.CastTo.Name)
	switch {
	case x.Kind == KindInt && isFloatTypeName(name):
		return Const{Kind: KindFloat, FloatVal: float64(x.IntVal)}
	case x.Kind == KindFloat && isIntTypeName(name):
		return Const{Kind: KindInt, IntVal: int64(x.FloatVal)}
	default:
		return x
	}
}

func isFloatTypeName(n string) bool { return n == "f32" || n == "f64" }
func isIntTypeName(n string) bool {
	switch n {
	case "i8", "u8", "i16", "u16", "i32", "u32", "i64", "u64", "usize", "char":
		return true
	default:
		return false
	}
}

func (e *Evaluator) evalStructLit(expr *ast.Expr, bindings env) Const {
	fields := make(map[ast.Name]Const, len(expr.FieldInits))
	keys := make([]ast.Name, 0, len(expr.FieldInits))
	for _, fi := range expr.FieldInits {
		v := e.Eval(&fi.Value, bindings)
		if !v.IsKnown() {
			return None()
		}
		fields[fi.Name] = v
		keys = append(keys, fi.Name)
	}
	return Const{Kind: KindStruct, StructName: expr.StructName, Fields: fields, FieldKeys: keys}
}

func (e *Evaluator) evalCall(expr *ast.Expr, bindings env) Const {
	fn, ok := e.constFns[expr.CalleeName]
	if !ok {
		return None()
	}
	args := make([]Const, len(expr.Args))
	for i := range expr.Args {
		args[i] = e.Eval(&expr.Args[i], bindings)
		if !args[i].IsKnown() {
			return None()
		}
	}
	result, err := e.EvalConstFn(fn, args)
	if err != nil {
		if e.err == nil {
			e.err = err
		}
		return None()
	}
	return result
}

// EvalConstFn abstractly inlines a constexpr function body: binds
// parameters to evaluated arguments, walks statements, and returns the
// Const::Ret value (spec.md §4.8). It reports an error for any
// unsupported statement kind; callers within this package (evalCall)
// must not discard that error, since spec.md §7 lists it as fatal and
// process-aborting rather than a "not foldable, try something else"
// signal.
func (e *Evaluator) EvalConstFn(fn *ast.Function, args []Const) (Const, error) {
	bindings := make(env, len(fn.Params))
	for i, p := range fn.Params {
		if i < len(args) {
			bindings[p.Name] = args[i]
		}
	}
	if fn.Body == nil {
		return None(), fmt.Errorf("constfold: constexpr function %q has no body", interner.Str(fn.Name))
	}
	result, returned, err := e.evalStmt(fn.Body, bindings)
	if err != nil {
		return None(), err
	}
	if !returned {
		return Const{Kind: KindVoid}, nil
	}
	return result, nil
}
