package lower

import (
	"fmt"

	"havoc/internal/ast"
	"havoc/internal/interner"
	"havoc/internal/nativeir"
)

// lowerExpr implements C5 (spec.md §4.4): produces an rvalue for e,
// along with e's static AST type (needed by callers deciding casts or
// further lvalue resolution).
func (lw *Lowerer) lowerExpr(e *ast.Expr) (nativeir.RValue, ast.Type, error) {
	switch e.Kind {
	case ast.ExprIntLit:
		return lw.ctx.ConstInt(32, e.IntVal), typeI32, nil
	case ast.ExprFloatLit:
		return lw.ctx.ConstDouble(e.FloatVal), typeF64, nil
	case ast.ExprBoolLit:
		v := int64(0)
		if e.BoolVal {
			v = 1
		}
		return lw.ctx.ConstInt(1, v), typeBool, nil
	case ast.ExprStrLit:
		return lw.ctx.StringLiteral(e.StrVal), ast.PtrTo(typeI8), nil
	case ast.ExprNull:
		return lw.ctx.ConstPointer(0), ast.PtrTo(ast.Void()), nil

	case ast.ExprIdent:
		if lv, ty, ok := lw.resolveLValue(e); ok {
			return lw.block.Load(lv), ty, nil
		}
		if info, ok := lw.consts.Lookup(e.Name); ok {
			return lw.lowerExpr(&info.Value)
		}
		return nativeir.RValue{}, ast.Type{}, fmt.Errorf("lower: unknown identifier %q", interner.Str(e.Name))

	case ast.ExprUnary:
		return lw.lowerUnary(e)
	case ast.ExprBinary:
		return lw.lowerBinary(e)
	case ast.ExprAssign:
		return lw.lowerAssign(e)
	case ast.ExprCall:
		return lw.lowerCall(e)

	case ast.ExprIndex, ast.ExprField, ast.ExprArrow, ast.ExprDeref:
		lv, ty, ok := lw.resolveLValue(e)
		if !ok {
			return nativeir.RValue{}, ast.Type{}, fmt.Errorf("lower: expression is not addressable")
		}
		return lw.block.Load(lv), ty, nil

	case ast.ExprAddr:
		rv, err := lw.addressOf(e.X)
		if err != nil {
			return nativeir.RValue{}, ast.Type{}, err
		}
		return rv, ast.PtrTo(lw.typeOf(e.X)), nil

	case ast.ExprCast:
		return lw.lowerCast(e)

	case ast.ExprSizeof:
		target := typeUsz
		if e.SizeOf != nil {
			target = *e.SizeOf
		} else if e.X != nil {
			target = lw.typeOf(e.X)
		}
		n, err := lw.registry.Size(target)
		if err != nil {
			return nativeir.RValue{}, ast.Type{}, err
		}
		return lw.ctx.ConstLong(int64(n)), typeUsz, nil

	case ast.ExprStructLit:
		return lw.lowerStructLit(e)

	case ast.ExprGetFunc:
		return lw.lowerGetFunc(e)

	default:
		return nativeir.RValue{}, ast.Type{}, fmt.Errorf("lower: unsupported expression kind %d", e.Kind)
	}
}

func (lw *Lowerer) lowerUnary(e *ast.Expr) (nativeir.RValue, ast.Type, error) {
	x, ty, err := lw.lowerExpr(e.X)
	if err != nil {
		return nativeir.RValue{}, ast.Type{}, err
	}
	switch e.UnOp {
	case ast.UnaryNeg:
		return lw.block.UnaryOp(nativeir.UnaryNeg, x), ty, nil
	case ast.UnaryNot:
		if ty.Kind == ast.KindBasic && interner.Str(ty.Name) == "bool" {
			return lw.block.UnaryOp(nativeir.UnaryLogNot, x), ty, nil
		}
		return lw.block.UnaryOp(nativeir.UnaryBitNot, x), ty, nil
	case ast.UnaryBitNot:
		return lw.block.UnaryOp(nativeir.UnaryBitNot, x), ty, nil
	default:
		return x, ty, nil
	}
}

var binOpKind = map[ast.BinaryOp]nativeir.BinOpKind{
	ast.BinAdd:    nativeir.OpAdd,
	ast.BinSub:    nativeir.OpSub,
	ast.BinMul:    nativeir.OpMul,
	ast.BinDiv:    nativeir.OpDiv,
	ast.BinMod:    nativeir.OpMod,
	ast.BinBitOr:  nativeir.OpOr,
	ast.BinBitAnd: nativeir.OpAnd,
	ast.BinBitXor: nativeir.OpXor,
	ast.BinShl:    nativeir.OpShl,
	ast.BinShr:    nativeir.OpShr,
}

var cmpOpKind = map[ast.BinaryOp]nativeir.CmpKind{
	ast.BinEq: nativeir.CmpEq,
	ast.BinNe: nativeir.CmpNe,
	ast.BinLt: nativeir.CmpLt,
	ast.BinLe: nativeir.CmpLe,
	ast.BinGt: nativeir.CmpGt,
	ast.BinGe: nativeir.CmpGe,
}

// lowerBinary implements spec.md §4.4's binary-op contract: the left
// operand's type classification drives the IR type; pointer+integer is
// array addressing rather than arithmetic (implemented via the lvalue
// pointer-index path, then loaded since this is a value context);
// bool && / || are only defined on two booleans and short-circuit.
func (lw *Lowerer) lowerBinary(e *ast.Expr) (nativeir.RValue, ast.Type, error) {
	if e.BinOp == ast.BinAdd {
		if lv, ty, ok := lw.resolvePointerIndex(e.X, e.Y); ok {
			return lw.block.Load(lv), ty, nil
		}
	}

	leftTy := lw.typeOf(e.X)
	if e.BinOp == ast.BinLogAnd || e.BinOp == ast.BinLogOr {
		return lw.lowerShortCircuit(e)
	}

	x, _, err := lw.lowerExpr(e.X)
	if err != nil {
		return nativeir.RValue{}, ast.Type{}, err
	}
	y, _, err := lw.lowerExpr(e.Y)
	if err != nil {
		return nativeir.RValue{}, ast.Type{}, err
	}

	if cmp, ok := cmpOpKind[e.BinOp]; ok {
		leftIR, err := lw.registry.Lower(leftTy)
		if err != nil {
			return nativeir.RValue{}, ast.Type{}, err
		}
		y = lw.block.Cast(y, leftIR)
		return lw.block.Comparison(cmp, x, y), typeBool, nil
	}

	op, ok := binOpKind[e.BinOp]
	if !ok {
		return nativeir.RValue{}, ast.Type{}, fmt.Errorf("lower: unsupported binary operator")
	}
	scalar := func(t *nativeir.CType) bool { return t.Kind == nativeir.KindInt || t.Kind == nativeir.KindFloat }
	if scalar(x.Type) && scalar(y.Type) {
		y = lw.block.Cast(y, x.Type)
	}
	return lw.block.BinaryOp(op, x, y), leftTy, nil
}

// lowerShortCircuit emits `&&`/`||` with real branching rather than an
// eager bitwise and/or, so the right operand is only evaluated when it
// can affect the result.
func (lw *Lowerer) lowerShortCircuit(e *ast.Expr) (nativeir.RValue, ast.Type, error) {
	x, _, err := lw.lowerExpr(e.X)
	if err != nil {
		return nativeir.RValue{}, ast.Type{}, err
	}
	result := lw.fn.NewLocal(lw.ctx.BoolType())
	evalRight := lw.fn.NewBlock("scEvalRight")
	merge := lw.fn.NewBlock("scMerge")

	if e.BinOp == ast.BinLogAnd {
		shortCircuit := lw.fn.NewBlock("scShort")
		lw.block.EndWithConditional(x, evalRight, shortCircuit)
		lw.block = shortCircuit
		lw.block.AddAssignment(result, lw.ctx.ConstInt(1, 0))
		lw.block.EndWithJump(merge)
	} else {
		shortCircuit := lw.fn.NewBlock("scShort")
		lw.block.EndWithConditional(x, shortCircuit, evalRight)
		lw.block = shortCircuit
		lw.block.AddAssignment(result, lw.ctx.ConstInt(1, 1))
		lw.block.EndWithJump(merge)
	}

	lw.block = evalRight
	y, _, err := lw.lowerExpr(e.Y)
	if err != nil {
		return nativeir.RValue{}, ast.Type{}, err
	}
	lw.block.AddAssignment(result, y)
	if !lw.block.Terminated() {
		lw.block.EndWithJump(merge)
	}

	lw.block = merge
	return lw.block.Load(result), typeBool, nil
}

func (lw *Lowerer) lowerAssign(e *ast.Expr) (nativeir.RValue, ast.Type, error) {
	lv, destAST, ok := lw.resolveLValue(e.X)
	if !ok {
		return nativeir.RValue{}, ast.Type{}, fmt.Errorf("lower: assignment target is not an lvalue")
	}
	rv, _, err := lw.lowerExpr(e.Y)
	if err != nil {
		return nativeir.RValue{}, ast.Type{}, err
	}
	casted := lw.castForDestination(rv, destAST, lv.Type)
	lw.block.AddAssignment(lv, casted)
	return casted, destAST, nil
}

func (lw *Lowerer) lowerCast(e *ast.Expr) (nativeir.RValue, ast.Type, error) {
	x, _, err := lw.lowerExpr(e.X)
	if err != nil {
		return nativeir.RValue{}, ast.Type{}, err
	}
	if e.CastTo == nil {
		return x, lw.typeOf(e.X), nil
	}
	destIR, err := lw.registry.Lower(*e.CastTo)
	if err != nil {
		return nativeir.RValue{}, ast.Type{}, err
	}
	return lw.block.Cast(x, destIR), *e.CastTo, nil
}

// lowerStructLit allocates a fresh local of the struct type, assigns
// each named field from the provided expressions in the order given,
// and yields the local's value (spec.md §4.4).
func (lw *Lowerer) lowerStructLit(e *ast.Expr) (nativeir.RValue, ast.Type, error) {
	structTy := ast.StructRef(e.StructName)
	entry, ok := lw.registry.FindStruct(e.StructName)
	if !ok {
		return nativeir.RValue{}, ast.Type{}, fmt.Errorf("lower: unresolved struct %q", interner.Str(e.StructName))
	}
	local := lw.fn.NewLocal(entry.IRType)
	for _, fi := range e.FieldInits {
		idx, ok := entry.FieldIndex[fi.Name]
		if !ok {
			return nativeir.RValue{}, ast.Type{}, fmt.Errorf("lower: struct %q has no field %q", interner.Str(e.StructName), interner.Str(fi.Name))
		}
		fieldLV := lw.block.AccessField(local, idx)
		rv, _, err := lw.lowerExpr(&fi.Value)
		if err != nil {
			return nativeir.RValue{}, ast.Type{}, err
		}
		casted := lw.castForDestination(rv, entry.FieldTypes[idx], fieldLV.Type)
		lw.block.AddAssignment(fieldLV, casted)
	}
	return lw.block.Load(local), structTy, nil
}

func (lw *Lowerer) lowerGetFunc(e *ast.Expr) (nativeir.RValue, ast.Type, error) {
	if set, ok := lw.overload.Ordinary[e.CalleeName]; ok && len(set.Units) > 0 {
		return set.Units[0].IR.GetAddress(), functionUnitType(set.Units[0]), nil
	}
	if unit, ok := lw.overload.External[e.CalleeName]; ok {
		return unit.IR.GetAddress(), functionUnitType(unit), nil
	}
	return nativeir.RValue{}, ast.Type{}, fmt.Errorf("lower: unknown function %q", interner.Str(e.CalleeName))
}
