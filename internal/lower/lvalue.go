package lower

import (
	"havoc/internal/ast"
	"havoc/internal/nativeir"
)

// resolveLValue implements C4 (spec.md §4.3): returns an IR lvalue for
// e, or ok=false if e denotes a pure rvalue (the caller then falls
// through to the expression lowerer).
func (lw *Lowerer) resolveLValue(e *ast.Expr) (nativeir.LValue, ast.Type, bool) {
	switch e.Kind {
	case ast.ExprIdent:
		if info, ok := lw.locals.Lookup(e.Name); ok {
			return info.LValue, info.ASTType, true
		}
		if info, ok := lw.globals.Lookup(e.Name); ok {
			return info.LValue, info.ASTType, true
		}
		return nativeir.LValue{}, ast.Type{}, false

	case ast.ExprDeref:
		ptrVal, ptrTy, err := lw.lowerExpr(e.X)
		if err != nil || ptrTy.Elem == nil {
			return nativeir.LValue{}, ast.Type{}, false
		}
		return lw.block.Dereference(ptrVal), *ptrTy.Elem, true

	case ast.ExprField, ast.ExprArrow:
		return lw.resolveFieldLValue(e)

	case ast.ExprIndex:
		return lw.resolveIndexLValue(e)

	case ast.ExprBinary:
		if e.BinOp == ast.BinAdd {
			if lv, ty, ok := lw.resolvePointerIndex(e.X, e.Y); ok {
				return lv, ty, true
			}
		}
		return nativeir.LValue{}, ast.Type{}, false

	default:
		return nativeir.LValue{}, ast.Type{}, false
	}
}

// resolveFieldLValue handles Field(obj, f): a pointer-to-struct base
// dereferences through the pointer; a struct-typed base recurses into
// obj's own lvalue. Alias chains are transparent because FindStruct
// already follows them.
func (lw *Lowerer) resolveFieldLValue(e *ast.Expr) (nativeir.LValue, ast.Type, bool) {
	baseTy := lw.typeOf(e.X)
	if baseTy.Kind == ast.KindPtr && baseTy.Elem != nil && baseTy.Elem.Kind == ast.KindStruct {
		ptrVal, _, err := lw.lowerExpr(e.X)
		if err != nil {
			return nativeir.LValue{}, ast.Type{}, false
		}
		entry, ok := lw.registry.FindStruct(baseTy.Elem.Name)
		if !ok {
			return nativeir.LValue{}, ast.Type{}, false
		}
		idx, ok := entry.FieldIndex[e.Name]
		if !ok {
			return nativeir.LValue{}, ast.Type{}, false
		}
		return lw.block.DereferenceField(ptrVal, idx), entry.FieldTypes[idx], true
	}
	if baseTy.Kind != ast.KindStruct {
		return nativeir.LValue{}, ast.Type{}, false
	}
	baseLV, _, ok := lw.resolveLValue(e.X)
	if !ok {
		return nativeir.LValue{}, ast.Type{}, false
	}
	entry, ok := lw.registry.FindStruct(baseTy.Name)
	if !ok {
		return nativeir.LValue{}, ast.Type{}, false
	}
	idx, ok := entry.FieldIndex[e.Name]
	if !ok {
		return nativeir.LValue{}, ast.Type{}, false
	}
	return lw.block.AccessField(baseLV, idx), entry.FieldTypes[idx], true
}

// resolveIndexLValue handles ArrayIdx(a, i): a fixed-array base indexes
// its own storage; a pointer (decayed-array) base indexes the pointee.
func (lw *Lowerer) resolveIndexLValue(e *ast.Expr) (nativeir.LValue, ast.Type, bool) {
	baseTy := lw.typeOf(e.X)
	switch baseTy.Kind {
	case ast.KindArray, ast.KindVector:
		baseLV, _, ok := lw.resolveLValue(e.X)
		if !ok {
			return nativeir.LValue{}, ast.Type{}, false
		}
		idxVal, _, err := lw.lowerExpr(e.Y)
		if err != nil {
			return nativeir.LValue{}, ast.Type{}, false
		}
		return lw.block.ArrayAccess(baseLV, idxVal), *baseTy.Elem, true
	case ast.KindPtr:
		ptrVal, _, err := lw.lowerExpr(e.X)
		if err != nil {
			return nativeir.LValue{}, ast.Type{}, false
		}
		idxVal, _, err := lw.lowerExpr(e.Y)
		if err != nil {
			return nativeir.LValue{}, ast.Type{}, false
		}
		return lw.block.PointerIndex(ptrVal, idxVal), *baseTy.Elem, true
	default:
		return nativeir.LValue{}, ast.Type{}, false
	}
}

// resolvePointerIndex implements the pointer+integer addressing rule
// shared by lvalue resolution (spec.md §4.3: "Binary(_, a, b) where a
// has pointer type and b is integral") and rvalue lowering (spec.md
// §4.4: "Pointer + integer is lowered as array addressing").
func (lw *Lowerer) resolvePointerIndex(a, b *ast.Expr) (nativeir.LValue, ast.Type, bool) {
	aTy := lw.typeOf(a)
	bTy := lw.typeOf(b)
	if aTy.Kind != ast.KindPtr || !isIntegerType(bTy) {
		return nativeir.LValue{}, ast.Type{}, false
	}
	ptrVal, _, err := lw.lowerExpr(a)
	if err != nil {
		return nativeir.LValue{}, ast.Type{}, false
	}
	idxVal, _, err := lw.lowerExpr(b)
	if err != nil {
		return nativeir.LValue{}, ast.Type{}, false
	}
	return lw.block.PointerIndex(ptrVal, idxVal), *aTy.Elem, true
}
