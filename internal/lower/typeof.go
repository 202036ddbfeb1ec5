package lower

import (
	"havoc/internal/ast"
	"havoc/internal/interner"
	"havoc/internal/symbols"
)

var (
	typeI32  = ast.Basic(interner.Intern("i32"))
	typeF64  = ast.Basic(interner.Intern("f64"))
	typeBool = ast.Basic(interner.Intern("bool"))
	typeI8   = ast.Basic(interner.Intern("i8"))
	typeUsz  = ast.Basic(interner.Intern("usize"))
)

// typeOf computes e's static AST type from the symbol tables already in
// scope, standing in for the type annotations a semantic checker would
// already have attached to every node (spec.md §6 describes the input
// as "a fully annotated AST"; this module has no front end, so C4/C5/C6
// recompute the same answer on demand from locals, globals, constants,
// and the struct registry). Literal nodes with no checker-assigned
// suffix default per spec.md §4.4: int literals to i32, float literals
// to f64.
func (lw *Lowerer) typeOf(e *ast.Expr) ast.Type {
	switch e.Kind {
	case ast.ExprIntLit:
		return typeI32
	case ast.ExprFloatLit:
		return typeF64
	case ast.ExprBoolLit:
		return typeBool
	case ast.ExprStrLit:
		return ast.PtrTo(typeI8)
	case ast.ExprNull:
		return ast.PtrTo(ast.Void())
	case ast.ExprIdent:
		if info, ok := lw.locals.Lookup(e.Name); ok {
			return info.ASTType
		}
		if info, ok := lw.globals.Lookup(e.Name); ok {
			return info.ASTType
		}
		if info, ok := lw.consts.Lookup(e.Name); ok {
			return info.ASTType
		}
		return ast.Void()
	case ast.ExprUnary:
		return lw.typeOf(e.X)
	case ast.ExprBinary:
		switch e.BinOp {
		case ast.BinEq, ast.BinNe, ast.BinLt, ast.BinLe, ast.BinGt, ast.BinGe, ast.BinLogAnd, ast.BinLogOr:
			return typeBool
		default:
			return lw.typeOf(e.X)
		}
	case ast.ExprAssign:
		return lw.typeOf(e.X)
	case ast.ExprCall:
		return lw.callReturnType(e)
	case ast.ExprIndex:
		base := lw.typeOf(e.X)
		if base.Elem != nil {
			return *base.Elem
		}
		return ast.Void()
	case ast.ExprField, ast.ExprArrow:
		return lw.fieldType(e)
	case ast.ExprAddr:
		t := lw.typeOf(e.X)
		return ast.PtrTo(t)
	case ast.ExprDeref:
		t := lw.typeOf(e.X)
		if t.Elem != nil {
			return *t.Elem
		}
		return ast.Void()
	case ast.ExprCast:
		if e.CastTo != nil {
			return *e.CastTo
		}
		return ast.Void()
	case ast.ExprSizeof:
		return typeUsz
	case ast.ExprStructLit:
		return ast.StructRef(e.StructName)
	case ast.ExprGetFunc:
		return lw.functionType(e.CalleeName)
	default:
		return ast.Void()
	}
}

// fieldType resolves the declared type of a Field/Arrow access by
// looking up the base's struct entry, following through a pointer base
// for the Arrow/pointer-to-struct case (spec.md §4.3).
func (lw *Lowerer) fieldType(e *ast.Expr) ast.Type {
	base := lw.typeOf(e.X)
	structName := base.Name
	if base.Kind == ast.KindPtr && base.Elem != nil && base.Elem.Kind == ast.KindStruct {
		structName = base.Elem.Name
	} else if base.Kind != ast.KindStruct {
		return ast.Void()
	}
	entry, ok := lw.registry.FindStruct(structName)
	if !ok {
		return ast.Void()
	}
	idx, ok := entry.FieldIndex[e.Name]
	if !ok || idx >= len(entry.FieldTypes) {
		return ast.Void()
	}
	return entry.FieldTypes[idx]
}

// callReturnType resolves a call expression's static return type by
// consulting whichever function universe would serve the call, without
// performing full overload resolution (callers needing the resolved
// candidate use lowerCall instead).
func (lw *Lowerer) callReturnType(e *ast.Expr) ast.Type {
	if set, ok := lw.overload.Ordinary[e.CalleeName]; ok && len(set.Units) > 0 {
		return set.Units[0].AST.Ret
	}
	if unit, ok := lw.overload.External[e.CalleeName]; ok {
		return unit.AST.Ret
	}
	if info, ok := lw.locals.Lookup(e.CalleeName); ok && info.ASTType.Ret != nil {
		return *info.ASTType.Ret
	}
	if info, ok := lw.globals.Lookup(e.CalleeName); ok && info.ASTType.Ret != nil {
		return *info.ASTType.Ret
	}
	return ast.Void()
}

func (lw *Lowerer) functionType(name interner.Name) ast.Type {
	if set, ok := lw.overload.Ordinary[name]; ok && len(set.Units) > 0 {
		return functionUnitType(set.Units[0])
	}
	if unit, ok := lw.overload.External[name]; ok {
		return functionUnitType(unit)
	}
	return ast.Void()
}

func functionUnitType(u *symbols.FunctionUnit) ast.Type {
	params := make([]ast.Type, len(u.AST.Params))
	for i, p := range u.AST.Params {
		params[i] = p.Type
	}
	return ast.FuncType(u.AST.Ret, params, u.AST.Variadic)
}

func isIntegerType(t ast.Type) bool {
	if t.Kind != ast.KindBasic {
		return false
	}
	switch interner.Str(t.Name) {
	case "i8", "u8", "i16", "u16", "i32", "u32", "i64", "u64", "usize", "char":
		return true
	default:
		return false
	}
}
