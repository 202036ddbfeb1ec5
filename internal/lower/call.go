package lower

import (
	"fmt"

	"havoc/internal/ast"
	"havoc/internal/interner"
	"havoc/internal/nativeir"
	"havoc/internal/overload"
)

// lowerCall implements Call(name, receiver?, args) (spec.md §4.4,
// dispatching to the C7 protocol in spec.md §4.6). Ordinary overload
// sets are tried first (constexpr functions are mirrored there too,
// per the resolved open question on constexpr calls escaping
// evaluation), then the external set, then a plain function-pointer
// variable of that name.
func (lw *Lowerer) lowerCall(e *ast.Expr) (nativeir.RValue, ast.Type, error) {
	argVals := make([]nativeir.RValue, len(e.Args))
	argTypes := make([]ast.Type, len(e.Args))
	for i := range e.Args {
		rv, ty, err := lw.lowerExpr(&e.Args[i])
		if err != nil {
			return nativeir.RValue{}, ast.Type{}, err
		}
		argVals[i] = rv
		argTypes[i] = ty
	}

	var receiverType *ast.Type
	if e.Receiver != nil {
		t := lw.typeOf(e.Receiver)
		receiverType = &t
	}

	if set, ok := lw.overload.Ordinary[e.CalleeName]; ok {
		res, err := overload.Resolve(e.CalleeName, set, argTypes, receiverType)
		if err != nil {
			return nativeir.RValue{}, ast.Type{}, err
		}
		return lw.emitResolvedCall(res, e, argVals)
	}

	if unit, ok := lw.overload.External[e.CalleeName]; ok {
		res, err := overload.ResolveExternal(e.CalleeName, unit, argTypes)
		if err != nil {
			return nativeir.RValue{}, ast.Type{}, err
		}
		return lw.emitResolvedCall(res, e, argVals)
	}

	if lv, ty, ok := lw.resolveLValue(&ast.Expr{Kind: ast.ExprIdent, Name: e.CalleeName}); ok && ty.Kind == ast.KindFunc {
		sig, err := lw.registry.Lower(ty)
		if err != nil {
			return nativeir.RValue{}, ast.Type{}, err
		}
		fnPtr := lw.block.Load(lv)
		return lw.block.CallThroughPointer(fnPtr, sig, argVals), *ty.Ret, nil
	}

	return nativeir.RValue{}, ast.Type{}, fmt.Errorf("lower: unknown callee %q", interner.Str(e.CalleeName))
}

// emitResolvedCall applies step 4 of spec.md §4.6: cast each declared-
// position argument to its parameter's IR type (skipping struct/array
// parameters), pass the variadic tail through verbatim, and append the
// receiver's address as the final argument when one is present.
func (lw *Lowerer) emitResolvedCall(res *overload.Result, e *ast.Expr, argVals []nativeir.RValue) (nativeir.RValue, ast.Type, error) {
	params := res.Unit.AST.Params
	final := make([]nativeir.RValue, 0, len(argVals)+1)
	for i, v := range argVals {
		if i >= res.DeclaredCount {
			final = append(final, v)
			continue
		}
		declIR, err := lw.registry.Lower(params[i].Type)
		if err != nil {
			return nativeir.RValue{}, ast.Type{}, err
		}
		if params[i].Type.Kind == ast.KindStruct || params[i].Type.Kind == ast.KindArray {
			final = append(final, v)
		} else {
			final = append(final, lw.block.Cast(v, declIR))
		}
	}
	if res.HasReceiver {
		addr, err := lw.addressOf(e.Receiver)
		if err != nil {
			return nativeir.RValue{}, ast.Type{}, err
		}
		final = append(final, addr)
	}
	return lw.block.Call(res.Unit.IR, final), res.Unit.AST.Ret, nil
}
