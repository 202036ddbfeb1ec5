package overload

import (
	"testing"

	"havoc/internal/ast"
	"havoc/internal/interner"
	"havoc/internal/symbols"
)

func unit(params []ast.Type, variadic bool, receiver *ast.Type) *symbols.FunctionUnit {
	ps := make([]ast.Param, len(params))
	for i, t := range params {
		ps[i] = ast.Param{Type: t}
	}
	return &symbols.FunctionUnit{
		AST:         &ast.Function{Params: ps, Variadic: variadic, Ret: ast.Void()},
		ReceiverAST: receiver,
	}
}

func i32() ast.Type { return ast.Basic(interner.Intern("i32")) }

func TestResolveByReceiver(t *testing.T) {
	plain := unit([]ast.Type{i32()}, false, nil)
	structTy := ast.StructRef(interner.Intern("P"))
	ptrRecv := ast.PtrTo(structTy)
	method := unit([]ast.Type{i32()}, false, &ptrRecv)

	set := &symbols.OverloadSet{Name: interner.Intern("f")}
	set.Install(plain)
	set.Install(method)

	res, err := Resolve(interner.Intern("f"), set, []ast.Type{i32()}, &structTy)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.Unit != method {
		t.Fatalf("expected receiver overload to be selected")
	}
}

func TestResolveVariadicTail(t *testing.T) {
	printf := unit([]ast.Type{ast.PtrTo(ast.Basic(interner.Intern("i8")))}, true, nil)
	set := &symbols.OverloadSet{Name: interner.Intern("printf")}
	set.Install(printf)

	args := []ast.Type{ast.PtrTo(ast.Basic(interner.Intern("i8"))), i32(), i32()}
	res, err := Resolve(interner.Intern("printf"), set, args, nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.DeclaredCount != 1 {
		t.Fatalf("declared count = %d, want 1", res.DeclaredCount)
	}
}

func TestResolveArityUpFrontRejectsShortNonVariadic(t *testing.T) {
	f := unit([]ast.Type{i32(), i32()}, false, nil)
	set := &symbols.OverloadSet{Name: interner.Intern("f")}
	set.Install(f)

	_, err := Resolve(interner.Intern("f"), set, []ast.Type{i32()}, nil)
	if err == nil {
		t.Fatalf("expected resolution failure for too-few arguments")
	}
}

func TestResolveNoMatchIsFatalError(t *testing.T) {
	f := unit([]ast.Type{i32()}, false, nil)
	set := &symbols.OverloadSet{Name: interner.Intern("f")}
	set.Install(f)

	strTy := ast.PtrTo(ast.Basic(interner.Intern("i8")))
	_, err := Resolve(interner.Intern("f"), set, []ast.Type{strTy}, nil)
	if err == nil {
		t.Fatalf("expected resolution failure for mismatched argument type")
	}
}
