// Package overload implements C7: picking a single candidate out of an
// overload set given positional argument types, an optional receiver
// type, and a possible variadic tail (spec.md §4.6).
package overload

import (
	"fmt"
	"strings"

	"havoc/internal/ast"
	"havoc/internal/diag"
	"havoc/internal/interner"
	"havoc/internal/symbols"
)

// Result is what Resolve hands back to the expression lowerer (C5): the
// chosen unit, and enough information to emit the call per spec.md
// §4.6 step 4 (cast each declared-position argument, pass the variadic
// tail through verbatim, append a receiver address if present).
type Result struct {
	Unit          *symbols.FunctionUnit
	DeclaredCount int  // number of positions that get an implicit cast
	HasReceiver   bool
}

// Error is a resolution failure, rendered by internal/diag with the call
// site and the argument types that did not match any candidate (spec.md
// §7). Candidates holds every declared signature the call site was
// compared against, for the renderer's width-aligned candidate listing.
type Error struct {
	Name       string
	Args       []ast.Type
	Candidates []string
}

func (e *Error) Error() string {
	parts := make([]string, len(e.Args))
	for i, a := range e.Args {
		parts[i] = typeLabel(a)
	}
	msg := fmt.Sprintf("no overload of %q matches argument types (%s)", e.Name, strings.Join(parts, ", "))
	if len(e.Candidates) == 0 {
		return msg
	}
	return fmt.Sprintf("%s; candidates:\n  %s", msg, strings.Join(diag.PadCandidates(e.Candidates), "\n  "))
}

func signatureLabel(name string, u *symbols.FunctionUnit) string {
	parts := make([]string, len(u.AST.Params))
	for i, p := range u.AST.Params {
		parts[i] = typeLabel(p.Type)
	}
	recv := ""
	if u.ReceiverAST != nil {
		recv = "this " + typeLabel(*u.ReceiverAST) + ", "
	}
	return fmt.Sprintf("%s(%s%s)", name, recv, strings.Join(parts, ", "))
}

func typeLabel(t ast.Type) string {
	switch t.Kind {
	case ast.KindBasic, ast.KindStruct:
		return interner.Str(t.Name)
	case ast.KindPtr:
		return "*" + typeLabel(*t.Elem)
	case ast.KindArray:
		return "[]" + typeLabel(*t.Elem)
	default:
		return t.Kind.String()
	}
}

// Resolve implements spec.md §4.6 against an ordinary OverloadSet. args
// is the call site's positional argument type tuple; receiver is the
// type of an explicit method-style receiver, or nil for a plain call.
func Resolve(name interner.Name, set *symbols.OverloadSet, args []ast.Type, receiver *ast.Type) (*Result, error) {
	if set == nil {
		return nil, &Error{Name: interner.Str(name), Args: args}
	}
	fail := func() error {
		labels := make([]string, len(set.Units))
		for i, u := range set.Units {
			labels[i] = signatureLabel(interner.Str(name), u)
		}
		return &Error{Name: interner.Str(name), Args: args, Candidates: labels}
	}

	candidates := filterArity(set.Units, len(args))
	candidates = filterReceiver(candidates, receiver)

	var match *symbols.FunctionUnit
	for _, c := range candidates {
		if matchesArgs(c, args) {
			if match != nil {
				return nil, fail()
			}
			match = c
		}
	}
	if match == nil {
		return nil, fail()
	}
	return &Result{Unit: match, DeclaredCount: len(match.AST.Params), HasReceiver: receiver != nil}, nil
}

// ResolveExternal implements the same protocol minus receiver matching,
// against the single non-overloaded external entry for name (spec.md
// §4.6: "The same protocol (minus receiver) applies to external
// functions").
func ResolveExternal(name interner.Name, unit *symbols.FunctionUnit, args []ast.Type) (*Result, error) {
	if unit == nil {
		return nil, &Error{Name: interner.Str(name), Args: args}
	}
	fail := func() error {
		return &Error{Name: interner.Str(name), Args: args, Candidates: []string{signatureLabel(interner.Str(name), unit)}}
	}
	candidates := filterArity([]*symbols.FunctionUnit{unit}, len(args))
	if len(candidates) == 1 && matchesArgs(candidates[0], args) {
		return &Result{Unit: unit, DeclaredCount: len(unit.AST.Params)}, nil
	}
	return nil, fail()
}

// filterArity rejects candidates whose declared parameter count exceeds
// argCount, and — resolving spec.md §9's flagged open question —
// rejects non-variadic candidates whose declared parameter count is
// less than argCount, both up front rather than in the per-arg loop.
func filterArity(units []*symbols.FunctionUnit, argCount int) []*symbols.FunctionUnit {
	out := make([]*symbols.FunctionUnit, 0, len(units))
	for _, u := range units {
		declared := len(u.AST.Params)
		if declared > argCount {
			continue
		}
		if declared < argCount && !u.AST.Variadic {
			continue
		}
		out = append(out, u)
	}
	return out
}

// filterReceiver keeps only candidates whose receiver requirement
// matches recv (spec.md §4.6 step 2): a value receiver type is
// implicitly address-taken for the comparison.
func filterReceiver(units []*symbols.FunctionUnit, recv *ast.Type) []*symbols.FunctionUnit {
	out := make([]*symbols.FunctionUnit, 0, len(units))
	for _, u := range units {
		if recv == nil {
			if u.ReceiverAST == nil {
				out = append(out, u)
			}
			continue
		}
		if u.ReceiverAST == nil {
			continue
		}
		wantPtr := *recv
		if recv.Kind != ast.KindPtr {
			wantPtr = ast.PtrTo(*recv)
		}
		if u.ReceiverAST.Equal(wantPtr) {
			out = append(out, u)
		}
	}
	return out
}

// matchesArgs compares each call-site argument type against the
// candidate's declared parameters by exact AST-type equality (spec.md
// §4.6 step 3). filterArity has already ensured len(declared) <=
// len(args), and that a length mismatch only survives for variadic
// candidates, so only the declared-position pairs need comparing; the
// variadic tail, if any, is not compared.
func matchesArgs(u *symbols.FunctionUnit, args []ast.Type) bool {
	declared := u.AST.Params
	for i, p := range declared {
		if !args[i].Equal(p.Type) {
			return false
		}
	}
	return true
}
