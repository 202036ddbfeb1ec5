package symbols

import (
	"havoc/internal/ast"
	"havoc/internal/interner"
	"havoc/internal/nativeir"
)

// FunctionUnit is the spec's "Function unit" tuple: the AST declaration
// paired with its lowered IR function, plus receiver typing and the
// mangled name pass 2 computed for it.
type FunctionUnit struct {
	AST *ast.Function
	IR  *nativeir.Function

	ReceiverAST *ast.Type
	ReceiverIR  *nativeir.CType

	MangledName string

	// IsConstOnly marks an entry present only in the constant overload
	// set (a constexpr function that was ALSO mirrored into Ordinary,
	// per SPEC_FULL.md's resolution of the constexpr-call-site
	// limitation, keeps IsConstOnly false on its Ordinary twin).
	IsConstOnly bool
}

// signatureEqual reports whether f and other have equal (params,
// receiver, variadic, ret) tuples, which overload sets use to detect
// duplicate registrations (spec.md §3 invariant:
// "Overload sets never contain two entries whose (params, receiver,
// variadic, ret) tuples are equal").
func (f *FunctionUnit) signatureEqual(other *FunctionUnit) bool {
	if f.AST.Variadic != other.AST.Variadic {
		return false
	}
	if (f.ReceiverAST == nil) != (other.ReceiverAST == nil) {
		return false
	}
	if f.ReceiverAST != nil && !f.ReceiverAST.Equal(*other.ReceiverAST) {
		return false
	}
	if !f.AST.Ret.Equal(other.AST.Ret) {
		return false
	}
	if len(f.AST.Params) != len(other.AST.Params) {
		return false
	}
	for i := range f.AST.Params {
		if !f.AST.Params[i].Type.Equal(other.AST.Params[i].Type) {
			return false
		}
	}
	return true
}

// OverloadSet is an ordered, append-only-during-declaration list of
// FunctionUnit candidates sharing a source name. Per spec.md §9's design
// note on overload-table mutability, a set is only ever mutated during
// the driver's declaration passes and only read during body emission;
// this type does not itself enforce that phase split (the driver does,
// by simply not calling Install after pass 2 completes).
type OverloadSet struct {
	Name  interner.Name
	Units []*FunctionUnit
}

// Install appends unit, overwriting any existing entry with an identical
// signature (spec.md §4.7 pass 2: "existing identical signature is
// overwritten").
func (s *OverloadSet) Install(unit *FunctionUnit) {
	for i, existing := range s.Units {
		if existing.signatureEqual(unit) {
			s.Units[i] = unit
			return
		}
	}
	s.Units = append(s.Units, unit)
}

// OverloadTable holds the ordinary overload sets, one non-overloaded
// external entry per name, and the constant-only entries, per spec.md
// §3's three function universes.
type OverloadTable struct {
	Ordinary map[interner.Name]*OverloadSet
	External map[interner.Name]*FunctionUnit
	Constant map[interner.Name]*FunctionUnit
}

// NewOverloadTable creates an empty table.
func NewOverloadTable() *OverloadTable {
	return &OverloadTable{
		Ordinary: make(map[interner.Name]*OverloadSet),
		External: make(map[interner.Name]*FunctionUnit),
		Constant: make(map[interner.Name]*FunctionUnit),
	}
}

// InstallOrdinary adds unit to name's ordinary overload set, creating the
// set on first use.
func (t *OverloadTable) InstallOrdinary(name interner.Name, unit *FunctionUnit) {
	set, ok := t.Ordinary[name]
	if !ok {
		set = &OverloadSet{Name: name}
		t.Ordinary[name] = set
	}
	set.Install(unit)
}

// InstallExternal installs unit as the single external entry for name.
func (t *OverloadTable) InstallExternal(name interner.Name, unit *FunctionUnit) {
	t.External[name] = unit
}

// InstallConstant installs unit as the constant-only entry for name. Per
// SPEC_FULL.md's resolution of the constexpr-call-site limitation
// (spec.md §9), the driver also calls InstallOrdinary for the same
// function so non-constexpr call sites still lower to a real call.
func (t *OverloadTable) InstallConstant(name interner.Name, unit *FunctionUnit) {
	t.Constant[name] = unit
}
