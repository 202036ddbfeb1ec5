// Package types implements the AST type lowerer (C1) and byte sizer
// (C2): mapping the source type algebra onto native IR types with a
// struct registry that materializes each named aggregate exactly once,
// an alias table transparent to lookups, and a pure recursive sizeof.
package types

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"havoc/internal/ast"
	"havoc/internal/interner"
	"havoc/internal/nativeir"
)

// StructEntry is the C1 struct registry entry: the cached IR type plus a
// name->index map and ordered field-type list, both needed by the
// lvalue/rvalue field-access paths (C4/C5).
type StructEntry struct {
	IRType     *nativeir.CType
	FieldIndex map[interner.Name]int
	FieldTypes []ast.Type
	Union      bool
}

// Registry owns C1's struct registry and alias table, plus the native
// IR Context used to materialize types. One Registry is created per
// compilation and lives for its whole duration (spec.md §3 "Lifecycles").
type Registry struct {
	ctx *nativeir.Context

	structs map[interner.Name]*StructEntry
	aliases map[interner.Name]ast.Type

	warnedUnionSizing map[interner.Name]bool
}

// NewRegistry creates an empty registry bound to ctx.
func NewRegistry(ctx *nativeir.Context) *Registry {
	return &Registry{
		ctx:               ctx,
		structs:           make(map[interner.Name]*StructEntry),
		aliases:           make(map[interner.Name]ast.Type),
		warnedUnionSizing: make(map[interner.Name]bool),
	}
}

// RegisterAlias records name as transparent for target; later lookups of
// Basic(name) recurse through target.
func (r *Registry) RegisterAlias(name interner.Name, target ast.Type) {
	r.aliases[name] = target
}

// FindStruct returns the registry entry for a named struct, following
// alias chains, or false if name never resolves to a registered struct.
func (r *Registry) FindStruct(name interner.Name) (*StructEntry, bool) {
	seen := map[interner.Name]bool{}
	for {
		if entry, ok := r.structs[name]; ok {
			return entry, true
		}
		if seen[name] {
			return nil, false
		}
		seen[name] = true
		target, ok := r.aliases[name]
		if !ok || target.Kind != ast.KindBasic {
			return nil, false
		}
		name = target.Name
	}
}

// DeclareStruct pre-registers name's registry slot with its IR type
// before lowering its field types, so a pointer-to-self field lowers
// without infinite recursion (spec.md §4.1 edge case). Call this before
// LowerFields.
func (r *Registry) DeclareStruct(name interner.Name, union bool) *StructEntry {
	if entry, ok := r.structs[name]; ok {
		return entry
	}
	irType := r.ctx.NewStructType(interner.Str(name), nil, union)
	entry := &StructEntry{IRType: irType, FieldIndex: map[interner.Name]int{}, Union: union}
	r.structs[name] = entry
	return entry
}

// LowerFields finishes a DeclareStruct'd entry by lowering each field in
// declaration order (insertion order preserved) and recording the
// name->index map the field-access lowerers rely on.
func (r *Registry) LowerFields(name interner.Name, fields []ast.StructField) error {
	entry, ok := r.structs[name]
	if !ok {
		return fmt.Errorf("types: LowerFields before DeclareStruct for %q", interner.Str(name))
	}
	irFields := make([]nativeir.Field, 0, len(fields))
	for i, f := range fields {
		fty, err := r.Lower(f.Type)
		if err != nil {
			return fmt.Errorf("types: field %q of struct %q: %w", interner.Str(f.Name), interner.Str(name), err)
		}
		irFields = append(irFields, nativeir.Field{Name: interner.Str(f.Name), Type: fty})
		entry.FieldIndex[f.Name] = i
		entry.FieldTypes = append(entry.FieldTypes, f.Type)
	}
	entry.IRType.Fields = irFields
	if entry.Union {
		size, err := r.unionByteWidth(name, fields)
		if err != nil {
			return err
		}
		entry.IRType.SetUnionByteWidth(size)
	}
	return nil
}

// Lower is C1's total lowering function: AST type -> native IR type,
// memoized through the struct registry.
func (r *Registry) Lower(t ast.Type) (*nativeir.CType, error) {
	switch t.Kind {
	case ast.KindVoid:
		return r.ctx.VoidType(), nil
	case ast.KindBasic:
		return r.lowerBasic(t.Name)
	case ast.KindPtr:
		elem, err := r.Lower(*t.Elem)
		if err != nil {
			return nil, err
		}
		return r.ctx.PointerType(elem), nil
	case ast.KindArray:
		elem, err := r.Lower(*t.Elem)
		if err != nil {
			return nil, err
		}
		if t.Len == ast.NoArrayLength {
			return r.ctx.PointerType(elem), nil
		}
		return r.ctx.ArrayType(elem, t.Len), nil
	case ast.KindFunc:
		ret, err := r.Lower(*t.Ret)
		if err != nil {
			return nil, err
		}
		params := make([]*nativeir.CType, len(t.Params))
		for i, p := range t.Params {
			pty, err := r.Lower(p)
			if err != nil {
				return nil, err
			}
			params[i] = pty
		}
		return r.ctx.FuncPtrType(ret, params, t.Variadic), nil
	case ast.KindStruct:
		if entry, ok := r.FindStruct(t.Name); ok {
			return entry.IRType, nil
		}
		return nil, fmt.Errorf("types: unresolved struct %q", interner.Str(t.Name))
	case ast.KindVector:
		elem := *t.Elem
		if elem.Kind != ast.KindBasic || !vectorSubtypes[interner.Str(elem.Name)] {
			return nil, fmt.Errorf("types: vector subtype %q is not a valid lane type", typeText(elem))
		}
		elemTy, err := r.Lower(elem)
		if err != nil {
			return nil, err
		}
		return r.ctx.VectorType(elemTy, t.Len), nil
	default:
		return nil, fmt.Errorf("types: unknown AST type kind %v", t.Kind)
	}
}

func (r *Registry) lowerBasic(name interner.Name) (*nativeir.CType, error) {
	text := interner.Str(name)
	if info, ok := primitives[text]; ok {
		switch info.kind {
		case primInt:
			return r.ctx.IntType(info.width), nil
		case primFloat:
			return r.ctx.FloatType(info.width), nil
		case primBool:
			return r.ctx.BoolType(), nil
		}
	}
	if entry, ok := r.structs[name]; ok {
		return entry.IRType, nil
	}
	if target, ok := r.aliases[name]; ok {
		return r.Lower(target)
	}
	return nil, fmt.Errorf("types: unresolved type name %q", text)
}

// unionByteWidth computes the registered preserved-bug union size (see
// Size's union case) up front, so the IR struct's opaque byte-blob
// layout matches the sizer's own answer exactly.
func (r *Registry) unionByteWidth(name interner.Name, fields []ast.StructField) (int, error) {
	total := 0
	for _, f := range fields {
		n, err := r.Size(f.Type)
		if err != nil {
			return 0, err
		}
		total += n
	}
	if !r.warnedUnionSizing[name] {
		r.warnedUnionSizing[name] = true
		color.New(color.FgYellow).Fprintf(os.Stderr, "warning: union %q sized as sum of fields, not max (known bug, preserved for ABI compatibility)\n", interner.Str(name))
	}
	return total, nil
}

func typeText(t ast.Type) string {
	if t.Kind == ast.KindBasic {
		return interner.Str(t.Name)
	}
	return t.Kind.String()
}
