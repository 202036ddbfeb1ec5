package types

import (
	"fmt"

	"havoc/internal/ast"
	"havoc/internal/interner"
)

// Size is C2: a pure function from an AST type to its byte size, using
// fixed widths for primitives, recursive summation for struct/union
// (unions included — see the preserved sum-of-fields bug noted at the
// call site in LowerFields/unionByteWidth), array-length * element size,
// and lane-count * element size for vectors.
func (r *Registry) Size(t ast.Type) (int, error) {
	switch t.Kind {
	case ast.KindVoid:
		return 0, nil
	case ast.KindBasic:
		return r.sizeBasic(t.Name)
	case ast.KindPtr:
		return pointerSize, nil
	case ast.KindFunc:
		return funcPtrSize, nil
	case ast.KindArray:
		elemSize, err := r.Size(*t.Elem)
		if err != nil {
			return 0, err
		}
		if t.Len == ast.NoArrayLength {
			return pointerSize, nil
		}
		return elemSize * t.Len, nil
	case ast.KindVector:
		elemSize, err := r.Size(*t.Elem)
		if err != nil {
			return 0, err
		}
		return elemSize * t.Len, nil
	case ast.KindStruct:
		entry, ok := r.FindStruct(t.Name)
		if !ok {
			return 0, fmt.Errorf("types: sizeof unresolved struct %q", interner.Str(t.Name))
		}
		total := 0
		for _, ft := range entry.FieldTypes {
			n, err := r.Size(ft)
			if err != nil {
				return 0, err
			}
			total += n
		}
		return total, nil
	default:
		return 0, fmt.Errorf("types: sizeof unknown type kind %v", t.Kind)
	}
}

func (r *Registry) sizeBasic(name interner.Name) (int, error) {
	text := interner.Str(name)
	if info, ok := primitives[text]; ok {
		return info.bytes, nil
	}
	if entry, ok := r.structs[name]; ok {
		total := 0
		for _, ft := range entry.FieldTypes {
			n, err := r.Size(ft)
			if err != nil {
				return 0, err
			}
			total += n
		}
		return total, nil
	}
	if target, ok := r.aliases[name]; ok {
		return r.Size(target)
	}
	return 0, fmt.Errorf("types: sizeof unresolved type name %q", text)
}
