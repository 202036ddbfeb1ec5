package nativeir

import "fmt"

// RValue is a readable native IR value: a typed SSA operand. Its Text is
// the bare operand spelling ("%t3", "3", "@g_count") with no type prefix;
// callers format "<type> <text>" when an instruction needs both.
type RValue struct {
	Type *CType
	Text string
}

// LValue is an addressable storage cell: a pointer operand plus the type
// of the value stored there (not the pointer's own type, which is always
// "ptr").
type LValue struct {
	Type *CType // pointee type
	Ptr  string
}

// ConstInt returns an integer rvalue of the given width.
func (c *Context) ConstInt(width int, v int64) RValue {
	return RValue{Type: c.IntType(width), Text: fmt.Sprintf("%d", v)}
}

// ConstLong is ConstInt at the native word width (64 bits).
func (c *Context) ConstLong(v int64) RValue { return c.ConstInt(64, v) }

// ConstDouble returns a double-precision floating point rvalue.
func (c *Context) ConstDouble(v float64) RValue {
	return RValue{Type: c.FloatType(64), Text: fmt.Sprintf("%g", v)}
}

// ConstPointer returns a pointer rvalue with a fixed literal address
// (used for null: ConstPointer(0)).
func (c *Context) ConstPointer(addr uint64) RValue {
	if addr == 0 {
		return RValue{Type: c.PointerType(c.VoidType()), Text: "null"}
	}
	return RValue{Type: c.PointerType(c.VoidType()), Text: fmt.Sprintf("inttoptr (i64 %d to ptr)", addr)}
}

// Zero returns the zero value of ty (0, 0.0, null, or a zeroinitializer
// aggregate).
func (c *Context) Zero(ty *CType) RValue {
	switch ty.Kind {
	case KindInt:
		return RValue{Type: ty, Text: "0"}
	case KindFloat:
		return RValue{Type: ty, Text: "0.0"}
	case KindPointer, KindFuncPtr:
		return RValue{Type: ty, Text: "null"}
	default:
		return RValue{Type: ty, Text: "zeroinitializer"}
	}
}

// StringLiteral materializes a global constant string and returns a
// pointer rvalue to its first byte.
func (c *Context) StringLiteral(s string) RValue {
	name := fmt.Sprintf("@.str.%d", len(c.globals))
	bytes := append([]byte(s), 0)
	g := &Global{
		ctx:       c,
		name:      name,
		valueType: c.ArrayType(c.IntType(8), len(bytes)),
		linkage:   LinkageInternal,
		constant:  true,
		rawBytes:  bytes,
	}
	c.globals[name] = g
	c.globalOrderList = append(c.globalOrderList, name)
	return RValue{Type: c.PointerType(c.IntType(8)), Text: name}
}
