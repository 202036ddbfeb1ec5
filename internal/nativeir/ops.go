package nativeir

import "fmt"

// BinOpKind enumerates the binary opcodes the expression lowerer can
// request. Bitwise or/and/xor are distinct opcodes — see SPEC_FULL.md §9
// on the source's historical or/and conflation.
type BinOpKind uint8

const (
	OpAdd BinOpKind = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpOr
	OpAnd
	OpXor
	OpShl
	OpShr
)

// CmpKind enumerates comparison opcodes.
type CmpKind uint8

const (
	CmpEq CmpKind = iota
	CmpNe
	CmpLt
	CmpLe
	CmpGt
	CmpGe
)

// UnaryOpKind enumerates unary opcodes.
type UnaryOpKind uint8

const (
	UnaryNeg UnaryOpKind = iota
	UnaryBitNot
	UnaryLogNot
)

func (b *Block) emit(format string, args ...any) string {
	tmp := b.ctx.nextTemp()
	fmt.Fprintf(&b.body, "  %s = "+format+"\n", append([]any{tmp}, args...)...)
	return tmp
}

// Cast converts val to the destination type to, choosing the appropriate
// LLVM conversion opcode by source/destination shape.
func (b *Block) Cast(val RValue, to *CType) RValue {
	if val.Type == to || (val.Type.Kind == to.Kind && val.Type.llvm() == to.llvm()) {
		return val
	}
	var opcode string
	switch {
	case val.Type.Kind == KindInt && to.Kind == KindInt:
		if to.IntWidth > val.Type.IntWidth {
			opcode = "zext"
		} else {
			opcode = "trunc"
		}
	case val.Type.Kind == KindInt && to.Kind == KindFloat:
		opcode = "sitofp"
	case val.Type.Kind == KindFloat && to.Kind == KindInt:
		opcode = "fptosi"
	case val.Type.Kind == KindFloat && to.Kind == KindFloat:
		if to.FloatWidth > val.Type.FloatWidth {
			opcode = "fpext"
		} else {
			opcode = "fptrunc"
		}
	case (val.Type.Kind == KindPointer || val.Type.Kind == KindFuncPtr) &&
		(to.Kind == KindPointer || to.Kind == KindFuncPtr):
		return RValue{Type: to, Text: val.Text}
	case val.Type.Kind == KindInt && (to.Kind == KindPointer || to.Kind == KindFuncPtr):
		opcode = "inttoptr"
	case (val.Type.Kind == KindPointer || val.Type.Kind == KindFuncPtr) && to.Kind == KindInt:
		opcode = "ptrtoint"
	default:
		opcode = "bitcast"
	}
	tmp := b.emit("%s %s %s to %s", opcode, val.Type.llvm(), val.Text, to.llvm())
	return RValue{Type: to, Text: tmp}
}

// BinaryOp applies op to a and b, both already of the same IR type (the
// caller — the expression lowerer — decides which side's type drives
// the operation and casts the other side first).
func (b *Block) BinaryOp(op BinOpKind, a, bb RValue) RValue {
	float := a.Type.Kind == KindFloat
	var mnem string
	switch op {
	case OpAdd:
		mnem = ifStr(float, "fadd", "add")
	case OpSub:
		mnem = ifStr(float, "fsub", "sub")
	case OpMul:
		mnem = ifStr(float, "fmul", "mul")
	case OpDiv:
		mnem = ifStr(float, "fdiv", "sdiv")
	case OpMod:
		mnem = ifStr(float, "frem", "srem")
	case OpOr:
		mnem = "or"
	case OpAnd:
		mnem = "and"
	case OpXor:
		mnem = "xor"
	case OpShl:
		mnem = "shl"
	case OpShr:
		mnem = "ashr"
	}
	tmp := b.emit("%s %s %s, %s", mnem, a.Type.llvm(), a.Text, bb.Text)
	return RValue{Type: a.Type, Text: tmp}
}

func ifStr(cond bool, t, f string) string {
	if cond {
		return t
	}
	return f
}

// UnaryOp applies op to val.
func (b *Block) UnaryOp(op UnaryOpKind, val RValue) RValue {
	switch op {
	case UnaryNeg:
		if val.Type.Kind == KindFloat {
			tmp := b.emit("fneg %s %s", val.Type.llvm(), val.Text)
			return RValue{Type: val.Type, Text: tmp}
		}
		tmp := b.emit("sub %s 0, %s", val.Type.llvm(), val.Text)
		return RValue{Type: val.Type, Text: tmp}
	case UnaryBitNot:
		tmp := b.emit("xor %s %s, -1", val.Type.llvm(), val.Text)
		return RValue{Type: val.Type, Text: tmp}
	case UnaryLogNot:
		tmp := b.emit("xor %s %s, 1", val.Type.llvm(), val.Text)
		return RValue{Type: val.Type, Text: tmp}
	default:
		return val
	}
}

// Comparison emits an integer or floating point comparison, always
// yielding an i1 rvalue.
func (b *Block) Comparison(op CmpKind, a, bb RValue) RValue {
	float := a.Type.Kind == KindFloat
	var pred string
	switch op {
	case CmpEq:
		pred = ifStr(float, "oeq", "eq")
	case CmpNe:
		pred = ifStr(float, "one", "ne")
	case CmpLt:
		pred = ifStr(float, "olt", "slt")
	case CmpLe:
		pred = ifStr(float, "ole", "sle")
	case CmpGt:
		pred = ifStr(float, "ogt", "sgt")
	case CmpGe:
		pred = ifStr(float, "oge", "sge")
	}
	instr := "icmp"
	if float {
		instr = "fcmp"
	}
	tmp := b.emit("%s %s %s %s, %s", instr, pred, a.Type.llvm(), a.Text, bb.Text)
	return RValue{Type: b.ctx.BoolType(), Text: tmp}
}

// ArrayAccess returns the lvalue of base[index] — the i-th element of a
// fixed array or the target of a decayed-pointer array.
func (b *Block) ArrayAccess(base LValue, index RValue) LValue {
	var elem *CType
	switch base.Type.Kind {
	case KindArray, KindVector:
		elem = base.Type.Elem
	case KindPointer:
		elem = base.Type.Elem
	default:
		elem = base.Type
	}
	tmp := b.emit("getelementptr inbounds %s, ptr %s, i64 0, i64 %s", base.Type.llvm(), base.Ptr, index.Text)
	return LValue{Type: elem, Ptr: tmp}
}

// PointerIndex implements pointer+integer addressing (spec §4.3/§4.4:
// `a[b]` spelled as pointer arithmetic), returning the lvalue at
// ptr+index.
func (b *Block) PointerIndex(ptr RValue, index RValue) LValue {
	elem := ptr.Type.Elem
	tmp := b.emit("getelementptr inbounds %s, ptr %s, i64 %s", elem.llvm(), ptr.Text, index.Text)
	return LValue{Type: elem, Ptr: tmp}
}

// Dereference returns the lvalue of *ptr.
func (b *Block) Dereference(ptr RValue) LValue {
	return LValue{Type: ptr.Type.Elem, Ptr: ptr.Text}
}

// AccessField returns the lvalue of base.field for a struct-typed lvalue
// base, using the field's cached index within the struct's registered
// layout.
func (b *Block) AccessField(base LValue, fieldIndex int) LValue {
	fieldTy := base.Type.Fields[fieldIndex].Type
	tmp := b.emit("getelementptr inbounds %s, ptr %s, i32 0, i32 %d", base.Type.llvm(), base.Ptr, fieldIndex)
	return LValue{Type: fieldTy, Ptr: tmp}
}

// DereferenceField returns the lvalue of ptr->field (pointer-to-struct
// base).
func (b *Block) DereferenceField(ptr RValue, fieldIndex int) LValue {
	structTy := ptr.Type.Elem
	fieldTy := structTy.Fields[fieldIndex].Type
	tmp := b.emit("getelementptr inbounds %s, ptr %s, i32 0, i32 %d", structTy.llvm(), ptr.Text, fieldIndex)
	return LValue{Type: fieldTy, Ptr: tmp}
}

// GetAddress returns a pointer rvalue to lv's storage cell.
func (b *Block) GetAddress(lv LValue) RValue {
	return RValue{Type: b.ctx.PointerType(lv.Type), Text: lv.Ptr}
}

// Load reads lv's current value as an rvalue.
func (b *Block) Load(lv LValue) RValue {
	tmp := b.emit("load %s, ptr %s", lv.Type.llvm(), lv.Ptr)
	return RValue{Type: lv.Type, Text: tmp}
}

// Call emits a direct call to fn with args, returning its result rvalue
// (void-typed if fn returns void).
func (b *Block) Call(fn *Function, args []RValue) RValue {
	argText := make([]string, len(args))
	for i, a := range args {
		argText[i] = fmt.Sprintf("%s %s", a.Type.llvm(), a.Text)
	}
	joined := joinComma(argText)
	if fn.ret.Kind == KindVoid {
		fmt.Fprintf(&b.body, "  call void @%s(%s)\n", fn.name, joined)
		return RValue{Type: fn.ret, Text: ""}
	}
	tmp := b.emit("call %s @%s(%s)", fn.ret.llvm(), fn.name, joined)
	return RValue{Type: fn.ret, Text: tmp}
}

// CallThroughPointer emits an indirect call via a function-pointer
// rvalue, for calling a local/global of function-pointer type.
func (b *Block) CallThroughPointer(fnPtr RValue, sig *CType, args []RValue) RValue {
	argText := make([]string, len(args))
	for i, a := range args {
		argText[i] = fmt.Sprintf("%s %s", a.Type.llvm(), a.Text)
	}
	joined := joinComma(argText)
	if sig.Ret.Kind == KindVoid {
		fmt.Fprintf(&b.body, "  call void %s(%s)\n", fnPtr.Text, joined)
		return RValue{Type: sig.Ret, Text: ""}
	}
	tmp := b.emit("call %s %s(%s)", sig.Ret.llvm(), fnPtr.Text, joined)
	return RValue{Type: sig.Ret, Text: tmp}
}

func joinComma(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += ", "
		}
		out += p
	}
	return out
}
