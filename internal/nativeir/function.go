package nativeir

import (
	"fmt"
	"strings"
)

// Function is a native IR function: either a definition owning one or
// more Blocks, or a declaration-only external/intrinsic signature.
type Function struct {
	ctx  *Context
	name string

	ret        *CType
	paramTypes []*CType
	paramNames []string
	variadic   bool
	linkage    Linkage

	blocks     []*Block
	locals     []*localSlot
	paramLocal []string // index -> backing local name, set by NewParameter
	entryID    int
}

type localSlot struct {
	name string
	ty   *CType
}

// NewFunction declares (and, unless external, prepares for definition) a
// function with the given signature and linkage. paramNames is stored
// but not used when rendering: parameters are named %arg0, %arg1, ... by
// position, and NewParameter looks them up by index (the receiver, when
// present, is just another trailing parameter here).
func (c *Context) NewFunction(name string, ret *CType, paramNames []string, paramTypes []*CType, variadic bool, linkage Linkage) *Function {
	f := &Function{
		ctx:        c,
		name:       name,
		ret:        ret,
		paramTypes: paramTypes,
		paramNames: paramNames,
		variadic:   variadic,
		linkage:    linkage,
	}
	c.funcs[name] = f
	c.funcOrderList = append(c.funcOrderList, name)
	return f
}

// IsExternal reports whether f is declaration-only.
func (f *Function) IsExternal() bool { return f.linkage == LinkageExternal }

// GetAddress returns a function-pointer rvalue to f, for GetFunc(name)
// lowering.
func (f *Function) GetAddress() RValue {
	return RValue{Type: f.ctx.FuncPtrType(f.ret, f.paramTypes, f.variadic), Text: "@" + f.name}
}

// NewLocal allocates a function-scope local of type ty and returns its
// lvalue. Used both for `var` declarations and for the address-of-
// temporary fix: materializing a fresh local to give an rvalue an
// address instead of synthesizing an internal global.
func (f *Function) NewLocal(ty *CType) LValue {
	name := f.ctx.nextLocalName()
	f.locals = append(f.locals, &localSlot{name: name, ty: ty})
	return LValue{Type: ty, Ptr: name}
}

// NewParameter returns the lvalue of the i-th parameter's backing local.
// The top-level driver (C8 pass 4) allocates one local per parameter and
// copies the incoming argument in, so source code can address-take
// parameters; this call performs exactly that allocation.
func (f *Function) NewParameter(i int) LValue {
	lv := f.NewLocal(f.paramTypes[i])
	if len(f.paramLocal) <= i {
		grown := make([]string, i+1)
		copy(grown, f.paramLocal)
		f.paramLocal = grown
	}
	f.paramLocal[i] = lv.Ptr
	return lv
}

// EntryBlock creates (or returns, if already created) the function's
// entry block.
func (f *Function) EntryBlock() *Block {
	if len(f.blocks) > 0 {
		return f.blocks[0]
	}
	return f.NewBlock("entry")
}

// NewBlock allocates a fresh named basic block in f.
func (f *Function) NewBlock(label string) *Block {
	id := f.ctx.nextBlockID()
	b := &Block{ctx: f.ctx, fn: f, id: id, label: label}
	f.blocks = append(f.blocks, b)
	return b
}

func (f *Function) signature() (string, []string) {
	params := make([]string, len(f.paramTypes))
	for i, t := range f.paramTypes {
		params[i] = fmt.Sprintf("%s %%arg%d", t.llvm(), i)
	}
	if f.variadic {
		params = append(params, "...")
	}
	return f.ret.llvm(), params
}

func (f *Function) render() string {
	retTy, params := f.signature()
	if f.linkage == LinkageExternal || len(f.blocks) == 0 {
		return fmt.Sprintf("declare %s @%s(%s)\n", retTy, f.name, strings.Join(params, ", "))
	}
	var b strings.Builder
	linkageKw := ""
	if f.linkage == LinkageInternal {
		linkageKw = "internal "
	}
	attrs := ""
	if f.linkage == LinkageAlwaysInline {
		attrs = " alwaysinline"
	}
	fmt.Fprintf(&b, "define %s%s @%s(%s)%s {\n", linkageKw, retTy, f.name, strings.Join(params, ", "), attrs)
	for _, bb := range f.blocks {
		if bb.id == f.blocks[0].id {
			for _, l := range f.locals {
				fmt.Fprintf(&b, "  %s = alloca %s\n", l.name, l.ty.llvm())
			}
			for i := range f.paramTypes {
				if i < len(f.paramLocal) && f.paramLocal[i] != "" {
					fmt.Fprintf(&b, "  store %s %%arg%d, ptr %s\n", f.paramTypes[i].llvm(), i, f.paramLocal[i])
				}
			}
		}
		b.WriteString(bb.render())
	}
	b.WriteString("}\n")
	return b.String()
}
