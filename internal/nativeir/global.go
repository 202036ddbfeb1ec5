package nativeir

import (
	"fmt"
	"strings"
)

// Linkage mirrors the pass-2 linkage decision in the top-level driver:
// external declarations, internal (non-exported) definitions, and
// exported definitions.
type Linkage uint8

const (
	LinkageExported Linkage = iota
	LinkageInternal
	LinkageExternal
	LinkageAlwaysInline
)

// Global is a file-scope native IR global variable.
type Global struct {
	ctx       *Context
	name      string
	valueType *CType
	linkage   Linkage
	constant  bool
	rawBytes  []byte // set only for StringLiteral-created globals
	init      *RValue
}

// NewGlobal declares a global named name of type ty with the given
// linkage. initVal, if non-nil, is used as the static initializer;
// otherwise the global is zero-initialized.
func (c *Context) NewGlobal(name string, ty *CType, linkage Linkage, initVal *RValue) *Global {
	full := "@" + name
	g := &Global{ctx: c, name: full, valueType: ty, linkage: linkage, init: initVal}
	c.globals[full] = g
	c.globalOrderList = append(c.globalOrderList, full)
	return g
}

// LValue returns the addressable cell for g.
func (g *Global) LValue() LValue { return LValue{Type: g.valueType, Ptr: g.name} }

func (g *Global) llvmDecl() string {
	if g.rawBytes != nil {
		return fmt.Sprintf("%s = private unnamed_addr constant %s c\"%s\"", g.name, g.valueType.llvm(), llvmByteString(g.rawBytes))
	}
	linkage := "global"
	if g.constant {
		linkage = "constant"
	}
	qualifier := ""
	switch g.linkage {
	case LinkageInternal:
		qualifier = "internal "
	case LinkageExternal:
		qualifier = "external "
	}
	if g.linkage == LinkageExternal {
		return fmt.Sprintf("%s = external global %s", g.name, g.valueType.llvm())
	}
	initText := "zeroinitializer"
	if g.init != nil {
		initText = g.init.Text
	}
	return fmt.Sprintf("%s = %s%s %s %s", g.name, qualifier, linkage, g.valueType.llvm(), initText)
}

// llvmByteString renders raw as LLVM textual IR's c"..." constant body:
// every byte hex-escaped as \NN (uppercase), since that grammar only
// accepts two-hex-digit byte escapes, not Go's %q C-style escapes
// (\n, \t, \\, \x00, ...).
func llvmByteString(raw []byte) string {
	var b strings.Builder
	b.Grow(len(raw) * 3)
	for _, c := range raw {
		fmt.Fprintf(&b, "\\%02X", c)
	}
	return b.String()
}
