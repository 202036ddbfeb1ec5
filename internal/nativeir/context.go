package nativeir

import (
	"fmt"
	"strings"
)

// Options configures a Context the way the spec's "context lifecycle"
// operation set requires: name, optimization level, dump toggles,
// unreachable-block tolerance, and free-form option/driver-flag append.
type Options struct {
	Name                   string
	OptLevel               int // 0..3
	DumpIR                 bool
	DumpCode               bool
	AllowUnreachableBlocks bool
}

// Context is the unique-owner resource for one compilation. Every handle
// this package hands out (CType, RValue, LValue, *Function, *Block) is a
// borrowed view into a Context and must not outlive it.
type Context struct {
	opts Options

	commandLineOpts []string
	driverOpts      []string

	structs     map[string]*CType // name -> cached struct/union type
	structOrder []string

	funcs     map[string]*Function
	funcOrderList []string
	globals     map[string]*Global
	globalOrderList []string

	tempSeq  int
	blockSeq int
	localSeq int
}

// NewContext creates a Context with the given name and options.
func NewContext(opts Options) *Context {
	return &Context{
		opts:    opts,
		structs: make(map[string]*CType),
		funcs:   make(map[string]*Function),
		globals: make(map[string]*Global),
	}
}

// AppendCommandLineOption records an extra `-f...`-style compiler option,
// forwarded to clang at compile time.
func (c *Context) AppendCommandLineOption(opt string) {
	c.commandLineOpts = append(c.commandLineOpts, opt)
}

// AppendDriverOption records an extra linker/driver option (`-lfoo`,
// `-lc`, `-lm`), forwarded to clang's link step.
func (c *Context) AppendDriverOption(opt string) {
	c.driverOpts = append(c.driverOpts, opt)
}

func (c *Context) nextTemp() string {
	c.tempSeq++
	return fmt.Sprintf("%%t%d", c.tempSeq)
}

func (c *Context) nextBlockID() int {
	id := c.blockSeq
	c.blockSeq++
	return id
}

func (c *Context) nextLocalName() string {
	c.localSeq++
	return fmt.Sprintf("%%l%d", c.localSeq)
}

// DumpIR renders the module built so far as textual LLVM IR. Used both
// as the CompileToFile intermediate and directly when Options.DumpIR is
// set (the stand-in for the native library's "dump GIMPLE" toggle).
func (c *Context) DumpIR() string {
	var b strings.Builder
	for _, name := range c.structOrder {
		st := c.structs[name]
		fmt.Fprintf(&b, "%s\n", st.llvmDecl())
	}
	for _, g := range c.globalOrder() {
		fmt.Fprintf(&b, "%s\n", g.llvmDecl())
	}
	b.WriteString("\n")
	for _, f := range c.funcOrder() {
		b.WriteString(f.render())
		b.WriteString("\n")
	}
	return b.String()
}

func (c *Context) globalOrder() []*Global {
	out := make([]*Global, 0, len(c.globalOrderList))
	for _, name := range c.globalOrderList {
		out = append(out, c.globals[name])
	}
	return out
}

func (c *Context) funcOrder() []*Function {
	out := make([]*Function, 0, len(c.funcOrderList))
	for _, name := range c.funcOrderList {
		out = append(out, c.funcs[name])
	}
	return out
}
