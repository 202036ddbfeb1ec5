package driver

import (
	"fmt"

	"havoc/internal/ast"
	"havoc/internal/constfold"
	"havoc/internal/interner"
	"havoc/internal/lower"
	"havoc/internal/nativeir"
	"havoc/internal/symbols"
	"havoc/internal/trace"
	"havoc/internal/types"
)

// Compile implements C8's four declaration/body passes over file (C9's
// constant folding runs first when requested), then invokes C10's sink
// exactly once (spec.md §4.7's closing note).
func Compile(file *ast.File, opts Options) (*Result, error) {
	tracer := opts.Tracer
	if tracer == nil {
		tracer = trace.Nop
	}

	if opts.ConstFold {
		span := trace.Begin(tracer, trace.ScopeDriver, "constfold", 0)
		if err := constfold.Run(file); err != nil {
			span.End("error")
			return nil, fmt.Errorf("constant folding: %w", err)
		}
		span.End("")
	}

	driverSpan := trace.Begin(tracer, trace.ScopeDriver, "compile", 0)
	defer driverSpan.End("")

	ctx := nativeir.NewContext(nativeir.Options{
		Name:                   interner.Str(file.Name),
		OptLevel:               opts.OptLevel,
		DumpIR:                 opts.DumpIR,
		AllowUnreachableBlocks: opts.AllowUnreachableBlocks,
	})
	for _, o := range opts.CommandLineOpts {
		ctx.AppendCommandLineOption(o)
	}
	for _, lib := range opts.Libraries {
		ctx.AppendDriverOption("-l" + lib)
	}

	registry := types.NewRegistry(ctx)
	globals := symbols.NewGlobals()
	consts := symbols.NewConstants()
	overloadTable := symbols.NewOverloadTable()
	fnIR := make(map[*ast.Function]*nativeir.Function)

	timerIdx := func(name string) int {
		if opts.Timer == nil {
			return -1
		}
		return opts.Timer.Begin(name)
	}
	timerEnd := func(idx int, note string) {
		if idx >= 0 {
			opts.Timer.End(idx, note)
		}
	}

	pass1Span := trace.Begin(tracer, trace.ScopePass, "pass1:types", driverSpan.ID())
	t1 := timerIdx("pass1:types")
	err := runPass1(registry, consts, ctx, file)
	timerEnd(t1, "")
	if err != nil {
		pass1Span.End("error")
		return nil, fmt.Errorf("driver: pass 1: %w", err)
	}
	pass1Span.End("")

	pass2Span := trace.Begin(tracer, trace.ScopePass, "pass2:signatures", driverSpan.ID())
	t2 := timerIdx("pass2:signatures")
	err = runPass2(ctx, registry, overloadTable, fnIR, file)
	timerEnd(t2, "")
	if err != nil {
		pass2Span.End("error")
		return nil, fmt.Errorf("driver: pass 2: %w", err)
	}
	pass2Span.End("")

	pass3Span := trace.Begin(tracer, trace.ScopePass, "pass3:globals", driverSpan.ID())
	t3 := timerIdx("pass3:globals")
	err = runPass3(ctx, registry, globals, file)
	timerEnd(t3, "")
	if err != nil {
		pass3Span.End("error")
		return nil, fmt.Errorf("driver: pass 3: %w", err)
	}
	pass3Span.End("")

	pass4Span := trace.Begin(tracer, trace.ScopePass, "pass4:bodies", driverSpan.ID())
	t4 := timerIdx("pass4:bodies")
	err = runPass4(ctx, registry, globals, consts, overloadTable, fnIR, file, tracer, pass4Span.ID())
	timerEnd(t4, "")
	if err != nil {
		pass4Span.End("error")
		return nil, fmt.Errorf("driver: pass 4: %w", err)
	}
	pass4Span.End("")

	result := &Result{Ctx: ctx}
	sinkSpan := trace.Begin(tracer, trace.ScopeDriver, "sink", driverSpan.ID())
	tSink := timerIdx("sink")
	defer func() {
		timerEnd(tSink, "")
		sinkSpan.End("")
	}()
	switch opts.Sink {
	case SinkFile:
		if err := ctx.CompileToFile(opts.ArtifactKind, opts.OutputPath); err != nil {
			return nil, fmt.Errorf("driver: sink: %w", err)
		}
	case SinkMemory:
		artifact, err := ctx.CompileToMemory()
		if err != nil {
			return nil, fmt.Errorf("driver: sink: %w", err)
		}
		result.Artifact = artifact
	}
	if opts.Timer != nil {
		report := opts.Timer.Report()
		result.Timing = &report
	}
	return result, nil
}

// runPass1 materializes struct IR types (declare-all-then-lower-fields,
// so a field referencing a struct declared later in the file still
// resolves), registers aliases, records consts, and records link
// directives as clang driver options (spec.md §4.7 pass 1).
func runPass1(registry *types.Registry, consts *symbols.Constants, ctx *nativeir.Context, file *ast.File) error {
	for i := range file.Elems {
		if s := file.Elems[i].Struct; s != nil {
			registry.DeclareStruct(s.Name, s.Union)
		}
	}
	for i := range file.Elems {
		if s := file.Elems[i].Struct; s != nil {
			if err := registry.LowerFields(s.Name, s.Fields); err != nil {
				return err
			}
		}
	}
	for i := range file.Elems {
		if a := file.Elems[i].Alias; a != nil {
			registry.RegisterAlias(a.Name, a.Type)
		}
	}
	for i := range file.Elems {
		if c := file.Elems[i].Const; c != nil {
			consts.Declare(c.Name, symbols.ConstInfo{ASTType: c.Type, Value: c.Value})
		}
	}
	for i := range file.Elems {
		if l := file.Elems[i].Link; l != nil {
			ctx.AppendDriverOption("-l" + l.Library)
		}
	}
	return nil
}

// runPass2 builds each function's IR signature, picks its linkage,
// mangles its emitted name, and installs it into the overload table
// (spec.md §4.7 pass 2).
func runPass2(ctx *nativeir.Context, registry *types.Registry, overloadTable *symbols.OverloadTable, fnIR map[*ast.Function]*nativeir.Function, file *ast.File) error {
	for i := range file.Elems {
		fn := file.Elems[i].Func
		if fn == nil {
			continue
		}

		paramNames := make([]string, 0, len(fn.Params)+1)
		paramTypes := make([]*nativeir.CType, 0, len(fn.Params)+1)
		for _, p := range fn.Params {
			pty, err := registry.Lower(p.Type)
			if err != nil {
				return fmt.Errorf("function %q: parameter %q: %w", interner.Str(fn.Name), interner.Str(p.Name), err)
			}
			paramNames = append(paramNames, interner.Str(p.Name))
			paramTypes = append(paramTypes, pty)
		}
		var receiverIR *nativeir.CType
		if fn.Receiver != nil {
			rty, err := registry.Lower(fn.Receiver.Type)
			if err != nil {
				return fmt.Errorf("function %q: receiver: %w", interner.Str(fn.Name), err)
			}
			receiverIR = rty
			paramNames = append(paramNames, interner.Str(fn.Receiver.Name))
			paramTypes = append(paramTypes, rty)
		}
		retIR, err := registry.Lower(fn.Ret)
		if err != nil {
			return fmt.Errorf("function %q: return type: %w", interner.Str(fn.Name), err)
		}

		linkage := nativeir.LinkageExported
		switch {
		case fn.IsExternal:
			linkage = nativeir.LinkageExternal
		case fn.IsPrivate:
			linkage = nativeir.LinkageInternal
		case fn.IsInline:
			linkage = nativeir.LinkageAlwaysInline
		}

		mangled := mangleName(fn)
		irFn := ctx.NewFunction(mangled, retIR, paramNames, paramTypes, fn.Variadic, linkage)
		fnIR[fn] = irFn

		unit := &symbols.FunctionUnit{
			AST:         fn,
			IR:          irFn,
			ReceiverIR:  receiverIR,
			MangledName: mangled,
		}
		if fn.Receiver != nil {
			unit.ReceiverAST = &fn.Receiver.Type
		}

		if fn.IsExternal {
			overloadTable.InstallExternal(fn.Name, unit)
			continue
		}
		overloadTable.InstallOrdinary(fn.Name, unit)
		if fn.IsConst {
			constUnit := *unit
			overloadTable.InstallConstant(fn.Name, &constUnit)
		}
	}
	return nil
}

// runPass3 materializes one IR global per GlobalDecl (zero-initialized
// at the IR level: the recorded initializer, if any, is assigned into
// the global from main's entry block in pass 4) (spec.md §4.7 pass 3).
func runPass3(ctx *nativeir.Context, registry *types.Registry, globals *symbols.Globals, file *ast.File) error {
	for i := range file.Elems {
		g := file.Elems[i].Global
		if g == nil {
			continue
		}
		ty, err := registry.Lower(g.Type)
		if err != nil {
			return fmt.Errorf("global %q: %w", interner.Str(g.Name), err)
		}
		linkage := nativeir.LinkageExported
		if g.IsPrivate {
			linkage = nativeir.LinkageInternal
		}
		irGlobal := ctx.NewGlobal(interner.Str(g.Name), ty, linkage, nil)
		globals.Declare(g.Name, symbols.GlobalInfo{
			VarInfo: symbols.VarInfo{LValue: irGlobal.LValue(), ASTType: g.Type, IRType: ty},
			Init:    g.Init,
		})
	}
	return nil
}

// runPass4 lowers every non-external function body: it opens the entry
// block, seeds main's global initializers in declaration order ahead of
// any user statement, allocates a local per parameter (and the receiver,
// if any) so the source can address-take them, lowers the body via C6,
// and enforces the control-flow-totality invariant on fall-off-the-end
// functions (spec.md §4.7 pass 4, §8).
func runPass4(ctx *nativeir.Context, registry *types.Registry, globals *symbols.Globals, consts *symbols.Constants, overloadTable *symbols.OverloadTable, fnIR map[*ast.Function]*nativeir.Function, file *ast.File, tracer trace.Tracer, parent uint64) error {
	for i := range file.Elems {
		fn := file.Elems[i].Func
		if fn == nil || fn.IsExternal || fn.Body == nil {
			continue
		}
		irFn, ok := fnIR[fn]
		if !ok {
			return fmt.Errorf("driver: function %q has no pass-2 signature", interner.Str(fn.Name))
		}

		moduleSpan := trace.Begin(tracer, trace.ScopeModule, interner.Str(fn.Name), parent)
		entry := irFn.EntryBlock()
		lw := lower.New(ctx, registry, globals, consts, overloadTable, irFn, entry)
		lw.SetReturnType(fn.Ret)

		if interner.Str(fn.Name) == "main" {
			for _, g := range globals.InDeclarationOrder() {
				if g.Init == nil {
					continue
				}
				if err := lw.AssignGlobalInit(g.LValue, g.ASTType, g.Init); err != nil {
					moduleSpan.End("error")
					return fmt.Errorf("main: global initializer: %w", err)
				}
			}
		}

		paramIdx := 0
		for _, p := range fn.Params {
			pty, err := registry.Lower(p.Type)
			if err != nil {
				moduleSpan.End("error")
				return err
			}
			lv := irFn.NewParameter(paramIdx)
			lw.Locals().Declare(p.Name, symbols.VarInfo{LValue: lv, ASTType: p.Type, IRType: pty})
			paramIdx++
		}
		if fn.Receiver != nil {
			rty, err := registry.Lower(fn.Receiver.Type)
			if err != nil {
				moduleSpan.End("error")
				return err
			}
			lv := irFn.NewParameter(paramIdx)
			lw.Locals().Declare(fn.Receiver.Name, symbols.VarInfo{LValue: lv, ASTType: fn.Receiver.Type, IRType: rty})
		}

		if err := lw.LowerBody(fn.Body); err != nil {
			moduleSpan.End("error")
			return fmt.Errorf("function %q: %w", interner.Str(fn.Name), err)
		}
		if !lw.CurrentBlock().Terminated() {
			if fn.Ret.IsVoid() {
				lw.CurrentBlock().EndWithVoidReturn()
			} else {
				retIR, err := registry.Lower(fn.Ret)
				if err != nil {
					moduleSpan.End("error")
					return err
				}
				lw.CurrentBlock().EndWithReturn(ctx.Zero(retIR))
			}
		}
		moduleSpan.End("")
	}
	return nil
}
