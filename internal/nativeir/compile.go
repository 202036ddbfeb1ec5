package nativeir

import (
	"fmt"
	"os"
	"os/exec"
	"plugin"
)

// ArtifactKind selects the form of compile-to-file output.
type ArtifactKind uint8

const (
	ArtifactExecutable ArtifactKind = iota
	ArtifactObject
	ArtifactSharedLibrary
	ArtifactAssembly
)

// CompileToFile lowers the module to the requested artifact kind at
// path, shelling out to clang with the accumulated driver/command-line
// options. This is the AOT half of the spec's "compile-to-file or
// compile-to-memory" sink.
func (c *Context) CompileToFile(kind ArtifactKind, path string) error {
	irPath, cleanup, err := c.writeTempIR()
	if err != nil {
		return err
	}
	defer cleanup()
	return runClangToFile(irPath, c.opts.OptLevel, kind, path, c.commandLineOpts, c.driverOpts)
}

// CompileTextToFile is CompileToFile's Context-free twin: it drives the
// same clang invocation directly off already-rendered LLVM IR text,
// letting a disk-cache hit (C16) reach C10's sink without reconstructing
// a Context. optLevel and the option slices mean exactly what Context's
// own fields mean.
func CompileTextToFile(irText string, optLevel int, kind ArtifactKind, path string, commandLineOpts, driverOpts []string) error {
	f, err := os.CreateTemp("", "havoc-cached-*.ll")
	if err != nil {
		return fmt.Errorf("nativeir: temp IR file: %w", err)
	}
	irPath := f.Name()
	defer os.Remove(irPath)
	if _, err := f.WriteString(irText); err != nil {
		f.Close()
		return fmt.Errorf("nativeir: write temp IR: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	return runClangToFile(irPath, optLevel, kind, path, commandLineOpts, driverOpts)
}

func runClangToFile(irPath string, optLevel int, kind ArtifactKind, path string, commandLineOpts, driverOpts []string) error {
	args := []string{"-O" + optLevelText(optLevel), irPath, "-o", path}
	switch kind {
	case ArtifactObject:
		args = append(args, "-c")
	case ArtifactSharedLibrary:
		args = append(args, "-shared", "-fPIC")
	case ArtifactAssembly:
		args = append(args, "-S")
	}
	args = append(args, commandLineOpts...)
	args = append(args, driverOpts...)

	cmd := exec.Command("clang", args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("nativeir: clang compile-to-file: %w", err)
	}
	return nil
}

// Artifact is the in-memory handle returned by CompileToMemory.
type Artifact struct {
	plugin *plugin.Plugin
	soPath string
}

// GetFunction resolves a symbol from the JIT-compiled module, mirroring
// the native library's get_function(name). The symbol is returned exactly
// as plugin.Lookup found it; the caller asserts it to the function type
// it expects.
func (a *Artifact) GetFunction(name string) (plugin.Symbol, error) {
	sym, err := a.plugin.Lookup(name)
	if err != nil {
		return nil, fmt.Errorf("nativeir: get_function(%s): %w", name, err)
	}
	return sym, nil
}

// CompileToMemory builds a temporary shared object with clang and loads
// it via the standard plugin package, standing in for the native
// library's compile-to-memory JIT sink. Go plugins only load on
// platforms/build modes that support -buildmode=plugin (linux/darwin,
// cgo-enabled); this is a fundamental constraint of using the stdlib's
// own JIT-adjacent mechanism rather than a true in-process JIT.
func (c *Context) CompileToMemory() (*Artifact, error) {
	irPath, cleanup, err := c.writeTempIR()
	if err != nil {
		return nil, err
	}
	defer cleanup()

	soPath := irPath + ".so"
	args := []string{"-O" + optLevelText(c.opts.OptLevel), irPath, "-shared", "-fPIC", "-o", soPath}
	args = append(args, c.commandLineOpts...)
	args = append(args, c.driverOpts...)
	cmd := exec.Command("clang", args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("nativeir: clang compile-to-memory: %w", err)
	}

	p, err := plugin.Open(soPath)
	if err != nil {
		return nil, fmt.Errorf("nativeir: plugin.Open: %w", err)
	}
	return &Artifact{plugin: p, soPath: soPath}, nil
}

func (c *Context) writeTempIR() (path string, cleanup func(), err error) {
	f, err := os.CreateTemp("", c.opts.Name+"-*.ll")
	if err != nil {
		return "", nil, fmt.Errorf("nativeir: temp IR file: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(c.DumpIR()); err != nil {
		return "", nil, fmt.Errorf("nativeir: write temp IR: %w", err)
	}
	if c.opts.DumpIR {
		fmt.Fprintln(os.Stderr, c.DumpIR())
	}
	name := f.Name()
	return name, func() { os.Remove(name) }, nil
}

func optLevelText(level int) string {
	switch level {
	case 0, 1, 2, 3:
		return fmt.Sprintf("%d", level)
	default:
		return "2"
	}
}
