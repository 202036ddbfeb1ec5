// Package driver implements C8 (Top-Level Driver): the four declaration
// passes that turn a whole file's elements into a populated native IR
// module, plus C15 (batch driver) and C16 (disk cache) in batch.go and
// cache.go (spec.md §4.7, §5, §7).
package driver

import (
	"havoc/internal/nativeir"
	"havoc/internal/observ"
	"havoc/internal/trace"
)

// SinkMode selects what Compile does with the finished module, mirroring
// the native IR collaborator's two sink shapes (spec.md §6).
type SinkMode uint8

const (
	SinkNone SinkMode = iota
	SinkFile
	SinkMemory
)

// Options configures one compilation.
type Options struct {
	OptLevel               int
	DumpIR                 bool
	AllowUnreachableBlocks bool
	ConstFold              bool // run C9 ahead of the four passes

	Sink         SinkMode
	ArtifactKind nativeir.ArtifactKind // SinkFile only
	OutputPath   string                // SinkFile only

	CommandLineOpts []string
	Libraries       []string // forwarded as `-l<name>` driver options

	Tracer trace.Tracer // nil is treated as trace.Nop
	Timer  *observ.Timer // nil disables phase timing
}

// Result is what Compile hands back: the populated context (for
// inspection or a caller-driven sink call), in JIT mode the loaded
// artifact, and a phase timing report when Options.Timer was set.
type Result struct {
	Ctx      *nativeir.Context
	Artifact *nativeir.Artifact
	Timing   *observ.Report
}
