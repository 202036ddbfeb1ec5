package driver

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"havoc/internal/ast"
	"havoc/internal/nativeir"
)

// Unit is one independent translation unit submitted to a batch build.
type Unit struct {
	File   *ast.File
	Source []byte // raw bytes, used only for the disk cache key
	Opts   Options
}

// UnitResult pairs a Unit's outcome with its index in the submitted
// batch, so the caller can report failures against the right input.
type UnitResult struct {
	Index  int
	Result *Result
	Err    error
}

// Progress is notified of a unit's status transitions as a batch runs,
// identified by its index in the submitted slice (spec.md §11, C17). It
// is called from whichever goroutine is compiling that unit, so an
// implementation that isn't itself concurrency-safe must serialize
// internally (internal/ui's model does this via a channel).
type Progress interface {
	OnUnitStart(index int)
	OnUnitDone(index int, err error)
}

// RunBatch compiles every unit concurrently, one goroutine per unit via
// golang.org/x/sync/errgroup, each with its own native IR context and
// symbol tables (spec.md §5 "Multi-program concurrency", C15). A unit's
// fatal error is captured in its UnitResult rather than propagated: one
// bad unit does not abort its siblings, per spec.md §7's batch-mode
// carve-out. jobs <= 0 defaults to GOMAXPROCS. cache is optional; pass
// nil to skip disk caching entirely. progress is optional; pass nil to
// run without status callbacks.
func RunBatch(ctx context.Context, units []Unit, jobs int, cache *DiskCache, progress Progress) []UnitResult {
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	results := make([]UnitResult, len(units))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(units)))

	for i, u := range units {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				results[i] = UnitResult{Index: i, Err: gctx.Err()}
				return nil
			default:
			}
			if progress != nil {
				progress.OnUnitStart(i)
			}
			result, err := compileUnit(u, cache)
			results[i] = UnitResult{Index: i, Result: result, Err: err}
			if progress != nil {
				progress.OnUnitDone(i, err)
			}
			return nil
		})
	}
	_ = g.Wait() // per-unit errors live in results, not in Wait's return

	return results
}

// compileUnit runs one unit through the disk cache (when present) ahead
// of the full driver pipeline: a hit skips straight to C10's sink from
// the cached IR text; a miss runs Compile and then populates the cache.
func compileUnit(u Unit, cache *DiskCache) (*Result, error) {
	if cache == nil || u.Source == nil {
		return Compile(u.File, u.Opts)
	}

	key := DigestFor(u.Source, u.Opts)
	var payload Payload
	if u.Opts.Sink == SinkFile {
		if hit, err := cache.Get(key, &payload); err == nil && hit {
			if err := sinkCachedIR(payload.IR, u.Opts); err != nil {
				return nil, err
			}
			return &Result{}, nil
		}
	}

	result, err := Compile(u.File, u.Opts)
	if err != nil {
		return nil, err
	}
	_ = cache.Put(key, &Payload{IR: result.Ctx.DumpIR()})
	return result, nil
}

// sinkCachedIR drives C10's file sink directly off cached IR text,
// bypassing the declaration/body passes entirely. JIT mode (SinkMemory)
// has no cached-text equivalent since it needs a live Context to resolve
// get_function against, so compileUnit only ever consults the cache for
// SinkFile units.
func sinkCachedIR(ir string, opts Options) error {
	driverOpts := make([]string, len(opts.Libraries))
	for i, lib := range opts.Libraries {
		driverOpts[i] = "-l" + lib
	}
	return nativeir.CompileTextToFile(ir, opts.OptLevel, opts.ArtifactKind, opts.OutputPath, opts.CommandLineOpts, driverOpts)
}
