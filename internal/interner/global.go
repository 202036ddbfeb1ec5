package interner

// Global is the process-wide interner. The lowering core is single-threaded
// per compilation (see the concurrency model), but Global is safe to share
// across concurrently-running independent compilations (internal/driver's
// batch mode), since Interner itself is mutex-guarded.
var Global = New()

// Intern interns s in the global interner.
func Intern(s string) Name { return Global.Intern(s) }

// Str resolves n against the global interner.
func Str(n Name) string { return Global.Str(n) }
