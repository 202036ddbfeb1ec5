// Package diag implements C13: the fatal-error taxonomy's renderer. It
// is a renderer, not a recovery mechanism (spec.md §7) — Fatal always
// terminates the process after printing.
package diag

// Severity ranks a Diagnostic. The taxonomy spec.md §7 names is all
// Error; Warning is used for the union-sizing notice (spec.md §9) and
// Info for cache-hit/batch-summary lines the ambient stack prints.
type Severity uint8

const (
	SevInfo Severity = iota
	SevWarning
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "info"
	case SevWarning:
		return "warning"
	case SevError:
		return "error"
	default:
		return "unknown"
	}
}
