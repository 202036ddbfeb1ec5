package diag

import "havoc/internal/ast"

// Diagnostic is one renderable event: a severity, a taxonomy code, a
// human-readable message, and the source position when one is known
// (spec.md §7: "when available, the ast.Position").
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Pos      ast.Position
	HasPos   bool
}

func New(sev Severity, code Code, msg string) *Diagnostic {
	return &Diagnostic{Severity: sev, Code: code, Message: msg}
}

func NewAt(sev Severity, code Code, msg string, pos ast.Position) *Diagnostic {
	return &Diagnostic{Severity: sev, Code: code, Message: msg, Pos: pos, HasPos: true}
}
