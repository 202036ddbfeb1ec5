package diag

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"havoc/internal/interner"
)

var (
	errorColor = color.New(color.FgRed, color.Bold)
	warnColor  = color.New(color.FgYellow)
	infoColor  = color.New(color.FgCyan)
)

// Render formats d as the one-line message spec.md §7 describes: the
// error class, the message, and the position when known.
func Render(d *Diagnostic) string {
	label := errorColor.Sprintf("%s[%s]", d.Severity, d.Code)
	switch d.Severity {
	case SevWarning:
		label = warnColor.Sprintf("%s[%s]", d.Severity, d.Code)
	case SevInfo:
		label = infoColor.Sprintf("%s[%s]", d.Severity, d.Code)
	}
	if d.HasPos {
		return fmt.Sprintf("%s %s:%d:%d: %s", label, interner.Str(d.Pos.File), d.Pos.Line, d.Pos.Column, d.Message)
	}
	return fmt.Sprintf("%s %s", label, d.Message)
}

// Print writes d's rendered form to stderr.
func Print(d *Diagnostic) {
	fmt.Fprintln(os.Stderr, Render(d))
}

// Fatal prints d and terminates the process. It is the sole place in
// this repository that calls os.Exit for a compilation failure;
// everything upstream returns a plain error instead (spec.md §10).
func Fatal(d *Diagnostic) {
	Print(d)
	os.Exit(1)
}

// PrintBag prints every diagnostic in b, in insertion order.
func PrintBag(b *Bag) {
	for _, d := range b.Items() {
		Print(d)
	}
}
