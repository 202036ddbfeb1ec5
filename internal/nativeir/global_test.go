package nativeir

import (
	"regexp"
	"testing"
)

// llvmCStringGrammar matches a c"..." body that contains only printable
// ASCII (excluding '"' and '\') and \NN two-hex-digit byte escapes —
// the grammar LLVM's textual IR actually accepts, as opposed to Go's
// %q C-style escapes (\n, \t, \\, \x00).
var llvmCStringGrammar = regexp.MustCompile(`^(\\[0-9A-F]{2}|[^"\\])*$`)

func TestStringLiteralRendersLLVMByteEscapes(t *testing.T) {
	ctx := NewContext(Options{Name: "t"})
	rv := ctx.StringLiteral("hi\n\"\\")
	_ = rv

	g := ctx.globals["@.str.0"]
	if g == nil {
		t.Fatalf("expected a declared string literal global")
	}
	decl := g.llvmDecl()

	start := indexByte(decl, '"')
	end := lastIndexByte(decl, '"')
	if start < 0 || end <= start {
		t.Fatalf("expected a quoted c\"...\" body in %q", decl)
	}
	body := decl[start+1 : end]
	if !llvmCStringGrammar.MatchString(body) {
		t.Fatalf("rendered string body %q is not valid LLVM c\"...\" syntax (want \\NN escapes only)", body)
	}
	if !contains(body, `\0A`) { // "\n"
		t.Fatalf("expected \\0A escape for newline in %q", body)
	}
	if !contains(body, `\22`) { // '"'
		t.Fatalf("expected \\22 escape for the literal quote in %q", body)
	}
	if !contains(body, `\5C`) { // '\'
		t.Fatalf("expected \\5C escape for the literal backslash in %q", body)
	}
	if !contains(body, `\00`) { // the StringLiteral NUL terminator
		t.Fatalf("expected a trailing \\00 terminator escape in %q", body)
	}
}

func indexByte(s string, b byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return i
		}
	}
	return -1
}

func lastIndexByte(s string, b byte) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == b {
			return i
		}
	}
	return -1
}

func contains(s, sub string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}
