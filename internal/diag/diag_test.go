package diag

import (
	"strings"
	"testing"

	"havoc/internal/ast"
	"havoc/internal/interner"
)

func TestRenderIncludesPositionWhenPresent(t *testing.T) {
	d := NewAt(SevError, CodeUnknownName, `unknown identifier "foo"`, ast.Position{File: interner.Intern("a.hir"), Line: 3, Column: 5})
	got := Render(d)
	if !strings.Contains(got, "a.hir:3:5") {
		t.Fatalf("expected rendered position, got %q", got)
	}
	if !strings.Contains(got, `unknown identifier "foo"`) {
		t.Fatalf("expected message in rendered output, got %q", got)
	}
}

func TestRenderOmitsPositionWhenAbsent(t *testing.T) {
	d := New(SevWarning, CodeUnionSizing, "union P sized as sum of fields")
	got := Render(d)
	if strings.Contains(got, ":0:0") {
		t.Fatalf("expected no zero-valued position rendered, got %q", got)
	}
}

func TestBagRespectsCapacity(t *testing.T) {
	b := NewBag(1)
	if !b.Add(New(SevError, CodeOverloadFailure, "first")) {
		t.Fatalf("expected first Add to succeed")
	}
	if b.Add(New(SevError, CodeOverloadFailure, "second")) {
		t.Fatalf("expected second Add to fail once capacity is reached")
	}
	if len(b.Items()) != 1 {
		t.Fatalf("expected exactly one retained item, got %d", len(b.Items()))
	}
	if !b.HasErrors() {
		t.Fatalf("expected HasErrors to report true")
	}
}

func TestPadCandidatesAlignsWideRunes(t *testing.T) {
	padded := PadCandidates([]string{"f(i32)", "f(結構体)"})
	if len(padded[0]) == len(padded[1]) {
		return
	}
	w0 := displayWidth(padded[0])
	w1 := displayWidth(padded[1])
	if w0 != w1 {
		t.Fatalf("expected equal display width after padding, got %d vs %d", w0, w1)
	}
}
