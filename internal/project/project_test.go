package project

import (
	"os"
	"path/filepath"
	"testing"
)

func writeManifest(t *testing.T, dir, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, "havoc.toml"), []byte(body), 0o644); err != nil {
		t.Fatalf("write havoc.toml: %v", err)
	}
}

func TestLoadFindsManifestInAncestor(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, `
[package]
name = "demo"

[build]
opt_level = 2
emit = "obj"
libraries = ["m"]

[run]
jit = true
`)
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	manifest, ok, err := Load(nested)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !ok {
		t.Fatalf("expected manifest to be found")
	}
	if manifest.Config.Package.Name != "demo" {
		t.Fatalf("Name = %q, want demo", manifest.Config.Package.Name)
	}
	if manifest.Config.Build.OptLevel != 2 {
		t.Fatalf("OptLevel = %d, want 2", manifest.Config.Build.OptLevel)
	}
	if manifest.Config.Build.Emit != "obj" {
		t.Fatalf("Emit = %q, want obj", manifest.Config.Build.Emit)
	}
	if !manifest.Config.Run.JIT {
		t.Fatalf("expected Run.JIT = true")
	}
}

func TestLoadMissingManifestIsNotAnError(t *testing.T) {
	_, ok, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ok {
		t.Fatalf("expected no manifest to be found")
	}
}

func TestLoadRequiresPackageName(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "[package]\n")

	_, _, err := Load(dir)
	if err == nil {
		t.Fatalf("expected an error for a missing [package].name")
	}
}

func TestArtifactKindDefaultsToExecutable(t *testing.T) {
	kind, err := ArtifactKind("")
	if err != nil {
		t.Fatalf("ArtifactKind: %v", err)
	}
	if kind != 0 {
		t.Fatalf("expected ArtifactExecutable for empty emit, got %v", kind)
	}
}

func TestArtifactKindRejectsUnknown(t *testing.T) {
	if _, err := ArtifactKind("bogus"); err == nil {
		t.Fatalf("expected an error for an unknown emit kind")
	}
}
