// Package project locates and decodes the havoc.toml project manifest
// (spec.md §10 "Configuration").
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config mirrors havoc.toml's three sections. CLI flags override any
// field a caller already read from the manifest.
type Config struct {
	Package PackageConfig `toml:"package"`
	Build   BuildConfig   `toml:"build"`
	Run     RunConfig     `toml:"run"`
}

type PackageConfig struct {
	Name string `toml:"name"`
}

type BuildConfig struct {
	OptLevel  int      `toml:"opt_level"`
	Emit      string   `toml:"emit"` // "exe", "obj", "shared", "asm" — see ArtifactKind
	Output    string   `toml:"output"`
	Libraries []string `toml:"libraries"`
}

type RunConfig struct {
	JIT bool `toml:"jit"`
}

// Manifest is a decoded havoc.toml plus the directory it was found in.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// FindHavocToml walks up from startDir looking for havoc.toml, the way
// the donor CLI walks up for its own project file.
func FindHavocToml(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, "havoc.toml")
		if _, statErr := os.Stat(candidate); statErr == nil {
			return candidate, true, nil
		} else if !errors.Is(statErr, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, statErr)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load finds and decodes the nearest havoc.toml above startDir. ok is
// false (with a nil error) when no manifest exists in any ancestor
// directory — that is not itself an error, since a bare file/module
// invocation needs no manifest.
func Load(startDir string) (*Manifest, bool, error) {
	path, ok, err := FindHavocToml(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err := decode(path)
	if err != nil {
		return nil, true, err
	}
	return &Manifest{Path: path, Root: filepath.Dir(path), Config: cfg}, true, nil
}

func decode(path string) (Config, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("package") {
		return Config{}, fmt.Errorf("%s: missing [package]", path)
	}
	if !meta.IsDefined("package", "name") || strings.TrimSpace(cfg.Package.Name) == "" {
		return Config{}, fmt.Errorf("%s: missing [package].name", path)
	}
	if cfg.Build.Emit == "" {
		cfg.Build.Emit = "exe"
	}
	return cfg, nil
}
