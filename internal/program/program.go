// Package program implements C11: the msgpack-encoded artifact the CLI
// reads in place of raw source text — a fully annotated AST as the
// semantic checker (out of scope in this repository) would have
// produced it (spec.md §3, §6).
package program

import (
	"fmt"
	"io"
	"os"

	"github.com/vmihailenco/msgpack/v5"

	"havoc/internal/ast"
)

// Program pairs one file's AST with the type the checker resolved for
// every node it annotated, keyed by NodeID.
type Program struct {
	File  ast.File
	Types map[ast.NodeID]ast.Type
}

// Encode msgpack-encodes p.
func Encode(p *Program) ([]byte, error) {
	data, err := msgpack.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("program: encode: %w", err)
	}
	return data, nil
}

// Decode reverses Encode.
func Decode(data []byte) (*Program, error) {
	var p Program
	if err := msgpack.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("program: decode: %w", err)
	}
	return &p, nil
}

// Load reads a Program from path, or from stdin when path is "-".
func Load(path string) (*Program, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("program: read %s: %w", path, err)
	}
	return Decode(data)
}

// Save writes p's encoding to path, or to stdout when path is "-".
func Save(p *Program, path string) error {
	data, err := Encode(p)
	if err != nil {
		return err
	}
	if path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
