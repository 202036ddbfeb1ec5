// Package interner provides process-wide identifier interning.
//
// The lowering core never compares identifier text directly: every
// identifier (struct name, field name, function name, alias) is interned
// once into a Name, and every later comparison is an integer compare.
package interner

import (
	"slices"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

// Name is an interned identifier. The zero value is not a valid name.
type Name uint32

// NoName is returned for the empty string and never denotes a real identifier.
const NoName Name = 0

// MarshalMsgpack encodes n as its resolved text rather than its raw
// integer, since a Name is only meaningful against the interner table
// of the process that produced it: a msgpack-encoded internal/program
// artifact (spec.md §3) is decoded by a different process, which must
// re-intern the string into its own Global table to get a comparable
// Name back.
func (n Name) MarshalMsgpack() ([]byte, error) {
	return msgpack.Marshal(Str(n))
}

// UnmarshalMsgpack reverses MarshalMsgpack, interning the decoded
// string into Global so the resulting Name is valid in this process.
func (n *Name) UnmarshalMsgpack(data []byte) error {
	var s string
	if err := msgpack.Unmarshal(data, &s); err != nil {
		return err
	}
	*n = Intern(s)
	return nil
}

// Interner is a process-wide monotonic symbol table. Safe for concurrent use.
type Interner struct {
	mu    sync.RWMutex
	byID  []string
	index map[string]Name
}

// New constructs an empty interner with NoName reserved for "".
func New() *Interner {
	return &Interner{
		byID:  []string{""},
		index: map[string]Name{"": NoName},
	}
}

// Intern returns the Name for s, assigning a new one on first sight.
func (in *Interner) Intern(s string) Name {
	in.mu.RLock()
	if id, ok := in.index[s]; ok {
		in.mu.RUnlock()
		return id
	}
	in.mu.RUnlock()

	cpy := string([]byte(s))

	in.mu.Lock()
	defer in.mu.Unlock()
	if id, ok := in.index[cpy]; ok {
		return id
	}
	id := Name(len(in.byID))
	in.byID = append(in.byID, cpy)
	in.index[cpy] = id
	return id
}

// Str returns the text behind a Name. Panics on an unknown Name: every Name
// handed to a caller came from Intern on this same interner, so this is a
// contract violation, not a recoverable error.
func (in *Interner) Str(n Name) string {
	in.mu.RLock()
	defer in.mu.RUnlock()
	if int(n) < 0 || int(n) >= len(in.byID) {
		panic("interner: unknown name")
	}
	return in.byID[n]
}

// Len returns the number of distinct names interned, including NoName.
func (in *Interner) Len() int {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return len(in.byID)
}

// Snapshot returns a copy of every interned string, indexed by Name.
func (in *Interner) Snapshot() []string {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return slices.Clone(in.byID)
}
