package ast

import "havoc/internal/interner"

// Position locates a node in whatever source the front end compiled from.
// The lexer/parser that produces it is out of scope for this module; the
// core only ever reads positions back out, to label native IR locations
// and fatal-error messages.
type Position struct {
	File   interner.Name
	Line   int
	Column int
}

// NodeID identifies an AST node for the purpose of looking up its resolved
// type in a Context.Types map. The semantic checker that assigns these is
// out of scope; the core treats every id it encounters as a key that must
// already be present.
type NodeID uint32

// NoNodeID is never assigned to a real node.
const NoNodeID NodeID = 0
