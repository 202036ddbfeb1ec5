package diag

import (
	"fmt"

	"fortio.org/safecast"
)

// Bag collects diagnostics up to a fixed capacity; once it is full, Add
// drops further diagnostics. Batch mode (C15) does not use a Bag: it
// renders each failing unit with Print.
type Bag struct {
	items   []*Diagnostic
	maximum uint16
}

// NewBag creates a Bag holding at most maximum diagnostics.
func NewBag(maximum int) *Bag {
	cap16, err := safecast.Conv[uint16](maximum)
	if err != nil {
		panic(fmt.Errorf("diag: bag capacity overflow: %w", err))
	}
	return &Bag{items: make([]*Diagnostic, 0, cap16), maximum: cap16}
}

// Add appends d, returning false if the bag's capacity is already used.
func (b *Bag) Add(d *Diagnostic) bool {
	if d == nil || len(b.items) >= int(b.maximum) {
		return false
	}
	b.items = append(b.items, d)
	return true
}

// Items returns every diagnostic added so far, in insertion order.
func (b *Bag) Items() []*Diagnostic { return b.items }

// HasErrors reports whether any collected diagnostic is SevError.
func (b *Bag) HasErrors() bool {
	for _, d := range b.items {
		if d.Severity == SevError {
			return true
		}
	}
	return false
}
