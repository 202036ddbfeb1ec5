package diag

import (
	"strings"

	"golang.org/x/text/width"
)

// displayWidth measures s the way a monospace terminal renders it:
// fullwidth/wide runes (common in non-Latin struct and alias names)
// count as two columns, everything else as one.
func displayWidth(s string) int {
	n := 0
	for _, r := range s {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			n += 2
		default:
			n++
		}
	}
	return n
}

// PadCandidates right-pads each overload candidate's rendered type list
// to the widest entry's display width, so a resolution-failure message
// listing every non-matching candidate lines up in a fixed-width
// terminal table even when some names are multi-byte (spec.md §11).
func PadCandidates(candidates []string) []string {
	widest := 0
	for _, c := range candidates {
		if w := displayWidth(c); w > widest {
			widest = w
		}
	}
	out := make([]string, len(candidates))
	for i, c := range candidates {
		pad := widest - displayWidth(c)
		out[i] = c + strings.Repeat(" ", pad)
	}
	return out
}
