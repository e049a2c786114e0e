// Package dfa implements the general DFA form and the subset-construction
// converter from internal/nfa, per spec.md 4.5: per-cell sorted range/out
// tables, binary-search transit, mark propagation, and conflict reporting
// with a reconstructed witness path.
package dfa

import "github.com/KromDaniel/lexgen/internal/charclass"
import "github.com/KromDaniel/lexgen/internal/mark"

// DFA is the general (uncompressed) form: cell 0 is always the begin
// cell. CharRanges[i] is sorted and may contain touching-but-distinct
// ranges (never fused across different outs); Outs[i] and Marks[i] are
// parallel to CharRanges[i].
type DFA struct {
	CharRanges [][]charclass.PlainCharRange
	Outs       [][]int
	Marks      [][]*mark.Mark
	FinalFlags []bool
}

// Size returns the number of DFA cells.
func (d *DFA) Size() int { return len(d.Outs) }

// TransitSlot returns the index into CharRanges[cell]/Outs[cell]/Marks[cell]
// matching c, or -1 if cell has no transition on c.
func (d *DFA) TransitSlot(cell int, c uint16) int {
	ranges := d.CharRanges[cell]
	lo, hi := 0, len(ranges)-1
	for lo <= hi {
		mid := (lo + hi) / 2
		r := ranges[mid]
		switch {
		case c < r.Start:
			hi = mid - 1
		case c > r.End:
			lo = mid + 1
		default:
			return mid
		}
	}
	return -1
}

// Transit returns the target cell for (cell, c), or -1 if unrecognised.
func (d *DFA) Transit(cell int, c uint16) int {
	slot := d.TransitSlot(cell, c)
	if slot < 0 {
		return -1
	}
	return d.Outs[cell][slot]
}

// Match reports whether the DFA accepts s in full (used by tests; the
// production scanning driver lives in internal/lexer and additionally
// tracks longest-match/backtrack state).
func (d *DFA) Match(s []uint16) bool {
	cell := 0
	for _, c := range s {
		cell = d.Transit(cell, c)
		if cell < 0 {
			return false
		}
	}
	return d.FinalFlags[cell]
}
