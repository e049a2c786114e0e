// Package compress implements the two-level character-class table plus
// shared transition-table compression pass described in spec.md 4.7,
// turning a general internal/dfa.DFA's per-cell variable-length sorted
// range tables into constant-time lookups that share memory across
// cells.
package compress

import (
	"github.com/KromDaniel/lexgen/internal/charclass"
	"github.com/KromDaniel/lexgen/internal/dfa"
	"github.com/KromDaniel/lexgen/internal/mark"
	"github.com/KromDaniel/lexgen/internal/transition"
)

const deadClass = -1

// CompressedDFA is the compressed artifact: a 65536-entry class-id table
// (split two-level, rows deduplicated), per-cell class→slot rows
// (deduplicated), and the concatenated per-cell outs/marks tables.
type CompressedDFA struct {
	TopLevel  []uint8    // 256 entries: which ClassRows row covers this high byte
	ClassRows [][256]int16 // deduplicated rows of class ids, -1 = dead

	NumClasses int

	TransitionIndexBegin []int   // per cell, offset into TransitionIndices
	TransitionIndices    []int16 // deduplicated rows of length NumClasses: class -> slot (-1 = none)

	TransitionBegin []int        // per cell, offset into Transitions/Marks
	Transitions     []int        // concatenated per-cell Outs, in slot order
	Marks           []*mark.Mark // parallel to Transitions

	FinalFlags []bool
}

// classOf returns the global class id of c, or deadClass if c is not
// reachable by any transition in the DFA.
func (c *CompressedDFA) classOf(unit uint16) int {
	row := c.ClassRows[c.TopLevel[unit>>8]]
	return int(row[unit&0xFF])
}

// Transit mirrors dfa.DFA.Transit over the compressed tables.
func (c *CompressedDFA) Transit(cell int, unit uint16) int {
	class := c.classOf(unit)
	if class == deadClass {
		return -1
	}
	slot := c.TransitionIndices[c.TransitionIndexBegin[cell]+class]
	if slot < 0 {
		return -1
	}
	return c.Transitions[c.TransitionBegin[cell]+int(slot)]
}

// Mark returns the per-transition mark for (cell, unit), or nil.
func (c *CompressedDFA) Mark(cell int, unit uint16) *mark.Mark {
	class := c.classOf(unit)
	if class == deadClass {
		return nil
	}
	slot := c.TransitionIndices[c.TransitionIndexBegin[cell]+class]
	if slot < 0 {
		return nil
	}
	return c.Marks[c.TransitionBegin[cell]+int(slot)]
}

// Match mirrors dfa.DFA.Match, exercised to confirm the compression
// invariant: compressed transit agrees with the general DFA for every
// cell and code unit (spec.md 4.8 property 6).
func (c *CompressedDFA) Match(s []uint16) bool {
	cell := 0
	for _, u := range s {
		cell = c.Transit(cell, u)
		if cell < 0 {
			return false
		}
	}
	return c.FinalFlags[cell]
}

func boolCopy(v bool) bool { return v }
func boolMerge(into *bool, other bool) { *into = *into || other }

// globalClasses runs alphabet discovery: union every cell's ranges into
// one TransitionSet, producing the common refinement of all per-cell
// partitions. Sub-ranges no cell ever transitions on never appear (a
// TransitionSet's Ranges skips unset sub-ranges), so the result is
// exactly the set of live global character classes in order.
func globalClasses(d *dfa.DFA) []charclass.PlainCharRange {
	ts := transition.New[bool](transition.Hooks[bool]{Copy: boolCopy, Merge: boolMerge})
	for i := range d.CharRanges {
		for _, r := range d.CharRanges[i] {
			ts.Add(r, true)
		}
	}

	var out []charclass.PlainCharRange
	for _, rg := range ts.Ranges() {
		out = append(out, rg.Range)
	}
	return out
}

// buildClassTable fills the dense 65536-entry class-id table, then
// splits it into a 256-entry top-level byte table plus deduplicated
// 256-entry rows.
func buildClassTable(classes []charclass.PlainCharRange) ([]uint8, [][256]int16, int) {
	dense := make([]int16, charclass.MaxCodeUnit+1)
	for i := range dense {
		dense[i] = deadClass
	}
	for classID, r := range classes {
		for c := int(r.Start); c <= int(r.End); c++ {
			dense[c] = int16(classID)
		}
	}

	var rows [][256]int16
	seen := map[[256]int16]uint8{}
	topLevel := make([]uint8, 256)
	for hi := 0; hi < 256; hi++ {
		var row [256]int16
		copy(row[:], dense[hi*256:hi*256+256])
		idx, ok := seen[row]
		if !ok {
			idx = uint8(len(rows))
			seen[row] = idx
			rows = append(rows, row)
		}
		topLevel[hi] = idx
	}
	return topLevel, rows, len(classes)
}

// classOfUnit finds the global class covering unit via the classes
// slice built by globalClasses (sorted, disjoint), used only while
// building per-cell transition-index rows, before the dense table
// exists.
func classOfUnit(classes []charclass.PlainCharRange, unit uint16) int {
	lo, hi := 0, len(classes)-1
	for lo <= hi {
		mid := (lo + hi) / 2
		r := classes[mid]
		switch {
		case unit < r.Start:
			hi = mid - 1
		case unit > r.End:
			lo = mid + 1
		default:
			return mid
		}
	}
	return deadClass
}

// Compress converts d into its compressed form, per spec.md 4.7's four
// steps: alphabet discovery, two-level class table, transition-index row
// dedup, then the concatenated transitions/marks tables.
func Compress(d *dfa.DFA) *CompressedDFA {
	classes := globalClasses(d)
	topLevel, classRows, numClasses := buildClassTable(classes)

	n := d.Size()
	transitionIndexBegin := make([]int, n)
	var transitionIndices []int16
	rowSeen := map[string]int{}

	transitionBegin := make([]int, n)
	var transitions []int
	var marks []*mark.Mark

	for i := 0; i < n; i++ {
		row := make([]int16, numClasses)
		for k := range row {
			row[k] = -1
		}
		for slot, r := range d.CharRanges[i] {
			// A cell's own range spans several global classes whenever
			// another cell's ranges split it (e.g. [a-z] here, [a-m]
			// elsewhere), so walk class-by-class from the range start
			// and point every covered class at this slot.
			c := int(r.Start)
			for c <= int(r.End) {
				classID := classOfUnit(classes, uint16(c))
				if classID != deadClass {
					row[classID] = int16(slot)
					c = int(classes[classID].End) + 1
				} else {
					c++
				}
			}
		}

		key := int16RowKey(row)
		idx, ok := rowSeen[key]
		if !ok {
			idx = len(transitionIndices)
			rowSeen[key] = idx
			transitionIndices = append(transitionIndices, row...)
		}
		transitionIndexBegin[i] = idx

		transitionBegin[i] = len(transitions)
		transitions = append(transitions, d.Outs[i]...)
		marks = append(marks, d.Marks[i]...)
	}

	return &CompressedDFA{
		TopLevel:             topLevel,
		ClassRows:            classRows,
		NumClasses:           numClasses,
		TransitionIndexBegin: transitionIndexBegin,
		TransitionIndices:    transitionIndices,
		TransitionBegin:      transitionBegin,
		Transitions:          transitions,
		Marks:                marks,
		FinalFlags:           append([]bool(nil), d.FinalFlags...),
	}
}

func int16RowKey(row []int16) string {
	b := make([]byte, len(row)*2)
	for i, v := range row {
		b[2*i] = byte(v)
		b[2*i+1] = byte(v >> 8)
	}
	return string(b)
}
