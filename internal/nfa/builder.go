package nfa

import (
	"github.com/KromDaniel/lexgen/internal/charclass"
	"github.com/KromDaniel/lexgen/internal/mark"
)

// Builder wraps an in-progress NFA with an additional endCell pointing at
// the last consuming cell whose single out is the final sentinel,
// maintaining the shape:
//
//	(begin) --...--> (endCell) --> (final = -1)
//
// Emptiness (matches only the empty string) is represented by endCell ==
// Final; in that degenerate case begin == Final too, since there are no
// cells to traverse. Builder instances are mutable and owned by a single
// goroutine during construction; Freeze produces the immutable NFA.
type Builder struct {
	cells   []charclass.CharClass
	outs    [][]int
	marks   []*mark.Mark
	begin   int
	endCell int
}

// NewEmpty returns a builder matching only the empty string.
func NewEmpty() *Builder {
	return &Builder{begin: Final, endCell: Final}
}

// Begin returns the builder's current begin cell id.
func (b *Builder) Begin() int { return b.begin }

// EndCell returns the builder's current end cell id (Final if empty).
func (b *Builder) EndCell() int { return b.endCell }

// IsEmpty reports whether the builder currently matches only ε.
func (b *Builder) IsEmpty() bool { return b.endCell == Final }

// appendCell creates a new consuming cell with the given character class
// and initial outs, returning its id.
func (b *Builder) appendCell(class charclass.CharClass, outs []int) int {
	id := len(b.cells)
	b.cells = append(b.cells, class)
	b.outs = append(b.outs, outs)
	b.marks = append(b.marks, nil)
	return id
}

// appendDummyCell creates a new dummy (epsilon-like) cell with the given
// outs, returning its id.
func (b *Builder) appendDummyCell(outs []int) int {
	return b.appendCell(charclass.Empty(), outs)
}

// link replaces the outs of cell `from` with the single target `to`.
func (b *Builder) link(from, to int) {
	b.outs[from] = []int{to}
}

// addOut appends an additional out edge to cell `from`.
func (b *Builder) addOut(from, to int) {
	b.outs[from] = append(b.outs[from], to)
}

// remap translates a cell id from another builder's arena into this
// builder's arena once its cells have been appended at `offset`,
// preserving the Final sentinel unchanged.
func remap(id, offset int) int {
	if id == Final {
		return Final
	}
	return id + offset
}

// absorb appends other's cells into b's arena (without touching b's
// begin/endCell) and returns the offset other's ids were shifted by.
func (b *Builder) absorb(other *Builder) int {
	offset := len(b.cells)
	for i, class := range other.cells {
		outs := make([]int, len(other.outs[i]))
		for k, o := range other.outs[i] {
			outs[k] = remap(o, offset)
		}
		id := b.appendCell(class, outs)
		b.marks[id] = other.marks[i]
	}
	return offset
}

// Append extends b with other in sequence: b matches then other matches.
func (b *Builder) Append(other *Builder) *Builder {
	if other.IsEmpty() {
		return b // appending ε is a no-op
	}
	if b.IsEmpty() {
		offset := b.absorb(other)
		b.begin = remap(other.begin, offset)
		b.endCell = remap(other.endCell, offset)
		return b
	}
	offset := b.absorb(other)
	b.link(b.endCell, remap(other.begin, offset))
	b.endCell = remap(other.endCell, offset)
	return b
}

// AppendChar appends a single consuming cell matching exactly one
// character class.
func (b *Builder) AppendChar(class charclass.CharClass) *Builder {
	frag := NewEmpty()
	id := frag.appendCell(class, []int{Final})
	frag.begin = id
	frag.endCell = id
	return b.Append(frag)
}

// AppendString appends a chain of single-character cells, one per code
// unit of s.
func (b *Builder) AppendString(s []uint16) *Builder {
	for _, c := range s {
		b.AppendChar(charclass.Single(c))
	}
	return b
}

// AppendBranch creates an n-ary alternation of the given branches: a new
// dummy B whose outs are the shifted begins of every branch, and a new
// dummy E that every branch's endCell is relinked to. The enclosing
// builder's begin/endCell become B/E. A single branch is a fast path that
// degenerates to a plain Append.
func (b *Builder) AppendBranch(branches ...*Builder) *Builder {
	if len(branches) == 1 {
		return b.Append(branches[0])
	}

	combined := NewEmpty()
	offsets := make([]int, len(branches))
	for i, br := range branches {
		offsets[i] = combined.absorb(br)
	}

	beginOuts := make([]int, 0, len(branches))
	for i, br := range branches {
		if br.IsEmpty() {
			beginOuts = append(beginOuts, Final)
			continue
		}
		beginOuts = append(beginOuts, remap(br.begin, offsets[i]))
	}
	beginID := combined.appendDummyCell(beginOuts)
	endID := combined.appendDummyCell([]int{Final})
	for i, br := range branches {
		if br.IsEmpty() {
			continue
		}
		combined.link(remap(br.endCell, offsets[i]), endID)
	}
	combined.begin = beginID
	combined.endCell = endID
	return b.Append(combined)
}

// Freeze converts the builder into an immutable NFA, the final step
// before subset construction. Marks default to nil where unset.
func (b *Builder) Freeze() *NFA {
	out := &NFA{
		CharClass: append([]charclass.CharClass(nil), b.cells...),
		Outs:      make([][]int, len(b.outs)),
		Marks:     append([]*mark.Mark(nil), b.marks...),
		Begin:     b.begin,
	}
	for i, o := range b.outs {
		out.Outs[i] = append([]int(nil), o...)
	}
	return out
}

// SetMark tags cell id with a mark, used by MarkEnd to identify which
// rule a fragment belongs to before the fragment is merged into a
// combined multi-rule NFA.
func (b *Builder) SetMark(id int, m mark.Mark) {
	b.marks[id] = &m
}

// MarkEnd tags b's acceptance with m, used when a rule's compiled
// fragment is ready to be merged into a multi-rule NFA. Subset
// construction (internal/dfa) picks up a cell's mark while closing a
// cell-set through dummy cells, so the mark is attached to a fresh dummy
// cell spliced in right before the current exit point rather than to the
// last consuming cell itself: endCell --(consumes its class)--> marker
// (dummy, carries m) --> whatever endCell used to point to. A builder
// that already matches only ε gets a marked bridge cell as its whole
// begin/endCell.
func (b *Builder) MarkEnd(m mark.Mark) {
	if b.endCell == Final {
		bridge := b.appendDummyCell([]int{Final})
		b.SetMark(bridge, m)
		b.begin = bridge
		b.endCell = bridge
		return
	}
	marker := b.appendDummyCell(append([]int(nil), b.outs[b.endCell]...))
	b.SetMark(marker, m)
	b.link(b.endCell, marker)
	b.endCell = marker
}
