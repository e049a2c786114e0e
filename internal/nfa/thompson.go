package nfa

import "github.com/KromDaniel/lexgen/internal/charclass"
import "github.com/KromDaniel/lexgen/internal/mark"

// This file implements the Thompson-style structural transforms from
// spec.md 4.3: OneOrMore, Unnecessary (zero-or-one), Any (zero-or-more),
// and the Repeat/RepeatAtLeast family built on top of them, plus Reduce
// and Clone.
//
// Shapes, with beta = original begin and eps = original endCell:
//
//	OneOrMore  :  beta -> eps -> D1 -> D2 -> final,   D1 loops back to beta
//	Unnecessary:  D1 -> beta -> eps -> D2 -> final,   D1 also bypasses to D2
//	Any        :  D1 -> beta -> eps,                  D1 also -> D2 -> final,
//	              eps loops back to D1

// ensureConcreteEnd guarantees begin and endCell refer to an actual cell
// in the arena (not the Final sentinel), synthesizing a single bridge
// dummy cell (out: Final) when the builder currently matches only ε. This
// lets the transforms below treat the "nullable" and "non-nullable" cases
// uniformly; a fragment built this way may still end up matching ε (e.g.
// Any() of an empty builder), which is exactly the case spec.md 9 flags
// as rejected later at DFA-build time via NFA.MatchesEmpty.
func (b *Builder) ensureConcreteEnd() (begin, end int) {
	if b.IsEmpty() {
		bridge := b.appendDummyCell([]int{Final})
		b.begin = bridge
		b.endCell = bridge
	}
	return b.begin, b.endCell
}

// OneOrMore transforms b in place to match one-or-more repetitions of its
// current language.
func (b *Builder) OneOrMore() *Builder {
	beta, eps := b.ensureConcreteEnd()
	d2 := b.appendDummyCell([]int{Final})
	d1 := b.appendDummyCell([]int{beta, d2})
	b.link(eps, d1)
	b.endCell = d2
	return b
}

// Unnecessary transforms b in place to match zero-or-one repetitions.
func (b *Builder) Unnecessary() *Builder {
	beta, eps := b.ensureConcreteEnd()
	d2 := b.appendDummyCell([]int{Final})
	d1 := b.appendDummyCell([]int{beta, d2})
	b.link(eps, d2)
	b.begin = d1
	b.endCell = d2
	return b
}

// Any transforms b in place to match zero-or-more repetitions.
func (b *Builder) Any() *Builder {
	beta, eps := b.ensureConcreteEnd()
	d2 := b.appendDummyCell([]int{Final})
	d1 := b.appendDummyCell([]int{beta, d2})
	b.link(eps, d1)
	b.begin = d1
	b.endCell = d2
	return b
}

// Repeat materializes lo..hi repetitions of proto (a prototype fragment
// that is cloned for each copy needed), or lo..infinity when hi == -1.
// Degenerate cases are short-circuited to the simpler builder forms per
// spec.md 4.3.
func Repeat(proto *Builder, lo, hi int) *Builder {
	if hi == -1 {
		return RepeatAtLeast(proto, lo)
	}
	if lo == 0 && hi == 0 {
		return NewEmpty()
	}
	if lo == 0 && hi == 1 {
		return proto.Clone().Unnecessary()
	}
	result := NewEmpty()
	for i := 0; i < lo; i++ {
		result.Append(proto.Clone())
	}
	for i := 0; i < hi-lo; i++ {
		result.Append(proto.Clone().Unnecessary())
	}
	return result
}

// RepeatAtLeast materializes lo..infinity repetitions of proto: lo copies
// followed by an Any() of one more copy, per spec.md 4.3 ("lo copies
// followed by an any() of a copy"). lo == 0 and lo == 1 are short-circuited
// to Any()/OneOrMore() respectively.
func RepeatAtLeast(proto *Builder, lo int) *Builder {
	if lo == 0 {
		return proto.Clone().Any()
	}
	if lo == 1 {
		return proto.Clone().OneOrMore()
	}
	result := NewEmpty()
	for i := 0; i < lo; i++ {
		result.Append(proto.Clone())
	}
	result.Append(proto.Clone().Any())
	return result
}

// Clone deep-copies the builder's current arena and begin/endCell so the
// original can keep being mutated independently (used by Repeat to
// materialize independent copies of a prototype fragment).
func (b *Builder) Clone() *Builder {
	nb := &Builder{
		cells:   append([]charclass.CharClass(nil), b.cells...),
		outs:    make([][]int, len(b.outs)),
		marks:   append([]*mark.Mark(nil), b.marks...),
		begin:   b.begin,
		endCell: b.endCell,
	}
	for i, o := range b.outs {
		nb.outs[i] = append([]int(nil), o...)
	}
	return nb
}

// Reduce removes cells unreachable from begin via a reachability sweep
// over outs, compacting remaining cell ids. Returns the number of cells
// removed.
func (b *Builder) Reduce() int {
	n := len(b.cells)
	reachable := make([]bool, n)
	var stack []int
	if b.begin != Final {
		stack = append(stack, b.begin)
	}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if reachable[id] {
			continue
		}
		reachable[id] = true
		for _, o := range b.outs[id] {
			if o != Final && !reachable[o] {
				stack = append(stack, o)
			}
		}
	}

	newID := make([]int, n)
	count := 0
	for i := 0; i < n; i++ {
		if reachable[i] {
			newID[i] = count
			count++
		}
	}

	newCells := make([]charclass.CharClass, 0, count)
	newOuts := make([][]int, 0, count)
	newMarks := make([]*mark.Mark, 0, count)
	for i := 0; i < n; i++ {
		if !reachable[i] {
			continue
		}
		outs := make([]int, len(b.outs[i]))
		for k, o := range b.outs[i] {
			if o == Final {
				outs[k] = Final
			} else {
				outs[k] = newID[o]
			}
		}
		newCells = append(newCells, b.cells[i])
		newOuts = append(newOuts, outs)
		newMarks = append(newMarks, b.marks[i])
	}

	removed := n - count
	b.cells, b.outs, b.marks = newCells, newOuts, newMarks
	if b.begin != Final {
		b.begin = newID[b.begin]
	}
	if b.endCell != Final {
		b.endCell = newID[b.endCell]
	}
	return removed
}
