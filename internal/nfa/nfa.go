// Package nfa implements the static NFA representation and the mutable
// NFABuilder that constructs it via Thompson-style structural operations.
// Cells are an arena indexed by integer id; there are no pointer cycles.
// The final state is the sentinel id Final (-1), never stored in the
// arena.
package nfa

import "github.com/KromDaniel/lexgen/internal/charclass"
import "github.com/KromDaniel/lexgen/internal/mark"

// Final is the sentinel cell id representing the NFA's accepting state.
const Final = -1

// NFA is the static, frozen form of a built automaton: parallel
// CharClass/outs/mark arrays indexed by cell id, plus a begin cell.
//
// A cell whose CharClass is empty is a dummy: it accepts no character and
// unconditionally fires all of its outs when reached (an epsilon move).
// A non-dummy cell is consuming: arrival at it means one character in its
// class was just consumed.
type NFA struct {
	CharClass []charclass.CharClass
	Outs      [][]int
	// Marks holds an optional per-cell mark, nil when the cell carries no
	// rule identity. Marks propagate onto DFA transitions during subset
	// construction (internal/dfa).
	Marks []*mark.Mark
	Begin int
}

// Size returns the number of cells in the arena.
func (n *NFA) Size() int { return len(n.Outs) }

// IsDummy reports whether cell i is a dummy (epsilon-like) cell.
func (n *NFA) IsDummy(i int) bool {
	return n.CharClass[i].IsEmpty()
}

// MatchesEmpty reports whether the NFA accepts the empty string, i.e. the
// begin cell closes (through dummies) directly to Final. pkg/lexgen.Build
// uses this to reject nullable patterns per spec.md 4.8 ("the driver rejects
// automata whose begin cell is final").
func (n *NFA) MatchesEmpty() bool {
	if n.Begin == Final {
		return true
	}
	visited := make([]bool, n.Size())
	var walk func(id int) bool
	walk = func(id int) bool {
		if id == Final {
			return true
		}
		if !n.IsDummy(id) || visited[id] {
			return false
		}
		visited[id] = true
		for _, o := range n.Outs[id] {
			if walk(o) {
				return true
			}
		}
		return false
	}
	return walk(n.Begin)
}
