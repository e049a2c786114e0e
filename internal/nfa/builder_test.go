package nfa

import (
	"testing"

	"github.com/KromDaniel/lexgen/internal/charclass"
	"github.com/stretchr/testify/require"
)

// simulate walks an NFA against s, returning whether it accepts, using a
// brute-force cell-set simulation independent of the subset-construction
// package (kept local so this package can test the builder output without
// importing internal/dfa, avoiding a dependency cycle).
func simulate(n *NFA, s []uint16) bool {
	closure := func(ids map[int]bool) map[int]bool {
		out := map[int]bool{}
		var stack []int
		for id := range ids {
			stack = append(stack, id)
		}
		for len(stack) > 0 {
			id := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if out[id] {
				continue
			}
			if id == Final || !n.IsDummy(id) {
				out[id] = true
				continue
			}
			out[id] = true
			for _, o := range n.Outs[id] {
				if !out[o] {
					stack = append(stack, o)
				}
			}
		}
		return out
	}
	hasFinal := func(ids map[int]bool) bool {
		for id := range ids {
			if id == Final {
				return true
			}
			if n.IsDummy(id) {
				for _, o := range n.Outs[id] {
					if o == Final {
						return true
					}
				}
			}
		}
		return false
	}

	current := closure(map[int]bool{n.Begin: true})
	if len(s) == 0 {
		return hasFinal(current) || n.Begin == Final
	}
	for _, c := range s {
		next := map[int]bool{}
		for id := range current {
			if id == Final || n.IsDummy(id) {
				continue
			}
			if n.CharClass[id].Contains(c) {
				for _, o := range n.Outs[id] {
					next[o] = true
				}
			}
		}
		current = closure(next)
		if len(current) == 0 {
			return false
		}
	}
	return hasFinal(current)
}

func TestAppendCharMatchesSingleChar(t *testing.T) {
	b := NewEmpty()
	b.AppendChar(charclass.Single('a'))
	nfa := b.Freeze()

	require.True(t, simulate(nfa, []uint16{'a'}))
	require.False(t, simulate(nfa, []uint16{'b'}))
	require.False(t, simulate(nfa, []uint16{}))
}

func TestAppendStringMatchesExactSequence(t *testing.T) {
	b := NewEmpty()
	b.AppendString([]uint16{'c', 'a', 't'})
	nfa := b.Freeze()

	require.True(t, simulate(nfa, []uint16{'c', 'a', 't'}))
	require.False(t, simulate(nfa, []uint16{'c', 'a'}))
	require.False(t, simulate(nfa, []uint16{'c', 'a', 't', 's'}))
}

func TestAppendBranchAlternation(t *testing.T) {
	a := NewEmpty()
	a.AppendChar(charclass.Single('a'))
	b := NewEmpty()
	b.AppendChar(charclass.Single('b'))
	c := NewEmpty()
	c.AppendChar(charclass.Single('c'))

	root := NewEmpty()
	root.AppendBranch(a, b, c)
	nfa := root.Freeze()

	require.True(t, simulate(nfa, []uint16{'a'}))
	require.True(t, simulate(nfa, []uint16{'b'}))
	require.True(t, simulate(nfa, []uint16{'c'}))
	require.False(t, simulate(nfa, []uint16{'d'}))
}

func TestOneOrMore(t *testing.T) {
	b := NewEmpty()
	b.AppendChar(charclass.Single('a'))
	b.OneOrMore()
	nfa := b.Freeze()

	require.False(t, simulate(nfa, []uint16{}))
	require.True(t, simulate(nfa, []uint16{'a'}))
	require.True(t, simulate(nfa, []uint16{'a', 'a', 'a'}))
	require.False(t, simulate(nfa, []uint16{'a', 'b'}))
}

func TestUnnecessary(t *testing.T) {
	b := NewEmpty()
	b.AppendChar(charclass.Single('a'))
	b.Unnecessary()
	nfa := b.Freeze()

	require.True(t, simulate(nfa, []uint16{}))
	require.True(t, simulate(nfa, []uint16{'a'}))
	require.False(t, simulate(nfa, []uint16{'a', 'a'}))
}

func TestAny(t *testing.T) {
	b := NewEmpty()
	b.AppendChar(charclass.Single('a'))
	b.Any()
	nfa := b.Freeze()

	require.True(t, simulate(nfa, []uint16{}))
	require.True(t, simulate(nfa, []uint16{'a', 'a', 'a', 'a'}))
	require.False(t, simulate(nfa, []uint16{'a', 'b'}))
}

func TestRepeatBounded(t *testing.T) {
	proto := NewEmpty()
	proto.AppendChar(charclass.Single('a'))
	built := Repeat(proto, 2, 4)
	nfa := built.Freeze()

	require.False(t, simulate(nfa, []uint16{'a'}))
	require.True(t, simulate(nfa, []uint16{'a', 'a'}))
	require.True(t, simulate(nfa, []uint16{'a', 'a', 'a'}))
	require.True(t, simulate(nfa, []uint16{'a', 'a', 'a', 'a'}))
	require.False(t, simulate(nfa, []uint16{'a', 'a', 'a', 'a', 'a'}))
}

func TestRepeatAtLeast(t *testing.T) {
	proto := NewEmpty()
	proto.AppendChar(charclass.Single('a'))
	built := RepeatAtLeast(proto, 3)
	nfa := built.Freeze()

	require.False(t, simulate(nfa, []uint16{'a', 'a'}))
	require.True(t, simulate(nfa, []uint16{'a', 'a', 'a'}))
	require.True(t, simulate(nfa, []uint16{'a', 'a', 'a', 'a', 'a', 'a'}))
}

func TestRepeatZeroZeroMatchesOnlyEmpty(t *testing.T) {
	proto := NewEmpty()
	proto.AppendChar(charclass.Single('a'))
	built := Repeat(proto, 0, 0)
	nfa := built.Freeze()

	require.True(t, simulate(nfa, []uint16{}))
	require.False(t, simulate(nfa, []uint16{'a'}))
}

func TestReduceRemovesUnreachableCells(t *testing.T) {
	b := NewEmpty()
	b.AppendChar(charclass.Single('a'))
	// Append an unreferenced dangling cell directly to the arena.
	b.appendCell(charclass.Single('z'), []int{Final})
	removed := b.Reduce()
	require.Equal(t, 1, removed)
	nfa := b.Freeze()
	require.True(t, simulate(nfa, []uint16{'a'}))
}

func TestMatchesEmpty(t *testing.T) {
	empty := NewEmpty()
	require.True(t, empty.Freeze().MatchesEmpty())

	nonEmpty := NewEmpty()
	nonEmpty.AppendChar(charclass.Single('a'))
	require.False(t, nonEmpty.Freeze().MatchesEmpty())

	nullableStar := NewEmpty()
	nullableStar.AppendChar(charclass.Single('a'))
	nullableStar.Unnecessary()
	nullableStar.Any() // Any() of an already-nullable fragment: still nullable
	require.True(t, nullableStar.Freeze().MatchesEmpty())
}
