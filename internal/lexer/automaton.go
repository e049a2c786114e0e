// Package lexer implements the longest-match scanning driver from
// spec.md 4.8: a per-lexing-state MarkedDFA walk that consumes greedily
// and backtracks to the last accepting position when the automaton gets
// stuck, dispatching to a per-action callback and supporting a state
// switch requested from inside an action.
package lexer

import (
	"github.com/KromDaniel/lexgen/internal/compress"
	"github.com/KromDaniel/lexgen/internal/dfa"
	"github.com/KromDaniel/lexgen/internal/mark"
)

// Automaton is the minimal surface the driver needs from either a
// general dfa.DFA or a compress.CompressedDFA: transit to the next
// cell, whether a cell is accepting, and the mark (if any) carried by
// the transition taken out of a cell on a given code unit. Both
// concrete DFA forms satisfy it via the adapters below, so the driver
// never has to care whether compression ran.
type Automaton interface {
	BeginCell() int
	Transit(cell int, c uint16) int
	IsFinal(cell int) bool
	MarkFor(cell int, c uint16) *mark.Mark
}

// FromDFA wraps a general DFA for use as a lexing state.
func FromDFA(d *dfa.DFA) Automaton { return dfaAutomaton{d} }

// FromCompressed wraps a compressed DFA for use as a lexing state.
func FromCompressed(c *compress.CompressedDFA) Automaton { return compressedAutomaton{c} }

type dfaAutomaton struct{ d *dfa.DFA }

func (a dfaAutomaton) BeginCell() int { return 0 }

func (a dfaAutomaton) Transit(cell int, c uint16) int { return a.d.Transit(cell, c) }

func (a dfaAutomaton) IsFinal(cell int) bool { return a.d.FinalFlags[cell] }

func (a dfaAutomaton) MarkFor(cell int, c uint16) *mark.Mark {
	slot := a.d.TransitSlot(cell, c)
	if slot < 0 {
		return nil
	}
	return a.d.Marks[cell][slot]
}

type compressedAutomaton struct{ c *compress.CompressedDFA }

func (a compressedAutomaton) BeginCell() int { return 0 }

func (a compressedAutomaton) Transit(cell int, c uint16) int { return a.c.Transit(cell, c) }

func (a compressedAutomaton) IsFinal(cell int) bool { return a.c.FinalFlags[cell] }

func (a compressedAutomaton) MarkFor(cell int, c uint16) *mark.Mark { return a.c.Mark(cell, c) }

// Compressed returns the underlying compress.CompressedDFA, letting a
// caller (e.g. cmd/lexgen's -emit path) recover it from an Automaton
// for codegen.EmitGo without the driver itself ever needing to care
// whether a given lexing state is compressed.
func (a compressedAutomaton) Compressed() *compress.CompressedDFA { return a.c }
