package lexer

import "github.com/KromDaniel/lexgen/internal/compress"

// MarkedDFA is the immutable artifact produced by a generator build: a
// fixed set of lexing-state automatons plus the action table connecting
// each mark's action id to its callback. It has no scan position of its
// own; NewLexer/NewSessionPool spin up the mutable scan state.
type MarkedDFA struct {
	states  []Automaton
	actions map[int]ActionFunc
}

// NewMarkedDFA validates states/actions once at build time so a bad
// configuration is reported immediately rather than on first use.
func NewMarkedDFA(states []Automaton, actions map[int]ActionFunc) (*MarkedDFA, error) {
	if len(states) == 0 || states[0] == nil {
		return nil, &LexerBuildError{Msg: "state 0 (the initial state) must be set"}
	}
	begin := states[0]
	if begin.IsFinal(begin.BeginCell()) {
		return nil, &LexerBuildError{Msg: "initial state's begin cell is accepting; it would match the empty string and never advance"}
	}
	return &MarkedDFA{states: states, actions: actions}, nil
}

// NewLexer starts a scan session over input.
func (m *MarkedDFA) NewLexer(input []uint16) (*Lexer, error) {
	return New(m.states, m.actions, input)
}

// SessionPool returns a pool of reusable Lexer sessions bound to this
// MarkedDFA's states and actions.
func (m *MarkedDFA) SessionPool() *SessionPool {
	return NewSessionPool(m.states, m.actions)
}

// NumStates reports how many lexing states this MarkedDFA carries.
func (m *MarkedDFA) NumStates() int { return len(m.states) }

// CompressedState returns state i's underlying compress.CompressedDFA
// and true if that state was built with Options.Compress; otherwise it
// returns false, since a general dfa.DFA has no compressed form to
// recover.
func (m *MarkedDFA) CompressedState(i int) (*compress.CompressedDFA, bool) {
	if i < 0 || i >= len(m.states) {
		return nil, false
	}
	holder, ok := m.states[i].(interface {
		Compressed() *compress.CompressedDFA
	})
	if !ok {
		return nil, false
	}
	return holder.Compressed(), true
}
