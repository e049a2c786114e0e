package lexer

import "sync"

// SessionPool reuses *Lexer scratch state across independent lexing
// sessions run against the same fixed automaton set and action table,
// adapted from the teacher's sync.Pool-backed stack reuse: a generated
// matcher there pools its backtracking stack across Match calls so
// repeated calls don't pay a fresh allocation; here a whole driver
// instance is pooled across repeated lexAll-style runs instead.
type SessionPool struct {
	states  []Automaton
	actions map[int]ActionFunc
	pool    sync.Pool
}

// NewSessionPool builds a pool of lexers sharing states and actions.
// Get/Put hand out and reclaim *Lexer instances bound to a particular
// input.
func NewSessionPool(states []Automaton, actions map[int]ActionFunc) *SessionPool {
	p := &SessionPool{states: states, actions: actions}
	p.pool.New = func() interface{} {
		return &Lexer{states: p.states, actions: p.actions}
	}
	return p
}

// Get returns a *Lexer reset to scan input, validating the automaton
// set on every call (the validation is cheap and idempotent, so paying
// it again per Get is simpler than caching the result).
func (p *SessionPool) Get(input []uint16) (*Lexer, error) {
	l := p.pool.Get().(*Lexer)
	if err := l.reset(input); err != nil {
		p.pool.Put(l)
		return nil, err
	}
	return l, nil
}

// Put returns l to the pool. l must not be used again by the caller
// afterward.
func (p *SessionPool) Put(l *Lexer) {
	l.input = nil
	p.pool.Put(l)
}
