package lexer

// ActionContext is handed to an ActionFunc: the matched text and a
// handle back to the lexer for requesting a state switch.
type ActionContext struct {
	Text []uint16
	l    *Lexer
}

// SwitchState requests that lexing continue from stateID's automaton
// starting with the next token. A same-state switch is a no-op.
func (c *ActionContext) SwitchState(stateID int) {
	c.l.currentState = stateID
}

// ActionFunc runs when its rule's transition completes a token. It
// returns a value to emit and whether to emit it at all (a rule with no
// action, e.g. whitespace-skipping, returns ok=false and lexing
// continues to the next token without the driver returning).
type ActionFunc func(ctx *ActionContext) (value interface{}, ok bool)

// Lexer drives one or more Automatons (indexed by lexing-state id, slot
// 0 is the initial state) over a fixed input, per spec.md 4.8.
type Lexer struct {
	states  []Automaton
	actions map[int]ActionFunc

	input []uint16

	position     int
	currentState int
	currentCell  int

	lastMatch             int
	lastAcceptingPosition int
	lastAcceptingNode     int
}

// New builds a Lexer over input. states[0] must be non-nil and its
// begin cell must not itself be accepting (an automaton accepting ε
// would match and loop forever); actions maps a mark's action id to the
// callback invoked when that rule's token completes.
func New(states []Automaton, actions map[int]ActionFunc, input []uint16) (*Lexer, error) {
	l := &Lexer{states: states, actions: actions}
	if err := l.reset(input); err != nil {
		return nil, err
	}
	return l, nil
}

// reset validates the automaton set once and rewinds the driver state
// to scan a new input, letting a *Lexer be pooled (see SessionPool)
// across independent inputs against the same rule set.
func (l *Lexer) reset(input []uint16) error {
	if len(l.states) == 0 || l.states[0] == nil {
		return &LexerBuildError{Msg: "state 0 (the initial state) must be set"}
	}
	begin := l.states[0]
	if begin.IsFinal(begin.BeginCell()) {
		return &LexerBuildError{Msg: "initial state's begin cell is accepting; it would match the empty string and never advance"}
	}

	l.input = input
	l.position = 0
	l.currentState = 0
	l.currentCell = begin.BeginCell()
	l.lastMatch = 0
	l.lastAcceptingPosition = -1
	l.lastAcceptingNode = 0
	return nil
}

// SwitchState changes the active lexing state directly, equivalent to
// what an ActionFunc does via ActionContext.SwitchState. Same-state
// switches are a no-op.
func (l *Lexer) SwitchState(stateID int) {
	l.currentState = stateID
}

// Lex returns the next emitted value, or ok=false when the end of the
// input is reached without another production, or a *LexerMismatch if
// no rule matches starting at the driver's current position.
func (l *Lexer) Lex() (value interface{}, ok bool, err error) {
	end := len(l.input)
	x := l.currentCell

	for l.position <= end {
		automaton := l.states[l.currentState]

		target := -1
		var c uint16
		if l.position < end {
			c = l.input[l.position]
			target = automaton.Transit(x, c)
		}

		if target < 0 {
			if l.lastAcceptingPosition < 0 {
				l.currentCell = x
				// Reaching the end of the input exactly at a token
				// boundary (no partial token in progress) is the
				// terminal signal, not a mismatch: there is no
				// remaining character to have failed to match.
				if l.position == end && x == automaton.BeginCell() {
					return nil, false, nil
				}
				return nil, false, &LexerMismatch{LastMatch: l.lastMatch, Position: l.position}
			}

			l.position = l.lastAcceptingPosition
			x = l.lastAcceptingNode
			bc := l.input[l.position]
			m := automaton.MarkFor(x, bc)
			l.position++
			x = automaton.BeginCell()
			l.lastAcceptingPosition = -1

			if m != nil {
				val, emit := l.invokeAction(m.ActionID(), l.lastMatch, l.position)
				l.lastMatch = l.position
				// l.currentState may have changed via SwitchState; the next
				// loop iteration (or the next Lex call) re-fetches automaton.
				if emit {
					l.currentCell = x
					return val, true, nil
				}
			} else {
				l.lastMatch = l.position
			}

			if l.position == end {
				l.currentCell = x
				return nil, false, nil
			}
			continue
		}

		if automaton.IsFinal(target) {
			l.lastAcceptingPosition = l.position
			l.lastAcceptingNode = x
		}
		x = target
		l.position++
	}

	l.currentCell = x
	return nil, false, nil
}

// LexAll repeatedly calls Lex and collects every emitted value until
// the end-of-input terminal signal or an error.
func (l *Lexer) LexAll() ([]interface{}, error) {
	var out []interface{}
	for {
		v, ok, err := l.Lex()
		if err != nil {
			return out, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, v)
	}
}

func (l *Lexer) invokeAction(actionID int, from, to int) (interface{}, bool) {
	fn, ok := l.actions[actionID]
	if !ok || fn == nil {
		return nil, false
	}
	ctx := &ActionContext{Text: l.input[from:to], l: l}
	return fn(ctx)
}
