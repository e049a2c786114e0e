package lexer

import "fmt"

// LexerMismatch is returned when the driver runs out of accepting
// positions to backtrack to: no rule in the current state matches the
// input starting at LastMatch, where the last successful token ended.
// Position is where the automaton got stuck (LastMatch itself, or
// further on if a partial token was consumed first).
type LexerMismatch struct {
	LastMatch int
	Position  int
}

func (e *LexerMismatch) Error() string {
	return fmt.Sprintf("lexer: no rule matches input at position %d (last match ended at %d)", e.Position, e.LastMatch)
}

// LexerBuildError is returned by New/reset when the supplied automaton
// set cannot be driven at all, independent of any particular input.
type LexerBuildError struct {
	Msg string
}

func (e *LexerBuildError) Error() string { return "lexer: " + e.Msg }
