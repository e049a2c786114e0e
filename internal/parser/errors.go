package parser

// RegExpError is the single error kind raised by the parser: an illegal
// escape, an unexpected character, a premature end of pattern, an empty
// alternation arm, illegal {m,n} repetition numbers, or an illegal
// character range. The kind is distinguished only by Msg, per spec.md 4.4.
type RegExpError struct {
	Msg string
	Pos int
}

func (e *RegExpError) Error() string {
	return e.Msg
}

func newError(pos int, msg string) *RegExpError {
	return &RegExpError{Msg: msg, Pos: pos}
}
