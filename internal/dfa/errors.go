package dfa

import (
	"fmt"

	"github.com/KromDaniel/lexgen/internal/charclass"
	"github.com/KromDaniel/lexgen/internal/mark"
)

// MarksConflictException is raised when subset construction discovers two
// marks that cannot merge (e.g. two strict-mode rules both accepting the
// same character). Path is the minimal sequence of character ranges,
// from the DFA's begin cell, that witnesses the conflict.
type MarksConflictException struct {
	A, B mark.Mark
	Path []charclass.PlainCharRange
}

func (e *MarksConflictException) Error() string {
	return fmt.Sprintf("mark conflict: action %d cannot merge with action %d (witnessed by a %d-range path from the begin cell)",
		e.A.ActionID(), e.B.ActionID(), len(e.Path))
}
