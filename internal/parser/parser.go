// Package parser implements the hand-rolled RegExp -> nfa.Builder parser
// described in spec.md 4.4: a recursive-descent grammar over literals,
// escapes, predefined classes, bracket classes, grouping, alternation,
// and postfix repetition, assembled through the fragment-composing
// primitives of internal/nfa.
package parser

import (
	"github.com/KromDaniel/lexgen/internal/charclass"
	"github.com/KromDaniel/lexgen/internal/nfa"
)

// Parse compiles a single regex pattern into an NFA fragment.
func Parse(pattern string) (*nfa.Builder, error) {
	return ParseFragments([]Part{{Literal: pattern}})
}

// FragmentFromPattern is a convenience alias for Parse, named to match the
// rest of the fragment-composing vocabulary (Part, ParseFragments): a bare
// pattern string is just the one-Part case of a composable fragment.
func FragmentFromPattern(pattern string) (*nfa.Builder, error) {
	return Parse(pattern)
}

// ParseFragments compiles a mixed sequence of raw pattern text and
// pre-built fragments, as if the whole sequence were concatenated inside
// one top-level group.
func ParseFragments(parts []Part) (*nfa.Builder, error) {
	s := newScanner(parts)
	result, err := parseAlternation(s)
	if err != nil {
		return nil, err
	}
	if !s.eof() {
		c, _ := s.peek()
		if c == ')' {
			return nil, newError(s.pos, "unexpected ')' with no matching '('")
		}
		return nil, newError(s.pos, "unexpected character in pattern")
	}
	return result, nil
}

// parseAlternation parses one or more concatenation arms separated by
// '|', accumulating operands left-to-right. A single operand is returned
// unwrapped; more than one is combined into an n-ary branch.
func parseAlternation(s *scanner) (*nfa.Builder, error) {
	first, n, err := parseConcat(s)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, newError(s.pos, "empty alternation arm")
	}
	branches := []*nfa.Builder{first}
	for s.consumeIf('|') {
		next, n, err := parseConcat(s)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, newError(s.pos, "empty alternation arm")
		}
		branches = append(branches, next)
	}
	if len(branches) == 1 {
		return branches[0], nil
	}
	root := nfa.NewEmpty()
	root.AppendBranch(branches...)
	return root, nil
}

// parseConcat parses a run of atoms (each with its own optional postfix)
// until '|', ')', or end of input. Runs of plain literal characters with
// no postfix directly following are fused into one AppendString chain
// rather than built as independent single-char atoms; a character
// immediately followed by a postfix operator is split off and built as
// its own atom so the operator binds to it alone. It returns the number
// of atoms consumed, so callers can detect an empty arm.
func parseConcat(s *scanner) (*nfa.Builder, int, error) {
	result := nfa.NewEmpty()
	count := 0
	var buffer []uint16
	flush := func() {
		if len(buffer) > 0 {
			result.AppendString(buffer)
			buffer = nil
		}
	}

	for {
		c, ok := s.peek()
		if !ok || c == '|' || c == ')' {
			break
		}
		if isPlainChar(c) {
			next, hasNext := s.peekAt(1)
			if hasNext && isPostfixStart(next) {
				s.next()
				flush()
				atom := nfa.NewEmpty()
				atom.AppendChar(charclass.Single(uint16(c)))
				atom, err := applyPostfix(s, atom)
				if err != nil {
					return nil, 0, err
				}
				result.Append(atom)
				count++
				continue
			}
			s.next()
			buffer = append(buffer, uint16(c))
			count++
			continue
		}

		flush()
		atom, err := parseAtomFragment(s)
		if err != nil {
			return nil, 0, err
		}
		atom, err = applyPostfix(s, atom)
		if err != nil {
			return nil, 0, err
		}
		result.Append(atom)
		count++
	}
	flush()
	return result, count, nil
}

// isPlainChar reports whether c carries no special regex meaning and can
// be chained directly as a literal when no postfix immediately follows.
func isPlainChar(c rune) bool {
	switch c {
	case '|', ')', '(', '.', '[', '\\', '*', '+', '?', '{', fragmentSentinel:
		return false
	default:
		return true
	}
}

// parseAtomFragment parses exactly one atom: a group, a fragment splice,
// '.', a bracket class, an escape, or a single plain/postfix-bound
// literal character.
func parseAtomFragment(s *scanner) (*nfa.Builder, error) {
	c, ok := s.peek()
	if !ok {
		return nil, newError(s.pos, "premature end of pattern")
	}
	switch {
	case c == fragmentSentinel:
		s.next()
		return s.popFragment().Clone(), nil
	case c == '(':
		return parseGroup(s)
	case c == '.':
		s.next()
		atom := nfa.NewEmpty()
		atom.AppendChar(charclass.Any())
		return atom, nil
	case c == '[':
		return parseBracketClass(s)
	case c == '\\':
		cls, err := parseEscape(s)
		if err != nil {
			return nil, err
		}
		atom := nfa.NewEmpty()
		atom.AppendChar(cls)
		return atom, nil
	case c == '*' || c == '+' || c == '?' || c == '{':
		return nil, newError(s.pos, "unexpected quantifier with nothing to repeat")
	case c == ')':
		return nil, newError(s.pos, "unexpected ')' with no matching '('")
	default:
		s.next()
		atom := nfa.NewEmpty()
		atom.AppendChar(charclass.Single(uint16(c)))
		return atom, nil
	}
}

// parseGroup parses "(" alternation ")".
func parseGroup(s *scanner) (*nfa.Builder, error) {
	s.next() // consume '('
	inner, err := parseAlternation(s)
	if err != nil {
		return nil, err
	}
	c, ok := s.peek()
	if !ok {
		return nil, newError(s.pos, "premature end of pattern, expected ')'")
	}
	if c != ')' {
		return nil, newError(s.pos, "unexpected character, expected ')'")
	}
	s.next()
	return inner, nil
}

// applyPostfix checks for a trailing repetition operator and, if present,
// transforms atom in place (or materializes a Repeat for counted forms).
func applyPostfix(s *scanner, atom *nfa.Builder) (*nfa.Builder, error) {
	c, ok := s.peek()
	if !ok {
		return atom, nil
	}
	switch c {
	case '*':
		s.next()
		return atom.Any(), nil
	case '+':
		s.next()
		return atom.OneOrMore(), nil
	case '?':
		s.next()
		return atom.Unnecessary(), nil
	case '{':
		return parseCountedRepetition(s, atom)
	default:
		return atom, nil
	}
}

// parseCountedRepetition parses "{m}", "{m,}", or "{m,n}" following an
// already-parsed atom.
func parseCountedRepetition(s *scanner, atom *nfa.Builder) (*nfa.Builder, error) {
	s.next() // consume '{'
	lo, ok := parseUint(s)
	if !ok {
		return nil, newError(s.pos, "illegal {m,n} numbers")
	}
	hi := lo
	if s.consumeIf(',') {
		if n, ok := parseUint(s); ok {
			hi = n
		} else {
			hi = -1
		}
	}
	if !s.consumeIf('}') {
		return nil, newError(s.pos, "illegal {m,n} numbers")
	}
	if hi != -1 && hi < lo {
		return nil, newError(s.pos, "illegal {m,n} numbers")
	}
	return nfa.Repeat(atom, lo, hi), nil
}

// parseUint greedily reads decimal digits, returning ok == false if none
// were present.
func parseUint(s *scanner) (int, bool) {
	start := s.pos
	n := 0
	for {
		c, ok := s.peek()
		if !ok || !isDigit(c) {
			break
		}
		n = n*10 + int(c-'0')
		s.next()
	}
	return n, s.pos > start
}

// parseEscape parses a backslash escape: either a literal-char escape or
// one of the predefined classes \d \D \w \W \s \S.
func parseEscape(s *scanner) (charclass.CharClass, error) {
	s.next() // consume '\\'
	c, ok := s.next()
	if !ok {
		return charclass.Empty(), newError(s.pos, "premature end of pattern after '\\'")
	}
	switch c {
	case 'd':
		return charclass.Digit(), nil
	case 'D':
		return charclass.Digit().Inverse(), nil
	case 'w':
		return charclass.Word(), nil
	case 'W':
		return charclass.Word().Inverse(), nil
	case 's':
		return charclass.Blank(), nil
	case 'S':
		return charclass.Blank().Inverse(), nil
	case '-', '(', ')', '*', '+', '.', '[', ']', '?', '\\', '^', '{', '}', '|':
		return charclass.Single(uint16(c)), nil
	default:
		return charclass.Empty(), newError(s.pos, "illegal escape sequence")
	}
}

// parseBracketClass parses "[" ["^"] classItem+ "]".
func parseBracketClass(s *scanner) (*nfa.Builder, error) {
	s.next() // consume '['
	invert := s.consumeIf('^')

	cls := charclass.Empty()
	first := true
	for {
		c, ok := s.peek()
		if !ok {
			return nil, newError(s.pos, "premature end of pattern, expected ']'")
		}
		if c == ']' && !first {
			break
		}
		first = false

		if c == '\\' {
			item, err := parseEscape(s)
			if err != nil {
				return nil, err
			}
			cls = charclass.Union(cls, item)
			continue
		}

		lo, _ := s.next()
		if next, ok := s.peek(); ok && next == '-' {
			if after, ok2 := s.peekAt(1); ok2 && after != ']' {
				s.next() // consume '-'
				hi, _ := s.next()
				if uint16(hi) < uint16(lo) {
					return nil, newError(s.pos, "illegal char range")
				}
				cls = charclass.Union(cls, charclass.FromRange(uint16(lo), uint16(hi)))
				continue
			}
		}
		cls = charclass.Union(cls, charclass.Single(uint16(lo)))
	}
	s.next() // consume ']'

	if invert {
		cls = cls.Inverse()
	}
	atom := nfa.NewEmpty()
	atom.AppendChar(cls)
	return atom, nil
}
