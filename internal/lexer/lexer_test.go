package lexer

import (
	"testing"

	"github.com/KromDaniel/lexgen/internal/compress"
	"github.com/KromDaniel/lexgen/internal/dfa"
	"github.com/KromDaniel/lexgen/internal/mark"
	"github.com/KromDaniel/lexgen/internal/nfa"
	"github.com/KromDaniel/lexgen/internal/parser"
	"github.com/stretchr/testify/require"
)

func str(s string) []uint16 {
	out := make([]uint16, len(s))
	for i, c := range s {
		out[i] = uint16(c)
	}
	return out
}

func goStr(units []uint16) string {
	r := make([]rune, len(units))
	for i, u := range units {
		r[i] = rune(u)
	}
	return string(r)
}

// buildState parses one fragment per pattern, tags each with a priority
// mark carrying its 1-based position in patterns as an action id and its
// declaration index as priority (so overlapping patterns, e.g. \d+ and
// \w+, resolve first-declared-wins), and builds a DFA automaton.
func buildState(t *testing.T, patterns ...string) (*dfa.DFA, Automaton) {
	t.Helper()
	branches := make([]*nfa.Builder, len(patterns))
	for i, p := range patterns {
		b, err := parser.Parse(p)
		require.NoError(t, err)
		b.MarkEnd(mark.NewPriority(i+1, i))
		branches[i] = b
	}
	root := nfa.NewEmpty()
	root.AppendBranch(branches...)
	d, err := dfa.Build(root.Freeze())
	require.NoError(t, err)
	return d, FromDFA(d)
}

// TestLexerRules_S1 exercises letter+/digit+/space tokenization on the
// same input as the corresponding scenario. Greedy longest-match means
// the trailing "ba" is necessarily one word token, not two single-letter
// ones, so the expected id sequence here is the 4-token result
// ([space, word, digit, word]) rather than a 5-element reading that
// would require splitting "ba" mid-match.
func TestLexerRules_S1(t *testing.T) {
	_, state := buildState(t, `[a-zA-Z]+`, `\d+`, ` `)
	actions := map[int]ActionFunc{
		1: func(ctx *ActionContext) (interface{}, bool) { return 1, true },
		2: func(ctx *ActionContext) (interface{}, bool) { return 2, true },
		3: func(ctx *ActionContext) (interface{}, bool) { return 3, true },
	}
	l, err := New([]Automaton{state}, actions, str(" a1ba"))
	require.NoError(t, err)

	got, err := l.LexAll()
	require.NoError(t, err)
	require.Equal(t, []interface{}{3, 1, 2, 1}, got)
}

// TestLexerRules_S2 reproduces spec scenario S2, including the
// mismatch case.
func TestLexerRules_S2(t *testing.T) {
	_, state := buildState(t, `\d+`, ` `, `\w+`)
	actions := map[int]ActionFunc{
		1: func(ctx *ActionContext) (interface{}, bool) { return 2, true },
		2: func(ctx *ActionContext) (interface{}, bool) { return 1, true },
		3: func(ctx *ActionContext) (interface{}, bool) { return 3, true },
	}

	l, err := New([]Automaton{state}, actions, str("he is 16 years old"))
	require.NoError(t, err)
	got, err := l.LexAll()
	require.NoError(t, err)
	require.Equal(t, []interface{}{3, 1, 3, 1, 2, 1, 3, 1, 3}, got)

	l2, err := New([]Automaton{state}, actions, str("illegal!"))
	require.NoError(t, err)
	_, err = l2.LexAll()
	require.Error(t, err)
	var mismatch *LexerMismatch
	require.ErrorAs(t, err, &mismatch)
	require.Equal(t, 7, mismatch.Position)
	require.Equal(t, 7, mismatch.LastMatch)
}

// TestLexerStateSwitch_S3 reproduces spec scenario S3: a name/definition
// pair separated by ": ", where matching the separator switches lexing
// states for the rest of the line.
func TestLexerStateSwitch_S3(t *testing.T) {
	nameBranch, err := parser.Parse(`\w+`)
	require.NoError(t, err)
	nameBranch.MarkEnd(mark.NewAction(1))
	sepBranch, err := parser.Parse(`: `)
	require.NoError(t, err)
	sepBranch.MarkEnd(mark.NewAction(2))
	root0 := nfa.NewEmpty()
	root0.AppendBranch(nameBranch, sepBranch)
	d0, err := dfa.Build(root0.Freeze())
	require.NoError(t, err)

	defBranch, err := parser.Parse(`.+`)
	require.NoError(t, err)
	defBranch.MarkEnd(mark.NewAction(3))
	d1, err := dfa.Build(defBranch.Freeze())
	require.NoError(t, err)

	states := []Automaton{FromDFA(d0), FromDFA(d1)}

	type entry struct{ name, definition string }
	var result entry
	actions := map[int]ActionFunc{
		1: func(ctx *ActionContext) (interface{}, bool) {
			result.name = goStr(ctx.Text)
			return nil, false
		},
		2: func(ctx *ActionContext) (interface{}, bool) {
			ctx.SwitchState(1)
			return nil, false
		},
		3: func(ctx *ActionContext) (interface{}, bool) {
			result.definition = goStr(ctx.Text)
			return entry{result.name, result.definition}, true
		},
	}

	l, err := New(states, actions, str("apple: a kind of fruit"))
	require.NoError(t, err)
	got, err := l.LexAll()
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, entry{"apple", "a kind of fruit"}, got[0])
}

func TestLexerRejectsNullableInitialState(t *testing.T) {
	b, err := parser.Parse(`a*`)
	require.NoError(t, err)
	b.MarkEnd(mark.NewAction(1))
	d, err := dfa.Build(b.Freeze())
	require.NoError(t, err)

	_, err = New([]Automaton{FromDFA(d)}, map[int]ActionFunc{}, str("aaa"))
	require.Error(t, err)
	var buildErr *LexerBuildError
	require.ErrorAs(t, err, &buildErr)
}

func TestLexerEmptyInputReturnsCleanTerminal(t *testing.T) {
	_, state := buildState(t, `\d+`)
	l, err := New([]Automaton{state}, map[int]ActionFunc{1: func(ctx *ActionContext) (interface{}, bool) {
		return 1, true
	}}, nil)
	require.NoError(t, err)

	got, err := l.LexAll()
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestMarkedDFACompressedStateRecoversUnderlyingTables(t *testing.T) {
	d, _ := buildState(t, `\d+`)
	compressed := compress.Compress(d)

	marked, err := NewMarkedDFA([]Automaton{FromCompressed(compressed)}, map[int]ActionFunc{})
	require.NoError(t, err)

	got, ok := marked.CompressedState(0)
	require.True(t, ok)
	require.Same(t, compressed, got)

	marked2, err := NewMarkedDFA([]Automaton{FromDFA(d)}, map[int]ActionFunc{})
	require.NoError(t, err)
	_, ok = marked2.CompressedState(0)
	require.False(t, ok)
}

func TestSessionPoolReusesLexerAcrossInputs(t *testing.T) {
	_, state := buildState(t, `\d+`)
	actions := map[int]ActionFunc{1: func(ctx *ActionContext) (interface{}, bool) {
		return goStr(ctx.Text), true
	}}
	pool := NewSessionPool([]Automaton{state}, actions)

	l1, err := pool.Get(str("12"))
	require.NoError(t, err)
	got1, err := l1.LexAll()
	require.NoError(t, err)
	require.Equal(t, []interface{}{"12"}, got1)
	pool.Put(l1)

	l2, err := pool.Get(str("345"))
	require.NoError(t, err)
	got2, err := l2.LexAll()
	require.NoError(t, err)
	require.Equal(t, []interface{}{"345"}, got2)
}
