package codegen

import (
	"bytes"
	"go/parser"
	"go/token"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/KromDaniel/lexgen/internal/compress"
	"github.com/KromDaniel/lexgen/internal/dfa"
	"github.com/KromDaniel/lexgen/internal/mark"
	"github.com/KromDaniel/lexgen/internal/nfa"
	regexParser "github.com/KromDaniel/lexgen/internal/parser"
)

func str(s string) []uint16 {
	out := make([]uint16, len(s))
	for i, c := range s {
		out[i] = uint16(c)
	}
	return out
}

func buildCompressed(t *testing.T, patterns ...string) *compress.CompressedDFA {
	t.Helper()
	branches := make([]*nfa.Builder, len(patterns))
	for i, p := range patterns {
		b, err := regexParser.Parse(p)
		require.NoError(t, err)
		b.MarkEnd(mark.NewAction(i + 1))
		branches[i] = b
	}
	root := nfa.NewEmpty()
	root.AppendBranch(branches...)
	d, err := dfa.Build(root.Freeze())
	require.NoError(t, err)
	return compress.Compress(d)
}

// TestEmitGoProducesParseableSource renders a small compressed DFA and
// confirms the result is syntactically valid Go carrying the expected
// package name and table declarations. The Go toolchain itself is never
// invoked; go/parser alone is enough to catch a malformed jen program.
func TestEmitGoProducesParseableSource(t *testing.T) {
	c := buildCompressed(t, `[a-z]+`, `\d+`)

	var buf bytes.Buffer
	err := EmitGo(&buf, "lexgenerated", c)
	require.NoError(t, err)

	src := buf.String()
	require.True(t, strings.HasPrefix(strings.TrimSpace(src), "// Code generated") ||
		strings.Contains(src, "Code generated by lexgen"))
	require.Contains(t, src, "package lexgenerated")
	for _, want := range []string{
		topLevelName, classRowsName, transitionIndexBeginName,
		transitionIndicesName, transitionBeginName, transitionsName,
		actionIDsName, finalFlagsName,
		"func BeginCell", "func Transit", "func IsFinal", "func ActionIDFor",
	} {
		require.Contains(t, src, want)
	}

	fset := token.NewFileSet()
	_, err = parser.ParseFile(fset, "generated.go", src, parser.AllErrors)
	require.NoError(t, err)
}

// TestEmitGoRowCountMatchesClassRows sanity-checks that the emitted
// classRows literal has exactly as many [256]int16 rows as the source
// CompressedDFA deduplicated down to. The literal's own "[][256]int16{"
// type header contains the counted text once more than the rows do.
func TestEmitGoRowCountMatchesClassRows(t *testing.T) {
	c := buildCompressed(t, `ab`, `cb`)

	var buf bytes.Buffer
	require.NoError(t, EmitGo(&buf, "p", c))
	src := buf.String()

	require.Equal(t, len(c.ClassRows)+1, strings.Count(src, "[256]int16{"))
}
