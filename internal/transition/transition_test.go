package transition

import (
	"testing"

	"github.com/KromDaniel/lexgen/internal/charclass"
	"github.com/stretchr/testify/require"
)

func intHooks() Hooks[[]int] {
	return Hooks[[]int]{
		Copy: func(v []int) []int { return append([]int(nil), v...) },
		Merge: func(into *[]int, other []int) {
			*into = append(*into, other...)
		},
	}
}

func equalIntSlices(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestAddSingleRange(t *testing.T) {
	s := New(intHooks())
	s.Add(charclass.PlainCharRange{Start: 5, End: 10}, []int{1})
	s.Optimize(equalIntSlices)
	got := s.Ranges()
	require.Len(t, got, 1)
	require.Equal(t, charclass.PlainCharRange{Start: 5, End: 10}, got[0].Range)
	require.Equal(t, []int{1}, got[0].Payload)
}

func TestAddOverlappingRangesMerge(t *testing.T) {
	s := New(intHooks())
	s.Add(charclass.PlainCharRange{Start: 0, End: 10}, []int{1})
	s.Add(charclass.PlainCharRange{Start: 5, End: 15}, []int{2})
	s.Optimize(equalIntSlices)
	got := s.Ranges()

	require.Equal(t, 3, len(got))
	require.Equal(t, charclass.PlainCharRange{Start: 0, End: 4}, got[0].Range)
	require.Equal(t, []int{1}, got[0].Payload)
	require.Equal(t, charclass.PlainCharRange{Start: 5, End: 10}, got[1].Range)
	require.Equal(t, []int{1, 2}, got[1].Payload)
	require.Equal(t, charclass.PlainCharRange{Start: 11, End: 15}, got[2].Range)
	require.Equal(t, []int{2}, got[2].Payload)
}

func TestOptimizeCoalescesEqualAdjacent(t *testing.T) {
	s := New(intHooks())
	s.Add(charclass.PlainCharRange{Start: 0, End: 4}, []int{1})
	s.Add(charclass.PlainCharRange{Start: 5, End: 9}, []int{1})
	s.Optimize(equalIntSlices)
	got := s.Ranges()
	require.Len(t, got, 1)
	require.Equal(t, charclass.PlainCharRange{Start: 0, End: 9}, got[0].Range)
}

func TestAddFullRange(t *testing.T) {
	s := New(intHooks())
	s.Add(charclass.PlainCharRange{Start: 0, End: charclass.MaxCodeUnit}, []int{9})
	s.Optimize(equalIntSlices)
	got := s.Ranges()
	require.Len(t, got, 1)
	require.Equal(t, charclass.PlainCharRange{Start: 0, End: charclass.MaxCodeUnit}, got[0].Range)
}

func TestEqualAfterOptimize(t *testing.T) {
	a := New(intHooks())
	a.Add(charclass.PlainCharRange{Start: 0, End: 9}, []int{1})
	b := New(intHooks())
	b.Add(charclass.PlainCharRange{Start: 0, End: 4}, []int{1})
	b.Add(charclass.PlainCharRange{Start: 5, End: 9}, []int{1})

	a.Optimize(equalIntSlices)
	b.Optimize(equalIntSlices)
	require.True(t, Equal(a, b, equalIntSlices))
}
