package charclass

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromCharsFusesAdjacent(t *testing.T) {
	c := FromChars([]uint16{3, 1, 2, 10, 5, 4})
	require.Equal(t, []PlainCharRange{{1, 5}, {10, 10}}, c.Ranges())
}

func TestUnionAssociativeCommutativeIdempotent(t *testing.T) {
	a := FromRange('a', 'm')
	b := FromRange('k', 'z')
	empty := Empty()

	require.True(t, Union(a, b).Equal(Union(b, a)))
	require.True(t, Union(Union(a, b), empty).Equal(Union(a, Union(b, empty))))
	require.True(t, Union(a, a).Equal(a))
}

func TestUnionMembershipEquivalence(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		a := randomClass(r)
		b := randomClass(r)
		u := Union(a, b)
		for c := uint16(0); c < 64; c++ {
			want := a.Contains(c) || b.Contains(c)
			got := u.Contains(c)
			require.Equal(t, want, got, "char %d", c)
		}
	}
}

func randomClass(r *rand.Rand) CharClass {
	n := r.Intn(5)
	chars := make([]uint16, 0, n*2)
	for i := 0; i < n; i++ {
		lo := uint16(r.Intn(60))
		hi := lo + uint16(r.Intn(4))
		chars = append(chars, lo, hi)
	}
	var flat []uint16
	for i := 0; i < len(chars); i += 2 {
		for c := chars[i]; c <= chars[i+1]; c++ {
			flat = append(flat, c)
		}
	}
	return FromChars(flat)
}

func TestInverseInvolutive(t *testing.T) {
	for _, c := range []CharClass{Empty(), Any(), Digit(), Word(), Blank(), FromRange(5, 5)} {
		require.True(t, c.Inverse().Inverse().Equal(c))
	}
}

func TestInverseOfAnyIsEmpty(t *testing.T) {
	require.True(t, Any().Inverse().Equal(Empty()))
	require.True(t, Empty().Inverse().Equal(Any()))
}

func TestIndexOf(t *testing.T) {
	c := FromChars([]uint16{1, 2, 3, 10, 11})
	require.Equal(t, 0, c.IndexOf(2))
	require.Equal(t, 1, c.IndexOf(10))
	require.Equal(t, -1, c.IndexOf(5))
}

func TestInvariantNonTouching(t *testing.T) {
	c := Union(FromRange(0, 5), FromRange(6, 10))
	require.Equal(t, []PlainCharRange{{0, 10}}, c.Ranges())
}
