// Package transition implements TransitionSet, a mutable partition of the
// full 16-bit code-unit range with a mergeable payload per sub-range. It
// is the shared workhorse behind subset construction (internal/dfa),
// minimization (internal/minimize), and compression (internal/compress).
package transition

import "github.com/KromDaniel/lexgen/internal/charclass"

// Hooks parameterize a TransitionSet with user-supplied payload
// operations: Copy clones a payload when a sub-range previously had no
// value, and Merge combines an incoming value into an existing payload
// in place.
type Hooks[T any] struct {
	Copy  func(T) T
	Merge func(into *T, other T)
}

// boundary is a split point in the partition. value is nil for the
// implicit placeholder sub-range before the first boundary or after an
// add() that never touched it.
type boundary[T any] struct {
	at    uint16 // inclusive start of the sub-range beginning here
	value *T
}

// TransitionSet partitions [0, charclass.MaxCodeUnit] into sub-ranges,
// each carrying an optional payload. A nil payload means "unused by the
// current set".
type TransitionSet[T any] struct {
	hooks  Hooks[T]
	bounds []boundary[T] // sorted by .at, always starts with at=0
}

// New creates an empty TransitionSet: one sub-range spanning the whole
// alphabet with a nil payload.
func New[T any](hooks Hooks[T]) *TransitionSet[T] {
	return &TransitionSet[T]{
		hooks:  hooks,
		bounds: []boundary[T]{{at: 0, value: nil}},
	}
}

// split ensures a boundary exists at position `at` (a real sub-range
// start in [0, MaxCodeUnit]), returning its index. Add never calls it
// for the position just past MaxCodeUnit; a range ending at MaxCodeUnit
// is handled there without a second split.
func (s *TransitionSet[T]) split(at uint16) int {
	lo, hi := 0, len(s.bounds)
	for lo < hi {
		mid := (lo + hi) / 2
		if s.bounds[mid].at < at {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < len(s.bounds) && s.bounds[lo].at == at {
		return lo
	}
	// The new boundary inherits a Copy of the payload of the sub-range it
	// splits, i.e. the boundary immediately preceding it, so a later
	// Merge into one half never reaches the other.
	var inherited *T
	if lo > 0 {
		prev := s.bounds[lo-1].value
		if prev != nil {
			v := s.hooks.Copy(*prev)
			inherited = &v
		}
	}
	s.bounds = append(s.bounds, boundary[T]{})
	copy(s.bounds[lo+1:], s.bounds[lo:])
	s.bounds[lo] = boundary[T]{at: at, value: inherited}
	return lo
}

// Add restricts the partition so that range is one contiguous union of
// internal sub-ranges, then merges value into the payload of every
// sub-range fully inside range (cloning with Copy if there was no prior
// payload).
func (s *TransitionSet[T]) Add(r charclass.PlainCharRange, value T) {
	if r.IsEmpty() {
		return
	}
	startIdx := s.split(r.Start)
	var endIdx int
	if r.End == charclass.MaxCodeUnit {
		endIdx = len(s.bounds)
	} else {
		// r.End+1 > r.Start always holds, so this split only ever
		// inserts after startIdx and never invalidates it.
		endIdx = s.split(r.End + 1)
	}

	for i := startIdx; i < endIdx; i++ {
		if s.bounds[i].value == nil {
			v := s.hooks.Copy(value)
			s.bounds[i].value = &v
		} else {
			s.hooks.Merge(s.bounds[i].value, value)
		}
	}
}

// Range is a (range, payload) pair yielded during iteration.
type Range[T any] struct {
	Range   charclass.PlainCharRange
	Payload T
}

// Optimize coalesces adjacent sub-ranges whose payloads are Equal,
// per the supplied equality function.
func (s *TransitionSet[T]) Optimize(equal func(a, b T) bool) {
	if len(s.bounds) <= 1 {
		return
	}
	out := s.bounds[:1]
	for _, b := range s.bounds[1:] {
		last := &out[len(out)-1]
		if (last.value == nil) == (b.value == nil) &&
			(last.value == nil || equal(*last.value, *b.value)) {
			continue
		}
		out = append(out, b)
	}
	s.bounds = out
}

// Iterate yields (range, payload) pairs in order, skipping nil placeholder
// sub-ranges.
func (s *TransitionSet[T]) Iterate(fn func(Range[T])) {
	for i, b := range s.bounds {
		if b.value == nil {
			continue
		}
		end := uint16(charclass.MaxCodeUnit)
		if i+1 < len(s.bounds) {
			end = s.bounds[i+1].at - 1
		}
		fn(Range[T]{Range: charclass.PlainCharRange{Start: b.at, End: end}, Payload: *b.value})
	}
}

// Ranges materializes Iterate's output as a slice.
func (s *TransitionSet[T]) Ranges() []Range[T] {
	var out []Range[T]
	s.Iterate(func(r Range[T]) { out = append(out, r) })
	return out
}

// Equal reports content equality: same ranges, same payloads (by the
// supplied equality function), after both sets are optimized.
func Equal[T any](a, b *TransitionSet[T], equal func(x, y T) bool) bool {
	ra, rb := a.Ranges(), b.Ranges()
	if len(ra) != len(rb) {
		return false
	}
	for i := range ra {
		if ra[i].Range != rb[i].Range {
			return false
		}
		if !equal(ra[i].Payload, rb[i].Payload) {
			return false
		}
	}
	return true
}
