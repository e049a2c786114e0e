// Package minimize implements Hopcroft-style DFA partition refinement,
// per spec.md 4.6: split classes whose members disagree on the
// content-equal TransitionSet<group-id> induced by the current partition,
// plus per-transition marks, until a fixed point is reached.
package minimize

import (
	"fmt"
	"strings"

	"github.com/KromDaniel/lexgen/internal/charclass"
	"github.com/KromDaniel/lexgen/internal/dfa"
	"github.com/KromDaniel/lexgen/internal/mark"
	"github.com/KromDaniel/lexgen/internal/transition"
)

// sigPayload is a per-character signature slice: which partition class
// (if any) the transition out of that character leads to, plus the
// identity of the mark (if any) carried by that transition. Folding the
// mark into the same payload the target-class coalescing uses means a
// cell's signature is computed per character, not per raw-range
// position - two cells whose raw CharRanges split the alphabet at
// different points but agree character-by-character on both target
// class and mark now correctly compare equal.
type sigPayload struct {
	group    int
	hasMark  bool
	kind     mark.Kind
	actionID int
}

func copySig(v sigPayload) sigPayload { return v }

// mergeSig is never actually invoked: a single cell's own ranges are
// already disjoint (the DFA invariant), so Add never targets an
// already-populated sub-range twice within one cell's signature.
func mergeSig(into *sigPayload, other sigPayload) { *into = other }

func sigEqual(a, b sigPayload) bool { return a == b }

// cellSignature computes the refinement key for cell i under the current
// partition classOf: the per-character coalesced (group-id, mark)
// partition induced by classOf, content-equal-comparable across cells.
func cellSignature(d *dfa.DFA, i int, classOf []int) string {
	ts := transition.New[sigPayload](transition.Hooks[sigPayload]{Copy: copySig, Merge: mergeSig})
	for k, r := range d.CharRanges[i] {
		p := sigPayload{group: -1}
		if target := d.Outs[i][k]; target >= 0 {
			p.group = classOf[target]
		}
		if m := d.Marks[i][k]; m != nil {
			p.hasMark = true
			p.kind = m.Kind()
			p.actionID = m.ActionID()
		}
		ts.Add(r, p)
	}
	ts.Optimize(sigEqual)

	var sb strings.Builder
	sb.WriteString("T")
	for _, rg := range ts.Ranges() {
		if rg.Payload.hasMark {
			fmt.Fprintf(&sb, ";%d-%d=%d/%d:%d", rg.Range.Start, rg.Range.End, rg.Payload.group, rg.Payload.kind, rg.Payload.actionID)
		} else {
			fmt.Fprintf(&sb, ";%d-%d=%d/-", rg.Range.Start, rg.Range.End, rg.Payload.group)
		}
	}
	return sb.String()
}

func distinctCount(classOf []int) int {
	seen := map[int]bool{}
	for _, c := range classOf {
		seen[c] = true
	}
	return len(seen)
}

// refine produces one round's new partition: cells keep the same class
// only if they share both their old class and their cellSignature, so a
// round never merges cells across an existing class boundary, only
// splits within one.
func refine(d *dfa.DFA, classOf []int) ([]int, bool) {
	type key struct {
		old int
		sig string
	}
	ids := map[key]int{}
	newClassOf := make([]int, len(classOf))
	next := 0
	for i := range classOf {
		k := key{old: classOf[i], sig: cellSignature(d, i, classOf)}
		id, ok := ids[k]
		if !ok {
			id = next
			next++
			ids[k] = id
		}
		newClassOf[i] = id
	}
	return newClassOf, next != distinctCount(classOf)
}

// Minimize runs partition refinement on d, returning a new, smaller DFA.
// Returns d unchanged if no refinement is possible. Returns an error if
// two cells folded into the same class carry marks that cannot merge.
func Minimize(d *dfa.DFA) (*dfa.DFA, error) {
	n := d.Size()
	if n == 0 {
		return d, nil
	}

	classOf := make([]int, n)
	for i := 0; i < n; i++ {
		if d.FinalFlags[i] {
			classOf[i] = 1
		}
	}
	if distinctCount(classOf) == 1 {
		// Both all-final and all-non-final collapse the same way: a
		// single initial class, already dense at 0.
		for i := range classOf {
			classOf[i] = 0
		}
	}

	for {
		next, changed := refine(d, classOf)
		classOf = next
		if !changed {
			break
		}
	}

	numClasses := distinctCount(classOf)
	if numClasses == n {
		return d, nil
	}

	return emit(d, classOf, numClasses)
}

// emit renumbers classes so the begin cell's class becomes class 0, then
// builds the minimized DFA from one representative per class.
func emit(d *dfa.DFA, classOf []int, numClasses int) (*dfa.DFA, error) {
	beginClass := classOf[0]
	perm := make([]int, numClasses)
	perm[beginClass] = 0
	next := 1
	for c := 0; c < numClasses; c++ {
		if c == beginClass {
			continue
		}
		perm[c] = next
		next++
	}

	finalClassOf := make([]int, len(classOf))
	for i, c := range classOf {
		finalClassOf[i] = perm[c]
	}

	representative := make([]int, numClasses)
	assigned := make([]bool, numClasses)
	members := make([][]int, numClasses)
	for i, j := range finalClassOf {
		members[j] = append(members[j], i)
		if !assigned[j] {
			representative[j] = i
			assigned[j] = true
		}
	}

	newRanges := make([][]charclass.PlainCharRange, numClasses)
	newOuts := make([][]int, numClasses)
	newMarks := make([][]*mark.Mark, numClasses)
	newFinal := make([]bool, numClasses)

	for j := 0; j < numClasses; j++ {
		newFinal[j] = d.FinalFlags[representative[j]]

		rowRanges, rowOuts, rowMarks, err := buildClassRow(d, members[j], finalClassOf)
		if err != nil {
			return nil, err
		}

		newRanges[j] = rowRanges
		newOuts[j] = rowOuts
		newMarks[j] = rowMarks
	}

	return &dfa.DFA{
		CharRanges: newRanges,
		Outs:       newOuts,
		Marks:      newMarks,
		FinalFlags: newFinal,
	}, nil
}

// rowPayload is one merged class row's per-character content: which
// final class (if any) a transition leads to, plus its mark.
type rowPayload struct {
	target int
	mark   *mark.Mark
}

func copyRow(v rowPayload) rowPayload { return v }

// markPtrEqual is a nil-safe wrapper around Mark.Equal.
func markPtrEqual(a, b *mark.Mark) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

// buildClassRow coalesces every member cell's raw ranges into one
// per-character partition, merging marks across members with
// mark.Merge. Members of the same class may disagree on where their
// raw ranges split the alphabet (cellSignature only guarantees
// per-character agreement, not identical split points), so the merged
// row cannot be read positionally off a single representative; it has
// to be rebuilt from every member's own ranges the same way subset
// construction's cell-set coalescing works.
func buildClassRow(d *dfa.DFA, members []int, finalClassOf []int) ([]charclass.PlainCharRange, []int, []*mark.Mark, error) {
	var mergeErr *mark.ConflictError
	mergeRow := func(into *rowPayload, other rowPayload) {
		merged, err := mark.Merge(into.mark, other.mark)
		if err != nil {
			if mergeErr == nil {
				mergeErr = err.(*mark.ConflictError)
			}
			return
		}
		into.target = other.target
		into.mark = merged
	}

	ts := transition.New[rowPayload](transition.Hooks[rowPayload]{Copy: copyRow, Merge: mergeRow})
	for _, m := range members {
		for k, rg := range d.CharRanges[m] {
			target := -1
			if o := d.Outs[m][k]; o >= 0 {
				target = finalClassOf[o]
			}
			ts.Add(rg, rowPayload{target: target, mark: d.Marks[m][k]})
		}
	}
	if mergeErr != nil {
		return nil, nil, nil, &dfa.MarksConflictException{A: mergeErr.A, B: mergeErr.B}
	}

	rowEqual := func(a, b rowPayload) bool {
		return a.target == b.target && markPtrEqual(a.mark, b.mark)
	}
	ts.Optimize(rowEqual)

	ranges := ts.Ranges()
	rowRanges := make([]charclass.PlainCharRange, len(ranges))
	rowOuts := make([]int, len(ranges))
	rowMarks := make([]*mark.Mark, len(ranges))
	for i, rg := range ranges {
		rowRanges[i] = rg.Range
		rowOuts[i] = rg.Payload.target
		rowMarks[i] = rg.Payload.mark
	}
	return rowRanges, rowOuts, rowMarks, nil
}
