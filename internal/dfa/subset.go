package dfa

import (
	"sort"
	"strconv"
	"strings"

	"github.com/KromDaniel/lexgen/internal/charclass"
	"github.com/KromDaniel/lexgen/internal/mark"
	"github.com/KromDaniel/lexgen/internal/nfa"
	"github.com/KromDaniel/lexgen/internal/transition"
)

// cellSet is an NFA cell-set as defined in spec.md 4.5: the consuming
// cells reachable from a frontier through dummy-cell propagation, plus
// whether the final sentinel was reached along the way.
type cellSet struct {
	members  map[int]bool
	hasFinal bool
}

// closeSet computes the cell-set reachable from frontier, merging the
// marks of every dummy cell traversed along the way (spec.md 4.5: "each
// traversed cell's per-cell mark... is combined via the mark algebra's
// merge"). conflict is non-nil if two traversed marks could not merge.
func closeSet(n *nfa.NFA, frontier []int) (cellSet, *mark.Mark, *mark.ConflictError) {
	members := map[int]bool{}
	hasFinal := false
	var merged *mark.Mark
	var conflict *mark.ConflictError
	visited := map[int]bool{}

	stack := append([]int(nil), frontier...)
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id == nfa.Final {
			hasFinal = true
			continue
		}
		if n.IsDummy(id) {
			if visited[id] {
				continue
			}
			visited[id] = true
			if conflict == nil && n.Marks[id] != nil {
				mm, err := mark.Merge(merged, n.Marks[id])
				if err != nil {
					conflict = err.(*mark.ConflictError)
				} else {
					merged = mm
				}
			}
			stack = append(stack, n.Outs[id]...)
			continue
		}
		members[id] = true
	}
	return cellSet{members: members, hasFinal: hasFinal}, merged, conflict
}

// cellSetKey hashes a cell-set by its sorted member ids plus the
// has-final flag, so equality does not distinguish sets that differ only
// in iteration/discovery order.
func cellSetKey(s cellSet) string {
	ids := make([]int, 0, len(s.members))
	for id := range s.members {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	var sb strings.Builder
	for _, id := range ids {
		sb.WriteString(strconv.Itoa(id))
		sb.WriteByte(',')
	}
	if s.hasFinal {
		sb.WriteByte('F')
	}
	return sb.String()
}

// payload is the TransitionSet value carried through a single subset-
// construction round: the closure reached by consuming one member's
// character class, plus the merged mark, plus a recorded conflict (Merge
// cannot itself return an error, so conflicts are carried as data and
// surfaced by Build once iteration resumes).
type payload struct {
	set      cellSet
	mark     *mark.Mark
	conflict *mark.ConflictError
}

func copyPayload(p payload) payload {
	members := make(map[int]bool, len(p.set.members))
	for id := range p.set.members {
		members[id] = true
	}
	return payload{set: cellSet{members: members, hasFinal: p.set.hasFinal}, mark: p.mark, conflict: p.conflict}
}

func mergePayload(into *payload, other payload) {
	for id := range other.set.members {
		into.set.members[id] = true
	}
	if other.set.hasFinal {
		into.set.hasFinal = true
	}
	if into.conflict != nil {
		return
	}
	if other.conflict != nil {
		into.conflict = other.conflict
		return
	}
	merged, err := mark.Merge(into.mark, other.mark)
	if err != nil {
		into.conflict = err.(*mark.ConflictError)
		return
	}
	into.mark = merged
}

func payloadEqual(a, b payload) bool {
	if a.set.hasFinal != b.set.hasFinal {
		return false
	}
	if len(a.set.members) != len(b.set.members) {
		return false
	}
	for id := range a.set.members {
		if !b.set.members[id] {
			return false
		}
	}
	if (a.conflict == nil) != (b.conflict == nil) {
		return false
	}
	if (a.mark == nil) != (b.mark == nil) {
		return false
	}
	if a.mark != nil && !a.mark.Equal(*b.mark) {
		return false
	}
	return true
}

// pendingCell is a discovered-but-not-yet-expanded DFA cell.
type pendingCell struct {
	id  int
	set cellSet
}

// Build runs subset construction over n, producing the general DFA form.
// Cell 0 is always the seed (n.Begin's closure).
func Build(n *nfa.NFA) (*DFA, error) {
	seedSet, seedMark, seedConflict := closeSet(n, []int{n.Begin})
	if seedConflict != nil {
		return nil, &MarksConflictException{A: seedConflict.A, B: seedConflict.B}
	}
	_ = seedMark // the begin cell-set's own merged mark has no transition to attach to

	seen := map[string]int{cellSetKey(seedSet): 0}
	predCell := map[int]int{0: -1}
	predRange := map[int]charclass.PlainCharRange{}

	queue := []pendingCell{{id: 0, set: seedSet}}
	nextID := 1

	var allRanges [][]charclass.PlainCharRange
	var allOuts [][]int
	var allMarks [][]*mark.Mark
	var allFinal []bool

	hooks := transition.Hooks[payload]{Copy: copyPayload, Merge: mergePayload}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		ts := transition.New[payload](hooks)
		for c := range cur.set.members {
			cls := n.CharClass[c]
			target := n.Outs[c][0]
			targetSet, targetMark, targetConflict := closeSet(n, []int{target})
			p := payload{set: targetSet, mark: targetMark, conflict: targetConflict}
			for _, r := range cls.Ranges() {
				ts.Add(r, p)
			}
		}
		ts.Optimize(payloadEqual)

		var rangesRow []charclass.PlainCharRange
		var outsRow []int
		var marksRow []*mark.Mark
		for _, rg := range ts.Ranges() {
			p := rg.Payload
			if p.conflict != nil {
				path := reconstructPath(predCell, predRange, cur.id, rg.Range)
				return nil, &MarksConflictException{A: p.conflict.A, B: p.conflict.B, Path: path}
			}
			key := cellSetKey(p.set)
			id, ok := seen[key]
			if !ok {
				id = nextID
				nextID++
				seen[key] = id
				predCell[id] = cur.id
				predRange[id] = rg.Range
				queue = append(queue, pendingCell{id: id, set: p.set})
			}
			rangesRow = append(rangesRow, rg.Range)
			outsRow = append(outsRow, id)
			marksRow = append(marksRow, p.mark)
		}

		allRanges = append(allRanges, rangesRow)
		allOuts = append(allOuts, outsRow)
		allMarks = append(allMarks, marksRow)
		allFinal = append(allFinal, cur.set.hasFinal)
	}

	return &DFA{CharRanges: allRanges, Outs: allOuts, Marks: allMarks, FinalFlags: allFinal}, nil
}

// reconstructPath walks predCell/predRange back from triggeringCell to the
// seed, producing the minimal witness path ending in the range that
// exposed the conflict, per spec.md's Design Notes ("Path reconstruction
// on conflict").
func reconstructPath(predCell map[int]int, predRange map[int]charclass.PlainCharRange, triggeringCell int, triggeringRange charclass.PlainCharRange) []charclass.PlainCharRange {
	path := []charclass.PlainCharRange{triggeringRange}
	cur := triggeringCell
	for {
		r, ok := predRange[cur]
		if !ok {
			break
		}
		path = append([]charclass.PlainCharRange{r}, path...)
		cur = predCell[cur]
	}
	return path
}
