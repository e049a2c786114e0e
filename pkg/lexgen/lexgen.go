// Package lexgen is the public build entry point: turn a set of regex
// rules, optionally partitioned across named lexing states, into a
// runnable lexer.MarkedDFA. It mirrors the teacher's pkg/regengo.Compile
// shape (validate options, construct, return) generalized from a single
// pattern to a multi-rule, multi-state pipeline.
package lexgen

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/KromDaniel/lexgen/internal/compress"
	"github.com/KromDaniel/lexgen/internal/dfa"
	"github.com/KromDaniel/lexgen/internal/diag"
	"github.com/KromDaniel/lexgen/internal/lexer"
	"github.com/KromDaniel/lexgen/internal/mark"
	"github.com/KromDaniel/lexgen/internal/minimize"
	"github.com/KromDaniel/lexgen/internal/nfa"
	"github.com/KromDaniel/lexgen/internal/parser"
)

// Rule is one (pattern, action) pair. Exactly one of Pattern or
// PreBuiltFragment must be set; PreBuiltFragment lets a caller splice in
// an already-compiled fragment (e.g. shared across several rule sets)
// instead of re-parsing a string. Action runs when this rule's token
// completes; a nil Action marks a rule whose token is matched and
// discarded (e.g. whitespace) rather than returned to the caller.
type Rule struct {
	Pattern          string
	PreBuiltFragment *nfa.Builder
	Action           lexer.ActionFunc
}

// StateRules is the rule list active in one lexing state. State 0 is
// always the initial state a Lexer starts in.
type StateRules struct {
	Rules []Rule
}

// Options configures the build pipeline.
type Options struct {
	// Minimize runs Hopcroft-style partition refinement on each state's
	// DFA before it is used.
	Minimize bool
	// Strict rejects overlapping rules within a state as a build error
	// (MarksConflictException). Non-strict resolves overlaps by
	// first-declared-rule-wins.
	Strict bool
	// Compress applies the two-level character-class/transition-table
	// compression pass after minimization.
	Compress bool
	// Logger receives build progress (state sizes, minimize/compress
	// ratios). A nil Logger is silent.
	Logger *diag.Logger
}

// Validate reports whether o is usable. Every field is currently a
// plain boolean/pointer with no invalid combination, so this always
// succeeds; it exists for parity with regengo's Options.Validate()
// shape and as a stable extension point.
func (o Options) Validate() error {
	return nil
}

// Build parses and combines every state's rules into a DFA (optionally
// minimized and compressed) and returns the assembled MarkedDFA ready
// to start Lexer sessions from.
func Build(states []StateRules, opts Options) (*lexer.MarkedDFA, error) {
	if err := opts.Validate(); err != nil {
		return nil, errors.Wrap(err, "lexgen: invalid options")
	}
	if len(states) == 0 {
		return nil, errors.New("lexgen: at least one lexing state is required")
	}

	log := opts.Logger
	if log == nil {
		log = diag.NewLogger(false)
	}

	automatons := make([]lexer.Automaton, len(states))
	actions := map[int]lexer.ActionFunc{}
	nextActionID := 1

	for si, sr := range states {
		if len(sr.Rules) == 0 {
			return nil, errors.Errorf("lexgen: state %d has no rules", si)
		}
		log.Section(fmt.Sprintf("state %d", si))

		branches := make([]*nfa.Builder, len(sr.Rules))
		for ri, rule := range sr.Rules {
			frag, err := fragmentFor(rule)
			if err != nil {
				return nil, errors.Wrapf(err, "lexgen: state %d rule %d", si, ri)
			}

			// A nil Action means "match and discard": every such rule
			// shares reserved action id 0, so overlapping discard rules
			// (e.g. two different whitespace patterns) merge under
			// ActionMark's equal-action-id rule instead of raising a
			// spurious MarksConflictException in strict mode.
			var actionID int
			if rule.Action != nil {
				actionID = nextActionID
				nextActionID++
			}

			var m mark.Mark
			if opts.Strict {
				m = mark.NewAction(actionID)
			} else {
				m = mark.NewPriority(actionID, ri)
			}
			frag.MarkEnd(m)

			actions[actionID] = rule.Action
			branches[ri] = frag
		}

		root := nfa.NewEmpty()
		root.AppendBranch(branches...)
		n := root.Freeze()
		if n.MatchesEmpty() {
			return nil, errors.Errorf("lexgen: state %d's rules can match the empty string", si)
		}

		d, err := dfa.Build(n)
		if err != nil {
			var conflict *dfa.MarksConflictException
			if errors.As(err, &conflict) {
				log.LogRulesConflict(si, conflict.A.ActionID(), conflict.B.ActionID())
			}
			return nil, errors.Wrapf(err, "lexgen: state %d", si)
		}
		log.LogDFABuilt(si, d.Size())

		if opts.Minimize {
			before := d.Size()
			d, err = minimize.Minimize(d)
			if err != nil {
				var conflict *dfa.MarksConflictException
				if errors.As(err, &conflict) {
					log.LogRulesConflict(si, conflict.A.ActionID(), conflict.B.ActionID())
				}
				return nil, errors.Wrapf(err, "lexgen: state %d minimize", si)
			}
			log.LogMinimized(si, before, d.Size())
		}

		if opts.Compress {
			c := compress.Compress(d)
			log.LogCompressed(si, c.NumClasses)
			automatons[si] = lexer.FromCompressed(c)
		} else {
			automatons[si] = lexer.FromDFA(d)
		}
	}

	marked, err := lexer.NewMarkedDFA(automatons, actions)
	if err != nil {
		return nil, errors.Wrap(err, "lexgen")
	}
	return marked, nil
}

func fragmentFor(rule Rule) (*nfa.Builder, error) {
	if rule.PreBuiltFragment != nil {
		return rule.PreBuiltFragment.Clone(), nil
	}
	return parser.Parse(rule.Pattern)
}
