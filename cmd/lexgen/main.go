// Command lexgen is the command-line front door over pkg/lexgen: build
// a lexer from a list of regex rules, then either bake it into a
// standalone Go source file (-emit) or run it over an input file/stdin
// and print the tokens it produces. Structured progress output follows
// alterx's cmd/alterx layering of gologger atop a library core.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/gologger/levels"

	"github.com/KromDaniel/lexgen/internal/codegen"
	"github.com/KromDaniel/lexgen/internal/diag"
	"github.com/KromDaniel/lexgen/internal/lexer"
	"github.com/KromDaniel/lexgen/pkg/lexgen"
)

// arrayFlags collects a flag passed multiple times on the command line,
// in order, the way regengo's cmd/regengo collected repeated flags.
type arrayFlags []string

func (f *arrayFlags) String() string { return strings.Join(*f, ", ") }

func (f *arrayFlags) Set(value string) error {
	*f = append(*f, value)
	return nil
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		gologger.Fatal().Msgf("%v", err)
	}
}

// parseArgs reads cfg from args using the standard library flag
// package, the way regengo's cmd/curated_generator parsed its own
// repeated -rule/-mask flags before this CLI superseded it.
func parseArgs(args []string) (config, error) {
	fs := flag.NewFlagSet("lexgen", flag.ContinueOnError)
	var cfg config
	fs.Var(&cfg.rules, "rule", "a rule pattern; repeat for multiple rules in declaration order")
	fs.StringVar(&cfg.inputPath, "input", "", "file to lex (default stdin)")
	fs.StringVar(&cfg.emitPath, "emit", "", "write a standalone generated Go source file here")
	fs.StringVar(&cfg.pkgName, "pkg", "lexgenerated", "package name for -emit output")
	fs.BoolVar(&cfg.minimize, "minimize", true, "minimize the DFA before use")
	fs.BoolVar(&cfg.strict, "strict", false, "reject overlapping rules instead of resolving by declaration order")
	fs.BoolVar(&cfg.compress, "compress", true, "compress the DFA's transition tables")
	fs.BoolVar(&cfg.verbose, "verbose", false, "enable verbose build/run logging")
	fs.BoolVar(&cfg.runAfterEmit, "run", false, "also lex -input/stdin after writing -emit")
	if err := fs.Parse(args); err != nil {
		return config{}, err
	}
	return cfg, nil
}

func run(args []string) error {
	cfg, err := parseArgs(args)
	if err != nil {
		return err
	}

	if cfg.verbose {
		gologger.DefaultLogger.SetMaxLevel(levels.LevelVerbose)
	}
	if len(cfg.rules) == 0 {
		return fmt.Errorf("at least one -rule pattern is required")
	}

	log := diag.NewLogger(cfg.verbose)
	marked, err := buildMarkedDFA(cfg, log)
	if err != nil {
		return err
	}

	if cfg.emitPath != "" {
		if err := emitGenerated(marked, cfg); err != nil {
			return err
		}
	}

	if cfg.emitPath == "" || cfg.runAfterEmit {
		return runInput(marked, cfg)
	}
	return nil
}

type config struct {
	rules        arrayFlags
	inputPath    string
	emitPath     string
	pkgName      string
	minimize     bool
	strict       bool
	compress     bool
	verbose      bool
	runAfterEmit bool
}

// buildMarkedDFA turns cfg's rule patterns into a single-state
// MarkedDFA. Each rule's action returns a token carrying its 0-based
// rule index and matched text, which runInput prints; this CLI is a
// build/inspection tool, not a place to author custom token actions, so no action ever varies by rule beyond
// that.
func buildMarkedDFA(cfg config, log *diag.Logger) (*lexer.MarkedDFA, error) {
	rules := make([]lexgen.Rule, len(cfg.rules))
	for i, pattern := range cfg.rules {
		idx := i
		rules[i] = lexgen.Rule{
			Pattern: pattern,
			Action: func(ctx *lexer.ActionContext) (interface{}, bool) {
				return tokenOf(idx, ctx), true
			},
		}
	}

	marked, err := lexgen.Build([]lexgen.StateRules{{Rules: rules}}, lexgen.Options{
		Minimize: cfg.minimize,
		Strict:   cfg.strict,
		Compress: cfg.compress,
		Logger:   log,
	})
	if err != nil {
		return nil, fmt.Errorf("building lexer: %w", err)
	}
	gologger.Info().Msgf("built lexer over %d rule(s)", len(cfg.rules))
	return marked, nil
}

type token struct {
	ruleIndex int
	text      string
}

func tokenOf(ruleIndex int, ctx *lexer.ActionContext) token {
	r := make([]rune, len(ctx.Text))
	for i, u := range ctx.Text {
		r[i] = rune(u)
	}
	return token{ruleIndex: ruleIndex, text: string(r)}
}

func emitGenerated(marked *lexer.MarkedDFA, cfg config) error {
	f, err := os.Create(cfg.emitPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", cfg.emitPath, err)
	}
	defer f.Close()

	compressed, ok := marked.CompressedState(0)
	if !ok {
		return fmt.Errorf("-emit requires -compress (state 0 was not compressed)")
	}
	if err := codegen.EmitGo(f, cfg.pkgName, compressed); err != nil {
		return fmt.Errorf("emitting %s: %w", cfg.emitPath, err)
	}
	gologger.Info().Msgf("wrote generated package %q to %s", cfg.pkgName, cfg.emitPath)
	return nil
}

func runInput(marked *lexer.MarkedDFA, cfg config) error {
	var r io.Reader = os.Stdin
	if cfg.inputPath != "" {
		f, err := os.Open(cfg.inputPath)
		if err != nil {
			return fmt.Errorf("opening %s: %w", cfg.inputPath, err)
		}
		defer f.Close()
		r = f
	}

	raw, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	input := make([]uint16, 0, len(raw))
	for _, rn := range string(raw) {
		input = append(input, uint16(rn))
	}

	l, err := marked.NewLexer(input)
	if err != nil {
		return fmt.Errorf("starting lexer: %w", err)
	}

	count := 0
	for {
		v, ok, err := l.Lex()
		if err != nil {
			return fmt.Errorf("lexing at token %d: %w", count, err)
		}
		if !ok {
			break
		}
		tok := v.(token)
		fmt.Printf("%d\t%q\n", tok.ruleIndex, tok.text)
		count++
	}
	gologger.Info().Msgf("produced %d token(s)", count)
	return nil
}
