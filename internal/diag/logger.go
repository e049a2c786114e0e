// Package diag provides the build-time diagnostic logger used by
// pkg/lexgen.Build and cmd/lexgen to report NFA/DFA sizes, minimization
// and compression ratios, and mark-conflict detail.
package diag

import (
	"fmt"
	"io"
	"os"
)

// Logger prints verbose build progress when enabled; otherwise every
// method is a no-op. Beyond the generic Log/Section pair, it carries a
// handful of build-pipeline-shaped methods so pkg/lexgen.Build doesn't
// have to format cell counts and reduction ratios itself at every stage.
type Logger struct {
	enabled bool
	out     io.Writer
}

// NewLogger creates a logger that writes to os.Stderr until SetOutput
// is called.
func NewLogger(enabled bool) *Logger {
	return &Logger{enabled: enabled, out: os.Stderr}
}

// SetOutput redirects the logger's destination.
func (l *Logger) SetOutput(w io.Writer) {
	l.out = w
}

// Log prints a formatted message if the logger is enabled.
func (l *Logger) Log(format string, args ...interface{}) {
	if l.enabled {
		fmt.Fprintf(l.out, "[lexgen] "+format+"\n", args...)
	}
}

// Section prints a state's build section header if the logger is
// enabled. name is typically "state N".
func (l *Logger) Section(name string) {
	if l.enabled {
		fmt.Fprintf(l.out, "\n[lexgen] === %s ===\n", name)
	}
}

// Enabled reports whether the logger currently prints anything.
func (l *Logger) Enabled() bool {
	return l.enabled
}

// LogDFABuilt reports the cell count of a freshly subset-constructed DFA,
// before any minimization pass runs.
func (l *Logger) LogDFABuilt(stateIdx, cells int) {
	l.Log("state %d: subset construction produced %d dfa cells", stateIdx, cells)
}

// LogMinimized reports a state's cell count before and after partition
// refinement, plus the fraction of cells that refinement removed.
func (l *Logger) LogMinimized(stateIdx, before, after int) {
	if !l.enabled {
		return
	}
	reduction := 0.0
	if before > 0 {
		reduction = 100 * float64(before-after) / float64(before)
	}
	l.Log("state %d: minimize %d -> %d dfa cells (%.1f%% reduction)", stateIdx, before, after, reduction)
}

// LogCompressed reports a state's character-class count after the
// two-level compression pass, plus the fraction of the 0x10000-entry
// alphabet that collapsed into those classes.
func (l *Logger) LogCompressed(stateIdx, numClasses int) {
	if !l.enabled {
		return
	}
	const alphabetSize = 0x10000
	reduction := 100 * float64(alphabetSize-numClasses) / float64(alphabetSize)
	l.Log("state %d: compressed to %d character classes (%.2f%% alphabet reduction)", stateIdx, numClasses, reduction)
}

// LogRulesConflict reports a mark conflict surfaced while building a
// state, ahead of the build error it causes pkg/lexgen.Build to return.
func (l *Logger) LogRulesConflict(stateIdx, actionA, actionB int) {
	l.Log("state %d: rules for actions %d and %d overlap and cannot be resolved in strict mode", stateIdx, actionA, actionB)
}
