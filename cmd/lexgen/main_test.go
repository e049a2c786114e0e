package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestArrayFlagsString(t *testing.T) {
	tests := []struct {
		name     string
		flags    arrayFlags
		expected string
	}{
		{name: "empty", flags: arrayFlags{}, expected: ""},
		{name: "single", flags: arrayFlags{`\d+`}, expected: `\d+`},
		{name: "multiple", flags: arrayFlags{`\d+`, ` `, `\w+`}, expected: `\d+,  , \w+`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, tt.flags.String())
		})
	}
}

func TestArrayFlagsSet(t *testing.T) {
	var flags arrayFlags
	require.NoError(t, flags.Set(`\d+`))
	require.NoError(t, flags.Set(`\w+`))
	require.Equal(t, arrayFlags{`\d+`, `\w+`}, flags)
}

func TestParseArgsDefaults(t *testing.T) {
	cfg, err := parseArgs([]string{"-rule", `\d+`, "-rule", ` `})
	require.NoError(t, err)
	require.Equal(t, arrayFlags{`\d+`, ` `}, cfg.rules)
	require.True(t, cfg.minimize)
	require.True(t, cfg.compress)
	require.False(t, cfg.strict)
}

func TestRunLexesInputFileAndPrintsTokens(t *testing.T) {
	dir := t.TempDir()
	inputPath := filepath.Join(dir, "in.txt")
	require.NoError(t, os.WriteFile(inputPath, []byte("12 ab"), 0o644))

	stdout := captureStdout(t, func() {
		err := run([]string{
			"-rule", `\d+`,
			"-rule", ` `,
			"-rule", `[a-z]+`,
			"-input", inputPath,
		})
		require.NoError(t, err)
	})

	require.Contains(t, stdout, "\"12\"")
	require.Contains(t, stdout, "\"ab\"")
}

func TestRunRejectsNoRules(t *testing.T) {
	err := run(nil)
	require.Error(t, err)
}

func TestRunEmitWritesGeneratedSource(t *testing.T) {
	dir := t.TempDir()
	inputPath := filepath.Join(dir, "in.txt")
	require.NoError(t, os.WriteFile(inputPath, []byte("7"), 0o644))
	outPath := filepath.Join(dir, "generated.go")

	err := run([]string{
		"-rule", `\d+`,
		"-input", inputPath,
		"-emit", outPath,
		"-pkg", "generatedpkg",
	})
	require.NoError(t, err)

	out, err := os.ReadFile(outPath)
	require.NoError(t, err)
	require.Contains(t, string(out), "package generatedpkg")
}

func TestRunEmitWithoutCompressFails(t *testing.T) {
	dir := t.TempDir()
	outPath := filepath.Join(dir, "generated.go")
	err := run([]string{
		"-rule", `\d+`,
		"-compress=false",
		"-emit", outPath,
	})
	require.Error(t, err)
}

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w
	defer func() { os.Stdout = old }()

	fn()

	require.NoError(t, w.Close())
	var buf bytes.Buffer
	_, err = buf.ReadFrom(r)
	require.NoError(t, err)
	return buf.String()
}
