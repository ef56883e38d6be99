package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/annosplit/internal/cli"
	"github.com/specialistvlad/annosplit/internal/plan"
	"github.com/specialistvlad/annosplit/internal/testutil"
	"github.com/stretchr/testify/require"
)

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// The "-h" (help) flag should cause cli.Parse to return `shouldExit=true`.
	args := []string{"-h"}
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, args)

	// --- Assert ---
	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
	require.Equal(t, cli.ExitCodeOK, cli.ExitCode(err))
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// Providing an unknown flag will cause cli.Parse to return an error.
	args := []string{"--this-is-not-a-valid-flag"}
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, args)

	// --- Assert ---
	require.Error(t, err, "run() should return an error when argument parsing fails")
	require.Contains(t, err.Error(), "flag provided but not defined: -this-is-not-a-valid-flag")
	require.Equal(t, cli.ExitCodeUsage, cli.ExitCode(err))
}

func TestRun_MissingPathsExitWithFailure(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		args []string
	}{
		{"no arguments", []string{}},
		{"config only", []string{"-c", "cfg.ini"}},
		{"input only", []string{"-i", "a.vcf.gz"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// --- Act ---
			err := run(context.Background(), &bytes.Buffer{}, tc.args)

			// --- Assert ---
			require.ErrorContains(t, err, "path is required")
			require.Equal(t, cli.ExitCodeFailure, cli.ExitCode(err))
		})
	}
}

func TestRun_InvalidToolFile(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// A tool file with a syntax error fails before any input is touched.
	dir := t.TempDir()
	tools := filepath.Join(dir, "tools.hcl")
	require.NoError(t, os.WriteFile(tools, []byte(`tool "annotate" {`), 0o600))
	args := []string{"-i", dir, "-c", dir, "--tools", tools, "--workdir", filepath.Join(dir, "work")}

	// --- Act ---
	err := run(context.Background(), &bytes.Buffer{}, args)

	// --- Assert ---
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to parse")
	require.Equal(t, cli.ExitCodeFailure, cli.ExitCode(err))
}

func TestRun_ManyToManyExitsWithFailure(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := t.TempDir()
	inputs := filepath.Join(dir, "inputs")
	configs := filepath.Join(dir, "configs")
	require.NoError(t, os.MkdirAll(inputs, 0o755))
	require.NoError(t, os.MkdirAll(configs, 0o755))
	for _, name := range []string{"A.vcf.gz", "B.vcf.gz"} {
		testutil.WriteVCF(t, filepath.Join(inputs, name), 3)
	}
	for _, name := range []string{"c1.ini", "c2.ini"} {
		require.NoError(t, os.WriteFile(filepath.Join(configs, name), nil, 0o600))
	}
	args := []string{"-i", inputs, "-c", configs, "-o", filepath.Join(dir, "out"), "--workdir", filepath.Join(dir, "work")}

	// --- Act ---
	err := run(context.Background(), &bytes.Buffer{}, args)

	// --- Assert ---
	require.ErrorIs(t, err, plan.ErrCardinality)
	require.Equal(t, cli.ExitCodeFailure, cli.ExitCode(err))
	require.NoDirExists(t, filepath.Join(dir, "out"))
}
