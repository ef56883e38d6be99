package toolconf

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_BuiltinDefaults(t *testing.T) {
	set, err := Load(context.Background(), "")

	require.NoError(t, err)
	assert.Equal(t, []string{Annotate, Compress, Index}, set.Names())
	annotate, ok := set.Get(Annotate)
	require.True(t, ok)
	assert.Equal(t, "vep", annotate.Command)
}

func TestLoad_FromFile(t *testing.T) {
	// --- Arrange ---
	hcl := `
		tool "annotate" {
			command = "snpEff"
			args    = ["ann", "-c", config.path, split.path]
			stdout  = output.path
		}
	`
	path := filepath.Join(t.TempDir(), "tools.hcl")
	require.NoError(t, os.WriteFile(path, []byte(hcl), 0600))

	// --- Act ---
	set, err := Load(context.Background(), path)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, []string{Annotate}, set.Names())
	_, ok := set.Get(Index)
	assert.False(t, ok)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "missing.hcl"))

	assert.Error(t, err)
}

func TestParse_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		hcl     string
		wantErr string
	}{
		{
			name:    "syntax error",
			hcl:     `tool "annotate" {`,
			wantErr: "failed to parse",
		},
		{
			name:    "annotate missing",
			hcl:     `tool "index" { command = "tabix" }`,
			wantErr: `tool "annotate" is required`,
		},
		{
			name:    "unknown tool",
			hcl:     `tool "annotate" { command = "vep" } ` + "\n" + `tool "sort" { command = "sort" }`,
			wantErr: `unknown tool "sort"`,
		},
		{
			name:    "duplicate tool",
			hcl:     `tool "annotate" { command = "vep" }` + "\n" + `tool "annotate" { command = "vep" }`,
			wantErr: "more than once",
		},
		{
			name:    "empty command",
			hcl:     `tool "annotate" { command = "" }`,
			wantErr: "empty command",
		},
		{
			name:    "unexpected top-level block",
			hcl:     `tool "annotate" { command = "vep" }` + "\n" + `step "x" {}`,
			wantErr: "failed to decode",
		},
		{
			name:    "missing command",
			hcl:     `tool "annotate" { args = [] }`,
			wantErr: "failed to decode",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.hcl), "test.hcl")

			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
