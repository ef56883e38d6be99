package toolconf

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTool(t *testing.T, src, name string) *Tool {
	t.Helper()
	set, err := Parse([]byte(src), "test.hcl")
	require.NoError(t, err)
	tool, ok := set.Get(name)
	require.True(t, ok)
	return tool
}

func TestRender_BuiltinAnnotate(t *testing.T) {
	// --- Arrange ---
	set, err := Parse([]byte(DefaultHCL), DefaultFilename)
	require.NoError(t, err)
	tool, _ := set.Get(Annotate)
	vars := Vars{
		"split":  {"path": "/work/A.c1.split0000.vcf", "index": "0"},
		"config": {"path": "/cfg/c1.ini", "name": "c1"},
		"output": {"path": "/work/A.c1.split0000.annotated.vcf"},
	}

	// --- Act ---
	inv, err := tool.Render(vars)

	// --- Assert ---
	require.NoError(t, err)
	want := Invocation{
		Command: "vep",
		Args: []string{
			"--input_file", "/work/A.c1.split0000.vcf",
			"--output_file", "/work/A.c1.split0000.annotated.vcf",
			"--config", "/cfg/c1.ini",
			"--vcf", "--force_overwrite", "--no_stats",
		},
	}
	if diff := cmp.Diff(want, inv); diff != "" {
		t.Errorf("invocation mismatch (-want +got):\n%s", diff)
	}
}

func TestRender_BuiltinIndexDropsEmptyFlag(t *testing.T) {
	set, err := Parse([]byte(DefaultHCL), DefaultFilename)
	require.NoError(t, err)
	tool, _ := set.Get(Index)

	tbi, err := tool.Render(Vars{"input": {"path": "/out/A.vcf.gz"}, "index": {"type": "tbi"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"-p", "vcf", "/out/A.vcf.gz"}, tbi.Args)

	csi, err := tool.Render(Vars{"input": {"path": "/out/A.vcf.gz"}, "index": {"type": "csi"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"--csi", "-p", "vcf", "/out/A.vcf.gz"}, csi.Args)
}

func TestRender_StdoutEnvAndFunctions(t *testing.T) {
	tool := mustTool(t, `
		tool "annotate" {
			command = "annotator"
			args    = [format("--threads=%d", 2), upper(config.name)]
			env     = { CONFIG = config.path, B = "2", A = "1" }
			stdout  = join("", [output.path, ".tmp"])
		}
	`, Annotate)

	inv, err := tool.Render(Vars{
		"config": {"path": "/cfg/c1.ini", "name": "c1"},
		"output": {"path": "/work/out.vcf"},
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"--threads=2", "C1"}, inv.Args)
	assert.Equal(t, []string{"A=1", "B=2", "CONFIG=/cfg/c1.ini"}, inv.Env)
	assert.Equal(t, "/work/out.vcf.tmp", inv.Stdout)
}

func TestRender_NoArgs(t *testing.T) {
	tool := mustTool(t, `tool "annotate" { command = "true" }`, Annotate)

	inv, err := tool.Render(nil)

	require.NoError(t, err)
	assert.Equal(t, Invocation{Command: "true"}, inv)
}

func TestRender_UnknownVariable(t *testing.T) {
	tool := mustTool(t, `
		tool "annotate" {
			command = "vep"
			args    = [sample.path]
		}
	`, Annotate)

	_, err := tool.Render(Vars{"split": {"path": "/x"}})

	require.Error(t, err)
	assert.Contains(t, err.Error(), `tool "annotate" args`)
}

func TestRender_WrongType(t *testing.T) {
	tool := mustTool(t, `
		tool "annotate" {
			command = "vep"
			args    = { a = "b" }
		}
	`, Annotate)

	_, err := tool.Render(nil)

	assert.Error(t, err)
}
