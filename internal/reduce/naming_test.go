package reduce

import (
	"testing"

	"github.com/specialistvlad/annosplit/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputName(t *testing.T) {
	in := model.InputFile{Path: "/data/A.vcf.gz"}
	cfg := model.ConfigFile{Path: "/cfg/c1.ini"}

	single := model.Metadata{Naming: model.NamingSingle, OutputDir: "/out"}
	fan := model.Metadata{Naming: model.NamingFanOut, OutputDir: "/out"}

	assert.Equal(t, "A.vcf.gz", OutputName("", in, cfg, single))
	assert.Equal(t, "annotated_A.vcf.gz", OutputName("annotated_", in, cfg, single))
	assert.Equal(t, "A.c1.vcf.gz", OutputName("", in, cfg, fan))
	assert.NotContains(t, OutputName("", in, cfg, single), "c1")
}

func TestOutputs_FanOutNamesAreDistinct(t *testing.T) {
	md := model.Metadata{Naming: model.NamingFanOut, OutputDir: "/out", Index: model.IndexCSI}
	tasks := planTasks("/data/A.vcf.gz", 3, md, "/cfg/c1.ini", "/cfg/c2.ini")

	paths, err := Outputs("", tasks)

	require.NoError(t, err)
	require.Len(t, paths, 2)
	var names []string
	for _, p := range paths {
		names = append(names, p)
	}
	assert.ElementsMatch(t, []string{"/out/A.c1.vcf.gz", "/out/A.c2.vcf.gz"}, names)
}

func TestOutputs_ManyToOneOmitsConfig(t *testing.T) {
	md := model.Metadata{Naming: model.NamingSingle, OutputDir: "/out", Index: model.IndexTBI}
	tasks := append(planTasks("/data/A.vcf.gz", 2, md, "/cfg/cfg.ini"), planTasks("/data/B.vcf.gz", 1, md, "/cfg/cfg.ini")...)

	paths, err := Outputs("", tasks)

	require.NoError(t, err)
	for _, p := range paths {
		assert.NotContains(t, p, "cfg")
	}
	assert.Len(t, paths, 2)
}

func TestOutputs_RejectsCollisions(t *testing.T) {
	md := model.Metadata{Naming: model.NamingSingle, OutputDir: "/data", Index: model.IndexTBI}

	// Output directory equals the input directory and there is no prefix.
	_, err := Outputs("", planTasks("/data/A.vcf.gz", 1, md, "/cfg/cfg.ini"))
	assert.ErrorIs(t, err, ErrOutputCollision)
	assert.ErrorContains(t, err, "set a prefix or another output directory")

	// Two inputs share a stem.
	md.OutputDir = "/out"
	tasks := append(planTasks("/data/A.vcf.gz", 1, md, "/cfg/cfg.ini"), planTasks("/data/A.vcf", 1, md, "/cfg/cfg.ini")...)
	_, err = Outputs("", tasks)
	assert.ErrorIs(t, err, ErrOutputCollision)
}

func TestOutputs_ProtectedPaths(t *testing.T) {
	md := model.Metadata{Naming: model.NamingSingle, OutputDir: "/data", Index: model.IndexTBI}
	// The task reads a prepared copy, but the user's original file sits where
	// the output would go.
	tasks := planTasks("/work/prepared/A.vcf.gz", 1, md, "/cfg/cfg.ini")

	_, err := Outputs("", tasks)
	require.NoError(t, err)

	_, err = Outputs("", tasks, "/data/A.vcf.gz")
	assert.ErrorIs(t, err, ErrOutputCollision)
}

func TestCheckNames(t *testing.T) {
	inputs := []model.InputFile{{Path: "/data/A.vcf.gz"}, {Path: "/data/A.vcf"}}
	configs := []model.ConfigFile{{Path: "/cfg/cfg.ini"}}

	// Both inputs would write /out/A.vcf.gz.
	err := CheckNames("", model.NamingSingle, "/out", inputs, configs)
	assert.ErrorIs(t, err, ErrOutputCollision)

	err = CheckNames("", model.NamingSingle, "/out", inputs[:1], configs)
	assert.NoError(t, err)

	// Fan-out with the output directory next to the input.
	fan := []model.ConfigFile{{Path: "/cfg/c1.ini"}, {Path: "/cfg/c2.ini"}}
	assert.NoError(t, CheckNames("", model.NamingFanOut, "/data", inputs[:1], fan))
	assert.ErrorIs(t, CheckNames("", model.NamingSingle, "/data", inputs[:1], configs), ErrOutputCollision)
}
