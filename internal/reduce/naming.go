package reduce

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/specialistvlad/annosplit/internal/model"
)

// OutputExt is appended to every final output name.
const OutputExt = ".vcf.gz"

// OutputName derives the final file name of a group. The configuration stem
// appears only in fan-out mode.
func OutputName(prefix string, input model.InputFile, config model.ConfigFile, md model.Metadata) string {
	name := prefix + input.Stem()
	if md.Naming == model.NamingFanOut {
		name += "." + config.Stem()
	}
	return name + OutputExt
}

// ErrOutputCollision marks two groups, or a group and an input, resolving to
// the same output path.
var ErrOutputCollision = errors.New("output path collision")

// Outputs computes the output path of every planned group and rejects plans
// in which two groups would write the same file or a group would overwrite
// one of the inputs. protected lists further paths that must not be
// overwritten, such as the original location of a prepared input.
func Outputs(prefix string, tasks []model.Task, protected ...string) (map[model.GroupKey]string, error) {
	inputs := make(map[string]struct{})
	for _, task := range tasks {
		inputs[filepath.Clean(task.Split.Input.Path)] = struct{}{}
	}
	for _, p := range protected {
		inputs[filepath.Clean(p)] = struct{}{}
	}

	paths := make(map[model.GroupKey]string)
	owners := make(map[string]model.GroupKey)
	for _, task := range tasks {
		key := task.Key()
		if _, done := paths[key]; done {
			continue
		}
		md := task.Metadata
		path := filepath.Join(md.OutputDir, OutputName(prefix, task.Split.Input, task.Config, md))
		if _, clash := inputs[path]; clash {
			return nil, fmt.Errorf("%w: output %s would overwrite an input; set a prefix or another output directory", ErrOutputCollision, path)
		}
		if other, clash := owners[path]; clash {
			return nil, fmt.Errorf("%w: %s is produced by both %s x %s and %s x %s",
				ErrOutputCollision, path, other.Input, other.Config, key.Input, key.Config)
		}
		owners[path] = key
		paths[key] = path
	}
	return paths, nil
}

// CheckNames runs the collision checks of Outputs on names alone, before any
// split exists. Every input is paired with every configuration, which is the
// full set of pairs once cardinality has been validated.
func CheckNames(prefix string, naming model.NamingMode, outputDir string, inputs []model.InputFile, configs []model.ConfigFile) error {
	md := model.Metadata{Naming: naming, OutputDir: outputDir}
	tasks := make([]model.Task, 0, len(inputs)*len(configs))
	for _, input := range inputs {
		for _, config := range configs {
			tasks = append(tasks, model.Task{Split: model.SplitDescriptor{Input: input}, Config: config, Metadata: md})
		}
	}
	_, err := Outputs(prefix, tasks)
	return err
}
