package plan

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/specialistvlad/annosplit/internal/ctxlog"
	"github.com/specialistvlad/annosplit/internal/fsutil"
	"github.com/specialistvlad/annosplit/internal/model"
)

// ExistsFunc reports whether a path exists. Errors other than "not found"
// must be returned, not folded into false.
type ExistsFunc func(path string) (bool, error)

// Pairing is one input together with every configuration it is combined with
// and the Metadata shared by each of those pairs. Naming and output directory
// are run-wide and the index type is per input, so every (input, config) pair
// under one Pairing resolves to an identical record.
type Pairing struct {
	Input    model.InputFile
	Configs  []model.ConfigFile
	Metadata model.Metadata
}

// Resolver derives Metadata for the pairs admitted by Validate.
type Resolver struct {
	card      Cardinality
	outputDir string
	exists    ExistsFunc
}

// NewResolver resolves the output directory once, relative to workingDir when
// it is not already absolute, and returns a Resolver bound to card.
func NewResolver(card Cardinality, outputDir, workingDir string, exists ExistsFunc) (*Resolver, error) {
	dir, err := ResolveOutputDir(outputDir, workingDir)
	if err != nil {
		return nil, err
	}
	if exists == nil {
		exists = fsutil.Exists
	}
	return &Resolver{card: card, outputDir: dir, exists: exists}, nil
}

// OutputDir returns the resolved absolute output directory.
func (r *Resolver) OutputDir() string {
	return r.outputDir
}

// ResolveOutputDir normalizes dir to an absolute, cleaned path.
func ResolveOutputDir(dir, workingDir string) (string, error) {
	if dir == "" {
		return "", configurationf("output directory must not be empty")
	}
	if filepath.IsAbs(dir) {
		return filepath.Clean(dir), nil
	}
	if workingDir == "" || !filepath.IsAbs(workingDir) {
		return "", configurationf("cannot resolve relative output directory %q without an absolute working directory", dir)
	}
	return filepath.Join(workingDir, dir), nil
}

// ResolveIndexType selects tbi when a .tbi sidecar sits next to the input
// and csi when it does not. A missing input is a configuration error; any
// other stat failure is returned as is rather than treated as "absent".
func ResolveIndexType(input model.InputFile, exists ExistsFunc) (model.IndexType, error) {
	ok, err := exists(input.Path)
	if err != nil {
		return "", fmt.Errorf("checking input %s: %w", input.Path, err)
	}
	if !ok {
		return "", configurationf("input file %s does not exist", input.Path)
	}

	sidecar := input.Path + model.IndexTBI.Suffix()
	ok, err = exists(sidecar)
	if err != nil {
		return "", fmt.Errorf("checking index sidecar %s: %w", sidecar, err)
	}
	if ok {
		return model.IndexTBI, nil
	}
	return model.IndexCSI, nil
}

// Resolve pairs inputs with configurations and attaches Metadata. In fan-out
// mode the single input is paired with every configuration; otherwise every
// input is paired with the single configuration. The index type is checked
// exactly once per input.
func (r *Resolver) Resolve(ctx context.Context, inputs []model.InputFile, configs []model.ConfigFile) ([]Pairing, error) {
	logger := ctxlog.FromContext(ctx)
	if len(inputs) != r.card.Inputs || len(configs) != r.card.Configs {
		return nil, fmt.Errorf("resolver was validated for %d inputs and %d configs, got %d and %d",
			r.card.Inputs, r.card.Configs, len(inputs), len(configs))
	}

	pairings := make([]Pairing, 0, len(inputs))
	for _, input := range inputs {
		index, err := ResolveIndexType(input, r.exists)
		if err != nil {
			return nil, err
		}
		md := model.Metadata{
			Naming:    r.card.Naming(),
			OutputDir: r.outputDir,
			Index:     index,
		}
		paired := make([]model.ConfigFile, len(configs))
		copy(paired, configs)
		pairings = append(pairings, Pairing{Input: input, Configs: paired, Metadata: md})
		logger.Debug("Metadata resolved.", "input", input.Path, "configs", len(paired), "naming", md.Naming, "index", md.Index)
	}
	return pairings, nil
}
