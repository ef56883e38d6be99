package plan

import (
	"context"
	"fmt"

	"github.com/specialistvlad/annosplit/internal/ctxlog"
	"github.com/specialistvlad/annosplit/internal/model"
)

// DefaultBinSize is the number of records per split when none is configured.
const DefaultBinSize = 100

// Splitter supplies the split boundaries of one input. Descriptors must be
// ordered by Index, start at record 0 and cover every record exactly once.
type Splitter interface {
	Split(ctx context.Context, input model.InputFile, binSize int) ([]model.SplitDescriptor, error)
}

// Planner expands pairings into tasks.
type Planner struct {
	splitter Splitter
	binSize  int
}

// NewPlanner returns a Planner that requests splits of at most binSize records.
func NewPlanner(splitter Splitter, binSize int) (*Planner, error) {
	if splitter == nil {
		return nil, fmt.Errorf("nil splitter")
	}
	if binSize < 1 {
		return nil, configurationf("bin size must be at least 1, got %d", binSize)
	}
	return &Planner{splitter: splitter, binSize: binSize}, nil
}

// Plan returns one task per (split, paired configuration). Tasks are ordered
// by input, then split index, then configuration, so the list is
// deterministic for a given set of pairings.
func (p *Planner) Plan(ctx context.Context, pairings []Pairing) ([]model.Task, error) {
	logger := ctxlog.FromContext(ctx)

	var tasks []model.Task
	for _, pairing := range pairings {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		splits, err := p.splitter.Split(ctx, pairing.Input, p.binSize)
		if err != nil {
			return nil, fmt.Errorf("splitting %s: %w", pairing.Input.Path, err)
		}
		splits, err = checkSplits(pairing.Input, splits, p.binSize)
		if err != nil {
			return nil, err
		}

		for _, split := range splits {
			for _, cfg := range pairing.Configs {
				tasks = append(tasks, model.Task{Split: split, Config: cfg, Metadata: pairing.Metadata})
			}
		}
		logger.Info("Input planned.", "input", pairing.Input.Path, "splits", len(splits), "configs", len(pairing.Configs))
	}

	logger.Debug("Planning complete.", "tasks", len(tasks))
	return tasks, nil
}

// checkSplits enforces the splitter contract. An input without records yields
// a single empty split so its header-only output is still produced.
func checkSplits(input model.InputFile, splits []model.SplitDescriptor, binSize int) ([]model.SplitDescriptor, error) {
	if len(splits) == 0 {
		return []model.SplitDescriptor{{Input: input, Index: 0, Start: 0, Count: 0}}, nil
	}

	var next int64
	for i, split := range splits {
		if split.Input.ID() != input.ID() {
			return nil, splitf("split %d of %s belongs to %s", i, input.Path, split.Input.Path)
		}
		if split.Index != i {
			return nil, splitf("split %d of %s has index %d", i, input.Path, split.Index)
		}
		if split.Start != next {
			return nil, splitf("split %d of %s starts at record %d, expected %d", i, input.Path, split.Start, next)
		}
		if split.Count < 1 || split.Count > int64(binSize) {
			return nil, splitf("split %d of %s has %d records, bin size is %d", i, input.Path, split.Count, binSize)
		}
		next = split.End()
	}
	return splits, nil
}
