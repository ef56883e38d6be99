package stage

import (
	"context"
	"fmt"

	"github.com/specialistvlad/annosplit/internal/ctxlog"
	"github.com/specialistvlad/annosplit/internal/model"
)

// VCFSplitter partitions an input into bins of at most binSize data records.
// It reads the input once to count records; extraction happens later, per
// task.
type VCFSplitter struct{}

// Split implements Splitter. An input without records yields no descriptors.
func (VCFSplitter) Split(ctx context.Context, input model.InputFile, binSize int) ([]model.SplitDescriptor, error) {
	if binSize < 1 {
		return nil, fmt.Errorf("bin size must be positive, got %d", binSize)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	total, err := countRecords(input.Path)
	if err != nil {
		return nil, fmt.Errorf("counting records in %s: %w", input.Path, err)
	}

	bin := int64(binSize)
	splits := make([]model.SplitDescriptor, 0, (total+bin-1)/bin)
	for start := int64(0); start < total; start += bin {
		count := min(bin, total-start)
		splits = append(splits, model.SplitDescriptor{
			Input: input,
			Index: len(splits),
			Start: start,
			Count: count,
		})
	}

	ctxlog.FromContext(ctx).Debug("Input split.", "input", input.Path, "records", total, "splits", len(splits))
	return splits, nil
}
