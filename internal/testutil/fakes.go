package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/specialistvlad/annosplit/internal/model"
)

// CountSplitter is a fake splitter that partitions inputs by a known record
// count instead of reading them.
type CountSplitter struct {
	// Records maps an input path to its number of records.
	Records map[string]int64

	mu    sync.Mutex
	Calls []string
}

// Split implements plan.Splitter.
func (s *CountSplitter) Split(_ context.Context, input model.InputFile, binSize int) ([]model.SplitDescriptor, error) {
	s.mu.Lock()
	s.Calls = append(s.Calls, input.Path)
	s.mu.Unlock()

	total, ok := s.Records[input.Path]
	if !ok {
		return nil, fmt.Errorf("no record count for %s", input.Path)
	}

	var splits []model.SplitDescriptor
	for start, i := int64(0), 0; start < total; start, i = start+int64(binSize), i+1 {
		count := int64(binSize)
		if start+count > total {
			count = total - start
		}
		splits = append(splits, model.SplitDescriptor{Input: input, Index: i, Start: start, Count: count})
	}
	return splits, nil
}
