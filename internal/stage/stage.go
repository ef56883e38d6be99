package stage

import (
	"context"

	"github.com/specialistvlad/annosplit/internal/model"
)

// Preparer validates an input and makes sure it is compressed and indexed.
// It may return a different path when the prepared copy lives elsewhere.
type Preparer interface {
	Prepare(ctx context.Context, input model.InputFile) (model.InputFile, error)
}

// Splitter decides split boundaries. Descriptors are ordered by Index and
// cover every record of the input exactly once.
type Splitter interface {
	Split(ctx context.Context, input model.InputFile, binSize int) ([]model.SplitDescriptor, error)
}

// Extractor materializes one split as a standalone VCF at dest.
type Extractor interface {
	Extract(ctx context.Context, split model.SplitDescriptor, dest string) error
}

// Annotator runs the annotation tool over one extracted split.
type Annotator interface {
	Annotate(ctx context.Context, task model.Task, splitPath, dest string) error
}

// Merger concatenates the annotated parts of one output, in the given order,
// into dest and indexes the result.
type Merger interface {
	Merge(ctx context.Context, parts []string, dest string, index model.IndexType) error
}
