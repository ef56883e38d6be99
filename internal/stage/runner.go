package stage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/specialistvlad/annosplit/internal/ctxlog"
	"github.com/specialistvlad/annosplit/internal/model"
	"github.com/specialistvlad/annosplit/internal/taskid"
)

// TaskRunner carries one task through extraction and annotation. Every file
// it writes is named after the task's address, so concurrent tasks never
// share a path.
type TaskRunner struct {
	extractor  Extractor
	annotator  Annotator
	workDir    string
	keepSplits bool
}

// NewTaskRunner creates a runner writing under workDir. Extracted splits are
// deleted once annotated unless keepSplits is set.
func NewTaskRunner(extractor Extractor, annotator Annotator, workDir string, keepSplits bool) *TaskRunner {
	return &TaskRunner{
		extractor:  extractor,
		annotator:  annotator,
		workDir:    workDir,
		keepSplits: keepSplits,
	}
}

// SplitPath returns where the extracted split of task is written.
func (r *TaskRunner) SplitPath(task model.Task) string {
	return filepath.Join(r.workDir, "splits", taskid.For(task).FileName()+".vcf")
}

// ResultPath returns where the annotated split of task is written.
func (r *TaskRunner) ResultPath(task model.Task) string {
	return filepath.Join(r.workDir, "annotated", taskid.For(task).FileName()+".vcf")
}

// Run implements executor.Runner.
func (r *TaskRunner) Run(ctx context.Context, task model.Task) (model.TaskResult, error) {
	logger := ctxlog.FromContext(ctx)
	splitPath := r.SplitPath(task)
	resultPath := r.ResultPath(task)

	if err := os.MkdirAll(filepath.Dir(resultPath), 0o755); err != nil {
		return model.TaskResult{}, err
	}

	if err := r.extractor.Extract(ctx, task.Split, splitPath); err != nil {
		return model.TaskResult{}, fmt.Errorf("extracting split: %w", err)
	}
	logger.Debug("Split extracted.", "path", splitPath)

	if err := r.annotator.Annotate(ctx, task, splitPath, resultPath); err != nil {
		return model.TaskResult{}, fmt.Errorf("annotating split: %w", err)
	}

	got, err := countRecords(resultPath)
	if err != nil {
		return model.TaskResult{}, fmt.Errorf("reading annotated split: %w", err)
	}
	if got != task.Split.Count {
		return model.TaskResult{}, fmt.Errorf("annotated split has %d records, expected %d", got, task.Split.Count)
	}
	logger.Debug("Split annotated.", "path", resultPath)

	if !r.keepSplits {
		if err := os.Remove(splitPath); err != nil {
			logger.Warn("Could not remove extracted split.", "path", splitPath, "error", err)
		}
	}
	return model.TaskResult{Task: task, Path: resultPath}, nil
}
