package executor

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/annosplit/internal/model"
	"github.com/specialistvlad/annosplit/internal/taskid"
)

// ErrTaskExecution marks a failure inside a dispatched task or while handling
// its result.
var ErrTaskExecution = errors.New("task execution error")

// Stage names the part of a task's life that failed.
type Stage string

const (
	// StageTask covers extraction and annotation of the split.
	StageTask Stage = "task"
	// StageResult covers grouping and merging after the task finished.
	StageResult Stage = "result"
)

// TaskError carries enough context (input, configuration, split) to diagnose
// a failed task.
type TaskError struct {
	Address taskid.Address
	Task    model.Task
	Stage   Stage
	Err     error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("%s: %s failed for %s (input %s, config %s, split %d): %v",
		ErrTaskExecution.Error(), e.Stage, e.Address, e.Task.Split.Input.Path, e.Task.Config.Path, e.Task.Split.Index, e.Err)
}

// Is matches ErrTaskExecution.
func (e *TaskError) Is(target error) bool { return target == ErrTaskExecution }

func (e *TaskError) Unwrap() error { return e.Err }
