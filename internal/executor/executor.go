// Package executor dispatches planned tasks to a bounded pool of workers.
//
// Tasks are independent: the executor imposes no order between them beyond
// submitting them in plan order (FIFO) and never running more than the
// configured number at once. The first failure cancels the shared context, so
// queued tasks never start and in-flight tasks are asked to stop.
package executor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/specialistvlad/annosplit/internal/ctxlog"
	"github.com/specialistvlad/annosplit/internal/model"
	"github.com/specialistvlad/annosplit/internal/taskid"
	"golang.org/x/sync/errgroup"
)

// Runner performs the work of a single task and reports where its result was
// written.
type Runner interface {
	Run(ctx context.Context, task model.Task) (model.TaskResult, error)
}

// RunnerFunc adapts a function to the Runner interface.
type RunnerFunc func(ctx context.Context, task model.Task) (model.TaskResult, error)

// Run implements Runner.
func (f RunnerFunc) Run(ctx context.Context, task model.Task) (model.TaskResult, error) {
	return f(ctx, task)
}

// Sink receives each successful result on the worker that produced it. A
// sink error is fatal for the run, exactly like a task error.
type Sink func(ctx context.Context, res model.TaskResult) error

// Executor runs tasks with a fixed concurrency cap.
type Executor struct {
	runner      Runner
	workers     int
	taskTimeout time.Duration
}

// New creates an executor. workers below 1 are treated as 1. A positive
// taskTimeout bounds each task so a hung tool surfaces as an error instead of
// stalling its output group forever.
func New(runner Runner, workers int, taskTimeout time.Duration) *Executor {
	if workers < 1 {
		workers = 1
	}
	return &Executor{runner: runner, workers: workers, taskTimeout: taskTimeout}
}

// Execute runs every task and hands each result to sink. It returns the first
// error encountered, after all started workers have stopped.
func (e *Executor) Execute(ctx context.Context, tasks []model.Task, sink Sink) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Executor starting.", "tasks", len(tasks), "workers", e.workers)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	submitted := 0
	for _, task := range tasks {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			return e.runTask(gctx, task, sink)
		})
		submitted++
	}

	err := g.Wait()
	if err != nil {
		logger.Debug("Executor stopped early.", "submitted", submitted, "planned", len(tasks), "error", err)
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	logger.Debug("Executor finished.", "tasks", len(tasks))
	return nil
}

func (e *Executor) runTask(ctx context.Context, task model.Task, sink Sink) error {
	addr := taskid.For(task)
	ctx = ctxlog.With(ctx, "task", addr.String())
	logger := ctxlog.FromContext(ctx)

	// Another worker already failed; do not start new work.
	if err := ctx.Err(); err != nil {
		logger.Debug("Task skipped after cancellation.")
		return err
	}

	logger.Debug("Task started.", "records", task.Split.Count)
	start := time.Now()

	runCtx := ctx
	if e.taskTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, e.taskTimeout)
		defer cancel()
	}

	res, err := e.runner.Run(runCtx, task)
	if err != nil {
		switch {
		case ctx.Err() != nil:
			logger.Debug("Task cancelled.", "error", err)
		case errors.Is(runCtx.Err(), context.DeadlineExceeded):
			err = fmt.Errorf("timed out after %s: %w", e.taskTimeout, err)
			logger.Error("Task failed.", "error", err)
		default:
			logger.Error("Task failed.", "error", err)
		}
		return &TaskError{Address: addr, Task: task, Stage: StageTask, Err: err}
	}
	logger.Debug("Task finished.", "duration", time.Since(start), "result", res.Path)

	if err := sink(ctx, res); err != nil {
		logger.Error("Result handling failed.", "error", err)
		return &TaskError{Address: addr, Task: task, Stage: StageResult, Err: err}
	}
	return nil
}
