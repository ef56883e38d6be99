package executor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/specialistvlad/annosplit/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeTasks(n int) []model.Task {
	in := model.InputFile{Path: "/data/A.vcf.gz"}
	tasks := make([]model.Task, n)
	for i := range tasks {
		tasks[i] = model.Task{
			Split:  model.SplitDescriptor{Input: in, Index: i, Start: int64(i * 10), Count: 10},
			Config: model.ConfigFile{Path: "/cfg/cfg.ini"},
		}
	}
	return tasks
}

func echoRunner() RunnerFunc {
	return func(_ context.Context, task model.Task) (model.TaskResult, error) {
		return model.TaskResult{Task: task, Path: fmt.Sprintf("/work/%d", task.Split.Index)}, nil
	}
}

type collector struct {
	mu      sync.Mutex
	results []model.TaskResult
}

func (c *collector) sink(_ context.Context, res model.TaskResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = append(c.results, res)
	return nil
}

func TestExecute_DeliversEveryResult(t *testing.T) {
	// --- Arrange ---
	tasks := makeTasks(25)
	c := &collector{}
	exec := New(echoRunner(), 4, 0)

	// --- Act ---
	err := exec.Execute(context.Background(), tasks, c.sink)

	// --- Assert ---
	require.NoError(t, err)
	require.Len(t, c.results, 25)
	seen := make(map[int]bool)
	for _, res := range c.results {
		seen[res.Task.Split.Index] = true
		assert.Equal(t, fmt.Sprintf("/work/%d", res.Task.Split.Index), res.Path)
	}
	assert.Len(t, seen, 25)
}

func TestExecute_RespectsWorkerCap(t *testing.T) {
	// --- Arrange ---
	var running, peak int32
	runner := RunnerFunc(func(_ context.Context, task model.Task) (model.TaskResult, error) {
		n := atomic.AddInt32(&running, 1)
		for {
			old := atomic.LoadInt32(&peak)
			if n <= old || atomic.CompareAndSwapInt32(&peak, old, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt32(&running, -1)
		return model.TaskResult{Task: task}, nil
	})
	exec := New(runner, 3, 0)

	// --- Act ---
	err := exec.Execute(context.Background(), makeTasks(12), func(context.Context, model.TaskResult) error { return nil })

	// --- Assert ---
	require.NoError(t, err)
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(3))
	assert.GreaterOrEqual(t, atomic.LoadInt32(&peak), int32(1))
}

func TestExecute_FailFastStopsQueuedTasks(t *testing.T) {
	// --- Arrange ---
	boom := errors.New("annotation tool exited with status 1")
	var started int32
	runner := RunnerFunc(func(_ context.Context, task model.Task) (model.TaskResult, error) {
		atomic.AddInt32(&started, 1)
		if task.Split.Index == 3 {
			return model.TaskResult{}, boom
		}
		return model.TaskResult{Task: task}, nil
	})
	c := &collector{}
	exec := New(runner, 1, 0)

	// --- Act ---
	err := exec.Execute(context.Background(), makeTasks(10), c.sink)

	// --- Assert ---
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTaskExecution)
	assert.ErrorIs(t, err, boom)

	var taskErr *TaskError
	require.ErrorAs(t, err, &taskErr)
	assert.Equal(t, 3, taskErr.Task.Split.Index)
	assert.Equal(t, StageTask, taskErr.Stage)
	assert.Contains(t, err.Error(), "A/cfg/split[3]")

	assert.Equal(t, int32(4), atomic.LoadInt32(&started), "tasks queued behind the failure never start")
	assert.Len(t, c.results, 3)
}

func TestExecute_CancelsInFlightTasks(t *testing.T) {
	// --- Arrange ---
	release := make(chan struct{})
	var cancelled int32
	runner := RunnerFunc(func(ctx context.Context, task model.Task) (model.TaskResult, error) {
		if task.Split.Index == 0 {
			<-release
			return model.TaskResult{}, errors.New("split 0 failed")
		}
		select {
		case <-ctx.Done():
			atomic.AddInt32(&cancelled, 1)
			return model.TaskResult{}, ctx.Err()
		case <-time.After(5 * time.Second):
			return model.TaskResult{Task: task}, nil
		}
	})
	exec := New(runner, 3, 0)

	// --- Act ---
	done := make(chan error, 1)
	go func() {
		done <- exec.Execute(context.Background(), makeTasks(3), func(context.Context, model.TaskResult) error { return nil })
	}()
	time.Sleep(20 * time.Millisecond)
	close(release)

	// --- Assert ---
	select {
	case err := <-done:
		require.Error(t, err)
		assert.Contains(t, err.Error(), "split 0 failed")
	case <-time.After(3 * time.Second):
		t.Fatal("executor did not stop after a task failure")
	}
	assert.Equal(t, int32(2), atomic.LoadInt32(&cancelled))
}

func TestExecute_SinkErrorIsFatal(t *testing.T) {
	exec := New(echoRunner(), 2, 0)
	sinkErr := errors.New("merge failed")

	err := exec.Execute(context.Background(), makeTasks(4), func(_ context.Context, res model.TaskResult) error {
		if res.Task.Split.Index == 1 {
			return sinkErr
		}
		return nil
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, sinkErr)
	var taskErr *TaskError
	require.ErrorAs(t, err, &taskErr)
	assert.Equal(t, StageResult, taskErr.Stage)
}

func TestExecute_TaskTimeout(t *testing.T) {
	runner := RunnerFunc(func(ctx context.Context, task model.Task) (model.TaskResult, error) {
		<-ctx.Done()
		return model.TaskResult{}, ctx.Err()
	})
	exec := New(runner, 1, 30*time.Millisecond)

	err := exec.Execute(context.Background(), makeTasks(1), func(context.Context, model.TaskResult) error { return nil })

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, err.Error(), "timed out after 30ms")
}

func TestExecute_NoTasks(t *testing.T) {
	exec := New(echoRunner(), 0, 0)

	err := exec.Execute(context.Background(), nil, func(context.Context, model.TaskResult) error {
		t.Fatal("sink must not be called")
		return nil
	})

	assert.NoError(t, err)
}
