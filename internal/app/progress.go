package app

import (
	"sync"
	"sync/atomic"
)

// Pipeline phases reported by the progress endpoint.
const (
	PhaseStarting    = "starting"
	PhaseDiscovering = "discovering"
	PhasePreparing   = "preparing"
	PhasePlanning    = "planning"
	PhaseAnnotating  = "annotating"
	PhaseDone        = "done"
	PhaseFailed      = "failed"
)

// Progress counts what the current run has planned and finished. Counters are
// updated from dispatch workers.
type Progress struct {
	mu    sync.RWMutex
	phase string
	runID string

	tasksPlanned   atomic.Int64
	tasksDone      atomic.Int64
	outputsPlanned atomic.Int64
	outputsMerged  atomic.Int64
}

// ProgressSnapshot is the JSON body served on /progress.
type ProgressSnapshot struct {
	RunID          string `json:"run_id"`
	Phase          string `json:"phase"`
	TasksPlanned   int64  `json:"tasks_planned"`
	TasksDone      int64  `json:"tasks_done"`
	OutputsPlanned int64  `json:"outputs_planned"`
	OutputsMerged  int64  `json:"outputs_merged"`
}

func newProgress() *Progress {
	return &Progress{phase: PhaseStarting}
}

func (p *Progress) start(runID string) {
	p.mu.Lock()
	p.runID = runID
	p.phase = PhaseStarting
	p.mu.Unlock()
	p.tasksPlanned.Store(0)
	p.tasksDone.Store(0)
	p.outputsPlanned.Store(0)
	p.outputsMerged.Store(0)
}

func (p *Progress) setPhase(phase string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.phase = phase
}

func (p *Progress) planned(tasks, outputs int) {
	p.tasksPlanned.Store(int64(tasks))
	p.outputsPlanned.Store(int64(outputs))
}

func (p *Progress) taskDone()   { p.tasksDone.Add(1) }
func (p *Progress) outputDone() { p.outputsMerged.Add(1) }

// Snapshot returns the current counters.
func (p *Progress) Snapshot() ProgressSnapshot {
	p.mu.RLock()
	phase, runID := p.phase, p.runID
	p.mu.RUnlock()
	return ProgressSnapshot{
		RunID:          runID,
		Phase:          phase,
		TasksPlanned:   p.tasksPlanned.Load(),
		TasksDone:      p.tasksDone.Load(),
		OutputsPlanned: p.outputsPlanned.Load(),
		OutputsMerged:  p.outputsMerged.Load(),
	}
}
