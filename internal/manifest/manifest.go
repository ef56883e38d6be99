// Package manifest records what a run planned and produced in a YAML file in
// the run's work directory. The manifest is rewritten at the end of the run,
// successful or not, so a failed run can be inspected afterwards.
package manifest

import (
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/specialistvlad/annosplit/internal/model"
	"github.com/specialistvlad/annosplit/internal/taskid"
	"gopkg.in/yaml.v3"
)

// Filename is the manifest's name inside the work directory.
const Filename = "manifest.yaml"

// Version is the manifest schema version.
const Version = 1

// Status of a run.
const (
	StatusRunning   = "running"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// Cardinality summarizes the discovered input and configuration counts.
type Cardinality struct {
	Inputs  int    `yaml:"inputs"`
	Configs int    `yaml:"configs"`
	Naming  string `yaml:"naming"`
}

// Task is one planned task and, once it succeeded, its result.
type Task struct {
	ID     string `yaml:"id"`
	Input  string `yaml:"input"`
	Config string `yaml:"config"`
	Split  int    `yaml:"split"`
	Start  int64  `yaml:"start"`
	Count  int64  `yaml:"count"`
	Result string `yaml:"result,omitempty"`
}

// Output is one final merged file.
type Output struct {
	Input  string `yaml:"input"`
	Config string `yaml:"config"`
	Path   string `yaml:"path"`
	Index  string `yaml:"index"`
	Splits int    `yaml:"splits"`
	Merged bool   `yaml:"merged"`
}

// Manifest is the document written to Filename.
type Manifest struct {
	Version     int         `yaml:"version"`
	RunID       string      `yaml:"run_id"`
	Status      string      `yaml:"status"`
	Error       string      `yaml:"error,omitempty"`
	StartedAt   time.Time   `yaml:"started_at"`
	FinishedAt  *time.Time  `yaml:"finished_at,omitempty"`
	BinSize     int         `yaml:"bin_size"`
	Cardinality Cardinality `yaml:"cardinality"`
	Tasks       []Task      `yaml:"tasks"`
	Outputs     []Output    `yaml:"outputs"`
}

// Recorder builds a Manifest while the run progresses. It is safe for
// concurrent use.
type Recorder struct {
	mu      sync.Mutex
	doc     Manifest
	tasks   map[string]int
	outputs map[model.GroupKey]int
}

// NewRecorder starts a manifest for the given run.
func NewRecorder(runID string, startedAt time.Time, binSize int) *Recorder {
	return &Recorder{
		doc: Manifest{
			Version:   Version,
			RunID:     runID,
			Status:    StatusRunning,
			StartedAt: startedAt.UTC(),
			BinSize:   binSize,
		},
		tasks:   make(map[string]int),
		outputs: make(map[model.GroupKey]int),
	}
}

// SetCardinality records the discovered counts and naming mode.
func (r *Recorder) SetCardinality(inputs, configs int, naming model.NamingMode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.doc.Cardinality = Cardinality{Inputs: inputs, Configs: configs, Naming: string(naming)}
}

// SetPlan records every planned task and the output each group will produce.
func (r *Recorder) SetPlan(tasks []model.Task, outputs map[model.GroupKey]string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	splits := make(map[model.GroupKey]int)
	r.doc.Tasks = make([]Task, len(tasks))
	for i, task := range tasks {
		id := taskid.For(task).String()
		r.tasks[id] = i
		r.doc.Tasks[i] = Task{
			ID:     id,
			Input:  task.Split.Input.Path,
			Config: task.Config.Path,
			Split:  task.Split.Index,
			Start:  task.Split.Start,
			Count:  task.Split.Count,
		}
		splits[task.Key()]++
	}

	keys := make([]model.GroupKey, 0, len(outputs))
	for key := range outputs {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return outputs[keys[i]] < outputs[keys[j]] })

	r.doc.Outputs = make([]Output, len(keys))
	for i, key := range keys {
		r.outputs[key] = i
		r.doc.Outputs[i] = Output{
			Input:  key.Input,
			Config: key.Config,
			Path:   outputs[key],
			Index:  string(key.Metadata.Index),
			Splits: splits[key],
		}
	}
}

// TaskDone records the result path of a finished task.
func (r *Recorder) TaskDone(res model.TaskResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i, ok := r.tasks[taskid.For(res.Task).String()]; ok {
		r.doc.Tasks[i].Result = res.Path
	}
}

// OutputMerged marks the output of key as written.
func (r *Recorder) OutputMerged(key model.GroupKey) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i, ok := r.outputs[key]; ok {
		r.doc.Outputs[i].Merged = true
	}
}

// Finish sets the final status from the run's error.
func (r *Recorder) Finish(finishedAt time.Time, runErr error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := finishedAt.UTC()
	r.doc.FinishedAt = &t
	if runErr != nil {
		r.doc.Status = StatusFailed
		r.doc.Error = runErr.Error()
		return
	}
	r.doc.Status = StatusSucceeded
	r.doc.Error = ""
}

// Snapshot returns a copy of the manifest as recorded so far.
func (r *Recorder) Snapshot() Manifest {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc := r.doc
	doc.Tasks = append([]Task(nil), r.doc.Tasks...)
	doc.Outputs = append([]Output(nil), r.doc.Outputs...)
	return doc
}

// Write serializes the manifest to path.
func (r *Recorder) Write(path string) error {
	data, err := yaml.Marshal(r.Snapshot())
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing manifest %s: %w", path, err)
	}
	return nil
}

// Read loads a manifest written by Write.
func Read(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}
	var doc Manifest
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding manifest %s: %w", path, err)
	}
	if doc.Version != Version {
		return nil, fmt.Errorf("manifest %s has unsupported version %d", path, doc.Version)
	}
	if err := doc.validate(); err != nil {
		return nil, fmt.Errorf("manifest %s: %w", path, err)
	}
	return &doc, nil
}

// validate checks that task identifiers and index types read back from disk
// are well formed.
func (m *Manifest) validate() error {
	for _, task := range m.Tasks {
		addr, err := taskid.Parse(task.ID)
		if err != nil {
			return fmt.Errorf("task %q: %w", task.ID, err)
		}
		if addr.Split != task.Split {
			return fmt.Errorf("task %q records split %d", task.ID, task.Split)
		}
	}
	for _, out := range m.Outputs {
		if _, err := model.ParseIndexType(out.Index); err != nil {
			return fmt.Errorf("output %s: %w", out.Path, err)
		}
	}
	return nil
}

// Pending returns the tasks that have no result yet.
func (m *Manifest) Pending() []Task {
	var pending []Task
	for _, task := range m.Tasks {
		if task.Result == "" {
			pending = append(pending, task)
		}
	}
	return pending
}
