// Package reduce groups split results back into logical outputs. A group is
// released exactly once, as soon as every split planned for it has reported.
package reduce

import (
	"fmt"
	"sort"
	"sync"

	"github.com/specialistvlad/annosplit/internal/model"
)

type group struct {
	input    model.InputFile
	config   model.ConfigFile
	expected int
	results  []model.TaskResult
	seen     map[int]struct{}
	released bool
}

// Reducer tracks expected versus received results per GroupKey. It is safe
// for concurrent use by dispatch workers.
type Reducer struct {
	mu     sync.Mutex
	groups map[model.GroupKey]*group
	order  []model.GroupKey
}

// New builds a Reducer from the planned tasks, which fixes how many results
// each group must receive before it is released.
func New(tasks []model.Task) *Reducer {
	r := &Reducer{groups: make(map[model.GroupKey]*group)}
	for _, task := range tasks {
		key := task.Key()
		g, ok := r.groups[key]
		if !ok {
			g = &group{input: task.Split.Input, config: task.Config, seen: make(map[int]struct{})}
			r.groups[key] = g
			r.order = append(r.order, key)
		}
		g.expected++
	}
	return r
}

// Groups returns the number of distinct output groups in the plan.
func (r *Reducer) Groups() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.groups)
}

// Add records one result. When it completes its group, the group is returned
// with results ordered by split index; otherwise Add returns nil. Results for
// unknown groups, duplicate splits and results arriving after release are
// errors.
func (r *Reducer) Add(res model.TaskResult) (*model.OutputGroup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := res.Key()
	g, ok := r.groups[key]
	if !ok {
		return nil, fmt.Errorf("result for unplanned group %s x %s", key.Input, key.Config)
	}
	if g.released {
		return nil, fmt.Errorf("result for already merged group %s x %s", key.Input, key.Config)
	}
	idx := res.Task.Split.Index
	if _, dup := g.seen[idx]; dup {
		return nil, fmt.Errorf("duplicate result for split %d of %s x %s", idx, key.Input, key.Config)
	}
	g.seen[idx] = struct{}{}
	g.results = append(g.results, res)

	if len(g.results) < g.expected {
		return nil, nil
	}

	g.released = true
	results := make([]model.TaskResult, len(g.results))
	copy(results, g.results)
	sort.Slice(results, func(i, j int) bool {
		return results[i].Task.Split.Index < results[j].Task.Split.Index
	})
	g.results = nil
	return &model.OutputGroup{Key: key, Input: g.input, Config: g.config, Results: results}, nil
}

// Verify returns an IncompleteGroupError when any group has not been
// released. It is called once dispatch reports that every task finished.
func (r *Reducer) Verify() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var short []Shortfall
	for _, key := range r.order {
		g := r.groups[key]
		if g.released {
			continue
		}
		short = append(short, Shortfall{Key: key, Expected: g.expected, Received: len(g.results)})
	}
	if len(short) == 0 {
		return nil
	}
	return &IncompleteGroupError{Groups: short}
}
