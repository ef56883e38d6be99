// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the units that move through dispatch: SplitDescriptor,
// Task and TaskResult.
//
// A Task never observes another Task. Everything it needs (its split, its
// configuration and the pair's Metadata) is carried by value, and everything
// it produces is written to a location owned by that Task alone.

package model

// SplitDescriptor is one bounded slice of an input's data records. Records
// are addressed by their zero-based ordinal among the non-header lines.
type SplitDescriptor struct {
	Input InputFile
	// Index is the position of the split in the splitter's ordering.
	Index int
	// Start is the ordinal of the first record in the split.
	Start int64
	// Count is the number of records in the split. It is zero only for the
	// single placeholder split of an input without records.
	Count int64
}

// End returns the ordinal one past the split's last record.
func (s SplitDescriptor) End() int64 {
	return s.Start + s.Count
}

// Task is one split paired with one configuration.
type Task struct {
	Split    SplitDescriptor
	Config   ConfigFile
	Metadata Metadata
}

// Key returns the grouping key shared by every split of this task's output.
func (t Task) Key() GroupKey {
	return GroupKey{
		Input:    t.Split.Input.ID(),
		Config:   t.Config.ID(),
		Metadata: t.Metadata,
	}
}

// TaskResult is what the annotation stage produced for one Task.
type TaskResult struct {
	Task Task
	// Path is the location of the annotated split file.
	Path string
}

// Key returns the grouping key of the originating task.
func (r TaskResult) Key() GroupKey {
	return r.Task.Key()
}
