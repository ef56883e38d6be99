// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the grouping identity used to recombine split results.
//
// The key deliberately has no split index: its whole purpose is to collect
// every split of the same logical output under one entry.

package model

// GroupKey identifies one logical output. It is compared by value.
type GroupKey struct {
	Input    string
	Config   string
	Metadata Metadata
}

// OutputGroup is the complete set of results for one GroupKey, ordered by
// split index.
type OutputGroup struct {
	Key     GroupKey
	Input   InputFile
	Config  ConfigFile
	Results []TaskResult
}

// Parts returns the annotated split paths in split order.
func (g OutputGroup) Parts() []string {
	parts := make([]string, len(g.Results))
	for i, r := range g.Results {
		parts[i] = r.Path
	}
	return parts
}
