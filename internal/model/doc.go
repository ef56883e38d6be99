// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package model holds the fixed-shape records that flow through an annosplit
// run: the discovered input and configuration files, the per-pair Metadata,
// the split descriptors produced for each input, and the tasks and results
// that are dispatched and reduced.
//
// # Core Concepts
//
//   - InputFile / ConfigFile: discovered once and never mutated. Every later
//     stage reads them by value.
//
//   - Metadata: derived once per (input, configuration) pair. It is a comparable
//     struct so it can take part in the grouping key used by the reducer.
//
//   - SplitDescriptor: one bounded slice of an input's records, identified by
//     its position in the splitter's ordering.
//
//   - Task / TaskResult: one split paired with one configuration, and what the
//     annotation stage produced for it.
//
//   - GroupKey / OutputGroup: the identity that recombines all splits of one
//     logical output, and the completed set of results for that identity.
//
// Nothing in this package performs I/O. The records are plain values so they
// can be copied across goroutines without synchronisation.
package model
