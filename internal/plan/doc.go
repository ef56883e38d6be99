// Package plan turns discovered files into an ordered list of tasks. It is the
// part of a run that must finish, single-threaded and in full, before any task
// is dispatched:
//
//  1. Validate checks the input/configuration cardinality and freezes the
//     fan-out decision into a Cardinality value.
//  2. Resolver derives one Metadata record per (input, configuration) pair.
//  3. Planner asks a Splitter for each input's split boundaries and expands
//     every split into one Task per paired configuration.
//
// Nothing here runs concurrently, and nothing here holds package-level state;
// every decision is passed forward explicitly.
package plan
