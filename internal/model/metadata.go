// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines Metadata, the record attached to every (input,
// configuration) pair, together with its two enumerations.
//
// Metadata is computed once, before any task exists, and is then copied
// unchanged into every task derived from the pair. Because all of its fields
// are strings it is comparable, which lets the reducer use it directly as part
// of a map key.

package model

import "fmt"

// NamingMode decides whether output names carry the configuration identity.
type NamingMode string

const (
	// NamingSingle is used when each input pairs with exactly one configuration.
	NamingSingle NamingMode = "single"
	// NamingFanOut is used when one input pairs with several configurations.
	NamingFanOut NamingMode = "fan-out"
)

// IndexType is the index format associated with an input.
type IndexType string

const (
	IndexTBI IndexType = "tbi"
	IndexCSI IndexType = "csi"
)

// Suffix returns the sidecar file suffix for the index type, e.g. ".tbi".
func (t IndexType) Suffix() string {
	return "." + string(t)
}

// ParseIndexType converts a stored index type, such as one read back from a
// run manifest, into an IndexType.
func ParseIndexType(s string) (IndexType, error) {
	switch IndexType(s) {
	case IndexTBI, IndexCSI:
		return IndexType(s), nil
	default:
		return "", fmt.Errorf("unknown index type %q: must be 'tbi' or 'csi'", s)
	}
}

// Metadata is the fixed-shape record derived for one (input, configuration)
// pair.
type Metadata struct {
	Naming    NamingMode
	OutputDir string
	Index     IndexType
}
