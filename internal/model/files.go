// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the two discovered file kinds, InputFile and ConfigFile,
// and the stem rules used to name outputs after them.

package model

import (
	"path/filepath"
	"strings"
)

// vcfSuffixes are stripped, longest first, when deriving an input stem.
var vcfSuffixes = []string{".vcf.gz", ".vcf.bgz", ".vcf"}

// InputFile is a variant-data file to be annotated, plus its index sidecar.
// Index is empty until the preparation stage has located or built one.
type InputFile struct {
	Path  string
	Index string
}

// ID returns the identity used in grouping keys and task addresses.
func (f InputFile) ID() string {
	return f.Path
}

// Stem is the base name with the VCF suffix removed ("A.vcf.gz" -> "A").
func (f InputFile) Stem() string {
	base := filepath.Base(f.Path)
	for _, suffix := range vcfSuffixes {
		if strings.HasSuffix(base, suffix) && len(base) > len(suffix) {
			return strings.TrimSuffix(base, suffix)
		}
	}
	return base
}

// ConfigFile is an annotation configuration handed to the annotation tool.
type ConfigFile struct {
	Path string
}

// ID returns the identity used in grouping keys and task addresses.
func (f ConfigFile) ID() string {
	return f.Path
}

// Stem is the base name without its final extension ("c1.ini" -> "c1").
func (f ConfigFile) Stem() string {
	base := filepath.Base(f.Path)
	ext := filepath.Ext(base)
	if ext == "" || ext == base {
		return base
	}
	return strings.TrimSuffix(base, ext)
}
