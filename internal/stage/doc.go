// Package stage holds the collaborators the orchestration core treats as
// opaque: input preparation, splitting, split extraction, annotation and
// merging. Each is an interface with a default implementation; the defaults
// read and write VCF text natively and delegate annotation, bgzip compression
// and indexing to the external tools declared in toolconf.
package stage
