// internal/taskid/doc.go

/*
Package taskid provides a structured representation for task identifiers,
based on the canonical format `input/config/split[n]`.

The input and configuration segments are file stems, so `A.vcf.gz` paired
with `c1.ini` on its third split is addressed as `A/c1/split[2]`.

This package centralizes formatting and parsing so log lines, work file names
and the run manifest all agree on how a task is named.
*/
package taskid
