// internal/taskid/parser.go
package taskid

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// splitRegex parses the final segment of an address, e.g. `split[12]`.
var splitRegex = regexp.MustCompile(`^split\[(\d+)\]$`)

// nameRegex accepts any file stem without control characters. Stems never
// contain a path separator.
var nameRegex = regexp.MustCompile(`^[^/\x00-\x1f]+$`)

// isValidSegmentName rejects names that could not have come from a file stem.
func isValidSegmentName(name string) bool {
	if name == "." || name == ".." {
		return false
	}
	return nameRegex.MatchString(name)
}

// Parse creates an Address by parsing its canonical string representation.
func Parse(rawID string) (Address, error) {
	if rawID == "" {
		return Address{}, fmt.Errorf("identifier cannot be empty")
	}

	segments := strings.Split(rawID, "/")
	if len(segments) != 3 {
		return Address{}, fmt.Errorf("identifier %q must have 3 segments, got %d", rawID, len(segments))
	}

	for _, name := range segments[:2] {
		if name == "" {
			return Address{}, fmt.Errorf("identifier path contains empty segment")
		}
		if !isValidSegmentName(name) {
			return Address{}, fmt.Errorf("invalid segment name: %q", name)
		}
	}

	matches := splitRegex.FindStringSubmatch(segments[2])
	if matches == nil {
		return Address{}, fmt.Errorf("invalid split segment format: %q", segments[2])
	}
	index, err := strconv.Atoi(matches[1])
	if err != nil {
		// Unreachable due to regex `\d+` unless the number overflows.
		return Address{}, fmt.Errorf("parsing split index: %w", err)
	}

	return Address{Input: segments[0], Config: segments[1], Split: index}, nil
}
