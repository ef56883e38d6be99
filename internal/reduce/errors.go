package reduce

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/specialistvlad/annosplit/internal/model"
)

// ErrIncompleteGroup marks a run that ended with groups still waiting for
// split results.
var ErrIncompleteGroup = errors.New("incomplete output group")

// Shortfall describes one group that did not receive every split.
type Shortfall struct {
	Key      model.GroupKey
	Expected int
	Received int
}

// IncompleteGroupError lists every group that fell short. It is returned
// instead of merging a truncated group.
type IncompleteGroupError struct {
	Groups []Shortfall
}

func (e *IncompleteGroupError) Error() string {
	parts := make([]string, len(e.Groups))
	for i, g := range e.Groups {
		parts[i] = fmt.Sprintf("%s x %s: %d of %d splits", g.Key.Input, g.Key.Config, g.Received, g.Expected)
	}
	sort.Strings(parts)
	return fmt.Sprintf("%s: %s", ErrIncompleteGroup.Error(), strings.Join(parts, "; "))
}

func (e *IncompleteGroupError) Unwrap() error { return ErrIncompleteGroup }
