// internal/taskid/address.go
package taskid

import (
	"fmt"
	"strings"

	"github.com/specialistvlad/annosplit/internal/model"
)

// splitSegment is the literal name of the third address segment.
const splitSegment = "split"

// Address is the structured representation of a task identifier.
type Address struct {
	Input  string
	Config string
	Split  int
}

// For builds the address of a task from its input and configuration stems.
func For(task model.Task) Address {
	return Address{
		Input:  task.Split.Input.Stem(),
		Config: task.Config.Stem(),
		Split:  task.Split.Index,
	}
}

// String serializes the Address into its canonical representation.
func (a Address) String() string {
	return fmt.Sprintf("%s/%s/%s[%d]", a.Input, a.Config, splitSegment, a.Split)
}

// FileName returns a flat form of the address usable as a file name, e.g.
// `A.c1.split0002`.
func (a Address) FileName() string {
	var sb strings.Builder
	sb.WriteString(a.Input)
	sb.WriteRune('.')
	sb.WriteString(a.Config)
	sb.WriteString(fmt.Sprintf(".%s%04d", splitSegment, a.Split))
	return sb.String()
}
