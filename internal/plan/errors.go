package plan

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration marks missing or unusable inputs, configurations or paths.
	ErrConfiguration = errors.New("configuration error")
	// ErrCardinality marks an unsupported input/configuration pairing.
	ErrCardinality = errors.New("cardinality error")
	// ErrSplit marks a splitter that broke its ordering or coverage contract.
	ErrSplit = errors.New("split error")
)

// Error wraps fatal planning failures. Kind is one of the sentinels above and
// is what errors.Is matches against.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Msg)
}

func (e *Error) Unwrap() error { return e.Kind }

func configurationf(format string, args ...any) error {
	return &Error{Kind: ErrConfiguration, Msg: fmt.Sprintf(format, args...)}
}

func splitf(format string, args ...any) error {
	return &Error{Kind: ErrSplit, Msg: fmt.Sprintf(format, args...)}
}
