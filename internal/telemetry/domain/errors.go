package telemetry

import (
	"errors"
	"fmt"
)

var (
	// ErrParse is matched by ParseError.
	ErrParse = errors.New("telemetry: parse error")
	// ErrEmptyWindow is returned when a window key is blank.
	ErrEmptyWindow = errors.New("telemetry: empty window")
)

// ParseError reports a record field that cannot become a sample.
type ParseError struct {
	SequenceIndex int
	Field         string
	Value         string
	Reason        string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("telemetry: parse error: record %d field %q value %q: %s", e.SequenceIndex, e.Field, e.Value, e.Reason)
}

// Is reports whether target is ErrParse.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}
