package dataset

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrDataAlignment is matched by DataAlignmentError.
	ErrDataAlignment = errors.New("dataset: data alignment")
	// ErrInvalidWaveform is returned when a serialized waveform cannot be decoded.
	ErrInvalidWaveform = errors.New("dataset: invalid waveform")
)

// DataAlignmentError reports series of different lengths in a positional join.
type DataAlignmentError struct {
	Lengths map[string]int
}

func (e *DataAlignmentError) Error() string {
	names := make([]string, 0, len(e.Lengths))
	for name := range e.Lengths {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s=%d", name, e.Lengths[name]))
	}
	return "dataset: data alignment: series lengths differ: " + strings.Join(parts, " ")
}

// Is reports whether target is ErrDataAlignment.
func (e *DataAlignmentError) Is(target error) bool {
	return target == ErrDataAlignment
}
