package signal

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidFilterConfig is returned when filter parameters cannot describe a stable filter.
	ErrInvalidFilterConfig = errors.New("signal: invalid filter config")
	// ErrInsufficientSamples is matched by InsufficientSamplesError.
	ErrInsufficientSamples = errors.New("signal: insufficient samples")
)

// InsufficientSamplesError reports a series too short for zero-phase padding.
type InsufficientSamplesError struct {
	Got  int
	Need int
}

func (e *InsufficientSamplesError) Error() string {
	return fmt.Sprintf("signal: insufficient samples: got %d, need more than %d", e.Got, e.Need)
}

// Is reports whether target is ErrInsufficientSamples.
func (e *InsufficientSamplesError) Is(target error) bool {
	return target == ErrInsufficientSamples
}
