package application

import "errors"

var (
	// ErrNoRecords is returned when a window has nothing to build from.
	ErrNoRecords = errors.New("pipeline: no records in window")
	// ErrNilService is returned by methods called on a nil service.
	ErrNilService = errors.New("pipeline: nil service")
)
