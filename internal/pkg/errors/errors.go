package errors

import "errors"

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrSkipped marks a record deliberately left unmigrated (policy skip,
	// not a failure). Callers count these separately from errors.
	ErrSkipped = errors.New("record skipped")
)
