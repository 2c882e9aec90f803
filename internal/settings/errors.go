package settings

import "errors"

var (
	// ErrNotFound means a path does not resolve to a value
	ErrNotFound = errors.New("path not found")
	// ErrInvalidPath means an intermediate segment is missing or is not a container
	ErrInvalidPath = errors.New("invalid path")
	// ErrInvalidTarget means the final container cannot hold the final segment
	ErrInvalidTarget = errors.New("invalid target")
	// ErrInvalidNumber means text did not parse to a finite number
	ErrInvalidNumber = errors.New("invalid number")
	// ErrInvalidBoolean means text was neither "true" nor "false"
	ErrInvalidBoolean = errors.New("invalid boolean")
)
