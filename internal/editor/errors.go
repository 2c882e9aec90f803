package editor

import "errors"

var (
	ErrNotEditable  = errors.New("composite values are edited through their children")
	ErrNotComposite = errors.New("only objects and arrays accept new entries")
	ErrEmptyKey     = errors.New("key must not be empty")
	ErrDuplicateKey = errors.New("key already exists")
	ErrRootDelete   = errors.New("the settings root cannot be deleted")
	ErrBadState     = errors.New("operation not allowed in the current state")
)
