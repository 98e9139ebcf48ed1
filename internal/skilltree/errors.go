package skilltree

import "errors"

var (
	// ErrNotFound is returned for an ID or reference that names no node.
	ErrNotFound = errors.New("skill not found")

	// ErrRejected is returned when the active policy refuses a toggle.
	// No state is changed.
	ErrRejected = errors.New("toggle rejected")

	// ErrEmptyLabel is returned when inserting a skill without a name.
	ErrEmptyLabel = errors.New("skill label must not be empty")
)
