package treefile

import (
	"errors"
	"fmt"
)

var (
	// ErrLoad matches every *LoadError.
	ErrLoad = errors.New("load skill tree")

	// ErrSave matches every *SaveError.
	ErrSave = errors.New("save skill tree")
)

// LoadError reports an unreadable, malformed or invalid tree file. The tree
// being loaded into is unchanged when a LoadError is returned.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("load skill tree: %v", e.Err)
	}
	return fmt.Sprintf("load skill tree from %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

func (e *LoadError) Is(target error) bool { return target == ErrLoad }

// SaveError reports a destination that could not be written. The in-memory
// tree is never modified by a save.
type SaveError struct {
	Path string
	Err  error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("save skill tree to %s: %v", e.Path, e.Err)
}

func (e *SaveError) Unwrap() error { return e.Err }

func (e *SaveError) Is(target error) bool { return target == ErrSave }
