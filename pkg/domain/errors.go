package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidBranchIndex is returned by Play when the index is outside the
// published branch list. No state changes.
var ErrInvalidBranchIndex = errors.New("branch index out of range")

// ErrNoCursor is returned when an operation needs a cursor but none is set.
var ErrNoCursor = errors.New("cursor is not set")

// UnknownObjectError reports an id that resolves to nothing in the graph.
type UnknownObjectError struct {
	ID ID
}

func (e *UnknownObjectError) Error() string {
	return fmt.Sprintf("unknown flow object %q", e.ID)
}

// ShadowLimitError reports that the shadow stack exceeded its nesting limit,
// usually an authoring-time cyclic-condition bug. The offending operation is
// aborted and no branches are returned.
type ShadowLimitError struct {
	Level int
	Limit int
}

func (e *ShadowLimitError) Error() string {
	return fmt.Sprintf("shadow level limit reached (%d of %d), aborting exploration", e.Level, e.Limit)
}

// ReentrantCommitError reports a commit attempted while a shadow level is
// still outstanding. Committing under shadow would corrupt the store, so the
// commit is refused.
type ReentrantCommitError struct {
	Level int
}

func (e *ReentrantCommitError) Error() string {
	return fmt.Sprintf("commit attempted at shadow level %d, must be 0", e.Level)
}
