package service

import "errors"

var (
	ErrPostLocked      = errors.New("post is locked to its authors")
	ErrNotAuthorLocked = errors.New("post is not author-locked")
	ErrNotAnAuthor     = errors.New("only authors can do this")
)

// ConsistencyError reports a violated invariant in derived state, e.g. a
// tagged_at older than the newest reply after a write. It is surfaced to the
// operator instead of being silently corrected.
type ConsistencyError struct {
	Msg string
}

func (e *ConsistencyError) Error() string {
	return "consistency violation: " + e.Msg
}
