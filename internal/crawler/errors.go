package crawler

import (
	"errors"
	"fmt"
)

// ErrInitialLoad marks a failure to fetch the first listing snapshot. Nothing has been
// collected at that point, so callers treat it as fatal.
var ErrInitialLoad = errors.New("initial listing fetch failed")

// AdvanceError reports a transport failure while moving to a later page or scroll position.
// The records collected before it are returned alongside.
type AdvanceError struct {
	Page int
	Err  error
}

func (e *AdvanceError) Error() string {
	return fmt.Sprintf("advance to page %d: %v", e.Page, e.Err)
}

func (e *AdvanceError) Unwrap() error { return e.Err }

// Failure is one record whose per-record operation failed; the record passed through unchanged.
type Failure struct {
	URL    string
	Worker int
	Err    error
}
