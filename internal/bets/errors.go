package bets

import (
	"errors"
	"fmt"
)

// ErrMatchNotFound indicates the referenced match does not exist.
// Surfaces to API callers as a 404-equivalent.
var ErrMatchNotFound = errors.New("match not found")

// LockedError indicates betting on the match is no longer allowed, either
// because of the match status or because the deadline passed. The reason text
// distinguishes the two so the caller can render the right message.
type LockedError struct {
	Reason string
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("betting is locked: %s", e.Reason)
}

// IsLocked reports whether err is a LockedError
func IsLocked(err error) bool {
	var locked *LockedError
	return errors.As(err, &locked)
}
