package repositories

import "errors"

// ErrNotFound is wrapped by every repository lookup that finds no record.
var ErrNotFound = errors.New("not found")

// ErrIllegalTransition is returned by CompareAndSwapStatus for a pair of
// statuses that is not an edge of the order state machine.
var ErrIllegalTransition = errors.New("illegal status transition")
