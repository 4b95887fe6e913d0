package pool

import "errors"

// Sentinel errors checkable with errors.Is().
var (
	// ErrNotAdmitted is returned when admission is attempted for a
	// candidate with no confirmed protocol (spec §3 invariant b).
	ErrNotAdmitted = errors.New("pool: candidate has no confirmed protocol")

	// ErrUnknownHandle names the condition of a handle whose record is no
	// longer present (already evicted). Release has no return value and
	// ignores such handles; no function in this package returns this error.
	ErrUnknownHandle = errors.New("pool: handle refers to an unknown or evicted record")
)
