package errors

import (
	"fmt"
)

// InvalidArgumentError occurs when an operator is given an out-of-range or
// otherwise nonsensical parameter
type InvalidArgumentError struct {
	Arg    string
	Reason string
}

// Error returns a textual representation of this InvalidArgumentError
func (e InvalidArgumentError) Error() string {
	return fmt.Sprintf("Invalid argument %s: %s", e.Arg, e.Reason)
}

// EmptyTableError occurs when an action requiring at least one Entry is
// invoked on a Table with none
type EmptyTableError struct{}

// Error returns a textual representation of this EmptyTableError
func (e EmptyTableError) Error() string {
	return "Table contains no entries"
}

// UnsupportedBackendError occurs when no SinkAdapter matches the kind of a
// save target Address
type UnsupportedBackendError struct{ Kind string }

// Error returns a textual representation of this UnsupportedBackendError
func (e UnsupportedBackendError) Error() string {
	return fmt.Sprintf("No sink adapter registered for backend kind %s", e.Kind)
}

// ComputeFailureError occurs when a user-supplied function raises or panics
// during a per-partition task. It aborts the enclosing operator; partial
// partition results are discarded.
type ComputeFailureError struct {
	Op  string
	Err error
}

// Error returns a textual representation of this ComputeFailureError
func (e ComputeFailureError) Error() string {
	return fmt.Sprintf("%s operation failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying user-function error
func (e ComputeFailureError) Unwrap() error {
	return e.Err
}

// NoMoreEntriesError occurs when there are no more entries in an EntryIterator
type NoMoreEntriesError struct{}

// Error returns a textual representation of this NoMoreEntriesError
func (e NoMoreEntriesError) Error() string {
	return "No more entries"
}
