package events

import "fmt"

// InvalidEventTypeError reports an event type outside the closed enumeration.
type InvalidEventTypeError struct {
	Type EventType
}

// Error implements the error interface.
func (e *InvalidEventTypeError) Error() string {
	return fmt.Sprintf("invalid event type %q", e.Type)
}

// StorageError wraps a backend failure with its backend and operation.
type StorageError struct {
	Backend   string // "memory", "sqlite"
	Operation string // "append", "query", "count"
	Cause     error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	return fmt.Sprintf("event storage %s: %s failed: %v", e.Backend, e.Operation, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *StorageError) Unwrap() error { return e.Cause }

// EmissionError reports that an event could not be appended within the
// bounded retry count. The event's state transition already happened; the
// caller surfaces this as degraded success, not as execution failure.
type EmissionError struct {
	Type     EventType
	Attempts int
	Cause    error
}

// Error implements the error interface.
func (e *EmissionError) Error() string {
	return fmt.Sprintf("failed to emit %s event after %d attempts: %v", e.Type, e.Attempts, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *EmissionError) Unwrap() error { return e.Cause }
