package visits

import "fmt"

// StorageError wraps a backend read or write failure. The store performs no
// retries; the backend's original error is reachable via Unwrap.
type StorageError struct {
	Op  string // "retrieve" or "persist"
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("visit storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// QuerySpecError reports a filter or sort key that references an unknown
// field, or pairs an operator with a field of an incompatible type.
type QuerySpecError struct {
	Field  Field
	Op     Operator
	Reason string
}

func (e *QuerySpecError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("invalid query: field %q, operator %q: %s", e.Field, e.Op, e.Reason)
	}
	return fmt.Sprintf("invalid query: field %q: %s", e.Field, e.Reason)
}
