package errors

import "fmt"

// ValidationError indicates a malformed search criterion. It is surfaced
// before any data-store access and is never retried.
type ValidationError struct {
	Err error
	Msg string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("Validation Error. Msg: %s, Err: %s", e.Msg, e.Err)
}

// DataAccessError indicates the candidate-resolution stage's backing store
// call failed. Retry policy belongs to the caller.
type DataAccessError struct {
	Err error
	Msg string
}

func (e *DataAccessError) Error() string {
	return fmt.Sprintf("Data Access Error. Msg: %s, Err: %s", e.Msg, e.Err)
}

func (e *DataAccessError) Unwrap() error {
	return e.Err
}

// ConsistencyError indicates a match that cannot be folded into a
// consolidated result (e.g. missing base registration identity). Always a
// defect; never swallowed.
type ConsistencyError struct {
	Err error
	Msg string
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("Consistency Error. Msg: %s, Err: %s", e.Msg, e.Err)
}

// EntityNotFoundError indicates a stored search response could not be found
// for the supplied search id.
type EntityNotFoundError struct {
	Err      error
	SearchID string
}

func (e *EntityNotFoundError) Error() string {
	return fmt.Sprintf("no search found for searchID %s: %s", e.SearchID, e.Err)
}
