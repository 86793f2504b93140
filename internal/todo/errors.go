package todo

import (
	"errors"
	"fmt"
)

var (
	ErrNotAuthenticated  = errors.New("not authenticated")
	ErrListNotFound      = errors.New("list not found")
	ErrTaskNotFound      = errors.New("task not found")
	ErrDuplicateList     = errors.New("list already exists")
	ErrMainListProtected = errors.New("the Main list cannot be deleted")
	ErrInvalidListName   = errors.New("list name is empty")
	ErrEmptyTask         = errors.New("task text is empty")
	ErrStoreUnavailable  = errors.New("store unavailable")
)

// Error is returned by every Service operation. Kind is one of the sentinels
// above; Err carries the underlying store failure, if any.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("todo: %s: %v", e.Op, e.Kind)
	}

	return fmt.Sprintf("todo: %s: %v: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}

	return []error{e.Kind, e.Err}
}

func fail(op string, kind error) error {
	return &Error{Op: op, Kind: kind}
}

func unavailable(op string, err error) error {
	return &Error{Op: op, Kind: ErrStoreUnavailable, Err: err}
}
