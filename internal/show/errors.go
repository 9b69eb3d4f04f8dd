package show

import (
	"errors"
)

// Error kinds. Use errors.Is against these to classify a compile failure.
var (
	// ErrNotFound means the requested dancer does not exist.
	ErrNotFound = errors.New("not found")
	// ErrRangeViolation means a count or length does not fit its wire field.
	ErrRangeViolation = errors.New("range violation")
	// ErrConsistency means the stored show contradicts itself.
	ErrConsistency = errors.New("consistency violation")
	// ErrStore means the record store failed.
	ErrStore = errors.New("store failure")
)

// Error is a classified compile failure. Its message is what clients see.
type Error struct {
	Kind error
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func notFound(msg string, err error) error {
	return &Error{Kind: ErrNotFound, Msg: msg, Err: err}
}

func rangeViolation(msg string, err error) error {
	return &Error{Kind: ErrRangeViolation, Msg: msg, Err: err}
}

func inconsistent(msg string) error {
	return &Error{Kind: ErrConsistency, Msg: msg}
}

func storeFailure(err error) error {
	return &Error{Kind: ErrStore, Msg: "record store failure", Err: err}
}
