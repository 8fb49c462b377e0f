package errs

import (
	"errors"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnavailable  = errors.New("book not available")
	ErrInvalidInput = errors.New("invalid input")

	ErrDuplicateISBN     = &kindError{kind: ErrConflict, msg: "ISBN already exists"}
	ErrDuplicateEmail    = &kindError{kind: ErrConflict, msg: "email already registered"}
	ErrHasOpenBorrowings = &kindError{kind: ErrConflict, msg: "open borrowings reference this record"}
)

// kindError carries its own message and matches its kind with errors.Is.
type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }

// Invalid returns an error matching ErrInvalidInput with reason as message.
func Invalid(reason string) error {
	return &kindError{kind: ErrInvalidInput, msg: reason}
}
