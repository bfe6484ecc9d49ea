package files

import "errors"

var (
	// ErrNotFound indicates no file exists with the given id for this owner.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates validation or bad input.
	ErrInvalidInput = errors.New("invalid input")
)
