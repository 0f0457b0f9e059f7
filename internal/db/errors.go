package db

import "errors"

// Reference errors surfaced to the caller. Mutating operations that return one
// of these have touched nothing.
var (
	ErrUnknownStudent  = errors.New("unknown student")
	ErrUnknownCategory = errors.New("unknown category")
	ErrEventNotFound   = errors.New("event not found in corrected window")
)
