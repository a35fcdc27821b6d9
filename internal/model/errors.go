package model

import (
	"errors"
	"fmt"
)

// ErrMalformedInput is matched by errors.Is for every *MalformedInputError.
var ErrMalformedInput = errors.New("malformed input")

// MalformedInputError reports a wire value that cannot be coerced to the
// declared type of its field. Field is empty when the payload itself is not a
// JSON object.
type MalformedInputError struct {
	Field string
	Value string
	Err   error
}

func (e *MalformedInputError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("malformed input: %v", e.Err)
	}
	return fmt.Sprintf("malformed input: field %q value %s: %v", e.Field, e.Value, e.Err)
}

func (e *MalformedInputError) Unwrap() error {
	return e.Err
}

func (e *MalformedInputError) Is(target error) bool {
	return target == ErrMalformedInput
}
