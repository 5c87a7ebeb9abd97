package importer

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidState is returned when a control call is not allowed in the current status.
	ErrInvalidState = errors.New("invalid job state")
	// ErrInvalidMode is returned for an unknown reconciliation mode.
	ErrInvalidMode = errors.New("invalid reconciliation mode")
	// ErrNoRecords is returned when a job is started with nothing to import.
	ErrNoRecords = errors.New("no records to import")
	// ErrMalformedInput is matched by every *MalformedInputError.
	ErrMalformedInput = errors.New("malformed input")
)

// MalformedInputError reports CSV text that has no usable header and data row.
type MalformedInputError struct {
	Lines  int
	Reason string
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("malformed csv: %s (found %d non-empty lines)", e.Reason, e.Lines)
}

// Is lets errors.Is(err, ErrMalformedInput) match.
func (e *MalformedInputError) Is(target error) bool {
	return target == ErrMalformedInput
}

// ModeError reports an unrecognised mode string.
type ModeError struct {
	Value string
}

func (e *ModeError) Error() string {
	return fmt.Sprintf("unknown mode %q (expected one of %v)", e.Value, Modes)
}

// Is lets errors.Is(err, ErrInvalidMode) match.
func (e *ModeError) Is(target error) bool {
	return target == ErrInvalidMode
}

func stateError(op string, s Status) error {
	return fmt.Errorf("cannot %s while %s: %w", op, s, ErrInvalidState)
}
