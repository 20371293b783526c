package service

import (
	"errors"
	"fmt"

	"github.com/panemexpress/rail-booking/internal/fare"
)

// Failures returned by the booking core.  Callers match them with errors.Is.
var (
	ErrValidation        = errors.New("validation failed")
	ErrInvalidRoute      = errors.New("invalid route")
	ErrInvalidCoachClass = fare.ErrInvalidCoachClass
	ErrInvalidSeat       = errors.New("invalid seat")
	ErrSeatAlreadyBooked = errors.New("seat already booked")
	ErrUnauthenticated   = errors.New("unauthenticated")
	ErrForbidden         = errors.New("forbidden")
	ErrNotFound          = errors.New("not found")
	ErrJourneyDeparted   = errors.New("journey already departed")
	ErrInternal          = errors.New("internal error")
)

// ValidationError names the offending input field.  It matches
// ErrValidation under errors.Is.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string { return e.Field + " " + e.Msg }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(field, msg string) error { return &ValidationError{Field: field, Msg: msg} }

// internal hides a storage failure behind ErrInternal.  The cause stays in
// the message for logs.
func internal(op string, cause error) error {
	return fmt.Errorf("%s: %w (%v)", op, ErrInternal, cause)
}
