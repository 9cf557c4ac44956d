package main

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Error kinds returned by the board services. Match with errors.Is.
var (
	ErrValidation = errors.New("validation failed")
	ErrAuth       = errors.New("invalid credentials")
	ErrConflict   = errors.New("conflict")
)

// boardError carries a client-facing message for one of the error kinds.
type boardError struct {
	kind error
	msg  string
}

func (e *boardError) Error() string { return e.msg }
func (e *boardError) Unwrap() error { return e.kind }

func validationError(format string, args ...any) error {
	return &boardError{kind: ErrValidation, msg: fmt.Sprintf(format, args...)}
}

func authError(msg string) error {
	return &boardError{kind: ErrAuth, msg: msg}
}

func conflictError(format string, args ...any) error {
	return &boardError{kind: ErrConflict, msg: fmt.Sprintf(format, args...)}
}

// statusFor maps an error to the HTTP status it should produce.
func statusFor(err error) int {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, ErrValidation), errors.Is(err, ErrConflict):
		return http.StatusBadRequest
	case errors.Is(err, ErrAuth):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage returns the response body for err. Internal failures never
// leak their detail here.
func publicMessage(err error) string {
	var fe *fiber.Error
	var be *boardError
	switch {
	case errors.As(err, &fe):
		return fe.Message
	case errors.As(err, &be):
		return be.msg
	default:
		return http.StatusText(http.StatusInternalServerError)
	}
}
