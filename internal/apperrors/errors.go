package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error carries an HTTP status alongside the message so handlers can map
// service failures without inspecting strings. Anything that is not an
// *Error surfaces as a 500.
type Error struct {
	Message    string
	StatusCode int
	Details    map[string]any
}

func (e *Error) Error() string {
	return e.Message
}

// NotFound covers both missing rows and rows owned by another user; the
// two are deliberately indistinguishable to the caller.
func NotFound(resource, id string) *Error {
	return &Error{
		Message:    fmt.Sprintf("%s with id '%s' not found", resource, id),
		StatusCode: http.StatusNotFound,
	}
}

func Validation(message string, details ...map[string]any) *Error {
	e := &Error{Message: message, StatusCode: http.StatusBadRequest}
	if len(details) > 0 {
		e.Details = details[0]
	}
	return e
}

func Conflict(message string) *Error {
	return &Error{Message: message, StatusCode: http.StatusConflict}
}

func IsNotFound(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.StatusCode == http.StatusNotFound
}

func IsValidation(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.StatusCode == http.StatusBadRequest
}

func IsConflict(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.StatusCode == http.StatusConflict
}
