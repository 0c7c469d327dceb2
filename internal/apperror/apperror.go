// Package apperror carries a (status code, message) pair from services
// and handlers to the single JSON error boundary.
package apperror

import (
	"encoding/json"
	"errors"
	"net/http"
)

type Error struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
}

func (e *Error) Error() string {
	return e.Message
}

func New(statusCode int, message string) *Error {
	return &Error{StatusCode: statusCode, Message: message}
}

func BadRequest(message string) *Error {
	return New(http.StatusBadRequest, message)
}

func Unauthorized(message string) *Error {
	return New(http.StatusUnauthorized, message)
}

func Forbidden(message string) *Error {
	return New(http.StatusForbidden, message)
}

func NotFound(message string) *Error {
	return New(http.StatusNotFound, message)
}

func Internal(message string) *Error {
	return New(http.StatusInternalServerError, message)
}

// From returns err as an *Error, or a generic 500 wrapper when the
// error carries no status of its own.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("Internal Server Error")
}

// envelope is the uniform JSON error body; the HTTP status always
// mirrors statusCode.
type envelope struct {
	Success    bool   `json:"success"`
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
}

// Write serializes err to the JSON error envelope.
func Write(w http.ResponseWriter, err error) {
	appErr := From(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode)
	_ = json.NewEncoder(w).Encode(envelope{
		Success:    false,
		StatusCode: appErr.StatusCode,
		Message:    appErr.Message,
	})
}
