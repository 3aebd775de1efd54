// Package apierror carries HTTP-facing failures from the point of detection
// to the response writer.
package apierror

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mmynk/shoplist/internal/validation"
)

// Error is a terminal request failure with a status code and a user-facing message.
type Error struct {
	Status  int
	Message string
	Errors  validation.Errors
	// Cause is logged but never sent to the client.
	Cause error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Response is the JSON error envelope.
type Response struct {
	Status  string            `json:"status"`
	Message string            `json:"message"`
	Errors  validation.Errors `json:"errors,omitempty"`
}

// New creates an error with the given status and message.
func New(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

// Wrap creates an error that keeps cause for logging.
func Wrap(status int, message string, cause error) *Error {
	return &Error{Status: status, Message: message, Cause: cause}
}

// Validation reports schema failures.
func Validation(errs validation.Errors) *Error {
	return &Error{Status: http.StatusBadRequest, Message: "Invalid input data", Errors: errs}
}

func BadRequest(message string) *Error   { return New(http.StatusBadRequest, message) }
func Unauthorized(message string) *Error { return New(http.StatusUnauthorized, message) }
func Forbidden(message string) *Error    { return New(http.StatusForbidden, message) }
func NotFound(message string) *Error     { return New(http.StatusNotFound, message) }

// Internal surfaces an unexpected failure with its raw message.
func Internal(err error) *Error {
	return Wrap(http.StatusInternalServerError, err.Error(), err)
}

// From converts any error into an *Error. Validation errors become 400,
// unknown errors 500.
func From(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		return Validation(verrs)
	}
	return Internal(err)
}

// Abort writes err as the response, records it on the context and stops
// the handler chain.
func Abort(c *gin.Context, err error) {
	apiErr := From(err)
	_ = c.Error(apiErr)
	c.AbortWithStatusJSON(apiErr.Status, Response{
		Status:  "error",
		Message: apiErr.Message,
		Errors:  apiErr.Errors,
	})
}
