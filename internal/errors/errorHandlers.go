// File: paper_summaries_go_backend/internal/errors/errorHandlers.go

package errors

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrorTypeInvalidInput ErrorType = "INVALID_INPUT"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnavailable  ErrorType = "UNAVAILABLE"
)

// CustomError represents a custom error with associated HTTP status code and type
type CustomError struct {
	Type       ErrorType
	Message    string
	StatusCode int
	Internal   error
}

// Error implements the error interface
func (e *CustomError) Error() string {
	if e.Internal != nil {
		return e.Message + ": " + e.Internal.Error()
	}
	return e.Message
}

func (e *CustomError) Unwrap() error {
	return e.Internal
}

// Detail is the failure detail sent to clients in the "error" field.
func (e *CustomError) Detail() string {
	if e.Internal != nil {
		return e.Internal.Error()
	}
	return e.Message
}

// newError creates a new CustomError
func newError(errType ErrorType, message string, statusCode int, internal error) *CustomError {
	return &CustomError{
		Type:       errType,
		Message:    message,
		StatusCode: statusCode,
		Internal:   internal,
	}
}

// NewInvalidInputError creates a bad request error
func NewInvalidInputError(message string, internal error) *CustomError {
	return newError(ErrorTypeInvalidInput, message, http.StatusBadRequest, internal)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(message string) *CustomError {
	return newError(ErrorTypeNotFound, message, http.StatusNotFound, nil)
}

// NewUnavailableError creates an internal server error
func NewUnavailableError(message string, internal error) *CustomError {
	return newError(ErrorTypeUnavailable, message, http.StatusInternalServerError, internal)
}

// TypeOf reports the ErrorType carried by err, or ErrorTypeUnavailable when
// err is not a CustomError.
func TypeOf(err error) ErrorType {
	var customErr *CustomError
	if stderrors.As(err, &customErr) {
		return customErr.Type
	}
	return ErrorTypeUnavailable
}

func IsNotFound(err error) bool {
	return err != nil && TypeOf(err) == ErrorTypeNotFound
}

func IsInvalidInput(err error) bool {
	return err != nil && TypeOf(err) == ErrorTypeInvalidInput
}

// HandleError handles the custom error and sends an appropriate JSON response
func HandleError(c *gin.Context, err error) {
	var customErr *CustomError
	if !stderrors.As(err, &customErr) {
		customErr = NewUnavailableError("An unexpected error occurred", err)
	}

	// Log internal server errors
	if customErr.Type == ErrorTypeUnavailable {
		log.Error().
			Err(customErr.Internal).
			Str("url", c.Request.URL.String()).
			Msg(customErr.Message)
	}

	c.JSON(customErr.StatusCode, gin.H{
		"message": customErr.Message,
		"error":   customErr.Detail(),
	})
}
