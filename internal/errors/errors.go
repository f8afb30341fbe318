package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrCourseNotFound is returned when a course is not found.
	ErrCourseNotFound = errors.New("course not found")
	// ErrCourseInUse is returned when deleting a course that certificates still reference.
	ErrCourseInUse = errors.New("course has issued certificates")
	// ErrCertificateNotFound is returned when a certificate is not found.
	ErrCertificateNotFound = errors.New("certificate not found")
	// ErrCertificateExists is returned when the user already holds a certificate for the course.
	ErrCertificateExists = errors.New("certificate already issued for this user and course")
	// ErrCertificateIDExhausted is returned when no free certificate id could be generated.
	ErrCertificateIDExhausted = errors.New("could not generate a unique certificate id")
	// ErrInvalidGrade is returned when a grade is not one of the known grades.
	ErrInvalidGrade = errors.New("invalid grade")
	// ErrValidation is the parent of all input validation failures.
	ErrValidation = errors.New("validation failed")
)

// DuplicateCertificateError reports a second issuance for a (user, course)
// pair and carries the id of the certificate already issued.
type DuplicateCertificateError struct {
	CertificateID string
}

func (e *DuplicateCertificateError) Error() string {
	return fmt.Sprintf("%s: %s", ErrCertificateExists.Error(), e.CertificateID)
}

// Is makes errors.Is(err, ErrCertificateExists) match.
func (e *DuplicateCertificateError) Is(target error) bool {
	return target == ErrCertificateExists
}

// Validationf builds an error wrapping ErrValidation with a readable message.
func Validationf(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ValidationError is malformed or missing input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Is makes errors.Is(err, ErrValidation) match.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error         string `json:"error"`
	Code          string `json:"code"`
	CertificateID string `json:"certificate_id,omitempty"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode    int
	Message       string
	Code          string
	CertificateID string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error:         e.Message,
		Code:          e.Code,
		CertificateID: e.CertificateID,
	}
}

// IsInternal reports whether the error maps to a 5xx response.
func (e *HTTPError) IsInternal() bool {
	return e.StatusCode >= http.StatusInternalServerError
}

// MapErrorToHTTP maps domain errors to HTTP errors. Unknown errors become a
// generic 500 without any internal detail.
func MapErrorToHTTP(err error) *HTTPError {
	var dup *DuplicateCertificateError
	if errors.As(err, &dup) {
		httpErr := NewHTTPError(http.StatusConflict, ErrCertificateExists.Error(), "CERTIFICATE_EXISTS")
		httpErr.CertificateID = dup.CertificateID
		return httpErr
	}

	var verr *ValidationError
	if errors.As(err, &verr) {
		return NewHTTPError(http.StatusBadRequest, verr.Message, "VALIDATION_ERROR")
	}

	switch {
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusNotFound, ErrUserNotFound.Error(), "USER_NOT_FOUND")
	case errors.Is(err, ErrCourseNotFound):
		return NewHTTPError(http.StatusNotFound, ErrCourseNotFound.Error(), "COURSE_NOT_FOUND")
	case errors.Is(err, ErrCertificateNotFound):
		return NewHTTPError(http.StatusNotFound, ErrCertificateNotFound.Error(), "CERTIFICATE_NOT_FOUND")
	case errors.Is(err, ErrCourseInUse):
		return NewHTTPError(http.StatusConflict, ErrCourseInUse.Error(), "COURSE_IN_USE")
	case errors.Is(err, ErrCertificateExists):
		return NewHTTPError(http.StatusConflict, ErrCertificateExists.Error(), "CERTIFICATE_EXISTS")
	case errors.Is(err, ErrInvalidGrade):
		return NewHTTPError(http.StatusBadRequest, ErrInvalidGrade.Error(), "INVALID_GRADE")
	case errors.Is(err, ErrValidation):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
