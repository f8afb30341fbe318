package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapErrorToHTTP(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedCode   string
	}{
		{"user not found", ErrUserNotFound, http.StatusNotFound, "USER_NOT_FOUND"},
		{"wrapped course not found", fmt.Errorf("issue: %w", ErrCourseNotFound), http.StatusNotFound, "COURSE_NOT_FOUND"},
		{"certificate not found", ErrCertificateNotFound, http.StatusNotFound, "CERTIFICATE_NOT_FOUND"},
		{"duplicate certificate", &DuplicateCertificateError{CertificateID: "CERT-2025-12345"}, http.StatusConflict, "CERTIFICATE_EXISTS"},
		{"validation", Validationf("user_id is required"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"invalid grade", ErrInvalidGrade, http.StatusBadRequest, "INVALID_GRADE"},
		{"id space exhausted", ErrCertificateIDExhausted, http.StatusInternalServerError, "INTERNAL_ERROR"},
		{"unknown", errors.New("dial tcp 10.0.0.1:3306: connection refused"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpErr := MapErrorToHTTP(tt.err)
			assert.Equal(t, tt.expectedStatus, httpErr.StatusCode)
			assert.Equal(t, tt.expectedCode, httpErr.Code)
		})
	}
}

func TestMapErrorToHTTP_ConflictCarriesExistingID(t *testing.T) {
	err := fmt.Errorf("issue: %w", &DuplicateCertificateError{CertificateID: "CERT-2025-12345"})

	httpErr := MapErrorToHTTP(err)

	assert.True(t, errors.Is(err, ErrCertificateExists))
	assert.Equal(t, "CERT-2025-12345", httpErr.ToErrorResponse().CertificateID)
}

func TestMapErrorToHTTP_InternalHidesDetail(t *testing.T) {
	httpErr := MapErrorToHTTP(errors.New("Error 1045: Access denied for user 'root'@'10.0.0.2'"))

	assert.True(t, httpErr.IsInternal())
	assert.Equal(t, "internal server error", httpErr.Message)
}
