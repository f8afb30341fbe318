package handler

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"

	"learnhub/internal/model"
	"learnhub/internal/service"
)

type testValidator struct {
	v *validator.Validate
}

func (tv *testValidator) Validate(i interface{}) error {
	return tv.v.Struct(i)
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = &testValidator{v: validator.New()}
	return e
}

func doRequest(e *echo.Echo, method, path string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func jsonBody(s string) io.Reader {
	return strings.NewReader(s)
}

// MockCertificateService is a mock implementation of service.CertificateService.
type MockCertificateService struct {
	mock.Mock
}

func (m *MockCertificateService) Issue(ctx context.Context, in service.IssueCertificateInput) (*model.Certificate, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Certificate), args.Error(1)
}

func (m *MockCertificateService) Verify(ctx context.Context, certificateID string) (*service.VerificationResult, error) {
	args := m.Called(ctx, certificateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.VerificationResult), args.Error(1)
}

func (m *MockCertificateService) Revoke(ctx context.Context, certificateID string) (*model.Certificate, error) {
	args := m.Called(ctx, certificateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Certificate), args.Error(1)
}

func (m *MockCertificateService) Purge(ctx context.Context, certificateID string) error {
	args := m.Called(ctx, certificateID)
	return args.Error(0)
}

func (m *MockCertificateService) Get(ctx context.Context, certificateID string) (*model.Certificate, error) {
	args := m.Called(ctx, certificateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Certificate), args.Error(1)
}

func (m *MockCertificateService) List(ctx context.Context) ([]model.Certificate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Certificate), args.Error(1)
}

// MockCourseService is a mock implementation of service.CourseService.
type MockCourseService struct {
	mock.Mock
}

func (m *MockCourseService) Create(ctx context.Context, in service.CourseInput) (*model.Course, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Course), args.Error(1)
}

func (m *MockCourseService) Get(ctx context.Context, id uuid.UUID) (*model.Course, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Course), args.Error(1)
}

func (m *MockCourseService) List(ctx context.Context) ([]model.Course, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Course), args.Error(1)
}

func (m *MockCourseService) Update(ctx context.Context, id uuid.UUID, in service.CourseInput) (*model.Course, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Course), args.Error(1)
}

func (m *MockCourseService) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
