package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"learnhub/internal/model"
	"learnhub/internal/service"
)

// CertificateHandler handles certificate endpoints.
type CertificateHandler struct {
	certificateService service.CertificateService
}

// NewCertificateHandler creates a new certificate handler.
func NewCertificateHandler(certificateService service.CertificateService) *CertificateHandler {
	return &CertificateHandler{certificateService: certificateService}
}

// IssueCertificateRequest represents a certificate issuance request.
type IssueCertificateRequest struct {
	UserID      string     `json:"user_id" validate:"required,uuid"`
	CourseID    string     `json:"course_id" validate:"required,uuid"`
	Grade       string     `json:"grade" validate:"omitempty,oneof=A+ A B+ B C Pass"`
	CompletedAt *time.Time `json:"completed_at"`
}

// CertificateResponse is a certificate as shown to administrators.
type CertificateResponse struct {
	ID            uuid.UUID `json:"id"`
	CertificateID string    `json:"certificate_id"`
	UserID        uuid.UUID `json:"user_id"`
	CourseID      uuid.UUID `json:"course_id"`
	StudentName   string    `json:"student_name,omitempty"`
	CourseTitle   string    `json:"course_title,omitempty"`
	IssuedAt      time.Time `json:"issued_at"`
	CompletedAt   time.Time `json:"completed_at"`
	Grade         string    `json:"grade"`
	Status        string    `json:"status"`
	QRCode        string    `json:"qr_code,omitempty"`
}

func toCertificateResponse(c *model.Certificate) CertificateResponse {
	return CertificateResponse{
		ID:            c.ID,
		CertificateID: c.CertificateID,
		UserID:        c.UserID,
		CourseID:      c.CourseID,
		StudentName:   c.User.Name,
		CourseTitle:   c.Course.Title,
		IssuedAt:      c.IssuedAt,
		CompletedAt:   c.CompletedAt,
		Grade:         string(c.Grade),
		Status:        string(c.Status),
		QRCode:        c.QRCode,
	}
}

// Issue godoc
// @Summary Issue a certificate
// @Tags certificates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body IssueCertificateRequest true "Certificate data"
// @Success 201 {object} CertificateResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /certificates [post]
func (h *CertificateHandler) Issue(c echo.Context) error {
	var req IssueCertificateRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	cert, err := h.certificateService.Issue(c.Request().Context(), service.IssueCertificateInput{
		UserID:      uuid.MustParse(req.UserID),
		CourseID:    uuid.MustParse(req.CourseID),
		Grade:       model.Grade(req.Grade),
		CompletedAt: req.CompletedAt,
	})
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(http.StatusCreated, toCertificateResponse(cert))
}

// Verify godoc
// @Summary Verify a certificate
// @Description Public lookup. Unknown ids answer 200 with valid=false.
// @Tags certificates
// @Produce json
// @Param id path string true "Certificate ID, e.g. CERT-2025-12345"
// @Success 200 {object} service.VerificationResult
// @Failure 500 {object} errors.ErrorResponse
// @Router /certificates/verify/{id} [get]
func (h *CertificateHandler) Verify(c echo.Context) error {
	result, err := h.certificateService.Verify(c.Request().Context(), c.Param("id"))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// Get godoc
// @Summary Get a certificate
// @Tags certificates
// @Produce json
// @Security BearerAuth
// @Param id path string true "Certificate ID"
// @Success 200 {object} CertificateResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /certificates/{id} [get]
func (h *CertificateHandler) Get(c echo.Context) error {
	cert, err := h.certificateService.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, toCertificateResponse(cert))
}

// List godoc
// @Summary List certificates
// @Tags certificates
// @Produce json
// @Security BearerAuth
// @Success 200 {array} CertificateResponse
// @Router /certificates [get]
func (h *CertificateHandler) List(c echo.Context) error {
	certs, err := h.certificateService.List(c.Request().Context())
	if err != nil {
		return serviceError(c, err)
	}
	out := make([]CertificateResponse, 0, len(certs))
	for i := range certs {
		resp := toCertificateResponse(&certs[i])
		resp.QRCode = "" // large; fetch one certificate to get it
		out = append(out, resp)
	}
	return c.JSON(http.StatusOK, out)
}

// Revoke godoc
// @Summary Revoke a certificate
// @Tags certificates
// @Produce json
// @Security BearerAuth
// @Param id path string true "Certificate ID"
// @Success 200 {object} CertificateResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /certificates/{id}/revoke [patch]
func (h *CertificateHandler) Revoke(c echo.Context) error {
	cert, err := h.certificateService.Revoke(c.Request().Context(), c.Param("id"))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, toCertificateResponse(cert))
}

// Purge godoc
// @Summary Delete a certificate permanently
// @Tags certificates
// @Produce json
// @Security BearerAuth
// @Param id path string true "Certificate ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} errors.ErrorResponse
// @Router /certificates/{id} [delete]
func (h *CertificateHandler) Purge(c echo.Context) error {
	if err := h.certificateService.Purge(c.Request().Context(), c.Param("id")); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": "certificate deleted",
	})
}
