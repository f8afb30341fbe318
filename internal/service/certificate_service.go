package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	apperrors "learnhub/internal/errors"
	"learnhub/internal/logging"
	"learnhub/internal/model"
	"learnhub/internal/qr"
	"learnhub/internal/repository"
)

const (
	verificationPath = "/verify-certificate"
	verifyDateLayout = "January 2, 2006"

	// MessageCertificateNotFound is shown for unknown and purged ids alike.
	MessageCertificateNotFound = "Certificate not found"
	// MessageCertificateRevoked is shown for revoked certificates.
	MessageCertificateRevoked = "This certificate has been revoked"
	// MessageCertificateValid is shown for active certificates.
	MessageCertificateValid = "Certificate is valid"
)

// IssueCertificateInput holds the caller supplied part of a new certificate.
// Grade defaults to Pass and CompletedAt to the issuance time.
type IssueCertificateInput struct {
	UserID      uuid.UUID
	CourseID    uuid.UUID
	Grade       model.Grade
	CompletedAt *time.Time
}

// VerificationResult is the public answer to "is this certificate genuine".
type VerificationResult struct {
	Valid          bool        `json:"valid"`
	Message        string      `json:"message"`
	CertificateID  string      `json:"certificateId,omitempty"`
	StudentName    string      `json:"studentName,omitempty"`
	CourseName     string      `json:"courseName,omitempty"`
	IssueDate      string      `json:"issueDate,omitempty"`
	CompletionDate string      `json:"completionDate,omitempty"`
	Grade          model.Grade `json:"grade,omitempty"`
	CourseDuration string      `json:"courseDuration,omitempty"`
	CourseModules  []string    `json:"courseModules,omitempty"`
}

// CertificateService issues, verifies, revokes and purges certificates.
type CertificateService interface {
	Issue(ctx context.Context, in IssueCertificateInput) (*model.Certificate, error)
	Verify(ctx context.Context, certificateID string) (*VerificationResult, error)
	Revoke(ctx context.Context, certificateID string) (*model.Certificate, error)
	Purge(ctx context.Context, certificateID string) error
	Get(ctx context.Context, certificateID string) (*model.Certificate, error)
	List(ctx context.Context) ([]model.Certificate, error)
}

type certificateService struct {
	certRepo      repository.CertificateRepository
	userRepo      repository.UserRepository
	courseRepo    repository.CourseRepository
	renderer      qr.Renderer
	publicBaseURL string

	newID func(now time.Time) string
	now   func() time.Time
}

// NewCertificateService creates a new certificate service. Verification
// links are built on publicBaseURL.
func NewCertificateService(
	certRepo repository.CertificateRepository,
	userRepo repository.UserRepository,
	courseRepo repository.CourseRepository,
	renderer qr.Renderer,
	publicBaseURL string,
) CertificateService {
	return &certificateService{
		certRepo:      certRepo,
		userRepo:      userRepo,
		courseRepo:    courseRepo,
		renderer:      renderer,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		newID:         GenerateCertificateID,
		now:           time.Now,
	}
}

// Issue awards a certificate for a course to a user.
func (s *certificateService) Issue(ctx context.Context, in IssueCertificateInput) (*model.Certificate, error) {
	if in.UserID == uuid.Nil {
		return nil, apperrors.Validationf("user_id is required")
	}
	if in.CourseID == uuid.Nil {
		return nil, apperrors.Validationf("course_id is required")
	}
	grade := in.Grade
	if grade == "" {
		grade = model.GradePass
	}
	if !grade.Valid() {
		return nil, apperrors.ErrInvalidGrade
	}

	user, err := s.userRepo.FindByID(ctx, in.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	course, err := s.courseRepo.FindByID(ctx, in.CourseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCourseNotFound
		}
		return nil, fmt.Errorf("find course: %w", err)
	}

	if err := s.ensureNotIssued(ctx, user.ID, course.ID); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	completedAt := now
	if in.CompletedAt != nil && !in.CompletedAt.IsZero() {
		completedAt = in.CompletedAt.UTC()
	}

	for attempt := 1; attempt <= maxCertificateIDAttempts; attempt++ {
		candidate := s.newID(now)
		taken, err := s.certRepo.CertificateIDTaken(ctx, candidate)
		if err != nil {
			return nil, fmt.Errorf("check certificate id: %w", err)
		}
		if taken {
			logging.Log().WithFields(logrus.Fields{"certificate_id": candidate, "attempt": attempt}).Debug("certificate id collision, regenerating")
			continue
		}

		qrCode, err := s.renderer.Render(s.verificationURL(candidate))
		if err != nil {
			return nil, fmt.Errorf("render verification qr: %w", err)
		}

		cert := &model.Certificate{
			CertificateID: candidate,
			UserID:        user.ID,
			CourseID:      course.ID,
			IssuedAt:      now,
			CompletedAt:   completedAt,
			QRCode:        qrCode,
			Grade:         grade,
			Status:        model.CertificateStatusActive,
		}
		err = s.certRepo.Create(ctx, cert)
		if err == nil {
			cert.User = *user
			cert.Course = *course
			logging.Log().WithFields(logrus.Fields{
				"certificate_id": cert.CertificateID,
				"user_id":        user.ID,
				"course_id":      course.ID,
			}).Info("certificate issued")
			return cert, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("create certificate: %w", err)
		}

		// A concurrent insert claimed either the pair or the id.
		if err := s.ensureNotIssued(ctx, user.ID, course.ID); err != nil {
			return nil, err
		}
	}

	return nil, apperrors.ErrCertificateIDExhausted
}

func (s *certificateService) ensureNotIssued(ctx context.Context, userID, courseID uuid.UUID) error {
	existing, err := s.certRepo.FindByUserAndCourse(ctx, userID, courseID)
	if err == nil {
		return &apperrors.DuplicateCertificateError{CertificateID: existing.CertificateID}
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("check existing certificate: %w", err)
	}
	return nil
}

func (s *certificateService) verificationURL(certificateID string) string {
	return s.publicBaseURL + verificationPath + "?id=" + url.QueryEscape(certificateID)
}

// Verify reports whether a certificate id is genuine and active. Unknown ids
// are not an error; they produce an invalid result.
func (s *certificateService) Verify(ctx context.Context, certificateID string) (*VerificationResult, error) {
	certificateID = strings.TrimSpace(certificateID)
	if !ValidCertificateID(certificateID) {
		return &VerificationResult{Valid: false, Message: MessageCertificateNotFound}, nil
	}

	cert, err := s.certRepo.FindByCertificateID(ctx, certificateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &VerificationResult{Valid: false, Message: MessageCertificateNotFound}, nil
		}
		return nil, fmt.Errorf("find certificate: %w", err)
	}

	if cert.Status == model.CertificateStatusRevoked {
		return &VerificationResult{
			Valid:         false,
			Message:       MessageCertificateRevoked,
			CertificateID: cert.CertificateID,
		}, nil
	}

	result := &VerificationResult{
		Valid:          true,
		Message:        MessageCertificateValid,
		CertificateID:  cert.CertificateID,
		StudentName:    cert.User.Name,
		CourseName:     cert.Course.Title,
		IssueDate:      formatVerifyDate(cert.IssuedAt),
		CompletionDate: formatVerifyDate(cert.CompletedAt),
		Grade:          cert.Grade,
		CourseDuration: cert.Course.Duration,
	}
	if len(cert.Course.Modules) > 0 {
		result.CourseModules = append([]string(nil), cert.Course.Modules...)
	}
	return result, nil
}

func formatVerifyDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(verifyDateLayout)
}

// Revoke marks a certificate revoked. Revoking twice succeeds.
func (s *certificateService) Revoke(ctx context.Context, certificateID string) (*model.Certificate, error) {
	cert, err := s.Get(ctx, certificateID)
	if err != nil {
		return nil, err
	}

	if err := s.certRepo.UpdateStatus(ctx, cert.ID, model.CertificateStatusRevoked); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCertificateNotFound
		}
		return nil, fmt.Errorf("revoke certificate: %w", err)
	}
	cert.Status = model.CertificateStatusRevoked

	logging.Log().WithField("certificate_id", cert.CertificateID).Info("certificate revoked")
	return cert, nil
}

// Purge deletes a certificate regardless of its status. Its id is retired.
func (s *certificateService) Purge(ctx context.Context, certificateID string) error {
	if err := s.certRepo.Purge(ctx, certificateID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrCertificateNotFound
		}
		return fmt.Errorf("purge certificate: %w", err)
	}

	logging.Log().WithField("certificate_id", certificateID).Info("certificate purged")
	return nil
}

// Get returns a certificate by its public id.
func (s *certificateService) Get(ctx context.Context, certificateID string) (*model.Certificate, error) {
	cert, err := s.certRepo.FindByCertificateID(ctx, certificateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCertificateNotFound
		}
		return nil, fmt.Errorf("find certificate: %w", err)
	}
	return cert, nil
}

// List returns all certificates, newest first.
func (s *certificateService) List(ctx context.Context) ([]model.Certificate, error) {
	certs, err := s.certRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list certificates: %w", err)
	}
	return certs, nil
}
