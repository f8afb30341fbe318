package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"learnhub/internal/model"
)

// CertificateRepository defines certificate persistence operations.
type CertificateRepository interface {
	// Create inserts a certificate. A clash on the certificate id or on the
	// (user, course) pair surfaces as gorm.ErrDuplicatedKey.
	Create(ctx context.Context, cert *model.Certificate) error
	// FindByCertificateID loads a certificate with its user and course.
	FindByCertificateID(ctx context.Context, certificateID string) (*model.Certificate, error)
	FindByUserAndCourse(ctx context.Context, userID, courseID uuid.UUID) (*model.Certificate, error)
	// CertificateIDTaken reports whether id belongs to a live or purged certificate.
	CertificateIDTaken(ctx context.Context, certificateID string) (bool, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.CertificateStatus) error
	// Purge deletes the certificate and retires its id in one transaction.
	Purge(ctx context.Context, certificateID string) error
	List(ctx context.Context) ([]model.Certificate, error)
}

type certificateRepository struct {
	db *gorm.DB
}

// NewCertificateRepository creates a new certificate repository.
func NewCertificateRepository(db *gorm.DB) CertificateRepository {
	return &certificateRepository{db: db}
}

func (r *certificateRepository) Create(ctx context.Context, cert *model.Certificate) error {
	return r.db.WithContext(ctx).Omit("User", "Course").Create(cert).Error
}

func (r *certificateRepository) FindByCertificateID(ctx context.Context, certificateID string) (*model.Certificate, error) {
	var cert model.Certificate
	if err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Course").
		Where("certificate_id = ?", certificateID).
		First(&cert).Error; err != nil {
		return nil, err
	}
	return &cert, nil
}

func (r *certificateRepository) FindByUserAndCourse(ctx context.Context, userID, courseID uuid.UUID) (*model.Certificate, error) {
	var cert model.Certificate
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&cert).Error; err != nil {
		return nil, err
	}
	return &cert, nil
}

func (r *certificateRepository) CertificateIDTaken(ctx context.Context, certificateID string) (bool, error) {
	var live int64
	if err := r.db.WithContext(ctx).Model(&model.Certificate{}).
		Where("certificate_id = ?", certificateID).
		Count(&live).Error; err != nil {
		return false, err
	}
	if live > 0 {
		return true, nil
	}

	var retired int64
	if err := r.db.WithContext(ctx).Model(&model.RetiredCertificateID{}).
		Where("certificate_id = ?", certificateID).
		Count(&retired).Error; err != nil {
		return false, err
	}
	return retired > 0, nil
}

func (r *certificateRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.CertificateStatus) error {
	res := r.db.WithContext(ctx).Model(&model.Certificate{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// MySQL reports zero affected rows when the value is unchanged,
		// so confirm the row exists before calling it missing.
		var n int64
		if err := r.db.WithContext(ctx).Model(&model.Certificate{}).Where("id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return gorm.ErrRecordNotFound
		}
	}
	return nil
}

func (r *certificateRepository) Purge(ctx context.Context, certificateID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("certificate_id = ?", certificateID).Delete(&model.Certificate{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Create(&model.RetiredCertificateID{
			CertificateID: certificateID,
			PurgedAt:      time.Now().UTC(),
		}).Error
	})
}

func (r *certificateRepository) List(ctx context.Context) ([]model.Certificate, error) {
	var certs []model.Certificate
	if err := r.db.WithContext(ctx).Order("issued_at DESC").Find(&certs).Error; err != nil {
		return nil, err
	}
	return certs, nil
}
