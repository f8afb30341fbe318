package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CertificateStatus represents the status of a certificate.
// The only transition is active -> revoked.
type CertificateStatus string

const (
	CertificateStatusActive  CertificateStatus = "active"
	CertificateStatusRevoked CertificateStatus = "revoked"
)

// Grade is the result recorded on a certificate.
type Grade string

const (
	GradeAPlus Grade = "A+"
	GradeA     Grade = "A"
	GradeBPlus Grade = "B+"
	GradeB     Grade = "B"
	GradeC     Grade = "C"
	GradePass  Grade = "Pass"
)

// Valid reports whether g is a known grade.
func (g Grade) Valid() bool {
	switch g {
	case GradeAPlus, GradeA, GradeBPlus, GradeB, GradeC, GradePass:
		return true
	}
	return false
}

// Certificate is a course completion credential awarded to a user.
// A user holds at most one certificate per course.
type Certificate struct {
	ID            uuid.UUID         `json:"id" gorm:"type:char(36);primaryKey"`
	CertificateID string            `json:"certificate_id" gorm:"size:32;not null;uniqueIndex"`
	UserID        uuid.UUID         `json:"user_id" gorm:"type:char(36);not null;uniqueIndex:idx_certificate_holder_course"`
	CourseID      uuid.UUID         `json:"course_id" gorm:"type:char(36);not null;uniqueIndex:idx_certificate_holder_course"`
	IssuedAt      time.Time         `json:"issued_at" gorm:"not null"`
	CompletedAt   time.Time         `json:"completed_at" gorm:"not null"`
	QRCode        string            `json:"qr_code" gorm:"type:mediumtext"` // PNG data URI of the verification link
	Grade         Grade             `json:"grade" gorm:"type:varchar(10);not null;default:'Pass'"`
	Status        CertificateStatus `json:"status" gorm:"type:varchar(20);not null;default:'active';index"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`

	// Relations
	User   User   `json:"-" gorm:"foreignKey:UserID"`
	Course Course `json:"-" gorm:"foreignKey:CourseID"`
}

// BeforeCreate sets UUID before creating the record.
func (c *Certificate) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// RetiredCertificateID records a certificate id that was purged.
// Purged ids are never handed out again.
type RetiredCertificateID struct {
	CertificateID string    `json:"certificate_id" gorm:"size:32;primaryKey"`
	PurgedAt      time.Time `json:"purged_at" gorm:"not null"`
}
