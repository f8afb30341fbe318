package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Course is a program a student can complete and be certified for.
type Course struct {
	ID          uuid.UUID                   `json:"id" gorm:"type:char(36);primaryKey"`
	Title       string                      `json:"title" gorm:"size:255;not null;index"`
	Description string                      `json:"description" gorm:"type:text"`
	Duration    string                      `json:"duration" gorm:"size:100"` // e.g. "12 weeks"
	Modules     datatypes.JSONSlice[string] `json:"modules" gorm:"type:json"`
	Price       decimal.Decimal             `json:"price" gorm:"type:decimal(20,2);not null;default:0"`
	CreatedAt   time.Time                   `json:"created_at"`
	UpdatedAt   time.Time                   `json:"updated_at"`
}

// BeforeCreate sets UUID before creating the record.
func (c *Course) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
