package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Service struct {
	ID           uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	ShopID       uuid.UUID       `gorm:"type:uuid;index;not null" json:"shopId"`
	Name         string          `gorm:"not null" json:"name"`
	Price        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Duration     int             `gorm:"not null" json:"duration"` // in minutes
	DisplayOrder int             `gorm:"default:0" json:"displayOrder"`
	IsActive     bool            `gorm:"default:true" json:"isActive"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (s *Service) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return
}
