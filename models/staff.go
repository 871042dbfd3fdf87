package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Staff is a barber working in a shop. UserID is nil until the barber
// claims the record with their own account.
type Staff struct {
	ID           uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	ShopID       uuid.UUID  `gorm:"type:uuid;index;not null" json:"shopId"`
	UserID       *uuid.UUID `gorm:"type:uuid;index" json:"userId"`
	FullName     string     `gorm:"not null" json:"fullName"`
	AvatarURL    string     `json:"avatarUrl"`
	DisplayOrder int        `gorm:"default:0" json:"displayOrder"`
	IsActive     bool       `gorm:"default:true" json:"isActive"`

	Schedules []WorkingHours `gorm:"foreignKey:StaffID;constraint:OnDelete:CASCADE" json:"schedules,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Staff) TableName() string {
	return "staff"
}

func (s *Staff) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return
}

func (s *Staff) IsClaimed() bool {
	return s.UserID != nil && *s.UserID != uuid.Nil
}
