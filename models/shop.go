package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Shop struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Slug        string    `gorm:"uniqueIndex;not null" json:"slug"`
	Name        string    `gorm:"not null" json:"name"`
	OwnerUserID uuid.UUID `gorm:"type:uuid;index;not null" json:"ownerUserId"`
	Address     string    `json:"address"`
	Description string    `json:"description"`
	ImageURL    string    `json:"imageUrl"`
	PublicCode  string    `gorm:"type:varchar(16);uniqueIndex:idx_shops_public_code,where:public_code <> ''" json:"publicCode"`

	Staff        []Staff       `gorm:"foreignKey:ShopID;constraint:OnDelete:CASCADE" json:"staff,omitempty"`
	Services     []Service     `gorm:"foreignKey:ShopID;constraint:OnDelete:CASCADE" json:"services,omitempty"`
	Appointments []Appointment `gorm:"foreignKey:ShopID;constraint:OnDelete:CASCADE" json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (s *Shop) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return
}
