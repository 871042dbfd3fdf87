package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WorkingHours holds one weekday of a staff calendar. A missing row means
// the staff member does not work that day.
type WorkingHours struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	StaffID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_staff_weekday" json:"staffId"`
	Weekday   int       `gorm:"not null;uniqueIndex:idx_staff_weekday" json:"weekday"` // 0=Sunday, 6=Saturday
	StartTime string    `gorm:"type:varchar(5);not null;default:'09:00'" json:"startTime"`
	EndTime   string    `gorm:"type:varchar(5);not null;default:'21:00'" json:"endTime"`
	IsActive  bool      `gorm:"default:true" json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (WorkingHours) TableName() string {
	return "working_hours"
}

func (w *WorkingHours) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}
