package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
)

// ActiveStatuses are the statuses that hold a staff member's time.
var ActiveStatuses = []AppointmentStatus{StatusPending, StatusConfirmed}

func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether staff may move an appointment from s to next.
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusConfirmed || next == StatusCancelled
	case StatusConfirmed:
		return next == StatusCompleted || next == StatusCancelled
	}
	return false
}

// Appointment is a reservation of one service with one staff member.
// Guests are identified by CustomerName/CustomerPhone; signed-in customers
// by CreatedByUserID, with name and phone copied from their profile.
type Appointment struct {
	ID              uuid.UUID         `gorm:"type:uuid;primary_key" json:"id"`
	ShopID          uuid.UUID         `gorm:"type:uuid;index;not null" json:"shopId"`
	StaffID         uuid.UUID         `gorm:"type:uuid;index:idx_staff_start,priority:1;not null" json:"staffId"`
	ServiceID       uuid.UUID         `gorm:"type:uuid;index;not null" json:"serviceId"`
	StartTime       time.Time         `gorm:"index:idx_staff_start,priority:2;not null" json:"startTime"`
	EndTime         time.Time         `gorm:"not null" json:"endTime"`
	Status          AppointmentStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	CreatedByUserID *uuid.UUID        `gorm:"type:uuid;index" json:"createdByUserId"`
	CustomerName    string            `json:"customerName"`
	CustomerPhone   string            `json:"customerPhone"`
	ReminderSentAt  *time.Time        `json:"reminderSentAt,omitempty"`

	Service *Service `gorm:"foreignKey:ServiceID" json:"service,omitempty"`
	Staff   *Staff   `gorm:"foreignKey:StaffID" json:"staff,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.Status == "" {
		a.Status = StatusPending
	}
	return
}

// Overlaps reports whether [start, end) intersects the appointment.
func (a *Appointment) Overlaps(start, end time.Time) bool {
	return start.Before(a.EndTime) && end.After(a.StartTime)
}
