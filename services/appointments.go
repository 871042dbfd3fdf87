package services

import (
	"context"
	"errors"
	"time"

	"barberbook-backend/models"
	"barberbook-backend/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AppointmentService covers what happens to an appointment after booking.
type AppointmentService struct {
	db    *gorm.DB
	loc   *time.Location
	cache *BusyCache
	now   func() time.Time
}

type AppointmentOption func(*AppointmentService)

func WithAppointmentClock(now func() time.Time) AppointmentOption {
	return func(s *AppointmentService) { s.now = now }
}

func NewAppointmentService(db *gorm.DB, loc *time.Location, cache *BusyCache, opts ...AppointmentOption) *AppointmentService {
	if loc == nil {
		loc = time.UTC
	}
	s := &AppointmentService{db: db, loc: loc, cache: cache, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AppointmentFilter narrows a shop's appointment list. Zero values match all.
type AppointmentFilter struct {
	Status models.AppointmentStatus
	Date   string // YYYY-MM-DD
}

func (s *AppointmentService) ListForShop(ctx context.Context, shopID uuid.UUID, f AppointmentFilter) ([]models.Appointment, error) {
	q := s.db.WithContext(ctx).
		Preload("Service").Preload("Staff").
		Where("shop_id = ?", shopID)
	if f.Status != "" {
		if !f.Status.Valid() {
			return nil, validationf("unknown status %q", f.Status)
		}
		q = q.Where("status = ?", f.Status)
	}
	if f.Date != "" {
		day, err := utils.ParseDate(f.Date, s.loc)
		if err != nil {
			return nil, &ValidationError{Message: err.Error()}
		}
		q = q.Where("start_time >= ? AND start_time <= ?", utils.BeginningOfDay(day).UTC(), utils.EndOfDay(day).UTC())
	}

	var list []models.Appointment
	if err := q.Order("start_time ASC").Find(&list).Error; err != nil {
		return nil, &PersistenceError{Op: "list appointments", Err: err}
	}
	return list, nil
}

// ListActiveForStaff returns the pending and confirmed appointments of a
// barber, soonest first.
func (s *AppointmentService) ListActiveForStaff(ctx context.Context, staffID uuid.UUID) ([]models.Appointment, error) {
	var list []models.Appointment
	err := s.db.WithContext(ctx).
		Preload("Service").
		Where("staff_id = ? AND status IN ?", staffID, models.ActiveStatuses).
		Order("start_time ASC").
		Find(&list).Error
	if err != nil {
		return nil, &PersistenceError{Op: "list appointments", Err: err}
	}
	return list, nil
}

func (s *AppointmentService) ListForCustomer(ctx context.Context, userID uuid.UUID) ([]models.Appointment, error) {
	var list []models.Appointment
	err := s.db.WithContext(ctx).
		Preload("Service").Preload("Staff").
		Where("created_by_user_id = ?", userID).
		Order("start_time DESC").
		Find(&list).Error
	if err != nil {
		return nil, &PersistenceError{Op: "list appointments", Err: err}
	}
	return list, nil
}

// AppointmentScope restricts which appointment a status change may touch.
type AppointmentScope struct {
	ShopID     *uuid.UUID
	StaffID    *uuid.UUID
	CustomerID *uuid.UUID
	// StartsAfter rejects appointments that start at or before it.
	StartsAfter *time.Time
}

// UpdateStatus moves an appointment along pending -> confirmed ->
// completed, or to cancelled. Cancelled rows are kept for history.
func (s *AppointmentService) UpdateStatus(ctx context.Context, id uuid.UUID, scope AppointmentScope, next models.AppointmentStatus) (*models.Appointment, error) {
	if !next.Valid() {
		return nil, validationf("unknown status %q", next)
	}

	var appt models.Appointment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Where("id = ?", id)
		if scope.ShopID != nil {
			q = q.Where("shop_id = ?", *scope.ShopID)
		}
		if scope.StaffID != nil {
			q = q.Where("staff_id = ?", *scope.StaffID)
		}
		if scope.CustomerID != nil {
			q = q.Where("created_by_user_id = ?", *scope.CustomerID)
		}
		if err := q.First(&appt).Error; err != nil {
			return err
		}
		if scope.StartsAfter != nil && !appt.StartTime.After(*scope.StartsAfter) {
			return validationf("This appointment has already started and can no longer be changed")
		}
		if !appt.Status.CanTransitionTo(next) {
			return validationf("cannot change an appointment from %s to %s", appt.Status, next)
		}
		appt.Status = next
		return tx.Model(&appt).Update("status", next).Error
	})
	if err != nil {
		var ve *ValidationError
		switch {
		case errors.As(err, &ve):
			return nil, err
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, ErrNotFound
		}
		return nil, &PersistenceError{Op: "update appointment", Err: err}
	}

	s.cache.Invalidate(ctx, appt.StaffID, utils.BeginningOfDay(appt.StartTime.In(s.loc)))
	return &appt, nil
}

// CancelForCustomer lets the customer who booked cancel a future appointment.
func (s *AppointmentService) CancelForCustomer(ctx context.Context, id, userID uuid.UUID) (*models.Appointment, error) {
	now := s.now()
	return s.UpdateStatus(ctx, id, AppointmentScope{CustomerID: &userID, StartsAfter: &now}, models.StatusCancelled)
}

// ExpireStale cancels pending appointments whose start has passed without
// the shop confirming them. It returns the number of rows changed.
func (s *AppointmentService) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.Appointment{}).
		Where("status = ? AND start_time < ?", models.StatusPending, now.UTC()).
		Update("status", models.StatusCancelled)
	if res.Error != nil {
		return 0, &PersistenceError{Op: "expire appointments", Err: res.Error}
	}
	return res.RowsAffected, nil
}
