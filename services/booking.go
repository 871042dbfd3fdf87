package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"barberbook-backend/models"
	"barberbook-backend/queue"
	"barberbook-backend/utils"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OwnerAppointmentsLink is where the shop owner manages incoming bookings.
const OwnerAppointmentsLink = "/dashboard/shop?tab=appointments"

// pgExclusionViolation is raised by the appointments_no_overlap constraint.
const pgExclusionViolation = "23P01"

// Requester identifies who is booking: a signed-in user, or a guest
// giving a name and phone number.
type Requester struct {
	UserID *uuid.UUID
	Name   string
	Phone  string
}

func (r Requester) IsGuest() bool {
	return r.UserID == nil || *r.UserID == uuid.Nil
}

type BookingRequest struct {
	ShopID    uuid.UUID
	ServiceID uuid.UUID
	StaffID   uuid.UUID
	Date      string // YYYY-MM-DD
	Time      string // HH:MM
	Requester Requester
}

type BookingService struct {
	db            *gorm.DB
	loc           *time.Location
	cache         *BusyCache
	slots         *AvailabilityService
	notifications *NotificationService
	publisher     queue.Publisher
	timeout       time.Duration
	now           func() time.Time
}

type BookingOption func(*BookingService)

func WithBookingCache(c *BusyCache) BookingOption {
	return func(s *BookingService) { s.cache = c }
}

// WithSlotGrid checks requested times against the grid availability offers.
// Without it bookings are checked against the fixed default grid.
func WithSlotGrid(a *AvailabilityService) BookingOption {
	return func(s *BookingService) {
		if a != nil {
			s.slots = a
		}
	}
}

func WithPublisher(p queue.Publisher) BookingOption {
	return func(s *BookingService) { s.publisher = p }
}

func WithBookingTimeout(d time.Duration) BookingOption {
	return func(s *BookingService) { s.timeout = d }
}

func WithClock(now func() time.Time) BookingOption {
	return func(s *BookingService) { s.now = now }
}

func NewBookingService(db *gorm.DB, loc *time.Location, notifications *NotificationService, opts ...BookingOption) *BookingService {
	if loc == nil {
		loc = time.UTC
	}
	s := &BookingService{
		db:            db,
		loc:           loc,
		slots:         NewAvailabilityService(db, loc),
		notifications: notifications,
		timeout:       10 * time.Second,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type bookingTarget struct {
	shop    models.Shop
	service models.Service
	staff   models.Staff
}

type customer struct {
	userID *uuid.UUID
	name   string
	phone  string
}

// Book validates the selection and commits a pending appointment. The
// shop owner notification and the outbound message event are sent after
// commit; their failures are logged and never undo the booking.
func (s *BookingService) Book(ctx context.Context, req BookingRequest) (*models.Appointment, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	if req.ServiceID == uuid.Nil || req.StaffID == uuid.Nil || strings.TrimSpace(req.Date) == "" || strings.TrimSpace(req.Time) == "" {
		return nil, validationf("Please choose a service, a barber, a date and a time")
	}

	cust, err := s.resolveCustomer(ctx, req.Requester)
	if err != nil {
		return nil, err
	}

	day, err := utils.ParseDate(req.Date, s.loc)
	if err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}
	start, err := utils.CombineDateTime(day, req.Time)
	if err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}
	if start.Before(s.now()) {
		return nil, validationf("The selected time has already passed")
	}

	target, err := s.loadTarget(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := s.slots.CheckStart(ctx, target.staff.ID, start); err != nil {
		return nil, err
	}
	end := start.Add(time.Duration(target.service.Duration) * time.Minute)

	appt := models.Appointment{
		ShopID:          target.shop.ID,
		StaffID:         target.staff.ID,
		ServiceID:       target.service.ID,
		StartTime:       start.UTC(),
		EndTime:         end.UTC(),
		Status:          models.StatusPending,
		CreatedByUserID: cust.userID,
		CustomerName:    cust.name,
		CustomerPhone:   cust.phone,
	}

	if err := s.commit(ctx, &appt); err != nil {
		return nil, err
	}

	// The client may be gone by now; the side effects still run.
	s.afterCommit(context.WithoutCancel(ctx), target, appt)
	return &appt, nil
}

func (s *BookingService) resolveCustomer(ctx context.Context, r Requester) (customer, error) {
	if r.IsGuest() {
		name := strings.TrimSpace(r.Name)
		if name == "" {
			return customer{}, validationf("Please enter your name")
		}
		phone := utils.ValidatePhone(r.Phone)
		if !phone.IsValid {
			return customer{}, validationf("Please enter a valid mobile number (05XX XXX XX XX)")
		}
		return customer{name: name, phone: phone.Clean}, nil
	}

	var user models.User
	err := s.db.WithContext(ctx).Where("id = ?", *r.UserID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return customer{}, validationf("Your profile could not be found, please sign in again")
	}
	if err != nil {
		return customer{}, &PersistenceError{Op: "load profile", Err: err}
	}
	if strings.TrimSpace(user.Phone) == "" {
		return customer{}, validationf("Please add your phone number to your profile before booking")
	}

	phone := user.Phone
	if p := utils.ValidatePhone(user.Phone); p.IsValid {
		phone = p.Clean
	}
	id := user.ID
	return customer{userID: &id, name: user.Name, phone: phone}, nil
}

func (s *BookingService) loadTarget(ctx context.Context, req BookingRequest) (bookingTarget, error) {
	var t bookingTarget
	db := s.db.WithContext(ctx)

	if err := db.Where("id = ?", req.ShopID).First(&t.shop).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return t, ErrNotFound
		}
		return t, &PersistenceError{Op: "load shop", Err: err}
	}

	err := db.Where("id = ? AND shop_id = ?", req.ServiceID, t.shop.ID).First(&t.service).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && !t.service.IsActive) {
		return t, validationf("This service is not offered by the shop")
	}
	if err != nil {
		return t, &PersistenceError{Op: "load service", Err: err}
	}
	if t.service.Duration <= 0 {
		return t, validationf("This service has no duration configured")
	}

	err = db.Where("id = ? AND shop_id = ?", req.StaffID, t.shop.ID).First(&t.staff).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && !t.staff.IsActive) {
		return t, validationf("This barber does not work at the shop")
	}
	if err != nil {
		return t, &PersistenceError{Op: "load staff", Err: err}
	}
	return t, nil
}

// commit inserts appt while holding the staff row lock, so two bookings
// for one barber are checked and written one after the other.
func (s *BookingService) commit(ctx context.Context, appt *models.Appointment) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var staff models.Staff
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", appt.StaffID).First(&staff).Error; err != nil {
			return err
		}

		var clashes int64
		if err := tx.Model(&models.Appointment{}).
			Where("staff_id = ? AND status IN ? AND start_time < ? AND end_time > ?",
				appt.StaffID, models.ActiveStatuses, appt.EndTime, appt.StartTime).
			Count(&clashes).Error; err != nil {
			return err
		}
		if clashes > 0 {
			return errSlotTaken
		}

		return tx.Create(appt).Error
	})
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.Is(err, errSlotTaken) || (errors.As(err, &pgErr) && pgErr.Code == pgExclusionViolation) {
		return &ConflictError{Message: "This time slot was just taken, please pick another one"}
	}
	return &PersistenceError{Op: "create appointment", Err: err}
}

var errSlotTaken = errors.New("slot taken")

func (s *BookingService) afterCommit(ctx context.Context, t bookingTarget, appt models.Appointment) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	start := appt.StartTime.In(s.loc)
	s.cache.Invalidate(ctx, appt.StaffID, utils.BeginningOfDay(start))

	if s.notifications != nil {
		n := models.Notification{
			UserID: t.shop.OwnerUserID,
			Title:  "New appointment",
			Message: fmt.Sprintf("%s booked %s with %s on %s at %s",
				appt.CustomerName, t.service.Name, t.staff.FullName,
				start.Format("02.01.2006"), start.Format(utils.ClockLayout)),
			Link: OwnerAppointmentsLink,
		}
		if err := s.notifications.Create(ctx, &n); err != nil {
			log.Printf("Appointment %s: owner notification failed: %v", appt.ID, err)
		}
	}

	if s.publisher != nil {
		ev := queue.BookingCreatedEvent{
			AppointmentID: appt.ID.String(),
			ShopID:        t.shop.ID.String(),
			ShopName:      t.shop.Name,
			StaffName:     t.staff.FullName,
			ServiceName:   t.service.Name,
			CustomerName:  appt.CustomerName,
			CustomerPhone: appt.CustomerPhone,
			OwnerPhone:    s.ownerPhone(ctx, t.shop.OwnerUserID),
			StartsAt:      start.Format(time.RFC3339),
			EndsAt:        appt.EndTime.In(s.loc).Format(time.RFC3339),
			CreatedAt:     time.Now().UTC().Format(time.RFC3339),
		}
		if err := s.publisher.PublishBookingCreated(ctx, ev); err != nil {
			log.Printf("Appointment %s: publish booking event failed: %v", appt.ID, err)
		}
	}
}

func (s *BookingService) ownerPhone(ctx context.Context, ownerID uuid.UUID) string {
	var owner models.User
	if err := s.db.WithContext(ctx).Select("phone").Where("id = ?", ownerID).Limit(1).Find(&owner).Error; err != nil {
		return ""
	}
	return owner.Phone
}
