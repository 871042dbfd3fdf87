package services

import (
	"context"
	"fmt"
	"time"

	"barberbook-backend/models"
	"barberbook-backend/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SlotPolicy decides when a grid slot counts as busy.
type SlotPolicy int

const (
	// PolicyOverlap marks a slot busy when a booking of the selected
	// duration starting there would intersect an active appointment.
	PolicyOverlap SlotPolicy = iota
	// PolicyExactStart marks a slot busy only when an active appointment
	// starts at exactly that HH:MM.
	PolicyExactStart
)

func ParseSlotPolicy(s string) SlotPolicy {
	if s == "exact" {
		return PolicyExactStart
	}
	return PolicyOverlap
}

// Window is an operating window in minutes since midnight, [Open, Close).
type Window struct {
	Open  int
	Close int
}

// DefaultWindow is the fixed 09:00-21:00 grid every shop page shows.
var DefaultWindow = Window{Open: 9 * 60, Close: 21 * 60}

const (
	DefaultSlotStep     = 30 * time.Minute
	defaultSlotDuration = 30 * time.Minute
)

// GenerateSlots lists HH:MM start times from w.Open up to, not including, w.Close.
func GenerateSlots(w Window, step time.Duration) []string {
	stepMin := int(step / time.Minute)
	if stepMin <= 0 || w.Close <= w.Open {
		return []string{}
	}
	slots := make([]string, 0, (w.Close-w.Open)/stepMin)
	for m := w.Open; m < w.Close; m += stepMin {
		slots = append(slots, fmt.Sprintf("%02d:%02d", m/60, m%60))
	}
	return slots
}

type Slot struct {
	Time string `json:"time"`
	Busy bool   `json:"busy"`
}

// Interval is a reserved [Start, End) range.
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type AvailabilityQuery struct {
	StaffID         uuid.UUID
	Date            time.Time // any instant on the calendar day, in the shop location
	DurationMinutes int       // selected service duration, 0 when unknown
}

type AvailabilityService struct {
	db        *gorm.DB
	loc       *time.Location
	policy    SlotPolicy
	step      time.Duration
	useHours  bool
	busyCache *BusyCache
}

type AvailabilityOption func(*AvailabilityService)

func WithPolicy(p SlotPolicy) AvailabilityOption {
	return func(s *AvailabilityService) { s.policy = p }
}

func WithStep(step time.Duration) AvailabilityOption {
	return func(s *AvailabilityService) {
		if step > 0 {
			s.step = step
		}
	}
}

// WithWorkingHours derives the window from the staff's WorkingHours row
// for the weekday instead of the fixed grid.
func WithWorkingHours(enabled bool) AvailabilityOption {
	return func(s *AvailabilityService) { s.useHours = enabled }
}

func WithBusyCache(c *BusyCache) AvailabilityOption {
	return func(s *AvailabilityService) { s.busyCache = c }
}

func NewAvailabilityService(db *gorm.DB, loc *time.Location, opts ...AvailabilityOption) *AvailabilityService {
	if loc == nil {
		loc = time.UTC
	}
	s := &AvailabilityService{db: db, loc: loc, policy: PolicyOverlap, step: DefaultSlotStep}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *AvailabilityService) Location() *time.Location { return s.loc }

// BusyIntervals returns the active appointments of a staff member that
// start on the given calendar day, ordered by start.
func (s *AvailabilityService) BusyIntervals(ctx context.Context, staffID uuid.UUID, date time.Time) ([]Interval, error) {
	day := date.In(s.loc)
	cached, version, ok := s.busyCache.Get(ctx, staffID, day)
	if ok {
		return cached, nil
	}

	var rows []models.Appointment
	err := s.db.WithContext(ctx).
		Select("start_time", "end_time").
		Where("staff_id = ? AND start_time >= ? AND start_time <= ? AND status <> ?",
			staffID, utils.BeginningOfDay(day).UTC(), utils.EndOfDay(day).UTC(), models.StatusCancelled).
		Order("start_time").
		Find(&rows).Error
	if err != nil {
		return nil, &PersistenceError{Op: "load appointments", Err: err}
	}

	busy := make([]Interval, 0, len(rows))
	for _, r := range rows {
		busy = append(busy, Interval{Start: r.StartTime.In(s.loc), End: r.EndTime.In(s.loc)})
	}
	s.busyCache.Set(ctx, staffID, day, version, busy)
	return busy, nil
}

// Availability lays the busy intervals of the day over the slot grid.
func (s *AvailabilityService) Availability(ctx context.Context, q AvailabilityQuery) ([]Slot, error) {
	day := utils.BeginningOfDay(q.Date.In(s.loc))

	window, err := s.window(ctx, q.StaffID, day)
	if err != nil {
		return nil, err
	}
	grid := GenerateSlots(window, s.step)
	if len(grid) == 0 {
		return []Slot{}, nil
	}

	busy, err := s.BusyIntervals(ctx, q.StaffID, day)
	if err != nil {
		return nil, err
	}

	duration := time.Duration(q.DurationMinutes) * time.Minute
	if duration <= 0 {
		duration = defaultSlotDuration
	}
	return MarkBusy(day, grid, busy, s.policy, duration), nil
}

// MarkBusy flags each grid slot of day according to policy.
func MarkBusy(day time.Time, grid []string, busy []Interval, policy SlotPolicy, duration time.Duration) []Slot {
	starts := make(map[string]bool, len(busy))
	for _, b := range busy {
		starts[b.Start.In(day.Location()).Format(utils.ClockLayout)] = true
	}

	slots := make([]Slot, 0, len(grid))
	for _, hm := range grid {
		slot := Slot{Time: hm}
		switch policy {
		case PolicyExactStart:
			slot.Busy = starts[hm]
		default:
			start, err := utils.CombineDateTime(day, hm)
			if err != nil {
				continue
			}
			slot.Busy = overlapsAny(start, start.Add(duration), busy)
		}
		slots = append(slots, slot)
	}
	return slots
}

func overlapsAny(start, end time.Time, busy []Interval) bool {
	for _, b := range busy {
		if !b.Start.Before(end) {
			break
		}
		if start.Before(b.End) && b.Start.Before(end) {
			return true
		}
	}
	return false
}

// CheckStart returns a ValidationError unless start is one of the slots the
// grid offers for staffID on that calendar day.
func (s *AvailabilityService) CheckStart(ctx context.Context, staffID uuid.UUID, start time.Time) error {
	local := start.In(s.loc)
	w, err := s.window(ctx, staffID, utils.BeginningOfDay(local))
	if err != nil {
		return err
	}
	grid := GenerateSlots(w, s.step)
	if len(grid) == 0 {
		return validationf("The barber is not working on this day")
	}
	if local.Second() != 0 || local.Nanosecond() != 0 {
		return validationf("Please pick one of the offered times")
	}
	hm := local.Format(utils.ClockLayout)
	for _, slot := range grid {
		if slot == hm {
			return nil
		}
	}
	return validationf("Please pick one of the offered times")
}

func (s *AvailabilityService) window(ctx context.Context, staffID uuid.UUID, day time.Time) (Window, error) {
	if !s.useHours {
		return DefaultWindow, nil
	}
	var wh models.WorkingHours
	err := s.db.WithContext(ctx).
		Where("staff_id = ? AND weekday = ?", staffID, int(day.Weekday())).
		Limit(1).Find(&wh).Error
	if err != nil {
		return Window{}, &PersistenceError{Op: "load working hours", Err: err}
	}
	if wh.ID == uuid.Nil || !wh.IsActive {
		return Window{}, nil
	}
	open, err := utils.ParseClock(wh.StartTime)
	if err != nil {
		return Window{}, nil
	}
	closeAt, err := utils.ParseClock(wh.EndTime)
	if err != nil {
		return Window{}, nil
	}
	return Window{Open: open, Close: closeAt}, nil
}
