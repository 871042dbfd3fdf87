package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"barberbook-backend/models"
	"barberbook-backend/utils"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// ReminderService runs the periodic jobs: day-before reminders and the
// expiry of pending appointments nobody confirmed.
type ReminderService struct {
	db           *gorm.DB
	sender       *MessageSender
	appointments *AppointmentService
	loc          *time.Location
	cron         *cron.Cron
	now          func() time.Time
}

func NewReminderService(db *gorm.DB, sender *MessageSender, appointments *AppointmentService, loc *time.Location) *ReminderService {
	if loc == nil {
		loc = time.UTC
	}
	return &ReminderService{
		db:           db,
		sender:       sender,
		appointments: appointments,
		loc:          loc,
		cron:         cron.New(cron.WithLocation(loc)),
		now:          time.Now,
	}
}

func (s *ReminderService) StartScheduler(reminderSpec, expirySpec string) error {
	if _, err := s.cron.AddFunc(reminderSpec, func() {
		s.SendDailyReminders(context.Background())
	}); err != nil {
		return fmt.Errorf("reminder schedule %q: %w", reminderSpec, err)
	}
	if _, err := s.cron.AddFunc(expirySpec, func() {
		n, err := s.appointments.ExpireStale(context.Background(), s.now())
		if err != nil {
			log.Printf("Expiring pending appointments failed: %v", err)
			return
		}
		if n > 0 {
			log.Printf("Expired %d pending appointments", n)
		}
	}); err != nil {
		return fmt.Errorf("expiry schedule %q: %w", expirySpec, err)
	}

	s.cron.Start()
	log.Println("Reminder scheduler started")
	return nil
}

func (s *ReminderService) Stop() context.Context {
	return s.cron.Stop()
}

// SendDailyReminders texts every customer with an active appointment
// tomorrow who has not been reminded yet.
func (s *ReminderService) SendDailyReminders(ctx context.Context) int {
	log.Println("Starting daily reminder processing...")

	tomorrow := utils.BeginningOfDay(s.now().In(s.loc)).AddDate(0, 0, 1)
	var due []models.Appointment
	err := s.db.WithContext(ctx).
		Preload("Service").Preload("Staff").
		Where("status IN ? AND reminder_sent_at IS NULL AND start_time >= ? AND start_time <= ?",
			models.ActiveStatuses, tomorrow.UTC(), utils.EndOfDay(tomorrow).UTC()).
		Find(&due).Error
	if err != nil {
		log.Printf("Failed to fetch appointments for reminders: %v", err)
		return 0
	}

	sent := 0
	for _, appt := range due {
		if appt.CustomerPhone == "" {
			continue
		}
		if err := s.sender.Remind(ctx, appt); err != nil {
			log.Printf("Reminder for appointment %s failed: %v", appt.ID, err)
			continue
		}
		sent++
	}

	log.Printf("Daily reminder processing completed, %d sent", sent)
	return sent
}
