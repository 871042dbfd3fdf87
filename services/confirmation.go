package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"barberbook-backend/models"
	"barberbook-backend/queue"
	"barberbook-backend/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MessageSender turns appointment events into outbound messages and keeps
// a ReminderLog row for each attempt.
type MessageSender struct {
	db         *gorm.DB
	dispatcher Dispatcher
	loc        *time.Location
}

func NewMessageSender(db *gorm.DB, dispatcher Dispatcher, loc *time.Location) *MessageSender {
	if loc == nil {
		loc = time.UTC
	}
	return &MessageSender{db: db, dispatcher: dispatcher, loc: loc}
}

// HandleBookingCreated is the queue handler for booking.created.
func (m *MessageSender) HandleBookingCreated(ctx context.Context, ev queue.BookingCreatedEvent) error {
	appointmentID, err := uuid.Parse(ev.AppointmentID)
	if err != nil {
		return fmt.Errorf("bad appointment id %q: %w", ev.AppointmentID, err)
	}
	shopID, _ := uuid.Parse(ev.ShopID)

	when := ev.StartsAt
	if t, err := time.Parse(time.RFC3339, ev.StartsAt); err == nil {
		when = t.In(m.loc).Format("02.01.2006 15:04")
	}

	var firstErr error
	if ev.CustomerPhone != "" {
		msg := fmt.Sprintf("Hi %s, your %s appointment at %s with %s on %s has been received.",
			ev.CustomerName, ev.ServiceName, ev.ShopName, ev.StaffName, when)
		if err := m.send(ctx, shopID, appointmentID, "confirmation", ev.CustomerPhone, msg); err != nil {
			firstErr = err
		}
	}
	if ev.OwnerPhone != "" {
		msg := fmt.Sprintf("New appointment: %s, %s with %s on %s.",
			ev.CustomerName, ev.ServiceName, ev.StaffName, when)
		if err := m.send(ctx, shopID, appointmentID, "owner_alert", ev.OwnerPhone, msg); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m *MessageSender) send(ctx context.Context, shopID, appointmentID uuid.UUID, kind, phone, text string) error {
	err := m.dispatcher.Send(ctx, OutboundMessage{Phone: phone, Message: text})

	status, errMsg := "sent", ""
	if err != nil {
		log.Printf("Failed to send %s to %s: %v", kind, phone, err)
		status, errMsg = "failed", err.Error()
	}

	entry := models.ReminderLog{
		ShopID:        shopID,
		AppointmentID: appointmentID,
		Type:          kind,
		Phone:         phone,
		Message:       text,
		Status:        status,
		ErrorMessage:  errMsg,
		Channel:       m.dispatcher.Channel(),
		SentAt:        time.Now().UTC(),
	}
	if dbErr := m.db.WithContext(ctx).Create(&entry).Error; dbErr != nil {
		log.Printf("Failed to log %s for appointment %s: %v", kind, appointmentID, dbErr)
	}
	return err
}

// Remind texts the customer about an upcoming appointment and stamps
// reminder_sent_at. Service and Staff are used in the text when loaded.
func (m *MessageSender) Remind(ctx context.Context, appt models.Appointment) error {
	if appt.CustomerPhone == "" {
		return validationf("This appointment has no phone number")
	}
	start := appt.StartTime.In(m.loc)
	msg := fmt.Sprintf("Hi %s, a reminder of your appointment on %s at %s",
		appt.CustomerName, start.Format("02.01.2006"), start.Format(utils.ClockLayout))
	if appt.Service != nil {
		msg += " for " + appt.Service.Name
	}
	if appt.Staff != nil {
		msg += " with " + appt.Staff.FullName
	}
	msg += "."

	if err := m.send(ctx, appt.ShopID, appt.ID, "reminder", appt.CustomerPhone, msg); err != nil {
		return err
	}
	now := time.Now().UTC()
	if err := m.db.WithContext(ctx).Model(&models.Appointment{}).
		Where("id = ?", appt.ID).Update("reminder_sent_at", &now).Error; err != nil {
		return &PersistenceError{Op: "mark reminder", Err: err}
	}
	return nil
}
