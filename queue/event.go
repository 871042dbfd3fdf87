// Package queue carries booking events between the API and the message
// sender.
package queue

import "context"

// BookingCreatedEvent is published after an appointment is committed. It
// holds everything the sender needs without reading the database again.
type BookingCreatedEvent struct {
	AppointmentID string `json:"appointment_id"`
	ShopID        string `json:"shop_id"`
	ShopName      string `json:"shop_name"`
	StaffName     string `json:"staff_name"`
	ServiceName   string `json:"service_name"`
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
	OwnerPhone    string `json:"owner_phone"`
	StartsAt      string `json:"starts_at"`
	EndsAt        string `json:"ends_at"`
	CreatedAt     string `json:"created_at"`
}

// Handler processes one event.
type Handler func(ctx context.Context, ev BookingCreatedEvent) error

// Publisher hands booking events to whatever delivers them.
type Publisher interface {
	PublishBookingCreated(ctx context.Context, ev BookingCreatedEvent) error
}
