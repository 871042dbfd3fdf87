package controllers

import (
	"barberbook-backend/services"
)

// Handlers groups the endpoints that go through the booking core.
type Handlers struct {
	Availability  *services.AvailabilityService
	Booking       *services.BookingService
	Appointments  *services.AppointmentService
	Notifications *services.NotificationService
	Reports       *services.ReportService
	Messages      *services.MessageSender
}
