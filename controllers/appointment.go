package controllers

import (
	"errors"
	"net/http"

	"barberbook-backend/config"
	"barberbook-backend/models"
	"barberbook-backend/services"
	"barberbook-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AvailabilityQuery struct {
	StaffID   string `form:"staffId" binding:"required,uuid"`
	Date      string `form:"date" binding:"required"`
	ServiceID string `form:"serviceId" binding:"omitempty,uuid"`
}

// GetAvailability answers the free/busy grid for a barber on a day.
func (h *Handlers) GetAvailability(c *gin.Context) {
	shop, ok := findShopBySlug(c)
	if !ok {
		return
	}

	var input AvailabilityQuery
	if err := c.ShouldBindQuery(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	day, err := utils.ParseDate(input.Date, h.Availability.Location())
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	db := config.DB.WithContext(c.Request.Context())
	staffID := uuid.MustParse(input.StaffID)
	var staff models.Staff
	if err := db.Where("id = ? AND shop_id = ?", staffID, shop.ID).First(&staff).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Barber not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	duration := 0
	if input.ServiceID != "" {
		var service models.Service
		if err := db.Where("id = ? AND shop_id = ?", uuid.MustParse(input.ServiceID), shop.ID).First(&service).Error; err != nil {
			utils.RespondWithError(c, http.StatusNotFound, "Service not found")
			return
		}
		duration = service.Duration
	}

	slots, err := h.Availability.Availability(c.Request.Context(), services.AvailabilityQuery{
		StaffID:         staff.ID,
		Date:            day,
		DurationMinutes: duration,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"staffId": staff.ID,
		"date":    day.Format(utils.DateLayout),
		"slots":   slots,
	})
}

type CreateAppointmentInput struct {
	ServiceID     string `json:"serviceId"`
	StaffID       string `json:"staffId"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	CustomerName  string `json:"customerName"`
	CustomerPhone string `json:"customerPhone"`
}

// CreateAppointment books a slot. Signed-in customers book with their
// profile; guests send customerName and customerPhone.
func (h *Handlers) CreateAppointment(c *gin.Context) {
	shop, ok := findShopBySlug(c)
	if !ok {
		return
	}

	var input CreateAppointmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	req := services.BookingRequest{
		ShopID: shop.ID,
		Date:   input.Date,
		Time:   input.Time,
	}
	// Malformed ids stay uuid.Nil and fail the required-fields check
	req.ServiceID, _ = uuid.Parse(input.ServiceID)
	req.StaffID, _ = uuid.Parse(input.StaffID)

	if userID, ok := currentUserID(c); ok {
		req.Requester.UserID = &userID
	} else {
		req.Requester.Name = input.CustomerName
		req.Requester.Phone = input.CustomerPhone
	}

	appt, err := h.Booking.Book(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":     "Appointment booked",
		"appointment": appt,
	})
}

// ListMyBookings returns the appointments the signed-in customer booked.
func (h *Handlers) ListMyBookings(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	list, err := h.Appointments.ListForCustomer(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handlers) CancelMyBooking(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id", "appointment")
	if !ok {
		return
	}
	appt, err := h.Appointments.CancelForCustomer(c.Request.Context(), id, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, appt)
}

type UpdateStatusInput struct {
	Status models.AppointmentStatus `json:"status" binding:"required,oneof=pending confirmed completed cancelled"`
}

func (h *Handlers) ListShopAppointments(c *gin.Context) {
	shop, ok := loadOwnedShop(c)
	if !ok {
		return
	}
	list, err := h.Appointments.ListForShop(c.Request.Context(), shop.ID, services.AppointmentFilter{
		Status: models.AppointmentStatus(c.Query("status")),
		Date:   c.Query("date"),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handlers) UpdateShopAppointmentStatus(c *gin.Context) {
	shop, ok := loadOwnedShop(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id", "appointment")
	if !ok {
		return
	}
	var input UpdateStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	appt, err := h.Appointments.UpdateStatus(c.Request.Context(), id, services.AppointmentScope{ShopID: &shop.ID}, input.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, appt)
}

// CancelShopAppointment marks the appointment cancelled; the row is kept.
func (h *Handlers) CancelShopAppointment(c *gin.Context) {
	shop, ok := loadOwnedShop(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id", "appointment")
	if !ok {
		return
	}
	appt, err := h.Appointments.UpdateStatus(c.Request.Context(), id, services.AppointmentScope{ShopID: &shop.ID}, models.StatusCancelled)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, appt)
}

func (h *Handlers) ListMyStaffAppointments(c *gin.Context) {
	staff, ok := loadLinkedStaff(c)
	if !ok {
		return
	}
	list, err := h.Appointments.ListActiveForStaff(c.Request.Context(), staff.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handlers) UpdateMyStaffAppointmentStatus(c *gin.Context) {
	staff, ok := loadLinkedStaff(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id", "appointment")
	if !ok {
		return
	}
	var input UpdateStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	appt, err := h.Appointments.UpdateStatus(c.Request.Context(), id, services.AppointmentScope{StaffID: &staff.ID}, input.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, appt)
}
