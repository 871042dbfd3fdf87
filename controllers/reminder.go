// controllers/reminder.go
package controllers

import (
	"errors"
	"net/http"

	"barberbook-backend/config"
	"barberbook-backend/models"
	"barberbook-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const messageLogLimit = 100

// ListMessageLog returns the outbound messages sent for the shop, newest
// first. ?type= and ?status= narrow the list.
func ListMessageLog(c *gin.Context) {
	shop, ok := loadOwnedShop(c)
	if !ok {
		return
	}

	q := config.DB.WithContext(c.Request.Context()).Where("shop_id = ?", shop.ID)
	if kind := c.Query("type"); kind != "" {
		q = q.Where("type = ?", kind)
	}
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var logs []models.ReminderLog
	if err := q.Order("sent_at DESC").Limit(messageLogLimit).Find(&logs).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve message log")
		return
	}
	c.JSON(http.StatusOK, logs)
}

// SendAppointmentReminder texts the customer of an active appointment now,
// outside the daily schedule.
func (h *Handlers) SendAppointmentReminder(c *gin.Context) {
	shop, ok := loadOwnedShop(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id", "appointment")
	if !ok {
		return
	}

	var appt models.Appointment
	err := config.DB.WithContext(c.Request.Context()).
		Preload("Service").Preload("Staff").
		Where("id = ? AND shop_id = ?", id, shop.ID).
		First(&appt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Appointment not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}
	if appt.Status != models.StatusPending && appt.Status != models.StatusConfirmed {
		utils.RespondWithError(c, http.StatusBadRequest, "Only upcoming appointments can be reminded")
		return
	}

	if err := h.Messages.Remind(c.Request.Context(), appt); err != nil {
		// Gateway failures are already recorded in the message log
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Reminder sent"})
}
