package controllers

import (
	"net/http"

	"barberbook-backend/config"
	"barberbook-backend/models"
	"barberbook-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ScheduleInput struct {
	Weekday   *int   `json:"weekday" binding:"required,min=0,max=6"`
	StartTime string `json:"startTime" binding:"required"`
	EndTime   string `json:"endTime" binding:"required"`
	IsActive  bool   `json:"isActive"`
}

// GetMyStaffProfile returns the barber record linked to the caller with
// the name of the shop they work at.
func GetMyStaffProfile(c *gin.Context) {
	staff, ok := loadLinkedStaff(c)
	if !ok {
		return
	}
	var shop models.Shop
	config.DB.Select("id", "name", "slug").First(&shop, "id = ?", staff.ShopID)
	c.JSON(http.StatusOK, gin.H{"staff": staff, "shop": shop})
}

func GetMySchedule(c *gin.Context) {
	staff, ok := loadLinkedStaff(c)
	if !ok {
		return
	}
	var schedules []models.WorkingHours
	if err := config.DB.Where("staff_id = ?", staff.ID).Order("weekday ASC").Find(&schedules).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve schedule")
		return
	}
	c.JSON(http.StatusOK, schedules)
}

// SaveMySchedule creates or updates the caller's hours for one weekday.
func SaveMySchedule(c *gin.Context) {
	staff, ok := loadLinkedStaff(c)
	if !ok {
		return
	}

	var input ScheduleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	open, err := utils.ParseClock(input.StartTime)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	closeAt, err := utils.ParseClock(input.EndTime)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	if closeAt <= open {
		utils.RespondWithError(c, http.StatusBadRequest, "End time must be after start time")
		return
	}

	var saved models.WorkingHours
	err = config.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("staff_id = ? AND weekday = ?", staff.ID, *input.Weekday).
			Assign(models.WorkingHours{
				StartTime: input.StartTime,
				EndTime:   input.EndTime,
			}).
			FirstOrCreate(&saved, models.WorkingHours{StaffID: staff.ID, Weekday: *input.Weekday}).Error
		if err != nil {
			return err
		}
		// Assign skips zero values, so the flag is written explicitly
		saved.IsActive = input.IsActive
		return tx.Model(&saved).Update("is_active", input.IsActive).Error
	})
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to save schedule")
		return
	}

	c.JSON(http.StatusOK, saved)
}
