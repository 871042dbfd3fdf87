// controllers/service.go
package controllers

import (
	"errors"
	"net/http"
	"strings"

	"barberbook-backend/config"
	"barberbook-backend/models"
	"barberbook-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CreateServiceInput defines the expected JSON structure for creating a service
type CreateServiceInput struct {
	Name         string          `json:"name" binding:"required"`
	Price        decimal.Decimal `json:"price"`
	Duration     int             `json:"duration" binding:"required,min=1,max=600"` // in minutes
	DisplayOrder int             `json:"displayOrder"`
}

// UpdateServiceInput defines the expected JSON structure for updating a service
type UpdateServiceInput struct {
	Name         *string          `json:"name"`
	Price        *decimal.Decimal `json:"price"`
	Duration     *int             `json:"duration" binding:"omitempty,min=1,max=600"`
	DisplayOrder *int             `json:"displayOrder"`
	IsActive     *bool            `json:"isActive"`
}

// CreateService adds a service to the owner's shop
func CreateService(c *gin.Context) {
	shop, ok := loadOwnedShop(c)
	if !ok {
		return
	}

	var input CreateServiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	if input.Price.IsNegative() {
		utils.RespondWithError(c, http.StatusBadRequest, "Price cannot be negative")
		return
	}

	service := models.Service{
		ShopID:       shop.ID,
		Name:         strings.TrimSpace(input.Name),
		Price:        input.Price.Round(2),
		Duration:     input.Duration,
		DisplayOrder: input.DisplayOrder,
		IsActive:     true,
	}

	if err := config.DB.Create(&service).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create service")
		return
	}

	c.JSON(http.StatusCreated, service)
}

// GetServices retrieves all services of the owner's shop, inactive included
func GetServices(c *gin.Context) {
	shop, ok := loadOwnedShop(c)
	if !ok {
		return
	}

	var services []models.Service
	if err := config.DB.Where("shop_id = ?", shop.ID).
		Order("display_order ASC, name ASC").Find(&services).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve services")
		return
	}

	c.JSON(http.StatusOK, services)
}

// UpdateService updates an existing service
func UpdateService(c *gin.Context) {
	shop, ok := loadOwnedShop(c)
	if !ok {
		return
	}
	serviceID, ok := parseIDParam(c, "id", "service")
	if !ok {
		return
	}

	var input UpdateServiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var service models.Service
	if err := config.DB.Where("shop_id = ? AND id = ?", shop.ID, serviceID).
		First(&service).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Service not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	// Update fields if provided
	if input.Name != nil {
		service.Name = strings.TrimSpace(*input.Name)
	}
	if input.Price != nil {
		if input.Price.IsNegative() {
			utils.RespondWithError(c, http.StatusBadRequest, "Price cannot be negative")
			return
		}
		service.Price = input.Price.Round(2)
	}
	if input.Duration != nil {
		service.Duration = *input.Duration
	}
	if input.DisplayOrder != nil {
		service.DisplayOrder = *input.DisplayOrder
	}
	if input.IsActive != nil {
		service.IsActive = *input.IsActive
	}

	if err := config.DB.Save(&service).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update service")
		return
	}

	c.JSON(http.StatusOK, service)
}

// DeleteService removes a service. Services with booked history are only
// deactivated so past appointments keep their reference.
func DeleteService(c *gin.Context) {
	shop, ok := loadOwnedShop(c)
	if !ok {
		return
	}
	serviceID, ok := parseIDParam(c, "id", "service")
	if !ok {
		return
	}

	var booked int64
	config.DB.Model(&models.Appointment{}).Where("service_id = ?", serviceID).Count(&booked)
	if booked > 0 {
		result := config.DB.Model(&models.Service{}).
			Where("shop_id = ? AND id = ?", shop.ID, serviceID).Update("is_active", false)
		if result.Error != nil || result.RowsAffected == 0 {
			utils.RespondWithError(c, http.StatusNotFound, "Service not found")
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Service has appointments and was deactivated"})
		return
	}

	result := config.DB.Where("shop_id = ? AND id = ?", shop.ID, serviceID).
		Delete(&models.Service{})

	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete service")
		return
	}

	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Service not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Service deleted successfully"})
}
