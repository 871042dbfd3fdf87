package controllers

import (
	"errors"
	"net/http"
	"strings"

	"barberbook-backend/config"
	"barberbook-backend/models"
	"barberbook-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UpdateShopInput struct {
	Name        *string `json:"name"`
	Address     *string `json:"address"`
	Description *string `json:"description"`
	ImageURL    *string `json:"imageUrl" binding:"omitempty,url"`
}

type StaffInput struct {
	FullName     *string `json:"fullName"`
	AvatarURL    *string `json:"avatarUrl" binding:"omitempty,url"`
	DisplayOrder *int    `json:"displayOrder"`
	IsActive     *bool   `json:"isActive"`
}

type LinkStaffInput struct {
	// Email of the account that should manage this barber; empty unlinks
	Email string `json:"email" binding:"omitempty,email"`
}

func GetMyShop(c *gin.Context) {
	shop, ok := loadOwnedShop(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, shop)
}

func UpdateMyShop(c *gin.Context) {
	shop, ok := loadOwnedShop(c)
	if !ok {
		return
	}
	var input UpdateShopInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if input.Name != nil {
		shop.Name = strings.TrimSpace(*input.Name)
	}
	if input.Address != nil {
		shop.Address = *input.Address
	}
	if input.Description != nil {
		shop.Description = *input.Description
	}
	if input.ImageURL != nil {
		shop.ImageURL = *input.ImageURL
	}
	if shop.Name == "" {
		utils.RespondWithError(c, http.StatusBadRequest, "Shop name cannot be empty")
		return
	}

	if err := config.DB.Save(shop).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update shop")
		return
	}
	c.JSON(http.StatusOK, shop)
}

func ListStaff(c *gin.Context) {
	shop, ok := loadOwnedShop(c)
	if !ok {
		return
	}
	var staff []models.Staff
	if err := config.DB.Preload("Schedules").Where("shop_id = ?", shop.ID).
		Order("display_order ASC, full_name ASC").Find(&staff).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve staff")
		return
	}
	c.JSON(http.StatusOK, staff)
}

func AddStaff(c *gin.Context) {
	shop, ok := loadOwnedShop(c)
	if !ok {
		return
	}
	var input StaffInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	if input.FullName == nil || strings.TrimSpace(*input.FullName) == "" {
		utils.RespondWithError(c, http.StatusBadRequest, "Full name is required")
		return
	}

	staff := models.Staff{
		ShopID:   shop.ID,
		FullName: strings.TrimSpace(*input.FullName),
		IsActive: true,
	}
	if input.AvatarURL != nil {
		staff.AvatarURL = *input.AvatarURL
	}
	if input.DisplayOrder != nil {
		staff.DisplayOrder = *input.DisplayOrder
	}

	if err := config.DB.Create(&staff).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to add staff")
		return
	}
	c.JSON(http.StatusCreated, staff)
}

func findShopStaff(c *gin.Context, shopID uuid.UUID) (*models.Staff, bool) {
	staffID, ok := parseIDParam(c, "id", "staff")
	if !ok {
		return nil, false
	}
	var staff models.Staff
	if err := config.DB.Where("shop_id = ? AND id = ?", shopID, staffID).First(&staff).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Staff not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return nil, false
	}
	return &staff, true
}

func UpdateStaff(c *gin.Context) {
	shop, ok := loadOwnedShop(c)
	if !ok {
		return
	}
	staff, ok := findShopStaff(c, shop.ID)
	if !ok {
		return
	}
	var input StaffInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if input.FullName != nil {
		name := strings.TrimSpace(*input.FullName)
		if name == "" {
			utils.RespondWithError(c, http.StatusBadRequest, "Full name cannot be empty")
			return
		}
		staff.FullName = name
	}
	if input.AvatarURL != nil {
		staff.AvatarURL = *input.AvatarURL
	}
	if input.DisplayOrder != nil {
		staff.DisplayOrder = *input.DisplayOrder
	}
	if input.IsActive != nil {
		staff.IsActive = *input.IsActive
	}

	if err := config.DB.Save(staff).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update staff")
		return
	}
	c.JSON(http.StatusOK, staff)
}

// DeleteStaff removes a barber. Barbers with appointment history are
// deactivated instead.
func DeleteStaff(c *gin.Context) {
	shop, ok := loadOwnedShop(c)
	if !ok {
		return
	}
	staff, ok := findShopStaff(c, shop.ID)
	if !ok {
		return
	}

	var booked int64
	config.DB.Model(&models.Appointment{}).Where("staff_id = ?", staff.ID).Count(&booked)
	if booked > 0 {
		if err := config.DB.Model(staff).Update("is_active", false).Error; err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to deactivate staff")
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Staff has appointments and was deactivated"})
		return
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("staff_id = ?", staff.ID).Delete(&models.WorkingHours{}).Error; err != nil {
			return err
		}
		return tx.Delete(staff).Error
	})
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete staff")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Staff deleted successfully"})
}

// LinkStaffUser attaches a user account to a barber so they can use the
// staff dashboard. The account is promoted to the staff role.
func LinkStaffUser(c *gin.Context) {
	shop, ok := loadOwnedShop(c)
	if !ok {
		return
	}
	staff, ok := findShopStaff(c, shop.ID)
	if !ok {
		return
	}
	var input LinkStaffInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if input.Email == "" {
		if err := config.DB.Model(staff).Update("user_id", nil).Error; err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to unlink staff")
			return
		}
		staff.UserID = nil
		c.JSON(http.StatusOK, staff)
		return
	}

	var user models.User
	if err := config.DB.Where("email = ?", strings.ToLower(input.Email)).First(&user).Error; err != nil {
		utils.RespondWithError(c, http.StatusNotFound, "No account with this email")
		return
	}

	if staff.IsClaimed() && *staff.UserID != user.ID {
		utils.RespondWithError(c, http.StatusConflict, "This barber is linked to another account, unlink it first")
		return
	}

	var claimed int64
	config.DB.Model(&models.Staff{}).Where("user_id = ? AND id <> ?", user.ID, staff.ID).Count(&claimed)
	if claimed > 0 {
		utils.RespondWithError(c, http.StatusConflict, "This account is already linked to another barber")
		return
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(staff).Update("user_id", user.ID).Error; err != nil {
			return err
		}
		if user.Role == models.RoleCustomer {
			return tx.Model(&user).Update("role", models.RoleStaff).Error
		}
		return nil
	})
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to link staff")
		return
	}
	staff.UserID = &user.ID
	c.JSON(http.StatusOK, staff)
}
