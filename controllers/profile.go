package controllers

import (
	"net/http"
	"strings"

	"barberbook-backend/config"
	"barberbook-backend/models"
	"barberbook-backend/utils"

	"github.com/gin-gonic/gin"
)

type UpdateProfileInput struct {
	Name      *string `json:"name"`
	Phone     *string `json:"phone" binding:"omitempty,trphone"`
	AvatarURL *string `json:"avatarUrl" binding:"omitempty,url"`
}

// UpdateProfile edits the signed-in user's own profile. A phone number is
// required before the user can book.
func UpdateProfile(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var input UpdateProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var user models.User
	if err := config.DB.First(&user, "id = ?", userID).Error; err != nil {
		utils.RespondWithError(c, http.StatusNotFound, "User not found")
		return
	}

	updates := map[string]interface{}{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			utils.RespondWithError(c, http.StatusBadRequest, "Name cannot be empty")
			return
		}
		updates["name"] = name
	}
	if input.Phone != nil {
		phone := utils.ValidatePhone(*input.Phone).Clean
		var taken int64
		config.DB.Model(&models.User{}).Where("phone = ? AND id <> ?", phone, userID).Count(&taken)
		if taken > 0 {
			utils.RespondWithError(c, http.StatusConflict, "Phone already registered")
			return
		}
		updates["phone"] = phone
	}
	if input.AvatarURL != nil {
		updates["avatar_url"] = *input.AvatarURL
	}

	if len(updates) > 0 {
		if err := config.DB.Model(&user).Updates(updates).Error; err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update profile")
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Profile updated", "user": userPayload(user)})
}
