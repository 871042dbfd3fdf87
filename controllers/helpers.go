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

// currentUserID reads the user id set by the auth middleware.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	raw, exists := c.Get("userId")
	if !exists {
		return uuid.Nil, false
	}
	s, ok := raw.(string)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func requireUserID(c *gin.Context) (uuid.UUID, bool) {
	id, ok := currentUserID(c)
	if !ok {
		utils.RespondWithError(c, http.StatusUnauthorized, "User ID not found in context")
	}
	return id, ok
}

func parseIDParam(c *gin.Context, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid "+label+" ID format")
		return uuid.Nil, false
	}
	return id, true
}

// respondServiceError maps service errors to HTTP answers.
func respondServiceError(c *gin.Context, err error) {
	var (
		ve *services.ValidationError
		ce *services.ConflictError
		pe *services.PersistenceError
	)
	switch {
	case errors.As(err, &ve):
		utils.RespondWithError(c, http.StatusBadRequest, ve.Message)
	case errors.As(err, &ce):
		utils.RespondWithError(c, http.StatusConflict, ce.Message)
	case errors.Is(err, services.ErrNotFound):
		utils.RespondWithError(c, http.StatusNotFound, "Not found")
	case errors.Is(err, services.ErrForbidden):
		utils.RespondWithError(c, http.StatusForbidden, "Forbidden")
	case errors.As(err, &pe):
		utils.RespondWithError(c, http.StatusInternalServerError, pe.Err.Error())
	default:
		utils.RespondWithError(c, http.StatusInternalServerError, err.Error())
	}
}

// loadOwnedShop finds the shop of the signed-in owner. Owners of several
// shops pick one with ?shopId=.
func loadOwnedShop(c *gin.Context) (*models.Shop, bool) {
	userID, ok := requireUserID(c)
	if !ok {
		return nil, false
	}

	q := config.DB.WithContext(c.Request.Context()).Where("owner_user_id = ?", userID)
	if raw := c.Query("shopId"); raw != "" {
		shopID, err := uuid.Parse(raw)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid shop ID format")
			return nil, false
		}
		q = q.Where("id = ?", shopID)
	}

	var shop models.Shop
	if err := q.Order("created_at ASC").First(&shop).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "You do not own a shop")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return nil, false
	}
	return &shop, true
}

// loadLinkedStaff finds the staff record claimed by the signed-in user.
func loadLinkedStaff(c *gin.Context) (*models.Staff, bool) {
	userID, ok := requireUserID(c)
	if !ok {
		return nil, false
	}

	var staff models.Staff
	if err := config.DB.WithContext(c.Request.Context()).
		Where("user_id = ?", userID).First(&staff).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "No barber record is linked to your account, please contact the shop owner")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return nil, false
	}
	return &staff, true
}
