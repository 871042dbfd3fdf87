package controllers

import (
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"regexp"
	"strings"

	"barberbook-backend/config"
	"barberbook-backend/models"
	"barberbook-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

type CreateShopInput struct {
	Name        string `json:"name" binding:"required"`
	Slug        string `json:"slug" binding:"required"`
	OwnerUserID string `json:"ownerUserId" binding:"omitempty,uuid"`
	Address     string `json:"address"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl" binding:"omitempty,url"`
}

type ReassignOwnerInput struct {
	OwnerUserID string `json:"ownerUserId" binding:"required,uuid"`
}

type SetRoleInput struct {
	Role string `json:"role" binding:"required"`
}

func newPublicCode() string {
	return fmt.Sprintf("TR-%d", 1000+rand.Intn(9000))
}

const publicCodeAttempts = 10

var errNoPublicCode = errors.New("no free public code")

// createShop inserts shop under a public code no other shop carries. The
// unique index settles races between two admins; the loser draws again.
func createShop(db *gorm.DB, shop *models.Shop, gen func() string) error {
	for i := 0; i < publicCodeAttempts; i++ {
		shop.PublicCode = gen()

		var taken int64
		if err := db.Model(&models.Shop{}).Where("public_code = ?", shop.PublicCode).Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			continue
		}

		err := db.Create(shop).Error
		if err == nil {
			return nil
		}
		if db.Model(&models.Shop{}).Where("public_code = ?", shop.PublicCode).Count(&taken); taken == 0 {
			return err
		}
	}
	return errNoPublicCode
}

func AdminListShops(c *gin.Context) {
	var shops []models.Shop
	if err := config.DB.Order("created_at DESC").Find(&shops).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve shops")
		return
	}
	c.JSON(http.StatusOK, shops)
}

// AdminCreateShop creates a shop. Without ownerUserId the admin owns it
// until it is reassigned.
func AdminCreateShop(c *gin.Context) {
	adminID, ok := requireUserID(c)
	if !ok {
		return
	}

	var input CreateShopInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	slug := strings.ToLower(strings.TrimSpace(input.Slug))
	if !slugPattern.MatchString(slug) {
		utils.RespondWithError(c, http.StatusBadRequest, "Slug may only contain lowercase letters, digits and dashes")
		return
	}

	ownerID := adminID
	if input.OwnerUserID != "" {
		ownerID = uuid.MustParse(input.OwnerUserID)
		var owner models.User
		if err := config.DB.Select("id").First(&owner, "id = ?", ownerID).Error; err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Owner user not found")
			return
		}
	}

	var taken int64
	config.DB.Model(&models.Shop{}).Where("slug = ?", slug).Count(&taken)
	if taken > 0 {
		utils.RespondWithError(c, http.StatusConflict, "Slug already in use")
		return
	}

	shop := models.Shop{
		Slug:        slug,
		Name:        strings.TrimSpace(input.Name),
		OwnerUserID: ownerID,
		Address:     input.Address,
		Description: input.Description,
		ImageURL:    input.ImageURL,
	}
	if err := createShop(config.DB, &shop, newPublicCode); err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create shop: "+err.Error())
		return
	}

	c.JSON(http.StatusCreated, shop)
}

// AdminDeleteShop removes a shop together with its staff, schedules,
// services and appointments.
func AdminDeleteShop(c *gin.Context) {
	shopID, ok := parseIDParam(c, "id", "shop")
	if !ok {
		return
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		var shop models.Shop
		if err := tx.First(&shop, "id = ?", shopID).Error; err != nil {
			return err
		}
		staffIDs := tx.Model(&models.Staff{}).Select("id").Where("shop_id = ?", shopID)
		steps := []func() error{
			func() error { return tx.Where("shop_id = ?", shopID).Delete(&models.ReminderLog{}).Error },
			func() error { return tx.Where("shop_id = ?", shopID).Delete(&models.Appointment{}).Error },
			func() error { return tx.Where("staff_id IN (?)", staffIDs).Delete(&models.WorkingHours{}).Error },
			func() error { return tx.Where("shop_id = ?", shopID).Delete(&models.Staff{}).Error },
			func() error { return tx.Where("shop_id = ?", shopID).Delete(&models.Service{}).Error },
			func() error { return tx.Delete(&shop).Error },
		}
		for _, step := range steps {
			if err := step(); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Shop not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete shop")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Shop deleted successfully"})
}

func AdminReassignOwner(c *gin.Context) {
	shopID, ok := parseIDParam(c, "id", "shop")
	if !ok {
		return
	}
	var input ReassignOwnerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	ownerID := uuid.MustParse(input.OwnerUserID)
	var owner models.User
	if err := config.DB.Select("id").First(&owner, "id = ?", ownerID).Error; err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Owner user not found")
		return
	}

	result := config.DB.Model(&models.Shop{}).Where("id = ?", shopID).Update("owner_user_id", ownerID)
	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to reassign owner")
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Shop not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Owner updated"})
}

// AdminSetUserRole promotes or demotes a user.
func AdminSetUserRole(c *gin.Context) {
	userID, ok := parseIDParam(c, "id", "user")
	if !ok {
		return
	}
	var input SetRoleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	role, err := models.ParseRole(input.Role)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	result := config.DB.Model(&models.User{}).Where("id = ?", userID).Update("role", role)
	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update role")
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "User not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Role updated", "role": role})
}
