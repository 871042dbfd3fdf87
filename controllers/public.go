package controllers

import (
	"errors"
	"net/http"
	"strings"

	"barberbook-backend/config"
	"barberbook-backend/models"
	"barberbook-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SearchShops lists shops whose name or slug contains ?q=.
func SearchShops(c *gin.Context) {
	q := config.DB.WithContext(c.Request.Context()).Model(&models.Shop{})
	if term := strings.TrimSpace(c.Query("q")); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		q = q.Where("LOWER(name) LIKE ? OR slug LIKE ? OR public_code = ?", like, like, strings.ToUpper(term))
	}

	var shops []models.Shop
	if err := q.Order("name ASC").Limit(50).Find(&shops).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve shops")
		return
	}
	c.JSON(http.StatusOK, shops)
}

func findShopBySlug(c *gin.Context) (*models.Shop, bool) {
	var shop models.Shop
	err := config.DB.WithContext(c.Request.Context()).Where("slug = ?", c.Param("slug")).First(&shop).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Shop not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return nil, false
	}
	return &shop, true
}

// GetShopBySlug returns the public shop page: the shop with its active
// services and barbers in display order.
func GetShopBySlug(c *gin.Context) {
	shop, ok := findShopBySlug(c)
	if !ok {
		return
	}

	db := config.DB.WithContext(c.Request.Context())
	if err := db.Where("shop_id = ? AND is_active = ?", shop.ID, true).
		Order("display_order ASC, name ASC").Find(&shop.Services).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve services")
		return
	}
	if err := db.Where("shop_id = ? AND is_active = ?", shop.ID, true).
		Order("display_order ASC, full_name ASC").Find(&shop.Staff).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve staff")
		return
	}

	c.JSON(http.StatusOK, shop)
}
