package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetShopDashboard answers the owner's landing page: today's load, pending
// requests, this month's revenue, the coming week and recent customers.
func (h *Handlers) GetShopDashboard(c *gin.Context) {
	shop, ok := loadOwnedShop(c)
	if !ok {
		return
	}

	overview, err := h.Reports.Overview(c.Request.Context(), shop.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, overview)
}
