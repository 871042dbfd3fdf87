// controllers/report.go
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetShopReport returns revenue growth and this month's top services,
// barbers and customers.
func (h *Handlers) GetShopReport(c *gin.Context) {
	shop, ok := loadOwnedShop(c)
	if !ok {
		return
	}

	analytics, err := h.Reports.Analytics(c.Request.Context(), shop.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, analytics)
}
