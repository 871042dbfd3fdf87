package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListShopCustomers lists the people who visited the shop, built from its
// completed appointments. ?q= filters by name or phone.
func (h *Handlers) ListShopCustomers(c *gin.Context) {
	shop, ok := loadOwnedShop(c)
	if !ok {
		return
	}

	customers, err := h.Reports.Customers(c.Request.Context(), shop.ID, c.Query("q"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, customers)
}
