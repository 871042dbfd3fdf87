package controllers

import (
	"net/http"

	"barberbook-backend/config"
	"barberbook-backend/models"
	"barberbook-backend/utils"

	"github.com/gin-gonic/gin"
)

// RequireRole lets the request through when the caller's stored role is
// one of roles. The role is read from the database so promotions apply
// without a new token.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	allowed := make(map[models.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(c *gin.Context) {
		userID, ok := requireUserID(c)
		if !ok {
			return
		}

		var user models.User
		if err := config.DB.WithContext(c.Request.Context()).
			Select("id", "role", "is_active").Where("id = ?", userID).First(&user).Error; err != nil {
			utils.RespondWithError(c, http.StatusUnauthorized, "User not found")
			return
		}
		if !user.IsActive || !allowed[user.Role] {
			utils.RespondWithError(c, http.StatusForbidden, "You are not allowed to access this resource")
			return
		}

		c.Set("role", string(user.Role))
		c.Next()
	}
}
