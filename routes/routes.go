package routes

import (
	"time"

	"barberbook-backend/config"
	"barberbook-backend/controllers"
	"barberbook-backend/models"
	"barberbook-backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func SetupRouter(h *controllers.Handlers, origins []string) *gin.Engine {
	r := gin.Default()
	utils.RegisterValidators()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.Use(config.PerformanceLogger(config.SlowRequestThreshold()))

	auth := r.Group("/auth")
	{
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)

		auth.Use(utils.AuthMiddleware())
		auth.GET("/me", controllers.Me)
		auth.PUT("/profile", controllers.UpdateProfile)
	}

	public := r.Group("/public")
	{
		public.GET("/shops", controllers.SearchShops)
		public.GET("/shops/:slug", controllers.GetShopBySlug)
		public.GET("/shops/:slug/availability", h.GetAvailability)
		public.POST("/shops/:slug/appointments", utils.OptionalAuthMiddleware(), h.CreateAppointment)
	}

	api := r.Group("/api")
	api.Use(utils.AuthMiddleware())
	{
		// Customer bookings
		bookings := api.Group("/bookings")
		{
			bookings.GET("", h.ListMyBookings)
			bookings.PUT("/:id/cancel", h.CancelMyBooking)
		}

		notifications := api.Group("/notifications")
		{
			notifications.GET("", h.ListNotifications)
			notifications.GET("/stream", h.StreamNotifications)
			notifications.PUT("/read-all", h.MarkAllNotificationsRead)
			notifications.PUT("/:id/read", h.MarkNotificationRead)
		}

		// Shop owner routes, scoped to the shops the caller owns
		shop := api.Group("/shop")
		{
			shop.GET("", controllers.GetMyShop)
			shop.PUT("", controllers.UpdateMyShop)

			shop.GET("/staff", controllers.ListStaff)
			shop.POST("/staff", controllers.AddStaff)
			shop.PUT("/staff/:id", controllers.UpdateStaff)
			shop.DELETE("/staff/:id", controllers.DeleteStaff)
			shop.PUT("/staff/:id/link", controllers.LinkStaffUser)

			shop.GET("/services", controllers.GetServices)
			shop.POST("/services", controllers.CreateService)
			shop.PUT("/services/:id", controllers.UpdateService)
			shop.DELETE("/services/:id", controllers.DeleteService)

			shop.GET("/dashboard", h.GetShopDashboard)
			shop.GET("/reports", h.GetShopReport)
			shop.GET("/customers", h.ListShopCustomers)
			shop.GET("/messages", controllers.ListMessageLog)

			shop.GET("/appointments", h.ListShopAppointments)
			shop.PUT("/appointments/:id/status", h.UpdateShopAppointmentStatus)
			shop.PUT("/appointments/:id/cancel", h.CancelShopAppointment)
			shop.POST("/appointments/:id/remind", h.SendAppointmentReminder)
		}

		// Barber self-service
		staff := api.Group("/staff/me", controllers.RequireRole(models.RoleStaff, models.RoleAdmin))
		{
			staff.GET("", controllers.GetMyStaffProfile)
			staff.GET("/schedule", controllers.GetMySchedule)
			staff.PUT("/schedule", controllers.SaveMySchedule)
			staff.GET("/appointments", h.ListMyStaffAppointments)
			staff.PUT("/appointments/:id/status", h.UpdateMyStaffAppointmentStatus)
		}

		admin := api.Group("/admin", controllers.RequireRole(models.RoleAdmin))
		{
			admin.GET("/shops", controllers.AdminListShops)
			admin.POST("/shops", controllers.AdminCreateShop)
			admin.DELETE("/shops/:id", controllers.AdminDeleteShop)
			admin.PUT("/shops/:id/owner", controllers.AdminReassignOwner)
			admin.PUT("/users/:id/role", controllers.AdminSetUserRole)
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
