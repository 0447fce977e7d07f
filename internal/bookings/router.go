package bookings

import (
	"quickshow/internal/shared/config"
	"quickshow/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupBookingRoutes configures all booking-related routes
func SetupBookingRoutes(rg *gin.RouterGroup, controller *Controller, cfg *config.Config) {
	booking := rg.Group("/booking")
	{
		// Gateway-facing and public endpoints
		booking.POST("/webhook", controller.HandleWebhook)
		booking.POST("/callback", controller.HandleWebhook)
		booking.GET("/seats/:showId", controller.GetOccupiedSeats)
		booking.GET("/verify/:orderId", controller.VerifyOrder)

		authed := booking.Group("")
		authed.Use(middleware.JWTAuth(cfg))
		{
			authed.POST("/create", controller.CreateBooking)
			authed.GET("/my", controller.GetMyBookings)
		}

		admin := booking.Group("")
		admin.Use(middleware.JWTAuth(cfg), middleware.RequireRoles("ADMIN"))
		{
			admin.GET("/verify-booking/:bookingId", controller.ForceVerifyBooking)
		}
	}
}
