package shows

import (
	"quickshow/internal/shared/config"
	"quickshow/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupShowRoutes configures all show-related routes
func SetupShowRoutes(rg *gin.RouterGroup, controller *Controller, cfg *config.Config) {
	show := rg.Group("/show")
	{
		show.GET("/all", controller.ListShows)
		show.GET("/:id", controller.GetShow)

		admin := show.Group("")
		admin.Use(middleware.JWTAuth(cfg), middleware.RequireRoles("ADMIN"))
		{
			admin.POST("/add", controller.AddShow)
			admin.POST("/:id/release-seats", controller.ReleaseSeats)
		}
	}
}
