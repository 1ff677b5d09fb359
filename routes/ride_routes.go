package routes

import (
	"github.com/gin-gonic/gin"

	"taxiline/internal/handlers"
	"taxiline/internal/middleware"
)

func SetupRideRoutes(rg *gin.RouterGroup, handler *handlers.RideHandler, jwtSecret string) {
	rides := rg.Group("/rides")
	{
		rides.GET("/subscribe/:key", handler.Subscribe)

		auth := rides.Group("")
		auth.Use(middleware.AuthRequired(jwtSecret))
		{
			auth.POST("", handler.Create)
			auth.GET("/:id", handler.Show)
			auth.PUT("/:id", handler.Update)
			auth.PATCH("/:id", handler.Patch)
			auth.PUT("/:id/location", handler.UpdateLocation)
		}

		admin := rides.Group("")
		admin.Use(middleware.AuthRequired(jwtSecret), middleware.RoleRequired("admin"))
		{
			admin.GET("", handler.Index)
			admin.PUT("/:id/settle", handler.Settle)
			admin.DELETE("/:id", handler.Destroy)
		}
	}
}
