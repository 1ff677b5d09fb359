package routes

import (
	"github.com/gin-gonic/gin"

	"taxiline/internal/handlers"
	"taxiline/internal/middleware"
)

func SetupUserRoutes(rg *gin.RouterGroup, handler *handlers.UserHandler, jwtSecret string) {
	users := rg.Group("/users")
	{
		users.POST("", handler.Create)
		users.POST("/driver", handler.CreateDriver)

		auth := users.Group("")
		auth.Use(middleware.AuthRequired(jwtSecret))
		{
			auth.GET("/me", handler.Me)
			auth.PUT("/password", handler.ChangePassword)
			auth.PUT("/edit", handler.Edit)
			auth.GET("/activation-code", handler.GetActivationCode)
			auth.POST("/confirm", handler.Confirm)
			auth.GET("/:id", handler.Show)
			auth.PATCH("/:id", handler.Patch)
		}

		admin := users.Group("")
		admin.Use(middleware.AuthRequired(jwtSecret), middleware.RoleRequired("admin"))
		{
			admin.GET("", handler.Index)
			admin.POST("/admin", handler.CreateAdmin)
			admin.PUT("/:id/toggle-activation", handler.ToggleActivation)
			admin.DELETE("/:id", handler.Destroy)
		}
	}
}
