package routes

import (
	"github.com/gin-gonic/gin"

	"launchtrade/internal/handlers"
)

// SetupUserRoutes sets up all routes related to user management
func SetupUserRoutes(r *gin.Engine) {
	users := r.Group("/api/users")
	{
		users.POST("", handlers.CreateUser)
	}
}
