package routes

import (
	"github.com/gin-gonic/gin"

	"launchtrade/internal/handlers"
)

// SetupContactRoutes sets up all routes related to contact messages
func SetupContactRoutes(r *gin.Engine) {
	contacts := r.Group("/api/contacts")
	{
		contacts.POST("", handlers.CreateContactMessage)
		contacts.GET("", handlers.ListContactMessages)
	}
}
