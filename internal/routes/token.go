package routes

import (
	"github.com/gin-gonic/gin"

	"launchtrade/internal/handlers"
)

// SetupTokenRoutes sets up all routes related to token launches
func SetupTokenRoutes(r *gin.Engine, h *handlers.TokenHandler) {
	tokens := r.Group("/api/tokens")
	{
		tokens.POST("/create", h.CreateToken)
		tokens.GET("/by-wallet/:wallet", h.GetTokensByWallet)
		tokens.GET("/random", h.GetRandomTokens)
	}
}
