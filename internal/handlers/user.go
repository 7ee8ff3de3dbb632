package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"launchtrade/internal/models"
	"launchtrade/pkg/config"
)

// CreateUser registers a wallet explicitly. Launches also create users
// lazily, so an already-registered wallet is returned as-is.
func CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "wallet_address is required"})
		return
	}

	var user models.User
	err := config.DB.Where("wallet_address = ?", req.WalletAddress).First(&user).Error
	if err == nil {
		c.JSON(http.StatusOK, gin.H{"success": true, "data": user})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Errorf("user lookup failed: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "internal server error"})
		return
	}

	user = models.User{WalletAddress: req.WalletAddress}
	if err := config.DB.Create(&user).Error; err != nil {
		log.Errorf("user creation failed: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "internal server error"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": user})
}
