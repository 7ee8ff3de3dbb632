package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"launchtrade/internal/models"
	"launchtrade/pkg/config"
)

// CreateContactMessage handles POST /api/contacts.
func CreateContactMessage(c *gin.Context) {
	var req ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "email, phone and description are required"})
		return
	}

	message := models.ContactMessage{
		Email:       req.Email,
		Phone:       req.Phone,
		Description: req.Description,
	}
	if err := config.DB.Create(&message).Error; err != nil {
		log.Errorf("contact message creation failed: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "internal server error"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": message})
}

// ListContactMessages handles GET /api/contacts.
func ListContactMessages(c *gin.Context) {
	var messages []models.ContactMessage
	if err := config.DB.Order("created_at DESC").Find(&messages).Error; err != nil {
		log.Errorf("contact message listing failed: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": messages})
}
