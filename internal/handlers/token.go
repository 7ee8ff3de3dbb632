package handlers

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"launchtrade/internal/launch"
	"launchtrade/internal/middleware"
)

// TokenHandler exposes the launch workflow over HTTP.
type TokenHandler struct {
	Service *launch.Service
	Gate    middleware.RequestCounter
}

// NewTokenHandler wires the handler.
func NewTokenHandler(service *launch.Service, gate middleware.RequestCounter) *TokenHandler {
	return &TokenHandler{Service: service, Gate: gate}
}

// CreateToken handles POST /api/tokens/create.
func (h *TokenHandler) CreateToken(c *gin.Context) {
	var req CreateTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid request: " + err.Error()})
		return
	}

	if !h.Gate.Allow(middleware.GateKey(req.UserWallet, c.ClientIP())) {
		c.JSON(http.StatusTooManyRequests, ErrorResponse{Message: "Too many requests. Please try again later."})
		return
	}

	image, err := decodeImage(req.Image)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid image encoding"})
		return
	}

	result, err := h.Service.CreateToken(c.Request.Context(), launch.CreateTokenRequest{
		UserWallet:       req.UserWallet,
		Name:             req.Name,
		Symbol:           strings.ToUpper(strings.TrimSpace(req.Symbol)),
		Supply:           req.Supply,
		Description:      req.Description,
		PlanType:         launch.PlanType(req.PlanType),
		AutoLiquidity:    req.AutoLiquidity,
		LiquiditySOL:     req.LiquiditySOL,
		LiquidityTokens:  req.LiquidityTokens,
		Mintable:         req.Mintable,
		TxSignature:      req.TxSignature,
		Image:            image,
		ImageName:        req.ImageName,
		ImageContentType: http.DetectContentType(image),
	})
	if err != nil {
		status, message := classifyLaunchError(err)
		c.JSON(status, ErrorResponse{Message: message})
		return
	}

	c.JSON(http.StatusCreated, CreateTokenResponse{
		Success:     true,
		MintAddress: result.MintAddress,
		JupiterURL:  result.JupiterURL,
		BirdeyeURL:  result.BirdeyeURL,
		MeteoraURL:  result.MeteoraURL,
		Message:     result.Message,
	})
}

// classifyLaunchError maps the launch error taxonomy to HTTP statuses.
// Infrastructure errors are logged in full but reported generically so
// nothing internal leaks into responses.
func classifyLaunchError(err error) (int, string) {
	var validation *launch.ValidationError
	if errors.As(err, &validation) {
		return http.StatusBadRequest, validation.Reason
	}
	var payment *launch.PaymentVerificationError
	if errors.As(err, &payment) {
		return http.StatusBadRequest, payment.Reason
	}
	var duplicate *launch.DuplicateSymbolError
	if errors.As(err, &duplicate) {
		return http.StatusBadRequest, duplicate.Error()
	}

	log.Errorf("launch failed: %v", err)

	var upload *launch.MetadataUploadError
	if errors.As(err, &upload) {
		return http.StatusInternalServerError, "metadata upload failed"
	}
	var mint *launch.MintError
	if errors.As(err, &mint) {
		return http.StatusInternalServerError, "token minting failed"
	}
	var liquidity *launch.LiquidityError
	if errors.As(err, &liquidity) {
		return http.StatusInternalServerError, "liquidity provisioning failed"
	}
	return http.StatusInternalServerError, "internal server error"
}

func decodeImage(encoded string) ([]byte, error) {
	if encoded == "" {
		return nil, nil
	}
	// Accept data URLs from browser clients.
	if idx := strings.Index(encoded, ";base64,"); idx >= 0 {
		encoded = encoded[idx+len(";base64,"):]
	}
	return base64.StdEncoding.DecodeString(encoded)
}

// GetTokensByWallet handles GET /api/tokens/by-wallet/:wallet.
func (h *TokenHandler) GetTokensByWallet(c *gin.Context) {
	wallet := c.Param("wallet")
	tokens, err := h.Service.TokensByWallet(wallet)
	if err != nil {
		log.Errorf("failed to list tokens for %s: %v", wallet, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": tokens})
}

// GetRandomTokens handles GET /api/tokens/random.
func (h *TokenHandler) GetRandomTokens(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil {
		limit = 10
	}
	samples, err := h.Service.RandomTokens(limit)
	if err != nil {
		log.Errorf("failed to sample tokens: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": samples})
}
