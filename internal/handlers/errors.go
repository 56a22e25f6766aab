package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ecanteen/internal/logger"
	"ecanteen/internal/services"
)

// respondError maps service errors onto HTTP. Client errors carry their
// message; store and mail failures are logged and answered generically.
func respondError(c *gin.Context, err error, fallback string) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message, "field": verr.Field})
	case errors.Is(err, services.ErrInvalidOrExpiredCode):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired OTP"})
	case errors.Is(err, services.ErrIdentityExists):
		c.JSON(http.StatusBadRequest, gin.H{"error": "User already exists with this email"})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid credentials"})
	case errors.Is(err, services.ErrIdentityNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found with this email"})
	case errors.Is(err, services.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
	case errors.Is(err, services.ErrFoodItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Food item not found"})
	default:
		logger.WithModule("http").Error(fallback,
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", c.GetString("request_id")),
			zap.Error(err))
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": bindingMessage(err)})
}
