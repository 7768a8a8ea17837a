package httpserver

import (
	"errors"
	"net/http"

	"ecommerce-backend/internal/domain"
	"ecommerce-backend/internal/logging"
	"ecommerce-backend/internal/service/purchase"
	usersvc "ecommerce-backend/internal/service/user"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func writeError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"status": "error", "message": message})
}

func writeData(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"status": "success", "data": data})
}

// writeServiceError maps domain and service errors to HTTP responses.
// Unexpected errors are logged and reported as 500 without details.
func writeServiceError(c *gin.Context, err error) {
	var perr *purchase.PurchaseError
	switch {
	case errors.As(err, &perr):
		if perr.Status >= http.StatusInternalServerError {
			logging.FromContext(c.Request.Context(), nil).Error("purchase failed", zap.Error(err))
		}
		writeError(c, perr.Status, perr.Message)
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrInsufficientStock), errors.Is(err, domain.ErrAlreadyAdopted):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrAlreadyExists):
		writeError(c, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		writeError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, usersvc.ErrInvalidCredentials), errors.Is(err, usersvc.ErrInvalidToken):
		writeError(c, http.StatusUnauthorized, err.Error())
	default:
		logging.FromContext(c.Request.Context(), nil).Error("request failed", zap.Error(err))
		writeError(c, http.StatusInternalServerError, "internal server error")
	}
}
