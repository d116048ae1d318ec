package httpserver

import (
	"errors"
	"net/http"

	"storefront/internal/domain"
	"storefront/internal/service/auth"
	"storefront/internal/service/media"

	"github.com/gin-gonic/gin"
)

// writeError maps service errors to status codes. Unknown errors are logged
// and reported as 500 without detail.
func (h *handlers) writeError(c *gin.Context, op string, err error) {
	status := http.StatusInternalServerError
	msg := "internal error"
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status, msg = http.StatusNotFound, "not found"
	case errors.Is(err, domain.ErrAlreadyExists):
		status, msg = http.StatusConflict, "already exists"
	case errors.Is(err, domain.ErrEmptyCart):
		status, msg = http.StatusBadRequest, "cart is empty"
	case errors.Is(err, domain.ErrInvalidInput):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, auth.ErrInvalidCredentials):
		status, msg = http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, auth.ErrInvalidToken):
		status, msg = http.StatusUnauthorized, "invalid token"
	case errors.Is(err, auth.ErrResetUnavailable):
		status, msg = http.StatusServiceUnavailable, "password reset unavailable"
	case errors.Is(err, media.ErrNotConfigured):
		status, msg = http.StatusServiceUnavailable, err.Error()
	default:
		h.logger.Printf("http: %s error=%v", op, err)
	}
	c.JSON(status, gin.H{"error": msg})
}
