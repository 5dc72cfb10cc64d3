package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"flamewars/internal/models"
	"flamewars/internal/services"
)

// statusOf maps a service error kind to its HTTP status.
func statusOf(err error) int {
	switch services.KindOf(err) {
	case services.KindValidation:
		return http.StatusBadRequest
	case services.KindAuthentication:
		return http.StatusUnauthorized
	case services.KindAuthorization:
		return http.StatusForbidden
	case services.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// RenderError writes {error: message}. Unclassified errors never expose
// their detail.
func RenderError(c *gin.Context, err error) {
	code := statusOf(err)
	message := "Server error"
	var e *services.Error
	if errors.As(err, &e) && e.Kind != services.KindStore && e.Message != "" {
		message = e.Message
	}
	_ = c.Error(err)
	c.JSON(code, models.ErrorResponse{Error: message})
}

// RenderFailure writes {success: false} with the error's status.
func RenderFailure(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(statusOf(err), models.SuccessResponse{Success: false})
}
