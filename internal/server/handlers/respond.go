package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mamadbah2/agrodepot/internal/domain/models"
)

// writeError translates domain failures into HTTP responses. State
// errors (repeat confirmations) come back as warnings: the request
// changed nothing but the caller's goal is already met or moot.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidQuantity),
		errors.Is(err, models.ErrMissingDestination):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case models.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrAlreadyReceived),
		errors.Is(err, models.ErrNotScheduled):
		c.JSON(http.StatusConflict, gin.H{"warning": err.Error()})
	case models.IsConflict(err),
		errors.Is(err, models.ErrCropTypeInUse),
		errors.Is(err, models.ErrZoneExists),
		errors.Is(err, models.ErrCropTypeExists),
		errors.Is(err, models.ErrUsernameTaken):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
