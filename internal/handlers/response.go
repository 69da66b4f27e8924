package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"repairbox/internal/middleware"
	"repairbox/internal/repository"
	"repairbox/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func errorBody(title, message string) gin.H {
	return gin.H{"error": gin.H{"title": title, "message": message}}
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, errorBody("Invalid Request", message))
}

// respondError maps service errors onto HTTP status codes.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusUnprocessableEntity, errorBody(ve.Title, ve.Message))
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, errorBody("Not Found", "The requested record does not exist"))
	case errors.Is(err, services.ErrInvalidCredentials), errors.Is(err, services.ErrUserInactive):
		c.JSON(http.StatusUnauthorized, errorBody("Unauthorized", err.Error()))
	default:
		log.Error("Request failed",
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", c.GetString("request_id")),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, errorBody("Server Error", "Internal server error"))
	}
}

func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		badRequest(c, "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}

func actor(c *gin.Context) services.Actor {
	a, _ := middleware.CurrentActor(c)
	return a
}
