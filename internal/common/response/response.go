package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pyrecrest/service-booking/internal/common/domain"
)

// Success writes a 200 envelope with the given data.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

// Created writes a 201 envelope with the given data.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": data})
}

// Message writes a 200 envelope carrying only a message.
func Message(c *gin.Context, message string) {
	c.JSON(http.StatusOK, gin.H{"success": true, "message": message})
}

// BadRequest writes a 400 with the given message.
func BadRequest(c *gin.Context, message string) {
	abort(c, http.StatusBadRequest, message)
}

// Unauthorized writes a 401 with the given message.
func Unauthorized(c *gin.Context, message string) {
	abort(c, http.StatusUnauthorized, message)
}

// Error maps a domain error to its HTTP status and writes it.
// Unknown errors are reported as 500 without leaking their text.
func Error(c *gin.Context, err error) {
	status, message := Classify(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
	}
	abort(c, status, message)
}

// Classify returns the HTTP status and client-facing message for err.
func Classify(err error) (int, string) {
	var (
		validationErr   *domain.ValidationError
		invalidStateErr *domain.InvalidStateError
		notFoundErr     *domain.NotFoundError
		conflictErr     *domain.ConflictError
		unauthorizedErr *domain.UnauthorizedError
		forbiddenErr    *domain.ForbiddenError
	)

	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, validationErr.Message
	case errors.As(err, &invalidStateErr):
		return http.StatusBadRequest, invalidStateErr.Error()
	case errors.As(err, &notFoundErr):
		return http.StatusNotFound, notFoundErr.Error()
	case errors.As(err, &conflictErr):
		return http.StatusConflict, conflictErr.Message
	case errors.As(err, &unauthorizedErr):
		return http.StatusUnauthorized, unauthorizedErr.Message
	case errors.As(err, &forbiddenErr):
		return http.StatusForbidden, forbiddenErr.Message
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "error": message})
}
