package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"port-ops-api-server/internal/auth"
	"port-ops-api-server/internal/services"
	"port-ops-api-server/internal/store"

	"github.com/gin-gonic/gin"
)

var errValidation = errors.New("validation failed")

// invalid builds a 400 error with a readable message.
func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", errValidation, fmt.Sprintf(format, args...))
}

// respondError maps domain errors to HTTP status codes.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, store.ErrConflict), errors.Is(err, store.ErrInvalidState):
		status = http.StatusConflict
	case errors.Is(err, errValidation),
		errors.Is(err, store.ErrInvalidLocation),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, services.ErrWeakPassword),
		errors.Is(err, services.ErrInvalidRole):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, services.ErrAccountLocked):
		status = http.StatusLocked
	}

	if status == http.StatusInternalServerError {
		log.Printf("request failed: method=%s path=%s error=%v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(status, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
