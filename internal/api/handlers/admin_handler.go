// server/internal/api/handlers/admin_handler.go
package handlers

import (
	"net/http"
	"time"

	"port-ops-api-server/internal/services"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	Cleanup  *services.Cleanup
	Accounts *services.Accounts
}

// RunCleanup triggers one sweep of expired ships immediately.
func (h *AdminHandler) RunCleanup(c *gin.Context) {
	report, err := h.Cleanup.RunOnce(c.Request.Context(), time.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// ResetDemoPasswords restores the demo accounts. Guarded by the maintenance key.
func (h *AdminHandler) ResetDemoPasswords(c *gin.Context) {
	touched, err := h.Accounts.ResetDemoPasswords(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Demo passwords reset", "accounts": touched})
}
