package handlers

import (
	"net/http"
	"time"

	"port-ops-api-server/internal/services"

	"github.com/gin-gonic/gin"
)

type AnalyticsHandler struct {
	Analytics *services.Analytics
}

func (h *AnalyticsHandler) Summary(c *gin.Context) {
	sum, err := h.Analytics.Summary(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

// timeQuery reads an optional RFC 3339 query parameter.
func timeQuery(c *gin.Context, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, invalid("%s must be an RFC 3339 timestamp", name)
	}
	return &t, nil
}

func (h *AnalyticsHandler) Operations(c *gin.Context) {
	from, err := timeQuery(c, "from")
	if err != nil {
		respondError(c, err)
		return
	}
	to, err := timeQuery(c, "to")
	if err != nil {
		respondError(c, err)
		return
	}
	buckets, err := h.Analytics.Operations(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, buckets)
}

func (h *AnalyticsHandler) Arrets(c *gin.Context) {
	buckets, err := h.Analytics.Arrets(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, buckets)
}
