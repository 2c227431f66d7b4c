package handlers

import (
	"log"
	"net/http"
	"time"

	"port-ops-api-server/internal/monitoring"
	"port-ops-api-server/internal/store"

	"github.com/gin-gonic/gin"
)

type MonitoringHandler struct {
	Store     *store.Store
	Collector *monitoring.Collector
}

func (h *MonitoringHandler) Metrics(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"uptimeSeconds": int64(h.Collector.Uptime().Seconds()),
		"routes":        h.Collector.Snapshot(),
	})
}

// Health reports 503 when the database does not answer a ping.
func (h *MonitoringHandler) Health(c *gin.Context) {
	status, code := "UP", http.StatusOK
	if err := h.Store.Ping(c.Request.Context()); err != nil {
		log.Printf("health check: database ping failed: %v", err)
		status, code = "DOWN", http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status":    status,
		"database":  status,
		"uptime":    h.Collector.Uptime().Round(time.Second).String(),
		"timestamp": time.Now(),
	})
}
