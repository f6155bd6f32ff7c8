package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"officescheduler/utils"
)

// HealthHandler reports the last snapshot taken by the health monitor.
type HealthHandler struct {
	Monitor *utils.HealthMonitor
}

func NewHealthHandler(m *utils.HealthMonitor) *HealthHandler {
	return &HealthHandler{Monitor: m}
}

// GetHealth handles GET /health. It answers 503 once any dependency failed
// its last check.
func (h *HealthHandler) GetHealth(c *gin.Context) {
	if h.Monitor == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}
	status := h.Monitor.Status()
	if !h.Monitor.Healthy() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "checks": status.Checks, "checkedAt": status.CheckedAt})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "checks": status.Checks, "checkedAt": status.CheckedAt})
}
