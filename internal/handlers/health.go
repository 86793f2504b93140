package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func (h *Handler) HealthCheck(c *gin.Context) {
	pingCtx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.Store.Ping(pingCtx); err != nil {
		h.Logger.Warn("health check failed", "err", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":    "unavailable",
			"message":   "Database is unreachable",
			"timestamp": h.now().Format(time.RFC3339),
		})
		return
	}

	body := gin.H{
		"status":    "ok",
		"message":   "To-Do List is running",
		"timestamp": h.now().Format(time.RFC3339),
	}

	if h.Checks != nil {
		if result, ok := h.Checks.Status(StoreCheck); ok {
			body["store_check"] = gin.H{
				"healthy":    result.Healthy,
				"message":    result.Message,
				"checked_at": result.CheckedAt.Format(time.RFC3339),
			}
		}
	}

	c.JSON(http.StatusOK, body)
}
