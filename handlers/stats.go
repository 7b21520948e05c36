package handlers

import (
	"context"
	"net/http"
	"time"

	"bace/apperrors"

	"github.com/gin-gonic/gin"
)

// GetStatsOverview returns the admin dashboard counters.
func (h *Handler) GetStatsOverview(c *gin.Context) {
	stats, err := h.Admin.Stats(c.Request.Context())
	if err != nil {
		respondError(c, apperrors.Internal(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "stats": stats})
}

// Health reports whether the database is reachable.
func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.Admin.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "database": "unreachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "database": "ok"})
}
