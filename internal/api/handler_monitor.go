package api

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// RunMonitor triggers one monitoring cycle. The endpoint is idempotent by
// way of the engine's cooldown window and the alert dedup key: hammering it
// cannot double-alert. Unauthorized calls are rejected before any work.
func (h *Handler) RunMonitor(c *gin.Context) {
	if !h.authorized(c.GetHeader("Authorization")) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or missing bearer token"})
		return
	}

	summary, err := h.runner.RunCycle(c.Request.Context())
	if err != nil {
		h.log.Error("monitoring cycle failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "monitoring cycle failed"})
		return
	}

	c.JSON(http.StatusOK, summary)
}

// authorized compares the bearer token in constant time.
func (h *Handler) authorized(header string) bool {
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || h.secret == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(h.secret)) == 1
}
