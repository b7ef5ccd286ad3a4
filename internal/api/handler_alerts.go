package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// MarkAlertRead marks one alert as read.
func (h *Handler) MarkAlertRead(c *gin.Context) {
	alertID, err := strconv.ParseUint(c.Param("alert_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid alert id"})
		return
	}

	if err := h.store.MarkAlertRead(c.Request.Context(), uint(alertID)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "alert not found"})
			return
		}
		h.log.Error("failed to mark alert read", "alert", alertID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mark alert read"})
		return
	}

	c.Status(http.StatusNoContent)
}
