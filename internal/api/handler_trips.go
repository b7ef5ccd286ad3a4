package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// GetTrips lists all actively monitored trips with their segments.
func (h *Handler) GetTrips(c *gin.Context) {
	trips, err := h.store.ActiveTrips(c.Request.Context())
	if err != nil {
		h.log.Error("failed to list trips", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list trips"})
		return
	}
	c.JSON(http.StatusOK, trips)
}

// GetTripAlerts lists the alerts of one trip, newest first.
func (h *Handler) GetTripAlerts(c *gin.Context) {
	tripID, err := strconv.ParseUint(c.Param("trip_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid trip id"})
		return
	}

	alerts, err := h.store.AlertsForTrip(c.Request.Context(), uint(tripID))
	if err != nil {
		h.log.Error("failed to list alerts", "trip", tripID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list alerts"})
		return
	}
	c.JSON(http.StatusOK, alerts)
}
