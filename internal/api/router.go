package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"travel-guardian-backend/config"
	"travel-guardian-backend/internal/mw"
)

// NewRouter creates and configures the Gin router. Read endpoints sit behind
// a short response cache; the monitor trigger bypasses it so a triggered
// cycle always reflects live state.
func NewRouter(h *Handler, cfg config.ServerConfig) *gin.Engine {
	r := gin.Default()

	limit := rate.Limit(cfg.RateLimitPerSec)
	if limit <= 0 {
		limit = rate.Limit(10)
	}
	rateLimiter := mw.RateLimiter(limit, 5)

	ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	cacheStore := cache.New(ttl, 2*ttl)
	caching := mw.Cache(cacheStore, ttl)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		// Both verbs trigger the same idempotent cycle; GET exists for
		// cron services that cannot POST.
		api.GET("/monitor/run", h.RunMonitor)
		api.POST("/monitor/run", h.RunMonitor)

		api.GET("/trips", caching, h.GetTrips)
		api.GET("/trips/:trip_id/alerts", h.GetTripAlerts)
		api.POST("/alerts/:alert_id/read", h.MarkAlertRead)

		api.PUT("/subscriptions", h.PutSubscription)
		api.DELETE("/subscriptions", h.DeleteSubscription)
		api.GET("/vapid_public_key", h.GetVAPIDPublicKey)
	}

	return r
}
