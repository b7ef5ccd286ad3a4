package api

import (
	"context"

	"travel-guardian-backend/internal/scheduler"
	"travel-guardian-backend/internal/store"
	"travel-guardian-backend/pkg/logger"
)

// CycleRunner triggers one monitoring cycle.
type CycleRunner interface {
	RunCycle(ctx context.Context) (scheduler.CycleSummary, error)
}

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store  store.Store
	runner CycleRunner
	secret string
	vapid  string
	log    logger.Logger
}

// NewHandler creates a new API handler. secret guards the monitor trigger;
// vapid is the public VAPID key handed to browser clients.
func NewHandler(s store.Store, runner CycleRunner, secret, vapid string, log logger.Logger) *Handler {
	return &Handler{
		store:  s,
		runner: runner,
		secret: secret,
		vapid:  vapid,
		log:    log,
	}
}
