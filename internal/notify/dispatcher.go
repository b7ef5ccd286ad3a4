package notify

import (
	"context"

	"travel-guardian-backend/pkg/logger"
	"travel-guardian-backend/pkg/metrics"
)

// Pool fans payloads out to delivery channels from a fixed set of workers.
// Dispatch never blocks the caller beyond the buffered queue.
type Pool struct {
	size     int
	jobs     chan Payload
	channels map[string]Channel
	log      logger.Logger
	metrics  *metrics.Metrics
}

// NewPool creates a worker pool over the given channels. A channel named by
// the severity routing but not registered here is silently skipped, which is
// how deployments without an SMS gateway run.
func NewPool(size int, channels []Channel, log logger.Logger, m *metrics.Metrics) *Pool {
	byName := make(map[string]Channel, len(channels))
	for _, ch := range channels {
		byName[ch.Name()] = ch
	}
	return &Pool{
		size:     size,
		jobs:     make(chan Payload, size*4),
		channels: byName,
		log:      log,
		metrics:  m,
	}
}

// Start launches the worker goroutines. They run until ctx is cancelled.
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.size; i++ {
		go p.worker(ctx, i)
	}
}

func (p *Pool) worker(ctx context.Context, id int) {
	p.log.Debug("notification worker started", "worker", id)
	for {
		select {
		case payload := <-p.jobs:
			p.deliver(ctx, payload)
		case <-ctx.Done():
			p.log.Debug("notification worker shutting down", "worker", id)
			return
		}
	}
}

// Dispatch enqueues a payload for delivery.
func (p *Pool) Dispatch(payload Payload) {
	p.jobs <- payload
}

// Jobs returns the job queue, for tests.
func (p *Pool) Jobs() chan Payload {
	return p.jobs
}

func (p *Pool) deliver(ctx context.Context, payload Payload) {
	for _, name := range ChannelsFor(payload.Severity) {
		ch, ok := p.channels[name]
		if !ok {
			continue
		}
		if err := ch.Send(ctx, payload); err != nil {
			p.log.Error("notification delivery failed",
				"channel", name, "user", payload.UserID, "type", payload.Type, "error", err)
			if p.metrics != nil {
				p.metrics.ErrorsCount.WithLabelValues("notify_" + name).Inc()
			}
			continue
		}
		if p.metrics != nil {
			p.metrics.NotificationsSent.Inc()
		}
	}
}
