package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics for the monitoring engine.
type Metrics struct {
	CyclesRun         prometheus.Counter
	EntitiesChecked   prometheus.Counter
	AlertsCreated     *prometheus.CounterVec
	AlertsSuppressed  prometheus.Counter
	NotificationsSent prometheus.Counter
	CycleDuration     prometheus.Histogram
	ErrorsCount       *prometheus.CounterVec
}

// NewMetrics creates new prometheus metrics under the given namespace,
// registered on the default registry.
func NewMetrics(namespace string) *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer, namespace)
}

// NewMetricsWith registers the metrics on an explicit registerer. Tests use
// this with a fresh registry per case.
func NewMetricsWith(reg prometheus.Registerer, namespace string) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		CyclesRun: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_run_total",
			Help:      "The total number of monitoring cycles executed",
		}),
		EntitiesChecked: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entities_checked_total",
			Help:      "The total number of trips and routes checked",
		}),
		AlertsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_created_total",
			Help:      "The total number of alerts created",
		}, []string{"type"}),
		AlertsSuppressed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_suppressed_total",
			Help:      "The total number of duplicate alerts suppressed",
		}),
		NotificationsSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_sent_total",
			Help:      "The total number of notifications dispatched",
		}),
		CycleDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Time taken to run a full monitoring cycle",
			Buckets:   prometheus.DefBuckets,
		}),
		ErrorsCount: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "The total number of errors",
		}, []string{"operation"}),
	}
}
