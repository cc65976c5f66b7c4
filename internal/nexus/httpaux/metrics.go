// Package httpaux implements the nexus's auxiliary HTTP surface: a chi mux
// serving Prometheus metrics, a liveness probe, and a read-only MDS tree
// dump for operators, running alongside the UDS config/exec control plane
// rather than in place of it.
package httpaux

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds routerd's counter/gauge families. Of its methods, only
// SetTimerQueueDepth has a caller (routerd's start command); the dispatch,
// worker channel depth and RIB sync families are registered but nothing
// records into them. A nil *Metrics is safe to call methods on; every
// method short-circuits, so callers never need a feature flag of their own.
type Metrics struct {
	dispatchTotal   *prometheus.CounterVec
	dispatchSeconds *prometheus.HistogramVec
	workerQueueSize *prometheus.GaugeVec
	timerQueueSize  prometheus.Gauge
	ribSyncTotal    *prometheus.CounterVec
}

// NewMetrics registers routerd's metric families on reg and returns a
// Metrics handle. reg is typically prometheus.NewRegistry(), kept separate
// from the global default registerer so a test can spin up its own.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		dispatchTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "routerd_mds_dispatch_total",
				Help: "Total MDS requests dispatched, by method and category.",
			},
			[]string{"method", "category"},
		),
		dispatchSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "routerd_mds_dispatch_seconds",
				Help:    "MDS dispatch latency in seconds, by method.",
				Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
			},
			[]string{"method"},
		),
		workerQueueSize: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "routerd_worker_channel_depth",
				Help: "Number of messages currently queued on a worker's channel.",
			},
			[]string{"worker", "direction"},
		),
		timerQueueSize: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "routerd_timer_queue_depth",
				Help: "Number of timers currently pending on the event loop.",
			},
		),
		ribSyncTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "routerd_rib_sync_total",
				Help: "RIB-to-FIB sync operations, by action and result.",
			},
			[]string{"action", "result"}, // action: "install"|"uninstall"
		),
	}
}

// ObserveDispatch records one MDS dispatch of method/category taking d.
func (m *Metrics) ObserveDispatch(method, category string, d time.Duration) {
	if m == nil {
		return
	}
	m.dispatchTotal.WithLabelValues(method, category).Inc()
	m.dispatchSeconds.WithLabelValues(method).Observe(d.Seconds())
}

// SetWorkerQueueDepth records worker's current channel depth in direction
// ("in" or "out").
func (m *Metrics) SetWorkerQueueDepth(worker, direction string, depth int) {
	if m == nil {
		return
	}
	m.workerQueueSize.WithLabelValues(worker, direction).Set(float64(depth))
}

// SetTimerQueueDepth records the event loop's current pending-timer count.
func (m *Metrics) SetTimerQueueDepth(depth int) {
	if m == nil {
		return
	}
	m.timerQueueSize.Set(float64(depth))
}

// ObserveRIBSync records one install/uninstall call against the kernel FIB
// and whether it succeeded.
func (m *Metrics) ObserveRIBSync(action string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.ribSyncTotal.WithLabelValues(action, result).Inc()
}
