package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// ProductionMetricsCollector handles queue lifecycle metrics
type ProductionMetricsCollector struct {
	entriesStarted   *prometheus.CounterVec
	startsRejected   *prometheus.CounterVec
	entriesCancelled *prometheus.CounterVec
	entriesSettled   *prometheus.CounterVec
	refundedCredits  *prometheus.CounterVec
	etaSeconds       *prometheus.HistogramVec
	settleLateness   *prometheus.HistogramVec
	sweepDuration    prometheus.Histogram
	sweepSettled     prometheus.Counter
}

// NewProductionMetricsCollector creates a new production metrics collector
func NewProductionMetricsCollector() *ProductionMetricsCollector {
	return &ProductionMetricsCollector{
		entriesStarted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "entries_started_total",
				Help:      "Queue entries started, by track and whether activation was deferred",
			},
			[]string{"track", "deferred"},
		),

		startsRejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "starts_rejected_total",
				Help:      "Start requests refused with a domain error, by track and code",
			},
			[]string{"track", "code"},
		),

		entriesCancelled: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "entries_cancelled_total",
				Help:      "Queue entries cancelled by track",
			},
			[]string{"track"},
		),

		entriesSettled: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "entries_settled_total",
				Help:      "Queue entries completed by track",
			},
			[]string{"track"},
		),

		refundedCredits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "refunded_credits_total",
				Help:      "Credits returned by cancellations",
			},
			[]string{"track"},
		),

		etaSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "entry_eta_seconds",
				Help:      "Time to completion assigned at activation",
				Buckets:   prometheus.ExponentialBuckets(60, 4, 8),
			},
			[]string{"track"},
		),

		settleLateness: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "settle_lateness_seconds",
				Help:      "Delay between an entry's completion time and its settlement",
				Buckets:   []float64{0.5, 1, 5, 15, 30, 60, 300, 900},
			},
			[]string{"track"},
		),

		sweepDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "sweep_duration_seconds",
				Help:      "Duration of settlement sweeps",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
		),

		sweepSettled: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "sweep_settled_total",
				Help:      "Entries settled by the background sweeper",
			},
		),
	}
}

// Register registers all production metrics with the Prometheus registry
func (c *ProductionMetricsCollector) Register() error {
	if Registry == nil {
		return nil // Metrics not enabled
	}

	metrics := []prometheus.Collector{
		c.entriesStarted,
		c.startsRejected,
		c.entriesCancelled,
		c.entriesSettled,
		c.refundedCredits,
		c.etaSeconds,
		c.settleLateness,
		c.sweepDuration,
		c.sweepSettled,
	}

	for _, metric := range metrics {
		if err := Registry.Register(metric); err != nil {
			return err
		}
	}

	return nil
}

func (c *ProductionMetricsCollector) RecordStart(track string, etaSeconds float64, deferred bool) {
	if deferred {
		c.entriesStarted.WithLabelValues(track, "true").Inc()
		return
	}
	c.entriesStarted.WithLabelValues(track, "false").Inc()
	c.etaSeconds.WithLabelValues(track).Observe(etaSeconds)
}

func (c *ProductionMetricsCollector) RecordStartRejected(track string, code string) {
	c.startsRejected.WithLabelValues(track, code).Inc()
}

func (c *ProductionMetricsCollector) RecordCancel(track string, refunded int64) {
	c.entriesCancelled.WithLabelValues(track).Inc()
	if refunded > 0 {
		c.refundedCredits.WithLabelValues(track).Add(float64(refunded))
	}
}

func (c *ProductionMetricsCollector) RecordSettle(track string, lateness float64) {
	c.entriesSettled.WithLabelValues(track).Inc()
	if lateness < 0 {
		lateness = 0
	}
	c.settleLateness.WithLabelValues(track).Observe(lateness)
}

func (c *ProductionMetricsCollector) RecordSweep(settled int, duration float64) {
	c.sweepDuration.Observe(duration)
	c.sweepSettled.Add(float64(settled))
}
