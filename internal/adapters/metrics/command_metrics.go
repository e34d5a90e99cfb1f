package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/andrescamacho/imperium/internal/domain/shared"
)

// Outcome labels for errors without a domain code
const (
	outcomeOK       = "ok"
	outcomeInternal = "internal"
)

// CommandMetricsCollector records mediator request latency and outcome.
// Rejections carry their domain error code as the outcome label.
type CommandMetricsCollector struct {
	commandDuration *prometheus.HistogramVec
	commandsTotal   *prometheus.CounterVec
}

// NewCommandMetricsCollector creates a new command metrics collector
func NewCommandMetricsCollector() *CommandMetricsCollector {
	return &CommandMetricsCollector{
		commandDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "request_duration_seconds",
				Help:      "Mediator request latency by request and outcome",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
			},
			[]string{"request", "outcome"},
		),
		commandsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "requests_total",
				Help:      "Mediator requests by request and outcome",
			},
			[]string{"request", "outcome"},
		),
	}
}

// Register registers the request metrics with the Prometheus registry
func (c *CommandMetricsCollector) Register() error {
	if Registry == nil {
		return nil
	}
	for _, metric := range []prometheus.Collector{c.commandDuration, c.commandsTotal} {
		if err := Registry.Register(metric); err != nil {
			return err
		}
	}
	return nil
}

// RecordCommandExecution records one handled request
func (c *CommandMetricsCollector) RecordCommandExecution(requestName string, duration float64, err error) {
	outcome := outcomeLabel(err)
	c.commandDuration.WithLabelValues(requestName, outcome).Observe(duration)
	c.commandsTotal.WithLabelValues(requestName, outcome).Inc()
}

func outcomeLabel(err error) string {
	if err == nil {
		return outcomeOK
	}
	if code := shared.CodeOf(err); code != "" {
		return strings.ToLower(string(code))
	}
	return outcomeInternal
}
