package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// FinancialMetricsCollector handles ledger metrics (balances, transactions)
type FinancialMetricsCollector struct {
	creditsBalance    *prometheus.GaugeVec
	transactionsTotal *prometheus.CounterVec
	transactionAmount *prometheus.HistogramVec
}

// NewFinancialMetricsCollector creates a new financial metrics collector
func NewFinancialMetricsCollector() *FinancialMetricsCollector {
	return &FinancialMetricsCollector{
		creditsBalance: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "empire_credits_balance",
				Help:      "Credits balance after the latest transaction of each empire",
			},
			[]string{"empire_id"},
		),

		transactionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "transactions_total",
				Help:      "Total number of ledger transactions by type and category",
			},
			[]string{"type", "category"},
		),

		// Absolute amounts; the sign is implied by the type
		transactionAmount: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "transaction_amount",
				Help:      "Transaction amount distribution",
				Buckets:   []float64{10, 50, 100, 500, 1000, 5000, 10000, 50000, 100000},
			},
			[]string{"type", "category"},
		),
	}
}

// Register registers all financial metrics with the Prometheus registry
func (c *FinancialMetricsCollector) Register() error {
	if Registry == nil {
		return nil // Metrics not enabled
	}

	metrics := []prometheus.Collector{
		c.creditsBalance,
		c.transactionsTotal,
		c.transactionAmount,
	}

	for _, metric := range metrics {
		if err := Registry.Register(metric); err != nil {
			return err
		}
	}

	return nil
}

// RecordTransaction records a transaction event
func (c *FinancialMetricsCollector) RecordTransaction(
	empireID int,
	transactionType string,
	category string,
	amount int64,
	creditsBalance int64,
) {
	c.creditsBalance.WithLabelValues(strconv.Itoa(empireID)).Set(float64(creditsBalance))
	c.transactionsTotal.WithLabelValues(transactionType, category).Inc()

	if amount < 0 {
		amount = -amount
	}
	c.transactionAmount.WithLabelValues(transactionType, category).Observe(float64(amount))
}
