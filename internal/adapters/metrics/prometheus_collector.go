package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// Namespace for all metrics
	namespace = "imperium"
	// Subsystem for scheduler server metrics
	subsystem = "scheduler"
)

var (
	// Registry is the global Prometheus registry for all metrics
	Registry *prometheus.Registry

	// globalFinancialCollector is the singleton ledger metrics collector
	// Set by SetGlobalFinancialCollector() when metrics are enabled
	globalFinancialCollector FinancialMetricsRecorder

	// globalProductionCollector is the singleton queue metrics collector
	// Set by SetGlobalProductionCollector() when metrics are enabled
	globalProductionCollector ProductionMetricsRecorder
)

// FinancialMetricsRecorder defines the interface for recording ledger metrics
type FinancialMetricsRecorder interface {
	RecordTransaction(empireID int, transactionType string, category string, amount int64, creditsBalance int64)
}

// ProductionMetricsRecorder defines the interface for recording queue lifecycle metrics
type ProductionMetricsRecorder interface {
	RecordStart(track string, etaSeconds float64, deferred bool)
	RecordStartRejected(track string, code string)
	RecordCancel(track string, refunded int64)
	RecordSettle(track string, lateness float64)
	RecordSweep(settled int, duration float64)
}

// InitRegistry initializes the Prometheus registry
// Should be called once at application startup if metrics are enabled
func InitRegistry() {
	Registry = prometheus.NewRegistry()
}

// IsEnabled returns true if metrics collection is enabled
func IsEnabled() bool {
	return Registry != nil
}

// SetGlobalFinancialCollector sets the global financial metrics collector
func SetGlobalFinancialCollector(collector FinancialMetricsRecorder) {
	globalFinancialCollector = collector
}

// SetGlobalProductionCollector sets the global production metrics collector
func SetGlobalProductionCollector(collector ProductionMetricsRecorder) {
	globalProductionCollector = collector
}

// RecordTransaction records a committed ledger transaction globally
func RecordTransaction(empireID int, transactionType string, category string, amount int64, creditsBalance int64) {
	if globalFinancialCollector != nil {
		globalFinancialCollector.RecordTransaction(empireID, transactionType, category, amount, creditsBalance)
	}
}

// RecordStart records a committed Start globally
func RecordStart(track string, etaSeconds float64, deferred bool) {
	if globalProductionCollector != nil {
		globalProductionCollector.RecordStart(track, etaSeconds, deferred)
	}
}

// RecordStartRejected records a Start refused with a domain error code
func RecordStartRejected(track string, code string) {
	if globalProductionCollector != nil {
		globalProductionCollector.RecordStartRejected(track, code)
	}
}

// RecordCancel records a committed cancellation and its refund globally
func RecordCancel(track string, refunded int64) {
	if globalProductionCollector != nil {
		globalProductionCollector.RecordCancel(track, refunded)
	}
}

// RecordSettle records a settled entry and how long after its completion time it was settled
func RecordSettle(track string, lateness float64) {
	if globalProductionCollector != nil {
		globalProductionCollector.RecordSettle(track, lateness)
	}
}

// RecordSweep records one pass of the settlement sweeper
func RecordSweep(settled int, duration float64) {
	if globalProductionCollector != nil {
		globalProductionCollector.RecordSweep(settled, duration)
	}
}
