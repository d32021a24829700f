// Package metrics defines the Prometheus metrics of the authority service.
package metrics

import (
	"errors"
	"time"

	"github.com/ctu-developers/DSpace/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API endpoint metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authority_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "authority_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "endpoint"},
	)

	// Service operation metrics
	OperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authority_operations_total",
			Help: "Total number of service operations by outcome",
		},
		[]string{"operation", "outcome"},
	)

	OperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "authority_operation_duration_seconds",
			Help:    "Duration of service operations including their transaction",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordOperation records a service operation and its outcome
func RecordOperation(operation string, duration time.Duration, err error) {
	OperationsTotal.WithLabelValues(operation, Outcome(err)).Inc()
	OperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// Outcome classifies err into a low-cardinality label value
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrPermissionDenied):
		return "denied"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid"
	case errors.Is(err, domain.ErrAlreadyExists):
		return "conflict"
	default:
		return "error"
	}
}
