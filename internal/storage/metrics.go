package storage

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	operationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "resume",
		Subsystem: "storage",
		Name:      "operations_total",
		Help:      "Object storage operations by operation and result.",
	}, []string{"operation", "result"})

	operationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "resume",
		Subsystem: "storage",
		Name:      "operation_duration_seconds",
		Help:      "Latency of object storage operations.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})
)

func observe(operation string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	operationsTotal.WithLabelValues(operation, result).Inc()
	operationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
