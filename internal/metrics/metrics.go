package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	ResultOK       = "ok"
	ResultNotFound = "not_found"
	ResultError    = "error"
)

// StoreMetrics counts catalog store operations by entity, operation and result
type StoreMetrics struct {
	ops *prometheus.CounterVec
}

// NewStoreMetrics creates the counters and registers them with reg when it is not nil
func NewStoreMetrics(reg prometheus.Registerer) *StoreMetrics {
	ops := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "catalog",
			Subsystem: "store",
			Name:      "operations_total",
			Help:      "Catalog store operations by entity, operation and result.",
		},
		[]string{"entity", "op", "result"},
	)
	if reg != nil {
		reg.MustRegister(ops)
	}
	return &StoreMetrics{ops: ops}
}

// Observe records one operation. notFound is the sentinel the caller treats
// as a miss rather than a failure; it may be nil.
func (m *StoreMetrics) Observe(entity, op string, err, notFound error) {
	if m == nil {
		return
	}
	m.ops.WithLabelValues(entity, op, result(err, notFound)).Inc()
}

// Counter exposes a single series, mostly for tests
func (m *StoreMetrics) Counter(entity, op, result string) prometheus.Counter {
	return m.ops.WithLabelValues(entity, op, result)
}

func result(err, notFound error) string {
	switch {
	case err == nil:
		return ResultOK
	case notFound != nil && errors.Is(err, notFound):
		return ResultNotFound
	default:
		return ResultError
	}
}
