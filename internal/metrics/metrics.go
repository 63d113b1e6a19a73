// Package metrics exposes Prometheus metrics for the oven ledger.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/roach88/ovenledger/internal/ledger"
)

// Action labels.
const (
	ActionAdd    = "add"
	ActionUnload = "unload"
	ActionExport = "export"
)

// Outcome labels.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeWarning  = "warning"
	OutcomeError    = "error"
)

// Metrics provides observability for ledger actions.
type Metrics struct {
	// Actions by action and outcome
	Actions *prometheus.CounterVec

	// Persistence and export failures by operation ("save", "export")
	StorageFailures *prometheus.CounterVec
}

// New creates Metrics registered on reg. When source is non-nil the
// in-oven gauges are collected from it on every scrape.
func New(reg prometheus.Registerer, source Source) *Metrics {
	factory := promauto.With(reg)
	m := &Metrics{
		Actions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ovenledger_actions_total",
			Help: "Ledger actions by action and outcome",
		}, []string{"action", "outcome"}),

		StorageFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ovenledger_storage_failures_total",
			Help: "Failed ledger saves and export writes by operation",
		}, []string{"op"}),
	}
	if source != nil {
		reg.MustRegister(NewCollector(source))
	}
	return m
}

// Observe records the outcome of action given the error it returned.
// Storage write failures count as a warning plus one failure per operation.
func (m *Metrics) Observe(action string, err error) {
	if m == nil {
		return
	}
	switch {
	case err == nil:
		m.Actions.WithLabelValues(action, OutcomeOK).Inc()
	case ledger.IsStorageWrite(err):
		m.Actions.WithLabelValues(action, OutcomeWarning).Inc()
		for _, op := range writeOps(err) {
			m.StorageFailures.WithLabelValues(op).Inc()
		}
	case ledger.IsValidation(err), ledger.IsNotFound(err), ledger.IsAlreadyUnloaded(err):
		m.Actions.WithLabelValues(action, OutcomeRejected).Inc()
	default:
		m.Actions.WithLabelValues(action, OutcomeError).Inc()
	}
}

// writeOps lists the Op of every *StorageWriteError in err, following
// errors.Join trees.
func writeOps(err error) []string {
	var ops []string
	var walk func(error)
	walk = func(e error) {
		switch v := e.(type) {
		case *ledger.StorageWriteError:
			ops = append(ops, v.Op)
		case interface{ Unwrap() []error }:
			for _, inner := range v.Unwrap() {
				walk(inner)
			}
		case interface{ Unwrap() error }:
			walk(v.Unwrap())
		}
	}
	walk(err)
	return ops
}
