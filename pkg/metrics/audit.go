package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// AuditMetrics records outcomes of best-effort audit writes. Audit failures
// never fail the triggering mutation, so the counter is the main way they
// become visible outside the logs.
type AuditMetrics struct {
	written *prometheus.CounterVec
	failed  *prometheus.CounterVec
}

// NewAuditMetrics registers the audit counters on the provided registerer.
func NewAuditMetrics(reg prometheus.Registerer) *AuditMetrics {
	if reg == nil {
		return &AuditMetrics{}
	}
	written := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "audit_entries_written",
		Help: "Audit log entries successfully written.",
	}, []string{"action"})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "audit_entries_failed",
		Help: "Audit log writes that failed and were swallowed.",
	}, []string{"action"})
	reg.MustRegister(written, failed)
	return &AuditMetrics{
		written: written,
		failed:  failed,
	}
}

// IncWritten increments the success counter for the given action.
func (a *AuditMetrics) IncWritten(action string) {
	if a == nil || a.written == nil {
		return
	}
	a.written.WithLabelValues(normalizeLabel(action)).Inc()
}

// IncFailed increments the failure counter for the given action.
func (a *AuditMetrics) IncFailed(action string) {
	if a == nil || a.failed == nil {
		return
	}
	a.failed.WithLabelValues(normalizeLabel(action)).Inc()
}

func normalizeLabel(action string) string {
	if action == "" {
		return "unknown"
	}
	return action
}
