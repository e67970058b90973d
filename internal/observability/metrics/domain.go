package metrics

import (
	"github.com/simplycomply/compliance-api/internal/core/domain"
)

func (m *HTTPServerMetrics) RecordScore(label domain.StatusLabel, percent int) {
	if label == "" {
		label = "unknown"
	}
	m.scoreComputations.WithLabelValues(m.service, string(label)).Inc()
	m.scorePercent.WithLabelValues(m.service).Observe(float64(percent))
}

func (m *HTTPServerMetrics) RecordSeeded(kind string, count int) {
	if count <= 0 {
		return
	}
	if kind == "" {
		kind = "unknown"
	}
	m.seededTotal.WithLabelValues(m.service, kind).Add(float64(count))
}

func (m *HTTPServerMetrics) RecordWebhook(outcome string) {
	if outcome == "" {
		outcome = "unknown"
	}
	m.webhookTotal.WithLabelValues(m.service, outcome).Inc()
}

// ObserveBreaker matches resilience.StateObserver.
func (m *HTTPServerMetrics) ObserveBreaker(operation, _ string, to string) {
	value := 0.0
	switch to {
	case "half-open":
		value = 1
	case "open":
		value = 2
	}
	m.breakerState.WithLabelValues(m.service, operation).Set(value)
}
