package metrics

import (
	"catalog-sync-shopify-layer/internal/domain"
	"catalog-sync-shopify-layer/internal/ports"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "catalog_sync"

// SyncMetrics exposes sync results to Prometheus
type SyncMetrics struct {
	runs     *prometheus.CounterVec
	articles *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewSyncMetrics registers the sync collectors on reg
func NewSyncMetrics(reg prometheus.Registerer) *SyncMetrics {
	m := &SyncMetrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Sync passes by terminal state.",
		}, []string{"state", "trigger"}),
		articles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "articles_total",
			Help:      "Articles processed by outcome and failing stage.",
		}, []string{"status", "stage"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of a sync pass.",
			Buckets:   []float64{0.5, 1, 5, 15, 30, 60, 120, 300, 600},
		}, []string{"state"}),
	}
	reg.MustRegister(m.runs, m.articles, m.duration)
	return m
}

var _ ports.SyncMetrics = (*SyncMetrics)(nil)

// ObserveRun records a finished report
func (m *SyncMetrics) ObserveRun(report *domain.SyncReport) {
	trigger := report.Trigger
	if trigger == "" {
		trigger = "unknown"
	}
	m.runs.WithLabelValues(string(report.State), trigger).Inc()
	m.duration.WithLabelValues(string(report.State)).Observe(report.Duration().Seconds())
	for _, o := range report.Outcomes {
		stage := string(o.Stage)
		if o.Status == domain.OutcomePublished {
			stage = ""
		}
		m.articles.WithLabelValues(string(o.Status), stage).Inc()
	}
}
