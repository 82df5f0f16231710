package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "crediticio"

// Metrics groups the assessment collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry *prometheus.Registry

	decisions      *prometheus.CounterVec
	redFlags       *prometheus.CounterVec
	fallbacks      prometheus.Counter
	overrides      *prometheus.CounterVec
	fuzzyRisk      prometheus.Histogram
	classifierErrs prometheus.Counter
	sinkErrs       *prometheus.CounterVec
}

// New registers every collector on a fresh registry, so tests and multiple
// servers in one process do not collide.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		decisions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decisions_total",
			Help:      "Assessments completed, by decision.",
		}, []string{"decision"}),
		redFlags: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "red_flags_total",
			Help:      "Automatic rejections, by red flag.",
		}, []string{"flag"}),
		fallbacks: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fuzzy_fallbacks_total",
			Help:      "Fuzzy inferences with no firing rule that used the default risk.",
		}),
		overrides: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "risk_overrides_total",
			Help:      "Override floors applied after defuzzification, by check.",
		}, []string{"check"}),
		fuzzyRisk: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fuzzy_risk",
			Help:      "Macro risk score after overrides.",
			Buckets:   prometheus.LinearBuckets(0, 1, 11),
		}),
		classifierErrs: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "classifier_errors_total",
			Help:      "Failed default-probability predictions.",
		}),
		sinkErrs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "record_errors_total",
			Help:      "Failed writes of finished assessments, by sink.",
		}, []string{"sink"}),
	}
}

func (m *Metrics) ObserveDecision(decision, redFlag string) {
	if m == nil {
		return
	}
	m.decisions.WithLabelValues(decision).Inc()
	if redFlag != "" {
		m.redFlags.WithLabelValues(redFlag).Inc()
	}
}

func (m *Metrics) ObserveMacroRisk(score float64, fallback bool, overrides []string) {
	if m == nil {
		return
	}
	m.fuzzyRisk.Observe(score)
	if fallback {
		m.fallbacks.Inc()
	}
	for _, o := range overrides {
		m.overrides.WithLabelValues(o).Inc()
	}
}

func (m *Metrics) ClassifierError() {
	if m == nil {
		return
	}
	m.classifierErrs.Inc()
}

func (m *Metrics) SinkError(sink string) {
	if m == nil {
		return
	}
	m.sinkErrs.WithLabelValues(sink).Inc()
}

// Registry is exposed for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
