package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics. One
// recorder is shared across conversion runs so that counters accumulate in
// watch mode; the backing registry is reachable for exposition and for
// end-of-run summaries.
type PrometheusRecorder struct {
	once         sync.Once
	reg          *prom.Registry
	passDuration *prom.HistogramVec
	declared     *prom.CounterVec
	defined      *prom.CounterVec
	pages        prom.Counter
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{reg: reg}
	pr.once.Do(func() {
		pr.passDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "doxymd",
			Name:      "pass_duration_seconds",
			Help:      "Duration of individual ingestion passes",
			Buckets:   prom.DefBuckets,
		}, []string{"pass"})
		pr.declared = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "doxymd",
			Name:      "entities_declared_total",
			Help:      "Entities declared from the index document, by category",
		}, []string{"category"})
		pr.defined = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "doxymd",
			Name:      "entities_defined_total",
			Help:      "Entities filled in by the definition pass, by category",
		}, []string{"category"})
		pr.pages = prom.NewCounter(prom.CounterOpts{
			Namespace: "doxymd",
			Name:      "pages_generated_total",
			Help:      "Markdown pages written by the renderer",
		})
		reg.MustRegister(pr.passDuration, pr.declared, pr.defined, pr.pages)
	})
	return pr
}

func (pr *PrometheusRecorder) ObservePassDuration(pass string, d time.Duration) {
	pr.passDuration.WithLabelValues(pass).Observe(d.Seconds())
}

func (pr *PrometheusRecorder) IncDeclared(category string) {
	pr.declared.WithLabelValues(category).Inc()
}

func (pr *PrometheusRecorder) IncDefined(category string) {
	pr.defined.WithLabelValues(category).Inc()
}

func (pr *PrometheusRecorder) IncPagesGenerated() {
	pr.pages.Inc()
}

// Registry returns the backing registry, for HTTP exposition.
func (pr *PrometheusRecorder) Registry() *prom.Registry {
	return pr.reg
}

// CounterTotals gathers the registry and sums the counter samples of each
// metric family by name. Histogram families carry no counter samples and are
// absent from the result.
func (pr *PrometheusRecorder) CounterTotals() (map[string]float64, error) {
	families, err := pr.reg.Gather()
	if err != nil {
		return nil, err
	}

	totals := make(map[string]float64)
	for _, family := range families {
		counted := false
		total := 0.0
		for _, metric := range family.GetMetric() {
			if counter := metric.GetCounter(); counter != nil {
				total += counter.GetValue()
				counted = true
			}
		}
		if counted {
			totals[family.GetName()] = total
		}
	}
	return totals, nil
}
