package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	registry       *prom.Registry
	renderDuration *prom.HistogramVec
	renderErrors   *prom.CounterVec
	stepDuration   *prom.HistogramVec
	buildOutcome   *prom.CounterVec
	collisions     *prom.CounterVec
}

// NewPrometheusRecorder constructs the metrics and registers them on reg.
// A nil reg gets a fresh registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		registry: reg,
		renderDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "gasket",
			Name:      "render_duration_seconds",
			Help:      "Duration of template renders, nested includes included",
			Buckets:   prom.DefBuckets,
		}, []string{"template"}),
		renderErrors: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "gasket",
			Name:      "render_errors_total",
			Help:      "Failed top-level template renders, by the template requested",
		}, []string{"template"}),
		stepDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "gasket",
			Name:      "build_step_duration_seconds",
			Help:      "Duration of individual build pipeline steps",
			Buckets:   prom.DefBuckets,
		}, []string{"step"}),
		buildOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "gasket",
			Name:      "build_outcomes_total",
			Help:      "Build outcomes by final status",
		}, []string{"outcome"}),
		collisions: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "gasket",
			Name:      "build_collisions_total",
			Help:      "Same-name files that overwrote each other in the flat output",
		}, []string{"kind"}),
	}
	reg.MustRegister(pr.renderDuration, pr.renderErrors, pr.stepDuration, pr.buildOutcome, pr.collisions)
	return pr
}

func (p *PrometheusRecorder) ObserveRender(name string, d time.Duration) {
	p.renderDuration.WithLabelValues(name).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncRenderError(name string) {
	p.renderErrors.WithLabelValues(name).Inc()
}

func (p *PrometheusRecorder) ObserveStepDuration(step string, d time.Duration) {
	p.stepDuration.WithLabelValues(step).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome Outcome) {
	p.buildOutcome.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) IncCollision(kind string) {
	p.collisions.WithLabelValues(kind).Inc()
}

// Handler serves the recorder's registry in the Prometheus exposition format.
func (p *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
