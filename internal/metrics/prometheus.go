package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusRecorder implements Recorder on its own registry.
type PrometheusRecorder struct {
	registry        *prometheus.Registry
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	statusTotal     *prometheus.CounterVec
	exportsTotal    *prometheus.CounterVec
	exportDuration  prometheus.Histogram
}

// NewPrometheusRecorder creates a recorder with a private registry that also
// carries the Go runtime and process collectors.
func NewPrometheusRecorder() *PrometheusRecorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &PrometheusRecorder{
		registry: reg,
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ignite_requests_total",
				Help: "Total number of evaluation requests by level and outcome",
			},
			[]string{"level", "outcome"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ignite_request_duration_seconds",
				Help:    "Duration of evaluation requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"level"},
		),
		statusTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ignite_status_signals_total",
				Help: "Total number of transient statuses shown, by tag",
			},
			[]string{"tag"},
		),
		exportsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ignite_exports_total",
				Help: "Total number of export jobs by outcome",
			},
			[]string{"outcome"},
		),
		exportDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ignite_export_duration_seconds",
				Help:    "Duration of export jobs in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
}

// Registry exposes the private registry for serving.
func (p *PrometheusRecorder) Registry() *prometheus.Registry {
	return p.registry
}

func (p *PrometheusRecorder) ObserveRequest(level int, outcome string, d time.Duration) {
	l := strconv.Itoa(level)
	p.requestsTotal.WithLabelValues(l, outcome).Inc()
	p.requestDuration.WithLabelValues(l).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveStatus(tag string) {
	p.statusTotal.WithLabelValues(tag).Inc()
}

func (p *PrometheusRecorder) ObserveExport(outcome string, d time.Duration) {
	p.exportsTotal.WithLabelValues(outcome).Inc()
	p.exportDuration.Observe(d.Seconds())
}
