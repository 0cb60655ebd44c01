package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/nao1215/a11yscan/internal/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric name.
const Namespace = "a11yscan"

// URL outcome labels for urls_processed_total.
const (
	OutcomeOK          = "ok"
	OutcomeFetchFailed = "fetch_failed"
	OutcomeTimeout     = "timeout"
)

// Collector records audit metrics.
type Collector struct {
	urlsProcessed *prometheus.CounterVec
	fetchDuration prometheus.Histogram
	findings      *prometheus.CounterVec
	errors        *prometheus.CounterVec
	activeWorkers prometheus.Gauge
}

// New creates a Collector and registers its metrics with reg.
// Registering twice with the same registry returns an error.
func New(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		urlsProcessed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "urls_processed_total",
				Help:      "URLs processed, by outcome.",
			},
			[]string{"outcome"},
		),
		fetchDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "fetch_duration_seconds",
				Help:      "Time spent fetching a page.",
				Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15, 30},
			},
		),
		findings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "findings_total",
				Help:      "Findings reported, by category.",
			},
			[]string{"category"},
		),
		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "errors_total",
				Help:      "Run errors, by kind.",
			},
			[]string{"kind"},
		),
		activeWorkers: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: Namespace,
				Name:      "active_workers",
				Help:      "URLs currently being audited.",
			},
		),
	}

	for _, col := range []prometheus.Collector{
		c.urlsProcessed,
		c.fetchDuration,
		c.findings,
		c.errors,
		c.activeWorkers,
	} {
		if err := reg.Register(col); err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}
	return c, nil
}

// URLProcessed counts one URL by outcome.
func (c *Collector) URLProcessed(outcome string) {
	if c == nil {
		return
	}
	c.urlsProcessed.WithLabelValues(outcome).Inc()
}

// ObserveFetch records the duration of a single fetch.
func (c *Collector) ObserveFetch(d time.Duration) {
	if c == nil {
		return
	}
	c.fetchDuration.Observe(d.Seconds())
}

// AddFindings counts findings by category.
func (c *Collector) AddFindings(findings []model.Finding) {
	if c == nil {
		return
	}
	for _, f := range findings {
		c.findings.WithLabelValues(f.Category.String()).Inc()
	}
}

// AddError counts one run error.
func (c *Collector) AddError(kind model.ErrorKind) {
	if c == nil {
		return
	}
	c.errors.WithLabelValues(kind.String()).Inc()
}

// SetActiveWorkers sets the number of in-flight URLs.
func (c *Collector) SetActiveWorkers(n int) {
	if c == nil {
		return
	}
	c.activeWorkers.Set(float64(n))
}

// NewHandler returns a router serving the metrics of g at /metrics.
func NewHandler(g prometheus.Gatherer) http.Handler {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	return r
}

// NewServer returns an HTTP server for NewHandler(g) listening on addr.
func NewServer(addr string, g prometheus.Gatherer) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           NewHandler(g),
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// OutcomeFor maps a fetch error kind onto a URL outcome label.
func OutcomeFor(kind model.ErrorKind) string {
	if kind == model.ErrorKindTimeout {
		return OutcomeTimeout
	}
	return OutcomeFetchFailed
}
