// Package prom implements the observability hooks on top of Prometheus.
//
// Register the collectors once and install the hooks at startup:
//
//	m := prom.New(prometheus.DefaultRegisterer)
//	observability.SetBuildHooks(m)
//	observability.SetCacheHooks(m)
//	observability.SetHTTPHooks(m)
//
// The metrics are then served by promhttp on /metrics.
package prom

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/matzehuels/mvnbox/pkg/observability"
)

// Metrics records build, cache and HTTP events as Prometheus metrics.
type Metrics struct {
	builds        *prometheus.CounterVec
	buildDuration prometheus.Histogram
	buildsRunning prometheus.Gauge
	cacheLookups  *prometheus.CounterVec
	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
}

var (
	_ observability.BuildHooks = (*Metrics)(nil)
	_ observability.CacheHooks = (*Metrics)(nil)
	_ observability.HTTPHooks  = (*Metrics)(nil)
)

// New creates the collectors and registers them with reg.
// It panics if a collector is already registered, like prometheus.MustRegister.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		builds: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mvnbox_builds_total",
				Help: "Total number of sandboxed builds by outcome",
			},
			[]string{"outcome"},
		),
		buildDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "mvnbox_build_duration_seconds",
				Help:    "Duration of sandboxed builds",
				Buckets: prometheus.ExponentialBuckets(0.5, 2, 12),
			},
		),
		buildsRunning: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "mvnbox_builds_running",
				Help: "Builds currently holding the sandbox",
			},
		),
		cacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mvnbox_cache_lookups_total",
				Help: "Cache lookups by key type and result",
			},
			[]string{"key_type", "result"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mvnbox_http_requests_total",
				Help: "Outgoing HTTP requests by host and status",
			},
			[]string{"host", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "mvnbox_http_request_duration_seconds",
				Help: "Duration of outgoing HTTP requests",
			},
			[]string{"host"},
		),
	}
	reg.MustRegister(m.builds, m.buildDuration, m.buildsRunning, m.cacheLookups, m.httpRequests, m.httpDuration)
	return m
}

func (m *Metrics) OnBuildStart(context.Context, string, []string) {
	m.buildsRunning.Inc()
}

func (m *Metrics) OnBuildComplete(_ context.Context, _ string, exitCode int, d time.Duration, err error) {
	m.buildsRunning.Dec()
	m.buildDuration.Observe(d.Seconds())
	switch {
	case err == nil:
		m.builds.WithLabelValues("success").Inc()
	case exitCode > 0:
		m.builds.WithLabelValues("failure").Inc()
	default:
		m.builds.WithLabelValues("error").Inc()
	}
}

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheLookups.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheLookups.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnRequest(context.Context, string, string, string) {}

func (m *Metrics) OnResponse(_ context.Context, _, host, _ string, status int, d time.Duration) {
	m.httpRequests.WithLabelValues(host, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(host).Observe(d.Seconds())
}

func (m *Metrics) OnError(_ context.Context, _, host, _ string, _ error) {
	m.httpRequests.WithLabelValues(host, "error").Inc()
}
