// Copyright (c) 2026 SecureAuth. All rights reserved.

// Package metrics exposes Prometheus instrumentation for the API server.
//
// # Architecture
//
// A private [prometheus.Registry] is used instead of the global default so
// tests can construct isolated metric sets without double-registration panics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the application-level Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	// RequestsTotal counts HTTP requests by method, path pattern, and status class.
	RequestsTotal *prometheus.CounterVec

	// RequestDuration observes request latency by method and path pattern.
	RequestDuration *prometheus.HistogramVec

	// LoginsTotal counts login attempts by outcome (success, invalid_credentials, not_found).
	LoginsTotal *prometheus.CounterVec

	// CacheOperations counts user-cache outcomes (hit, miss, degraded).
	CacheOperations *prometheus.CounterVec
}

// New creates a registry pre-loaded with Go runtime collectors and the
// application metric set.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: registry,
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "secureauth_http_requests_total",
				Help: "Total number of HTTP requests by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "secureauth_http_request_duration_seconds",
				Help:    "HTTP request latency distribution.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		LoginsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "secureauth_logins_total",
				Help: "Total number of login attempts by outcome.",
			},
			[]string{"outcome"},
		),
		CacheOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "secureauth_user_cache_operations_total",
				Help: "User cache lookups by outcome (hit, miss, degraded).",
			},
			[]string{"outcome"},
		),
	}

	registry.MustRegister(m.RequestsTotal, m.RequestDuration, m.LoginsTotal, m.CacheOperations)
	return m
}

// Handler returns the /metrics endpoint handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// Instrument wraps an HTTP handler chain with request counting and latency
// observation. Mounted once at the router root.
func (m *Metrics) Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		startTime := time.Now()
		recorder := &statusRecorder{ResponseWriter: writer, status: http.StatusOK}

		next.ServeHTTP(recorder, request)

		m.RequestsTotal.WithLabelValues(
			request.Method,
			request.URL.Path,
			strconv.Itoa(recorder.status),
		).Inc()
		m.RequestDuration.WithLabelValues(
			request.Method,
			request.URL.Path,
		).Observe(time.Since(startTime).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (recorder *statusRecorder) WriteHeader(code int) {
	recorder.status = code
	recorder.ResponseWriter.WriteHeader(code)
}
