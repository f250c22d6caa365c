// Copyright (c) 2026 Clinicore. All rights reserved.
// Author: dev@clinicore.health

/*
Package metrics exposes the Prometheus instrumentation for the Clinicore API.

It registers all collectors on a private registry so tests can create
independent instances, and provides the /metrics handler for scraping.

Collectors:

  - HTTP request counters and latency histograms, labeled by route and status.
  - Login outcome counters, labeled by result (success / failure).
  - Audit write failure counter. The audit recorder is deliberately
    best-effort, so a non-zero value here is the primary signal that
    trail entries are being dropped and needs paging.
  - Break-glass access counter, so emergency reads are visible on the
    security dashboard independent of the audit trail.
*/
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the application.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	loginAttemptsTotal *prometheus.CounterVec

	auditWriteFailuresTotal prometheus.Counter
	breakGlassAccessTotal   prometheus.Counter
	patientCacheTotal       *prometheus.CounterVec
}

// New creates a Metrics instance with all collectors registered on a
// fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,

		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed, by route and status.",
		}, []string{"method", "route", "status"}),

		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency distribution.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),

		loginAttemptsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "login_attempts_total",
			Help: "Login attempts by outcome (success, failure).",
		}, []string{"outcome"}),

		auditWriteFailuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "audit_write_failures_total",
			Help: "Audit trail entries that could not be persisted.",
		}),

		breakGlassAccessTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "break_glass_access_total",
			Help: "Emergency patient-record accesses via the break-glass endpoint.",
		}),

		patientCacheTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "patient_cache_total",
			Help: "Patient record cache lookups by result (hit, miss, error).",
		}, []string{"result"}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.loginAttemptsTotal,
		m.auditWriteFailuresTotal,
		m.breakGlassAccessTotal,
		m.patientCacheTotal,
	)

	return m
}

// Handler returns the HTTP handler serving the /metrics scrape endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveHTTPRequest records one completed HTTP request.
func (m *Metrics) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// LoginSucceeded increments the successful-login counter.
func (m *Metrics) LoginSucceeded() {
	m.loginAttemptsTotal.WithLabelValues("success").Inc()
}

// LoginFailed increments the failed-login counter.
func (m *Metrics) LoginFailed() {
	m.loginAttemptsTotal.WithLabelValues("failure").Inc()
}

// AuditWriteFailed increments the dropped-audit-entry counter.
func (m *Metrics) AuditWriteFailed() {
	m.auditWriteFailuresTotal.Inc()
}

// BreakGlassAccess increments the emergency access counter.
func (m *Metrics) BreakGlassAccess() {
	m.breakGlassAccessTotal.Inc()
}

// PatientCacheHit records a cache hit on a patient-record lookup.
func (m *Metrics) PatientCacheHit() {
	m.patientCacheTotal.WithLabelValues("hit").Inc()
}

// PatientCacheMiss records a cache miss on a patient-record lookup.
func (m *Metrics) PatientCacheMiss() {
	m.patientCacheTotal.WithLabelValues("miss").Inc()
}

// PatientCacheError records a cache backend failure. Lookups fall through
// to PostgreSQL, so this is a health signal rather than a request failure.
func (m *Metrics) PatientCacheError() {
	m.patientCacheTotal.WithLabelValues("error").Inc()
}
