// Copyright (c) 2026 Serbbisyo. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package metrics collects and exposes Prometheus metrics for the web server
// and the API client.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector implements the recorder interfaces of the gate and the API client.
type Collector struct {
	gateDecisions *prometheus.CounterVec
	apiRequests   *prometheus.CounterVec
	apiLatency    prometheus.Histogram
	httpStatus    *prometheus.CounterVec
	notifications *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		gateDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "serbbisyo_gate_decisions_total",
			Help: "Session gate decisions by final state and role.",
		}, []string{"state", "role"}),
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "serbbisyo_api_requests_total",
			Help: "Backend API calls by method and outcome kind.",
		}, []string{"method", "outcome"}),
		apiLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "serbbisyo_api_request_duration_seconds",
			Help:    "Backend API call latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "serbbisyo_http_responses_total",
			Help: "Responses served by the web server by status code.",
		}, []string{"status_code"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "serbbisyo_notifications_total",
			Help: "User notifications emitted by severity.",
		}, []string{"severity"}),
	}

	reg.MustRegister(
		c.gateDecisions,
		c.apiRequests,
		c.apiLatency,
		c.httpStatus,
		c.notifications,
	)

	return c
}

// RecordGateDecision counts one evaluated session firing.
func (c *Collector) RecordGateDecision(state, role string) {
	c.gateDecisions.WithLabelValues(state, role).Inc()
}

// RecordRequest counts one API call and observes its latency. outcome is
// "success" or the failure kind.
func (c *Collector) RecordRequest(method, outcome string, duration time.Duration) {
	c.apiRequests.WithLabelValues(method, outcome).Inc()
	c.apiLatency.Observe(duration.Seconds())
}

// RecordHTTPStatus counts one served response.
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordNotification counts one user notification.
func (c *Collector) RecordNotification(severity string) {
	c.notifications.WithLabelValues(severity).Inc()
}

// Middleware records the status code of every response.
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		wrapped := middleware.NewWrapResponseWriter(writer, request.ProtoMajor)
		next.ServeHTTP(wrapped, request)

		status := wrapped.Status()
		if status == 0 {
			status = http.StatusOK
		}
		c.RecordHTTPStatus(status)
	})
}

// Handler returns the HTTP handler for Prometheus scrapes.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
