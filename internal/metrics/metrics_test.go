// Copyright (c) 2026 Serbbisyo. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/*
TestRecordGateDecision counts decisions per state and role.
*/
func TestRecordGateDecision(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordGateDecision("granted", "client")
	c.RecordGateDecision("granted", "client")
	c.RecordGateDecision("logged_out", "")

	assert.Equal(t, 2.0, testutil.ToFloat64(c.gateDecisions.WithLabelValues("granted", "client")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.gateDecisions.WithLabelValues("logged_out", "")))
}

/*
TestRecordRequest counts outcomes and observes latency.
*/
func TestRecordRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordRequest(http.MethodPost, "success", 20*time.Millisecond)
	c.RecordRequest(http.MethodGet, "NETWORK_OFFLINE", 0)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.apiRequests.WithLabelValues(http.MethodPost, "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.apiRequests.WithLabelValues(http.MethodGet, "NETWORK_OFFLINE")))
	assert.Equal(t, 1, testutil.CollectAndCount(c.apiLatency))
}

/*
TestMiddleware_RecordsStatus counts implicit 200s and explicit codes.
*/
func TestMiddleware_RecordsStatus(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	ok := c.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	redirect := c.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/login.html", http.StatusSeeOther)
	}))

	ok.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	redirect.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, 1.0, testutil.ToFloat64(c.httpStatus.WithLabelValues("200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.httpStatus.WithLabelValues("303")))
}

/*
TestHandler_ServesMetrics exposes the registered families.
*/
func TestHandler_ServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordNotification("error")

	w := httptest.NewRecorder()
	Handler(reg).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	resp := w.Result()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "serbbisyo_notifications_total")
}
