// Copyright (c) 2026 Serbbisyo. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package apiclient performs calls against the marketplace backend and
normalises every result into an [Outcome].

Guarantees:

  - Each call is attempted exactly once; there is no retry.
  - Every failure is classified into an [apperr.Kind] and emits exactly one
    error notification before the call returns.
  - Success emits nothing; confirming success is the caller's job.

Callers never see raw transport errors.
*/
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/serbbisyo/serbbisyo/internal/notify"
	"github.com/serbbisyo/serbbisyo/internal/platform/apperr"
	"github.com/serbbisyo/serbbisyo/internal/platform/respond"
)

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 10 << 20

var allowedMethods = map[string]struct{}{
	http.MethodGet:    {},
	http.MethodPost:   {},
	http.MethodPut:    {},
	http.MethodPatch:  {},
	http.MethodDelete: {},
}

// Recorder observes completed calls. [*metrics.Collector] satisfies it.
type Recorder interface {
	RecordRequest(method, outcome string, duration time.Duration)
}

// Config holds the collaborators of a [Client].
type Config struct {
	// BaseURL is prefixed to every request path.
	BaseURL string
	// HTTPClient defaults to a client with a 30 second timeout.
	HTTPClient *http.Client
	// Connectivity defaults to [AlwaysOnline].
	Connectivity Connectivity
	// Sink receives failure notifications. Defaults to [notify.Discard].
	Sink notify.Sink
	// Recorder is optional.
	Recorder Recorder
	// Logger defaults to [slog.Default].
	Logger *slog.Logger
	// SessionToken, when set, is sent as a bearer token.
	SessionToken string
}

// Client is safe for concurrent use. Concurrent calls are not deduplicated.
type Client struct {
	baseURL      *url.URL
	httpClient   *http.Client
	connectivity Connectivity
	sink         notify.Sink
	recorder     Recorder
	logger       *slog.Logger
	sessionToken string
}

// New builds a [Client] from cfg.
func New(cfg Config) (*Client, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("apiclient: invalid base URL: %w", err)
	}

	client := &Client{
		baseURL:      base,
		httpClient:   cfg.HTTPClient,
		connectivity: cfg.Connectivity,
		sink:         notify.Safe(cfg.Sink),
		recorder:     cfg.Recorder,
		logger:       cfg.Logger,
		sessionToken: cfg.SessionToken,
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if client.connectivity == nil {
		client.connectivity = AlwaysOnline
	}
	if client.logger == nil {
		client.logger = slog.Default()
	}
	return client, nil
}

// Options configures one call.
type Options struct {
	// Method is one of GET, POST, PUT, PATCH, DELETE. Empty means GET.
	Method string
	// Body is sent as JSON. []byte and json.RawMessage are sent verbatim.
	Body any
}

/*
Request performs one JSON call against path.

Parameters:
  - ctx: context.Context (caller-owned deadline; cancellation yields UNKNOWN_ERROR)
  - path: string (e.g. "/api/bookings/create", may carry a query)
  - options: Options

Returns:
  - Outcome: never a raw error
*/
func (client *Client) Request(ctx context.Context, path string, options Options) Outcome {
	method := strings.ToUpper(strings.TrimSpace(options.Method))
	if method == "" {
		method = http.MethodGet
	}

	if _, ok := allowedMethods[method]; !ok {
		return client.finish(ctx, method, path, time.Now(), failure(apperr.KindUnknown, 0, ""))
	}

	var body io.Reader
	contentType := ""
	if options.Body != nil {
		payload, err := encodeBody(options.Body)
		if err != nil {
			client.logger.ErrorContext(ctx, "api_request_encode_failed", slog.String("path", path), slog.Any("error", err))
			return client.finish(ctx, method, path, time.Now(), failure(apperr.KindUnknown, 0, ""))
		}
		body = bytes.NewReader(payload)
		contentType = "application/json"
	}

	return client.send(ctx, method, path, body, contentType)
}

func encodeBody(body any) ([]byte, error) {
	switch v := body.(type) {
	case []byte:
		return v, nil
	case json.RawMessage:
		return v, nil
	default:
		return json.Marshal(v)
	}
}

// send performs the exchange and classifies the result.
func (client *Client) send(ctx context.Context, method, path string, body io.Reader, contentType string) Outcome {
	started := time.Now()

	// ── 1. Connectivity ───────────────────────────────────────────────────
	if !client.connectivity.Online() {
		return client.finish(ctx, method, path, started, failure(apperr.KindNetworkOffline, 0, ""))
	}

	// ── 2. Build ──────────────────────────────────────────────────────────
	target, err := client.resolve(path)
	if err != nil {
		return client.finish(ctx, method, path, started, failure(apperr.KindUnknown, 0, ""))
	}

	request, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return client.finish(ctx, method, path, started, failure(apperr.KindUnknown, 0, ""))
	}
	request.Header.Set("Accept", "application/json")
	if contentType != "" {
		request.Header.Set("Content-Type", contentType)
	}
	if client.sessionToken != "" {
		request.Header.Set("Authorization", "Bearer "+client.sessionToken)
	}

	// ── 3. Exchange ───────────────────────────────────────────────────────
	response, err := client.httpClient.Do(request)
	if err != nil {
		return client.finish(ctx, method, path, started, client.transportFailure(ctx, err))
	}
	defer response.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(response.Body, maxBodyBytes))
	if err != nil {
		return client.finish(ctx, method, path, started, client.transportFailure(ctx, err))
	}

	// ── 4. Classify ───────────────────────────────────────────────────────
	if response.StatusCode >= http.StatusBadRequest {
		kind := apperr.KindForStatus(response.StatusCode)
		return client.finish(ctx, method, path, started, failure(kind, response.StatusCode, serverMessage(payload)))
	}

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		return client.finish(ctx, method, path, started, failure(apperr.KindUnknown, response.StatusCode, ""))
	}

	if len(bytes.TrimSpace(payload)) == 0 {
		return client.finish(ctx, method, path, started, success(response.StatusCode, nil, nil))
	}

	var data any
	if err := json.Unmarshal(payload, &data); err != nil {
		client.logger.WarnContext(ctx, "api_response_undecodable", slog.String("path", path), slog.Any("error", err))
		return client.finish(ctx, method, path, started, failure(apperr.KindUnknown, response.StatusCode, ""))
	}

	return client.finish(ctx, method, path, started, success(response.StatusCode, data, payload))
}

func (client *Client) resolve(path string) (string, error) {
	reference, err := url.Parse(path)
	if err != nil {
		return "", err
	}
	return client.baseURL.ResolveReference(reference).String(), nil
}

// transportFailure separates caller cancellation from an unreachable network.
func (client *Client) transportFailure(ctx context.Context, err error) Outcome {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return failure(apperr.KindUnknown, 0, "")
	}
	return failure(apperr.KindNetworkOffline, 0, "")
}

// serverMessage extracts the error text from a JSON error envelope, if any.
func serverMessage(payload []byte) string {
	var envelope respond.ErrorEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return ""
	}
	return envelope.Error
}

// finish emits the single failure notification, records metrics and logs.
func (client *Client) finish(ctx context.Context, method, path string, started time.Time, outcome Outcome) Outcome {
	label := "success"
	if !outcome.Success {
		label = string(outcome.Kind)
		notify.HandleError(client.errorSink(), outcome.Kind, outcome.Message)
		client.logger.WarnContext(ctx, "api_request_failed",
			slog.String("method", method),
			slog.String("path", path),
			slog.String("kind", label),
			slog.Int("status", outcome.Status),
		)
	}

	if client.recorder != nil {
		client.recorder.RecordRequest(method, label, time.Since(started))
	}
	return outcome
}

// errorSink forces error severity: request failures are never user-correctable warnings.
func (client *Client) errorSink() notify.Sink {
	return notify.SinkFunc(func(_ notify.Severity, message string) {
		client.sink.Notify(notify.SeverityError, message)
	})
}
