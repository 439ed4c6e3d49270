// Copyright (c) 2026 Serbbisyo. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command inbox follows one conversation from the terminal.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from INBOX_* environment variables.
//  3. Build the notification pipeline and metrics.
//  4. Start the connectivity monitor.
//  5. Wire the API client and marketplace service.
//  6. Print the conversation, then poll until interrupted.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/serbbisyo/serbbisyo/internal/apiclient"
	"github.com/serbbisyo/serbbisyo/internal/marketplace"
	"github.com/serbbisyo/serbbisyo/internal/metrics"
	"github.com/serbbisyo/serbbisyo/internal/notify"
)

type config struct {
	APIURL       string        `env:"INBOX_API_URL,required,notEmpty"`
	SessionToken string        `env:"INBOX_SESSION_TOKEN,required,notEmpty"`
	Conversation string        `env:"INBOX_CONVERSATION,required,notEmpty"`
	PollInterval time.Duration `env:"INBOX_POLL_INTERVAL" envDefault:"5s"`
	MetricsAddr  string        `env:"INBOX_METRICS_ADDR"`
}

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	log := slog.New(slog.NewJSONHandler(os.Stderr, nil)).With(slog.String("app", "inbox"))
	slog.SetDefault(log)

	// ── 2. Configuration ──────────────────────────────────────────────────
	var cfg config
	must(log, env.Parse(&cfg), "load configuration")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── 3. Notifications and Metrics ──────────────────────────────────────
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	terminal := notify.SinkFunc(func(severity notify.Severity, message string) {
		fmt.Fprintf(os.Stderr, "[%s] %s\n", severity, message)
	})
	sink := notify.Counted(notify.Multi(notify.NewLogSink(log), terminal), collector)

	if cfg.MetricsAddr != "" {
		metricsServer := &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           metrics.Handler(registry),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics_server_failed", slog.Any("error", err))
			}
		}()
		defer func() { _ = metricsServer.Close() }()
	}

	// ── 4. Connectivity ───────────────────────────────────────────────────
	healthURL, err := url.JoinPath(cfg.APIURL, "/health")
	must(log, err, "resolve health URL")

	httpClient := &http.Client{Timeout: 30 * time.Second}
	monitor := apiclient.NewMonitor(sink)
	go monitor.Probe(ctx, cfg.PollInterval, func(ctx context.Context) bool {
		return reachable(ctx, httpClient, healthURL)
	})

	// ── 5. Domain Wiring ──────────────────────────────────────────────────
	client, err := apiclient.New(apiclient.Config{
		BaseURL:      cfg.APIURL,
		HTTPClient:   httpClient,
		Connectivity: monitor,
		Sink:         sink,
		Recorder:     collector,
		Logger:       log,
		SessionToken: cfg.SessionToken,
	})
	must(log, err, "build API client")

	service := marketplace.NewService(client, sink, log)

	// ── 6. Conversation ───────────────────────────────────────────────────
	messages, err := service.LoadMessages(ctx, cfg.Conversation)
	must(log, err, "load conversation")
	printed := printNew(messages, 0)

	poller := marketplace.NewMessagePoller(service, cfg.Conversation, monitor, func(messages []marketplace.Message) {
		printed = printNew(messages, printed)
	}).WithInterval(cfg.PollInterval)

	if err := poller.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("poller_stopped", slog.Any("error", err))
		os.Exit(1)
	}
	log.Info("inbox_stopped")
}

// printNew writes messages past the first seen and returns the new count.
// A conversation that shrank is printed again from the start.
func printNew(messages []marketplace.Message, seen int) int {
	if seen > len(messages) {
		seen = 0
	}
	for _, message := range messages[seen:] {
		author := "them"
		if message.IsMine {
			author = "me"
		}
		fmt.Printf("%s %-4s %s\n", message.Timestamp.Format(time.Kitchen), author, message.Content)
	}
	return len(messages)
}

func reachable(ctx context.Context, client *http.Client, healthURL string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, healthURL, nil)
	if err != nil {
		return false
	}
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	_ = resp.Body.Close()
	return resp.StatusCode < http.StatusInternalServerError
}

func must(log *slog.Logger, err error, step string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("step", step),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
