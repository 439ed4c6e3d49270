// Copyright (c) 2026 Serbbisyo. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package notify defines the user-facing notification sink.

A notification is a transient, non-blocking cue with one of four severities.
How it is rendered (toast, banner, log line) belongs to the [Sink]
implementation; callers only fire and forget.
*/
package notify

import (
	"context"
	"log/slog"

	"github.com/serbbisyo/serbbisyo/internal/platform/apperr"
)

// Severity is the visual weight of a notification.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
	SeverityError   Severity = "error"
)

// Sink receives notifications. Implementations must not block for long and
// must not panic; wrap untrusted sinks with [Safe].
type Sink interface {
	Notify(severity Severity, message string)
}

// SinkFunc adapts a plain function to [Sink].
type SinkFunc func(severity Severity, message string)

// Notify implements [Sink].
func (f SinkFunc) Notify(severity Severity, message string) { f(severity, message) }

// Discard drops every notification.
var Discard Sink = SinkFunc(func(Severity, string) {})

// # Implementations

// LogSink writes notifications as structured log entries.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink creates a [LogSink]. A nil logger uses [slog.Default].
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger}
}

// Notify implements [Sink].
func (s *LogSink) Notify(severity Severity, message string) {
	level := slog.LevelInfo
	switch severity {
	case SeverityWarning:
		level = slog.LevelWarn
	case SeverityError:
		level = slog.LevelError
	}
	s.logger.Log(context.Background(), level, "user_notification",
		slog.String("severity", string(severity)),
		slog.String("message", message),
	)
}

// Safe wraps sink so that a panicking implementation never propagates to the caller.
func Safe(sink Sink) Sink {
	if sink == nil {
		return Discard
	}
	return SinkFunc(func(severity Severity, message string) {
		defer func() { _ = recover() }()
		sink.Notify(severity, message)
	})
}

// Multi fans a notification out to several sinks in order.
func Multi(sinks ...Sink) Sink {
	return SinkFunc(func(severity Severity, message string) {
		for _, s := range sinks {
			Safe(s).Notify(severity, message)
		}
	})
}

// Counter counts notifications. [*metrics.Collector] satisfies it.
type Counter interface {
	RecordNotification(severity string)
}

// Counted reports every notification to counter before passing it on. A nil
// counter leaves the sink uncounted; a panicking sink is contained.
func Counted(sink Sink, counter Counter) Sink {
	inner := Safe(sink)
	if counter == nil {
		return inner
	}
	return SinkFunc(func(severity Severity, message string) {
		counter.RecordNotification(string(severity))
		inner.Notify(severity, message)
	})
}

// # Convenience

// Success emits a success notification.
func Success(sink Sink, message string) { sink.Notify(SeveritySuccess, message) }

// Warning emits a warning notification.
func Warning(sink Sink, message string) { sink.Notify(SeverityWarning, message) }

// Info emits an info notification.
func Info(sink Sink, message string) { sink.Notify(SeverityInfo, message) }

/*
HandleError emits exactly one notification for kind and returns kind.

The severity is warning for user-correctable input problems and error for
everything else. An optional message overrides the kind's default text.

Example:

	return notify.HandleError(sink, apperr.KindFileTooLarge)
*/
func HandleError(sink Sink, kind apperr.Kind, message ...string) apperr.Kind {
	text := kind.Message()
	if len(message) > 0 && message[0] != "" {
		text = message[0]
	}

	severity := SeverityError
	if kind.IsValidation() {
		severity = SeverityWarning
	}

	sink.Notify(severity, text)
	return kind
}

// ConnectivityChange emits the cue shown when the browser goes on or offline.
func ConnectivityChange(sink Sink, online bool) {
	if online {
		Success(sink, "Connection restored")
		return
	}
	Warning(sink, "You are offline. Some features may not work.")
}
