// Copyright (c) 2026 Serbbisyo. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"log/slog"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/serbbisyo/serbbisyo/internal/platform/ctxutil"
)

/*
StructuredLogger injects a request-scoped logger and writes one access line
per request.

The line is INFO below 400, WARN for 4xx and ERROR for 5xx. Redirects carry
their target so gate decisions can be followed in the logs, and signed-in
requests carry the user ID.
*/
func StructuredLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			started := time.Now()
			ctx := request.Context()

			requestLogger := logger.With(
				slog.String("request_id", ctxutil.GetRequestID(ctx)),
				slog.String("method", request.Method),
				slog.String("path", request.URL.Path),
			)
			if claims := ctxutil.GetAuthUser(ctx); claims != nil {
				requestLogger = requestLogger.With(slog.String("user_id", claims.UserID))
			}
			ctx = ctxutil.WithLogger(ctx, requestLogger)

			wrapped := chimw.NewWrapResponseWriter(writer, request.ProtoMajor)
			next.ServeHTTP(wrapped, request.WithContext(ctx))

			status := wrapped.Status()
			if status == 0 {
				status = http.StatusOK
			}

			attrs := []slog.Attr{
				slog.Int("status", status),
				slog.Int("bytes", wrapped.BytesWritten()),
				slog.Int64("latency_ms", time.Since(started).Milliseconds()),
				slog.String("ip", RealIP(request)),
			}
			if location := wrapped.Header().Get("Location"); location != "" {
				attrs = append(attrs, slog.String("location", location))
			}

			requestLogger.LogAttrs(ctx, levelFor(status), "http_request_finished", attrs...)
		})
	}
}

func levelFor(status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
