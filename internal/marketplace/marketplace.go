// Copyright (c) 2026 Serbbisyo. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package marketplace is the typed client for the bookings, messaging, profile
and review endpoints of the backend.

Every operation validates its input first, then performs exactly one call
through [apiclient.Client]. Network failures are already notified by the
request layer; this package adds the success and input-problem cues.

Errors returned are [*apperr.AppError] values whose Kind tells the caller
what went wrong. A returned error has always been shown to the user.
*/
package marketplace

import (
	"context"
	"html"
	"log/slog"
	"net/url"

	"github.com/microcosm-cc/bluemonday"

	"github.com/serbbisyo/serbbisyo/internal/apiclient"
	"github.com/serbbisyo/serbbisyo/internal/notify"
	"github.com/serbbisyo/serbbisyo/internal/platform/apperr"
	"github.com/serbbisyo/serbbisyo/internal/platform/validate"
)

// Requester is the part of [*apiclient.Client] used here.
type Requester interface {
	Request(ctx context.Context, path string, options apiclient.Options) apiclient.Outcome
	Upload(ctx context.Context, path string, file apiclient.File, fields map[string]string) apiclient.Outcome
}

// Service implements the marketplace operations.
type Service struct {
	api    Requester
	sink   notify.Sink
	logger *slog.Logger
}

// NewService constructs a [Service].
func NewService(api Requester, sink notify.Sink, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		api:    api,
		sink:   notify.Safe(sink),
		logger: logger,
	}
}

// # Helpers

// call performs the request and turns a failed outcome into an error. The
// failure has already been notified by the request layer.
func (service *Service) call(ctx context.Context, path string, options apiclient.Options) (apiclient.Outcome, error) {
	outcome := service.api.Request(ctx, path, options)
	if !outcome.Success {
		return outcome, outcome.Err()
	}
	return outcome, nil
}

// decode reads the success body into target. A malformed body is reported once.
func (service *Service) decode(ctx context.Context, outcome apiclient.Outcome, target any) error {
	if err := outcome.Decode(target); err != nil {
		service.logger.WarnContext(ctx, "marketplace_response_unexpected", slog.Any("error", err))
		notify.HandleError(service.sink, apperr.KindUnknown)
		return apperr.KindUnknown.Err()
	}
	return nil
}

// reject notifies kind and returns it as an error.
func (service *Service) reject(kind apperr.Kind) error {
	notify.HandleError(service.sink, kind)
	return kind.Err()
}

// invalid returns the validation error, warning with message when it is set.
func (service *Service) invalid(result validate.Result, message string) error {
	if message != "" {
		notify.Warning(service.sink, message)
	}
	return result.Err()
}

// textPolicy admits no elements at all. A bluemonday policy is safe for
// concurrent use once built.
var textPolicy = bluemonday.StrictPolicy()

// RenderText returns text written by another user as an HTML fragment that
// displays exactly what was typed. Decoded fields stay raw; call this only
// where the text is written into a page.
func RenderText(text string) string {
	return textPolicy.Sanitize(html.EscapeString(text))
}

func segment(id string) string {
	return url.PathEscape(id)
}
