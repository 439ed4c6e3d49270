// Copyright (c) 2026 Serbbisyo. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package marketplace

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/serbbisyo/serbbisyo/internal/apiclient"
	"github.com/serbbisyo/serbbisyo/internal/notify"
	"github.com/serbbisyo/serbbisyo/internal/platform/apperr"
	"github.com/serbbisyo/serbbisyo/internal/platform/validate"
)

// # Messaging

const (
	// MaxMessageLength is counted in characters, not bytes.
	MaxMessageLength = 2000

	// DefaultPollInterval is how often the poller checks for new messages.
	DefaultPollInterval = 5 * time.Second
)

// Message is one entry of a conversation.
type Message struct {
	ID        string    `json:"id,omitempty"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	IsMine    bool      `json:"isMine"`
}

// HTML renders the content for a conversation view.
func (m Message) HTML() string { return RenderText(m.Content) }

// messageRules shares the form rules' character counting, so a decomposed
// "é" counts once.
var messageRules = validate.Rules{
	{Field: "message", Rule: validate.Rule{MaxLength: MaxMessageLength}},
}

/*
SendMessage posts a message to recipientID.

Returns:
  - error: MESSAGE_EMPTY, MESSAGE_TOO_LONG, or the request failure
*/
func (service *Service) SendMessage(ctx context.Context, recipientID, message string) error {
	trimmed := strings.TrimSpace(message)
	if trimmed == "" {
		return service.reject(apperr.KindMessageEmpty)
	}
	if !validate.Form(map[string]any{"message": message}, messageRules).IsValid {
		return service.reject(apperr.KindMessageTooLong)
	}

	_, err := service.call(ctx, "/api/messages/send", apiclient.Options{
		Method: http.MethodPost,
		Body: map[string]string{
			"recipientId": recipientID,
			"message":     trimmed,
			"timestamp":   time.Now().UTC().Format(time.RFC3339Nano),
		},
	})
	if err != nil {
		return err
	}

	notify.Success(service.sink, "Message sent")
	return nil
}

// LoadMessages fetches the conversation with userID. Contents are returned as
// sent; render them with [Message.HTML].
func (service *Service) LoadMessages(ctx context.Context, userID string) ([]Message, error) {
	outcome, err := service.call(ctx, "/api/messages/"+segment(userID), apiclient.Options{})
	if err != nil {
		return nil, err
	}

	var payload struct {
		Messages []Message `json:"messages"`
	}
	if err := service.decode(ctx, outcome, &payload); err != nil {
		return nil, err
	}

	return payload.Messages, nil
}

// HasNewMessages asks whether the conversation with userID changed.
func (service *Service) HasNewMessages(ctx context.Context, userID string) (bool, error) {
	outcome, err := service.call(ctx, "/api/messages/"+segment(userID)+"/new", apiclient.Options{})
	if err != nil {
		return false, err
	}

	var payload struct {
		HasNew bool `json:"hasNew"`
	}
	if err := service.decode(ctx, outcome, &payload); err != nil {
		return false, err
	}
	return payload.HasNew, nil
}

// # Polling

// MessagePoller checks a conversation for new messages on a fixed interval.
//
// Ticks are skipped while offline. A slow check delays the next tick rather
// than overlapping it.
type MessagePoller struct {
	service      *Service
	userID       string
	interval     time.Duration
	connectivity apiclient.Connectivity
	onMessages   func([]Message)
}

// NewMessagePoller creates a poller that hands fresh conversations to onMessages.
func NewMessagePoller(service *Service, userID string, connectivity apiclient.Connectivity, onMessages func([]Message)) *MessagePoller {
	if connectivity == nil {
		connectivity = apiclient.AlwaysOnline
	}
	return &MessagePoller{
		service:      service,
		userID:       userID,
		interval:     DefaultPollInterval,
		connectivity: connectivity,
		onMessages:   onMessages,
	}
}

// WithInterval overrides the poll interval. A non-positive interval keeps
// [DefaultPollInterval].
func (poller *MessagePoller) WithInterval(interval time.Duration) *MessagePoller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	poller.interval = interval
	return poller
}

// Run polls until ctx is cancelled. It is meant to run in its own goroutine
// and returns ctx.Err().
func (poller *MessagePoller) Run(ctx context.Context) error {
	ticker := time.NewTicker(poller.interval)
	defer ticker.Stop()

	logger := poller.service.logger.With(slog.String("conversation", poller.userID))
	logger.DebugContext(ctx, "message_poller_started")

	for {
		select {
		case <-ctx.Done():
			logger.DebugContext(ctx, "message_poller_stopped")
			return ctx.Err()
		case <-ticker.C:
			poller.tick(ctx)
		}
	}
}

func (poller *MessagePoller) tick(ctx context.Context) {
	if !poller.connectivity.Online() {
		return
	}

	hasNew, err := poller.service.HasNewMessages(ctx, poller.userID)
	if err != nil || !hasNew {
		return
	}

	messages, err := poller.service.LoadMessages(ctx, poller.userID)
	if err != nil {
		return
	}
	if poller.onMessages != nil {
		poller.onMessages(messages)
	}
}
