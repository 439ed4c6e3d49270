// Copyright (c) 2026 Serbbisyo. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package marketplace

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serbbisyo/serbbisyo/internal/apiclient"
	"github.com/serbbisyo/serbbisyo/internal/notify"
	"github.com/serbbisyo/serbbisyo/internal/platform/apperr"
)

// # Harness

type notification struct {
	severity notify.Severity
	message  string
}

type captureSink struct {
	mu    sync.Mutex
	items []notification
}

func (c *captureSink) Notify(severity notify.Severity, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, notification{severity, message})
}

func (c *captureSink) all() []notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]notification(nil), c.items...)
}

// backend records the last request body per route.
type backend struct {
	mu     sync.Mutex
	bodies map[string]map[string]any
	hits   atomic.Int32
}

func (b *backend) capture(route string, r *http.Request) {
	b.hits.Add(1)
	var body map[string]any
	_ = json.NewDecoder(r.Body).Decode(&body)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.bodies[route] = body
}

func (b *backend) body(route string) map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bodies[route]
}

func writeJSON(w http.ResponseWriter, status int, payload string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, payload)
}

func newHarness(t *testing.T, mount func(r chi.Router, b *backend)) (*Service, *captureSink, *backend) {
	t.Helper()

	b := &backend{bodies: map[string]map[string]any{}}
	router := chi.NewRouter()
	mount(router, b)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	sink := &captureSink{}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	client, err := apiclient.New(apiclient.Config{BaseURL: server.URL, Sink: sink, Logger: logger})
	require.NoError(t, err)

	return NewService(client, sink, logger), sink, b
}

func noRoutes(chi.Router, *backend) {}

// # Bookings

/*
TestCreateBooking_Validation reports every failing field and warns once.
*/
func TestCreateBooking_Validation(t *testing.T) {
	service, sink, b := newHarness(t, noRoutes)

	_, err := service.CreateBooking(context.Background(), BookingInput{Title: "short", Category: "plumbing"})

	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperr.KindValidationFailed, appErr.Kind())
	fields := make([]string, 0, len(appErr.Details))
	for _, d := range appErr.Details {
		fields = append(fields, d.Field)
	}
	assert.Equal(t, []string{"title", "description", "budget", "location"}, fields)
	assert.Equal(t, []notification{{notify.SeverityWarning, "Please fix the errors in the form"}}, sink.all())
	assert.Zero(t, b.hits.Load())
}

/*
TestCreateBooking_Success posts the form and confirms.
*/
func TestCreateBooking_Success(t *testing.T) {
	service, sink, b := newHarness(t, func(r chi.Router, b *backend) {
		r.Post("/api/bookings/create", func(w http.ResponseWriter, r *http.Request) {
			b.capture("create", r)
			writeJSON(w, http.StatusCreated, `{"id":"bk-1"}`)
		})
	})

	outcome, err := service.CreateBooking(context.Background(), BookingInput{
		Title:       "Fix leaking kitchen sink",
		Description: "Water drips under the sink every night.",
		Category:    "plumbing",
		Budget:      "1500",
		Location:    "Quezon City",
	})

	require.NoError(t, err)
	assert.Equal(t, map[string]any{"id": "bk-1"}, outcome.Data)
	assert.Equal(t, "Quezon City", b.body("create")["location"])
	assert.Equal(t, []notification{{notify.SeveritySuccess, "Booking posted successfully! Providers can now apply."}}, sink.all())
}

/*
TestCreateBooking_ServerError surfaces exactly one error notification.
*/
func TestCreateBooking_ServerError(t *testing.T) {
	service, sink, _ := newHarness(t, func(r chi.Router, _ *backend) {
		r.Post("/api/bookings/create", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusInternalServerError, `{"error":"Database unavailable","code":"INTERNAL_ERROR"}`)
		})
	})

	_, err := service.CreateBooking(context.Background(), BookingInput{
		Title:       "Fix leaking kitchen sink",
		Description: "Water drips under the sink every night.",
		Category:    "plumbing",
		Budget:      "1500",
		Location:    "Quezon City",
	})

	assert.Equal(t, apperr.KindHTTP5xx, apperr.As(err).Kind())
	assert.Equal(t, []notification{{notify.SeverityError, "Database unavailable"}}, sink.all())
}

/*
TestUpdateBookingStatus rejects unknown statuses and confirms known ones.
*/
func TestUpdateBookingStatus(t *testing.T) {
	service, sink, b := newHarness(t, func(r chi.Router, b *backend) {
		r.Patch("/api/bookings/{id}/status", func(w http.ResponseWriter, r *http.Request) {
			b.capture(chi.URLParam(r, "id"), r)
			w.WriteHeader(http.StatusNoContent)
		})
	})
	ctx := context.Background()

	err := service.UpdateBookingStatus(ctx, "bk-1", "archived")
	assert.Equal(t, apperr.KindBookingInvalidStatus, apperr.As(err).Kind())
	assert.Zero(t, b.hits.Load())

	require.NoError(t, service.UpdateBookingStatus(ctx, "bk-1", StatusCompleted))
	assert.Equal(t, "completed", b.body("bk-1")["status"])

	assert.Equal(t, []notification{
		{notify.SeverityWarning, "Invalid booking status"},
		{notify.SeveritySuccess, "Booking marked as completed"},
	}, sink.all())
}

/*
TestSearchBookings encodes filters, strips markup and cues empty results.
*/
func TestSearchBookings(t *testing.T) {
	service, sink, _ := newHarness(t, func(r chi.Router, _ *backend) {
		r.Get("/api/bookings/search", func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("category") == "electrical" {
				writeJSON(w, http.StatusOK, `{"bookings":[]}`)
				return
			}
			assert.Equal(t, "Makati City", r.URL.Query().Get("location"))
			writeJSON(w, http.StatusOK, `{"bookings":[{"id":"bk-1","title":"<b>Paint</b> fence","description":"Two coats","budget":2500,"location":"Makati"}]}`)
		})
	})
	ctx := context.Background()

	bookings, err := service.SearchBookings(ctx, map[string]string{"category": "painting", "location": "Makati City"})
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, "<b>Paint</b> fence", bookings[0].Title)
	assert.Equal(t, "&lt;b&gt;Paint&lt;/b&gt; fence", bookings[0].TitleHTML())
	assert.Equal(t, "Two coats", bookings[0].DescriptionHTML())
	assert.Equal(t, "2500", bookings[0].Budget.String())
	assert.Empty(t, sink.all())

	bookings, err = service.SearchBookings(ctx, map[string]string{"category": "electrical"})
	require.NoError(t, err)
	assert.Empty(t, bookings)
	assert.Equal(t, []notification{{notify.SeverityInfo, "No bookings found matching your criteria"}}, sink.all())
}

// # Applications

/*
TestApplyToBooking requires a detailed proposal.
*/
func TestApplyToBooking(t *testing.T) {
	service, sink, b := newHarness(t, func(r chi.Router, b *backend) {
		r.Post("/api/bookings/{id}/apply", func(w http.ResponseWriter, r *http.Request) {
			b.capture("apply", r)
			writeJSON(w, http.StatusCreated, `{}`)
		})
	})
	ctx := context.Background()

	err := service.ApplyToBooking(ctx, "bk-1", "I can do it")
	assert.Equal(t, apperr.KindValidationFailed, apperr.As(err).Kind())

	proposal := strings.Repeat("Licensed plumber, ten years. ", 3)
	require.NoError(t, service.ApplyToBooking(ctx, "bk-1", proposal))
	assert.Equal(t, proposal, b.body("apply")["proposal"])

	assert.Equal(t, []notification{
		{notify.SeverityWarning, "Please write a detailed proposal (at least 50 characters)"},
		{notify.SeveritySuccess, "Application submitted! The client will review your proposal."},
	}, sink.all())
}

/*
TestCheckApplicationStatus flags a second application.
*/
func TestCheckApplicationStatus(t *testing.T) {
	service, sink, _ := newHarness(t, func(r chi.Router, _ *backend) {
		r.Get("/api/bookings/{id}/application-status", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, `{"hasApplied":`+map[string]string{"bk-1": "true", "bk-2": "false"}[chi.URLParam(r, "id")]+`}`)
		})
	})
	ctx := context.Background()

	canApply, err := service.CheckApplicationStatus(ctx, "bk-2")
	require.NoError(t, err)
	assert.True(t, canApply)

	canApply, err = service.CheckApplicationStatus(ctx, "bk-1")
	assert.False(t, canApply)
	assert.Equal(t, apperr.KindBookingAlreadyApplied, apperr.As(err).Kind())
	assert.Equal(t, []notification{{notify.SeverityWarning, "You have already applied to this booking"}}, sink.all())
}

/*
TestApplications_LoadAcceptReject covers the client's review of proposals.
*/
func TestApplications_LoadAcceptReject(t *testing.T) {
	service, sink, b := newHarness(t, func(r chi.Router, b *backend) {
		r.Get("/api/bookings/{id}/applications", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, `{"applications":[{"bookingId":"bk-1","providerId":"p-1","providerName":"Ana <img src=x onerror=alert(1)>","rating":4.5,"proposal":"Can start Monday"}]}`)
		})
		r.Post("/api/bookings/{id}/accept", func(w http.ResponseWriter, r *http.Request) {
			b.capture("accept", r)
			writeJSON(w, http.StatusOK, `{}`)
		})
		r.Post("/api/bookings/{id}/reject", func(w http.ResponseWriter, r *http.Request) {
			b.capture("reject", r)
			writeJSON(w, http.StatusOK, `{}`)
		})
	})
	ctx := context.Background()

	applications, err := service.LoadApplications(ctx, "bk-1")
	require.NoError(t, err)
	require.Len(t, applications, 1)
	assert.Equal(t, "Ana <img src=x onerror=alert(1)>", applications[0].ProviderName)
	assert.Equal(t, "Ana &lt;img src=x onerror=alert(1)&gt;", RenderText(applications[0].ProviderName))
	assert.Equal(t, "Can start Monday", applications[0].ProposalHTML())
	require.NotNil(t, applications[0].Rating)
	assert.Equal(t, 4.5, *applications[0].Rating)

	require.NoError(t, service.AcceptApplication(ctx, "bk-1", "p-1"))
	require.NoError(t, service.RejectApplication(ctx, "bk-1", "p-2"))
	assert.Equal(t, "p-1", b.body("accept")["providerId"])
	assert.Equal(t, "p-2", b.body("reject")["providerId"])

	assert.Equal(t, []notification{
		{notify.SeveritySuccess, "Provider accepted! You can now message them directly."},
		{notify.SeverityInfo, "Application rejected"},
	}, sink.all())
}

// # Messaging

/*
TestSendMessage enforces the empty and length checks before sending.
*/
func TestSendMessage(t *testing.T) {
	service, sink, b := newHarness(t, func(r chi.Router, b *backend) {
		r.Post("/api/messages/send", func(w http.ResponseWriter, r *http.Request) {
			b.capture("send", r)
			writeJSON(w, http.StatusCreated, `{}`)
		})
	})
	ctx := context.Background()

	err := service.SendMessage(ctx, "u-2", "   ")
	assert.Equal(t, apperr.KindMessageEmpty, apperr.As(err).Kind())

	err = service.SendMessage(ctx, "u-2", strings.Repeat("é", MaxMessageLength+1))
	assert.Equal(t, apperr.KindMessageTooLong, apperr.As(err).Kind())
	assert.Zero(t, b.hits.Load())

	require.NoError(t, service.SendMessage(ctx, "u-2", strings.Repeat("é", MaxMessageLength)))
	// "e" plus a combining acute accent is one character.
	require.NoError(t, service.SendMessage(ctx, "u-2", strings.Repeat("e\u0301", MaxMessageLength)))
	require.NoError(t, service.SendMessage(ctx, "u-2", "  Salamat po!  "))

	body := b.body("send")
	assert.Equal(t, "u-2", body["recipientId"])
	assert.Equal(t, "Salamat po!", body["message"])
	_, err = time.Parse(time.RFC3339Nano, body["timestamp"].(string))
	assert.NoError(t, err)

	assert.Equal(t, []notification{
		{notify.SeverityWarning, "Message cannot be empty"},
		{notify.SeverityWarning, "Message is too long (maximum 2000 characters)"},
		{notify.SeveritySuccess, "Message sent"},
		{notify.SeveritySuccess, "Message sent"},
		{notify.SeveritySuccess, "Message sent"},
	}, sink.all())
}

/*
TestLoadMessages keeps content as sent and escapes it only when rendered.
*/
func TestLoadMessages(t *testing.T) {
	service, _, _ := newHarness(t, func(r chi.Router, _ *backend) {
		r.Get("/api/messages/{id}", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, `{"messages":[{"content":"<b>Hello</b><script>alert(1)</script>","timestamp":"2026-10-18T01:00:00Z","isMine":true}]}`)
		})
	})

	messages, err := service.LoadMessages(context.Background(), "u-2")

	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "<b>Hello</b><script>alert(1)</script>", messages[0].Content)
	assert.Equal(t, "&lt;b&gt;Hello&lt;/b&gt;&lt;script&gt;alert(1)&lt;/script&gt;", messages[0].HTML())
	assert.True(t, messages[0].IsMine)
}

/*
TestMessage_HTML shows ampersands and angle brackets exactly as typed.
*/
func TestMessage_HTML(t *testing.T) {
	service, _, _ := newHarness(t, func(r chi.Router, _ *backend) {
		r.Get("/api/messages/{id}", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, `{"messages":[{"content":"Tom & Jerry: use <b> for bold, 3 < 5","timestamp":"2026-10-18T01:00:00Z"}]}`)
		})
	})

	messages, err := service.LoadMessages(context.Background(), "u-2")

	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "Tom & Jerry: use <b> for bold, 3 < 5", messages[0].Content)
	assert.Equal(t, "Tom &amp; Jerry: use &lt;b&gt; for bold, 3 &lt; 5", messages[0].HTML())
}

/*
TestLoadMessages_UnexpectedShape reports a malformed body once.
*/
func TestLoadMessages_UnexpectedShape(t *testing.T) {
	service, sink, _ := newHarness(t, func(r chi.Router, _ *backend) {
		r.Get("/api/messages/{id}", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, `{"messages":"nope"}`)
		})
	})

	_, err := service.LoadMessages(context.Background(), "u-2")

	assert.Equal(t, apperr.KindUnknown, apperr.As(err).Kind())
	assert.Len(t, sink.all(), 1)
}

/*
TestMessagePoller loads the conversation only when new messages exist and
stops on cancellation.
*/
func TestMessagePoller(t *testing.T) {
	var checks atomic.Int32
	service, _, _ := newHarness(t, func(r chi.Router, _ *backend) {
		r.Get("/api/messages/{id}/new", func(w http.ResponseWriter, _ *http.Request) {
			n := checks.Add(1)
			writeJSON(w, http.StatusOK, `{"hasNew":`+map[bool]string{true: "true", false: "false"}[n == 2]+`}`)
		})
		r.Get("/api/messages/{id}", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, `{"messages":[{"content":"Nandito na po ako","timestamp":"2026-10-18T01:00:00Z"}]}`)
		})
	})

	delivered := make(chan []Message, 4)
	poller := NewMessagePoller(service, "u-2", nil, func(m []Message) { delivered <- m }).WithInterval(5 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- poller.Run(ctx) }()

	select {
	case messages := <-delivered:
		require.Len(t, messages, 1)
		assert.Equal(t, "Nandito na po ako", messages[0].Content)
	case <-time.After(2 * time.Second):
		t.Fatal("poller never delivered messages")
	}

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

/*
TestMessagePoller_SkipsWhileOffline never calls the backend when offline.
*/
func TestMessagePoller_SkipsWhileOffline(t *testing.T) {
	service, _, b := newHarness(t, noRoutes)
	offline := apiclient.ConnectivityFunc(func() bool { return false })
	poller := NewMessagePoller(service, "u-2", offline, nil).WithInterval(time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	assert.ErrorIs(t, poller.Run(ctx), context.DeadlineExceeded)
	assert.Zero(t, b.hits.Load())
}

// # Profile

/*
TestUpdateProfile returns field errors without a notification.
*/
func TestUpdateProfile(t *testing.T) {
	service, sink, b := newHarness(t, func(r chi.Router, b *backend) {
		r.Put("/api/profile/update", func(w http.ResponseWriter, r *http.Request) {
			b.capture("update", r)
			writeJSON(w, http.StatusOK, `{}`)
		})
	})
	ctx := context.Background()

	err := service.UpdateProfile(ctx, ProfileUpdate{Name: "A", Email: "not-an-email", Phone: "12"})
	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Len(t, appErr.Details, 3)
	assert.Empty(t, sink.all())

	require.NoError(t, service.UpdateProfile(ctx, ProfileUpdate{
		Name:  "Ana Santos",
		Email: "ana@example.ph",
		Phone: "+63 917 123 4567",
		Bio:   "Electrician",
	}))
	assert.Equal(t, "Ana Santos", b.body("update")["name"])
	assert.Equal(t, []notification{{notify.SeveritySuccess, "Profile updated successfully"}}, sink.all())
}

/*
TestUploadProfilePhoto checks size and type before uploading.
*/
func TestUploadProfilePhoto(t *testing.T) {
	service, sink, b := newHarness(t, func(r chi.Router, b *backend) {
		r.Post("/api/profile/upload-photo", func(w http.ResponseWriter, r *http.Request) {
			b.hits.Add(1)
			file, header, err := r.FormFile("photo")
			if !assert.NoError(t, err) {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			defer file.Close()
			assert.Equal(t, "me.jpg", header.Filename)
			writeJSON(w, http.StatusCreated, `{"url":"/uploads/me.jpg"}`)
		})
	})
	ctx := context.Background()

	_, err := service.UploadProfilePhoto(ctx, Photo{FileName: "big.png", ContentType: "image/png", Size: MaxPhotoBytes + 1, Content: strings.NewReader("x")})
	assert.Equal(t, apperr.KindFileTooLarge, apperr.As(err).Kind())

	_, err = service.UploadProfilePhoto(ctx, Photo{FileName: "doc.pdf", ContentType: "application/pdf", Size: 10, Content: strings.NewReader("x")})
	assert.Equal(t, apperr.KindFileInvalidType, apperr.As(err).Kind())

	// The declared size understates the content.
	oversized := strings.NewReader(strings.Repeat("x", 8<<20))
	_, err = service.UploadProfilePhoto(ctx, Photo{FileName: "me.jpg", ContentType: "image/jpeg", Size: 1024, Content: oversized})
	assert.Equal(t, apperr.KindFileTooLarge, apperr.As(err).Kind())
	assert.Zero(t, b.hits.Load())

	outcome, err := service.UploadProfilePhoto(ctx, Photo{FileName: "me.jpg", ContentType: "image/jpeg", Size: 4, Content: strings.NewReader("JPEG")})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"url": "/uploads/me.jpg"}, outcome.Data)

	assert.Equal(t, []notification{
		{notify.SeverityWarning, apperr.KindFileTooLarge.Message()},
		{notify.SeverityWarning, apperr.KindFileInvalidType.Message()},
		{notify.SeverityWarning, apperr.KindFileTooLarge.Message()},
		{notify.SeveritySuccess, "Photo uploaded successfully"},
	}, sink.all())
}

// # Reviews

/*
TestSubmitReview checks the comment and the star range.
*/
func TestSubmitReview(t *testing.T) {
	service, sink, b := newHarness(t, func(r chi.Router, b *backend) {
		r.Post("/api/reviews/submit", func(w http.ResponseWriter, r *http.Request) {
			b.capture("review", r)
			writeJSON(w, http.StatusCreated, `{}`)
		})
	})
	ctx := context.Background()

	err := service.SubmitReview(ctx, "bk-1", 5, "Good")
	assert.Equal(t, apperr.KindValidationFailed, apperr.As(err).Kind())

	err = service.SubmitReview(ctx, "bk-1", 6, "Arrived on time, tidy work.")
	require.Error(t, err)
	assert.Equal(t, "rating", apperr.As(err).Details[0].Field)
	assert.Zero(t, b.hits.Load())

	require.NoError(t, service.SubmitReview(ctx, "bk-1", 5, "Arrived on time, tidy work."))
	assert.Equal(t, float64(5), b.body("review")["rating"])
	assert.Equal(t, "bk-1", b.body("review")["bookingId"])

	assert.Equal(t, []notification{
		{notify.SeverityWarning, "Please write a review (at least 10 characters)"},
		{notify.SeverityWarning, "Please select a rating between 1 and 5 stars"},
		{notify.SeveritySuccess, "Review submitted successfully"},
	}, sink.all())
}

/*
TestService_OfflineNotifiesOnce leaves the single notification to the request layer.
*/
func TestService_OfflineNotifiesOnce(t *testing.T) {
	sink := &captureSink{}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	client, err := apiclient.New(apiclient.Config{
		BaseURL:      "http://127.0.0.1:1",
		Connectivity: apiclient.ConnectivityFunc(func() bool { return false }),
		Sink:         sink,
		Logger:       logger,
	})
	require.NoError(t, err)
	service := NewService(client, sink, logger)

	err = service.RejectApplication(context.Background(), "bk-1", "p-1")

	assert.Equal(t, apperr.KindNetworkOffline, apperr.As(err).Kind())
	assert.Equal(t, []notification{{notify.SeverityError, apperr.KindNetworkOffline.Message()}}, sink.all())
}

/*
TestMessagePoller_NonPositiveInterval keeps the default instead of a ticker panic.
*/
func TestMessagePoller_NonPositiveInterval(t *testing.T) {
	service, _, _ := newHarness(t, func(chi.Router, *backend) {})

	for _, interval := range []time.Duration{0, -time.Second} {
		poller := NewMessagePoller(service, "u-2", nil, nil).WithInterval(interval)
		assert.Equal(t, DefaultPollInterval, poller.interval)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, NewMessagePoller(service, "u-2", nil, nil).WithInterval(0).Run(ctx), context.Canceled)
}
