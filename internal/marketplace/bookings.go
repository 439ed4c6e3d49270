// Copyright (c) 2026 Serbbisyo. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package marketplace

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/serbbisyo/serbbisyo/internal/apiclient"
	"github.com/serbbisyo/serbbisyo/internal/notify"
	"github.com/serbbisyo/serbbisyo/internal/platform/apperr"
	"github.com/serbbisyo/serbbisyo/internal/platform/validate"
)

// # Bookings

// BookingInput is the form a client fills to post a job.
type BookingInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Budget      string `json:"budget"`
	Location    string `json:"location"`
}

// Booking is a job as listed to providers.
type Booking struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Category    string      `json:"category,omitempty"`
	Budget      json.Number `json:"budget"`
	Location    string      `json:"location"`
	Status      string      `json:"status,omitempty"`
}

// TitleHTML and DescriptionHTML render the listing for a page.
func (b Booking) TitleHTML() string { return RenderText(b.Title) }

func (b Booking) DescriptionHTML() string { return RenderText(b.Description) }

// Booking statuses accepted by [Service.UpdateBookingStatus].
const (
	StatusOpen       = "open"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

var statusMessages = map[string]string{
	StatusOpen:       "Status updated",
	StatusInProgress: "Booking marked as in progress",
	StatusCompleted:  "Booking marked as completed",
	StatusCancelled:  "Booking cancelled",
}

var bookingRules = validate.Rules{
	{Field: "title", Rule: validate.Rule{Required: true, MinLength: 10, MaxLength: 100}},
	{Field: "description", Rule: validate.Rule{Required: true, MinLength: 20, MaxLength: 500}},
	{Field: "category", Rule: validate.Rule{Required: true}},
	{Field: "budget", Rule: validate.Rule{Required: true}},
	{Field: "location", Rule: validate.Rule{Required: true}},
}

/*
CreateBooking validates and posts a new booking.

Returns:
  - apiclient.Outcome: The backend's answer on success
  - error: VALIDATION_FAILED with per-field details, or the request failure
*/
func (service *Service) CreateBooking(ctx context.Context, input BookingInput) (apiclient.Outcome, error) {
	result := validate.Form(map[string]any{
		"title":       input.Title,
		"description": input.Description,
		"category":    input.Category,
		"budget":      input.Budget,
		"location":    input.Location,
	}, bookingRules)
	if !result.IsValid {
		return apiclient.Outcome{}, service.invalid(result, apperr.KindValidationFailed.Message())
	}

	outcome, err := service.call(ctx, "/api/bookings/create", apiclient.Options{Method: http.MethodPost, Body: input})
	if err != nil {
		return outcome, err
	}

	notify.Success(service.sink, "Booking posted successfully! Providers can now apply.")
	return outcome, nil
}

/*
UpdateBookingStatus moves a booking to status.

Returns:
  - error: BOOKING_INVALID_STATUS for unknown statuses, or the request failure
*/
func (service *Service) UpdateBookingStatus(ctx context.Context, bookingID, status string) error {
	message, ok := statusMessages[status]
	if !ok {
		return service.reject(apperr.KindBookingInvalidStatus)
	}

	_, err := service.call(ctx, "/api/bookings/"+segment(bookingID)+"/status", apiclient.Options{
		Method: http.MethodPatch,
		Body:   map[string]string{"status": status},
	})
	if err != nil {
		return err
	}

	notify.Success(service.sink, message)
	return nil
}

/*
SearchBookings lists open bookings matching filters.

An empty result is not an error; it emits an info cue.
*/
func (service *Service) SearchBookings(ctx context.Context, filters map[string]string) ([]Booking, error) {
	query := url.Values{}
	for key, value := range filters {
		query.Set(key, value)
	}

	path := "/api/bookings/search"
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}

	outcome, err := service.call(ctx, path, apiclient.Options{})
	if err != nil {
		return nil, err
	}

	var payload struct {
		Bookings []Booking `json:"bookings"`
	}
	if err := service.decode(ctx, outcome, &payload); err != nil {
		return nil, err
	}

	if len(payload.Bookings) == 0 {
		notify.Info(service.sink, "No bookings found matching your criteria")
	}
	return payload.Bookings, nil
}

// # Applications

// Application is a provider's proposal for a booking.
type Application struct {
	BookingID    string   `json:"bookingId"`
	ProviderID   string   `json:"providerId"`
	ProviderName string   `json:"providerName"`
	Rating       *float64 `json:"rating,omitempty"`
	Proposal     string   `json:"proposal"`
}

// ProposalHTML renders the proposal for a page.
func (a Application) ProposalHTML() string { return RenderText(a.Proposal) }

var proposalRules = validate.Rules{
	{Field: "proposal", Rule: validate.Rule{Required: true, MinLength: 50, MaxLength: 1000}},
}

/*
ApplyToBooking submits a provider's proposal.

Returns:
  - error: VALIDATION_FAILED for proposals outside 50..1000 characters, or the request failure
*/
func (service *Service) ApplyToBooking(ctx context.Context, bookingID, proposal string) error {
	result := validate.Form(map[string]any{"proposal": proposal}, proposalRules)
	if !result.IsValid {
		return service.invalid(result, "Please write a detailed proposal (at least 50 characters)")
	}

	_, err := service.call(ctx, "/api/bookings/"+segment(bookingID)+"/apply", apiclient.Options{
		Method: http.MethodPost,
		Body:   map[string]string{"proposal": proposal},
	})
	if err != nil {
		return err
	}

	notify.Success(service.sink, "Application submitted! The client will review your proposal.")
	return nil
}

/*
CheckApplicationStatus reports whether the provider may still apply.

Returns:
  - bool: false when already applied or the check failed
  - error: BOOKING_ALREADY_APPLIED, or the request failure
*/
func (service *Service) CheckApplicationStatus(ctx context.Context, bookingID string) (bool, error) {
	outcome, err := service.call(ctx, "/api/bookings/"+segment(bookingID)+"/application-status", apiclient.Options{})
	if err != nil {
		return false, err
	}

	var payload struct {
		HasApplied bool `json:"hasApplied"`
	}
	if err := service.decode(ctx, outcome, &payload); err != nil {
		return false, err
	}

	if payload.HasApplied {
		return false, service.reject(apperr.KindBookingAlreadyApplied)
	}
	return true, nil
}

// LoadApplications lists the proposals received for a booking.
func (service *Service) LoadApplications(ctx context.Context, bookingID string) ([]Application, error) {
	outcome, err := service.call(ctx, "/api/bookings/"+segment(bookingID)+"/applications", apiclient.Options{})
	if err != nil {
		return nil, err
	}

	var payload struct {
		Applications []Application `json:"applications"`
	}
	if err := service.decode(ctx, outcome, &payload); err != nil {
		return nil, err
	}

	return payload.Applications, nil
}

// AcceptApplication hires providerID for the booking.
func (service *Service) AcceptApplication(ctx context.Context, bookingID, providerID string) error {
	_, err := service.call(ctx, "/api/bookings/"+segment(bookingID)+"/accept", apiclient.Options{
		Method: http.MethodPost,
		Body:   map[string]string{"providerId": providerID},
	})
	if err != nil {
		return err
	}

	notify.Success(service.sink, "Provider accepted! You can now message them directly.")
	return nil
}

// RejectApplication declines providerID's proposal.
func (service *Service) RejectApplication(ctx context.Context, bookingID, providerID string) error {
	_, err := service.call(ctx, "/api/bookings/"+segment(bookingID)+"/reject", apiclient.Options{
		Method: http.MethodPost,
		Body:   map[string]string{"providerId": providerID},
	})
	if err != nil {
		return err
	}

	notify.Info(service.sink, "Application rejected")
	return nil
}
