// Copyright (c) 2026 Serbbisyo. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package marketplace

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/serbbisyo/serbbisyo/internal/apiclient"
	"github.com/serbbisyo/serbbisyo/internal/notify"
	"github.com/serbbisyo/serbbisyo/internal/platform/apperr"
	"github.com/serbbisyo/serbbisyo/internal/platform/validate"
)

// # Profile

// ProfileUpdate is the editable part of a public profile.
type ProfileUpdate struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Bio   string `json:"bio"`
}

var profileRules = validate.Rules{
	{Field: "name", Rule: validate.Rule{Required: true, MinLength: 2, MaxLength: 50}},
	{Field: "email", Rule: validate.Rule{Required: true, Pattern: validate.PatternEmail}},
	{Field: "phone", Rule: validate.Rule{Required: true, Pattern: validate.PatternPhone}},
	{Field: "bio", Rule: validate.Rule{MaxLength: 500}},
}

/*
UpdateProfile validates and saves the public profile. Field errors are
returned for inline display without a notification.

Returns:
  - error: VALIDATION_FAILED with per-field details, or the request failure
*/
func (service *Service) UpdateProfile(ctx context.Context, update ProfileUpdate) error {
	result := validate.Form(map[string]any{
		"name":  update.Name,
		"email": update.Email,
		"phone": update.Phone,
		"bio":   update.Bio,
	}, profileRules)
	if !result.IsValid {
		return service.invalid(result, "")
	}

	if _, err := service.call(ctx, "/api/profile/update", apiclient.Options{Method: http.MethodPut, Body: update}); err != nil {
		return err
	}

	notify.Success(service.sink, "Profile updated successfully")
	return nil
}

// # Photo Upload

// MaxPhotoBytes is the largest accepted profile photo.
const MaxPhotoBytes = 5 << 20

var photoTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/jpg":  {},
}

// Photo is a profile picture about to be uploaded.
type Photo struct {
	FileName    string
	ContentType string
	Size        int64
	Content     io.Reader
}

/*
UploadProfilePhoto checks size and type, then uploads the photo as the
"photo" multipart field.

Returns:
  - apiclient.Outcome: The backend's answer on success
  - error: FILE_TOO_LARGE, FILE_INVALID_TYPE, or the request failure
*/
func (service *Service) UploadProfilePhoto(ctx context.Context, photo Photo) (apiclient.Outcome, error) {
	if photo.Size > MaxPhotoBytes {
		return apiclient.Outcome{}, service.reject(apperr.KindFileTooLarge)
	}
	if _, ok := photoTypes[photo.ContentType]; !ok {
		return apiclient.Outcome{}, service.reject(apperr.KindFileInvalidType)
	}

	if photo.Content == nil {
		return apiclient.Outcome{}, service.reject(apperr.KindUnknown)
	}

	// ── Actual Size ───────────────────────────────────────────────────────
	// The declared size is a hint; the bytes read decide.
	content, err := io.ReadAll(io.LimitReader(photo.Content, MaxPhotoBytes+1))
	if err != nil {
		service.logger.WarnContext(ctx, "marketplace_photo_read_failed", slog.Any("error", err))
		return apiclient.Outcome{}, service.reject(apperr.KindUnknown)
	}
	if len(content) > MaxPhotoBytes {
		return apiclient.Outcome{}, service.reject(apperr.KindFileTooLarge)
	}

	outcome := service.api.Upload(ctx, "/api/profile/upload-photo", apiclient.File{
		Field:       "photo",
		FileName:    photo.FileName,
		ContentType: photo.ContentType,
		Content:     bytes.NewReader(content),
	}, nil)
	if !outcome.Success {
		return outcome, outcome.Err()
	}

	notify.Success(service.sink, "Photo uploaded successfully")
	return outcome, nil
}

// # Reviews

var reviewRules = validate.Rules{
	{Field: "comment", Rule: validate.Rule{Required: true, MinLength: 10, MaxLength: 500}},
}

/*
SubmitReview rates a finished booking from 1 to 5 stars.

Returns:
  - error: VALIDATION_FAILED for a short comment or out-of-range rating, or the request failure
*/
func (service *Service) SubmitReview(ctx context.Context, bookingID string, rating int, comment string) error {
	result := validate.Form(map[string]any{"comment": comment}, reviewRules)
	if !result.IsValid {
		return service.invalid(result, "Please write a review (at least 10 characters)")
	}

	if rating < 1 || rating > 5 {
		notify.Warning(service.sink, "Please select a rating between 1 and 5 stars")
		return apperr.ValidationError("Validation failed", apperr.FieldError{Field: "rating", Message: "Must be between 1 and 5"})
	}

	_, err := service.call(ctx, "/api/reviews/submit", apiclient.Options{
		Method: http.MethodPost,
		Body: map[string]any{
			"bookingId": bookingID,
			"rating":    rating,
			"comment":   comment,
		},
	})
	if err != nil {
		return err
	}

	notify.Success(service.sink, "Review submitted successfully")
	return nil
}
