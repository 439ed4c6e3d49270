// Copyright (c) 2026 Serbbisyo. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package apperr

import "net/http"

// # Error Taxonomy

// Kind is a user-facing failure class. Every failure the request layer
// surfaces is pre-classified into exactly one Kind.
type Kind string

const (
	KindAuthRequired     Kind = "AUTH_REQUIRED"
	KindProfileNotFound  Kind = "PROFILE_NOT_FOUND"
	KindInvalidRole      Kind = "INVALID_ROLE"
	KindValidationFailed Kind = "VALIDATION_FAILED"
	KindNetworkOffline   Kind = "NETWORK_OFFLINE"
	KindHTTP4xx          Kind = "HTTP_4XX"
	KindHTTP5xx          Kind = "HTTP_5XX"
	KindFileTooLarge     Kind = "FILE_TOO_LARGE"
	KindFileInvalidType  Kind = "FILE_INVALID_TYPE"
	KindUnknown          Kind = "UNKNOWN_ERROR"

	// Marketplace-specific kinds raised by client-side checks.
	KindBookingAlreadyApplied Kind = "BOOKING_ALREADY_APPLIED"
	KindBookingInvalidStatus  Kind = "BOOKING_INVALID_STATUS"
	KindMessageEmpty          Kind = "MESSAGE_EMPTY"
	KindMessageTooLong        Kind = "MESSAGE_TOO_LONG"
)

var kindMessages = map[Kind]string{
	KindAuthRequired:          "Please log in to continue",
	KindProfileNotFound:       "User record not found",
	KindInvalidRole:           "Your account role is not recognized",
	KindValidationFailed:      "Please fix the errors in the form",
	KindNetworkOffline:        "You are offline. Please check your connection and try again.",
	KindHTTP4xx:               "The request could not be completed",
	KindHTTP5xx:               "Server error. Please try again later.",
	KindFileTooLarge:          "File is too large. Maximum size is 5MB.",
	KindFileInvalidType:       "Invalid file type. Please upload a JPG or PNG image.",
	KindUnknown:               "Something went wrong. Please try again.",
	KindBookingAlreadyApplied: "You have already applied to this booking",
	KindBookingInvalidStatus:  "Invalid booking status",
	KindMessageEmpty:          "Message cannot be empty",
	KindMessageTooLong:        "Message is too long (maximum 2000 characters)",
}

// Message returns the default user-facing message for the kind.
func (k Kind) Message() string {
	if msg, ok := kindMessages[k]; ok {
		return msg
	}
	return kindMessages[KindUnknown]
}

// IsValidation reports whether the kind is a user-correctable input problem
// rather than a system failure.
func (k Kind) IsValidation() bool {
	switch k {
	case KindValidationFailed, KindFileTooLarge, KindFileInvalidType,
		KindBookingAlreadyApplied, KindBookingInvalidStatus, KindMessageEmpty, KindMessageTooLong:
		return true
	}
	return false
}

// KindForStatus maps an HTTP status code to its status-class kind.
// Success codes have no failure class and map to [KindUnknown].
func KindForStatus(status int) Kind {
	switch {
	case status >= http.StatusBadRequest && status < http.StatusInternalServerError:
		return KindHTTP4xx
	case status >= http.StatusInternalServerError && status < 600:
		return KindHTTP5xx
	default:
		return KindUnknown
	}
}

// Err builds an [*AppError] carrying the kind as its code and the kind's
// default message.
func (k Kind) Err() *AppError {
	status := http.StatusInternalServerError
	switch {
	case k == KindAuthRequired:
		status = http.StatusUnauthorized
	case k == KindProfileNotFound:
		status = http.StatusNotFound
	case k == KindHTTP4xx || k.IsValidation():
		status = http.StatusBadRequest
	}
	return &AppError{Code: string(k), Message: k.Message(), HTTPStatus: status}
}
