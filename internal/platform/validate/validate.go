// Copyright (c) 2026 Serbbisyo. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package validate provides field-level input validation.
//
// Two entry points share the same predicates:
//
//   - [Validator]: a chainable collector used by server handlers, which
//     accumulates every failure and converts them into one [apperr.AppError].
//   - [Form]: a declarative, rule-driven check of a flat form record used by
//     the client request layer, which records at most one failure per field.
package validate

import (
	"fmt"
	"net/mail"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/serbbisyo/serbbisyo/internal/platform/apperr"
)

var (
	// phoneRegex allows an optional leading '+', digits, spaces, dashes and parentheses.
	phoneRegex = regexp.MustCompile(`^\+?[0-9][0-9 ()\-]*$`)

	// ErrInvalidJSON is returned when the request body cannot be decoded.
	ErrInvalidJSON = apperr.ValidationError("Invalid JSON payload")
)

// Phone numbers carry between 7 and 15 digits (E.164 upper bound).
const (
	minPhoneDigits = 7
	maxPhoneDigits = 15
)

// Validator accumulates every failed field of one request. Each rule method
// returns the receiver so checks can be chained. Use a fresh Validator per
// request; it is not safe for concurrent use.
type Validator struct {
	errs []apperr.FieldError
}

// Custom records message for field when failed is true. The other rules are
// built on it:
//
//	v.Custom("confirmPassword", password != confirm, "Passwords do not match")
func (v *Validator) Custom(field string, failed bool, message string) *Validator {
	if failed {
		v.errs = append(v.errs, apperr.FieldError{Field: field, Message: message})
	}
	return v
}

func (v *Validator) Required(field, value string) *Validator {
	return v.Custom(field, isBlank(value), msgRequired)
}

// MinLen and MaxLen count characters after NFC composition.
func (v *Validator) MinLen(field, value string, min int) *Validator {
	return v.Custom(field, charCount(value) < min, fmt.Sprintf(msgMinLength, min))
}

func (v *Validator) MaxLen(field, value string, max int) *Validator {
	return v.Custom(field, charCount(value) > max, fmt.Sprintf(msgMaxLength, max))
}

// Range is inclusive at both ends.
func (v *Validator) Range(field string, value, min, max int) *Validator {
	return v.Custom(field, value < min || value > max, fmt.Sprintf("Must be between %d and %d", min, max))
}

func (v *Validator) Email(field, value string) *Validator {
	return v.Custom(field, !IsEmail(value), msgEmail)
}

func (v *Validator) Phone(field, value string) *Validator {
	return v.Custom(field, !IsPhone(value), msgPhone)
}

func (v *Validator) OneOf(field, value string, allowed ...string) *Validator {
	return v.Custom(field, !slices.Contains(allowed, value),
		"Must be one of: "+strings.Join(allowed, ", "))
}

// HasErrors reports whether any rule has failed so far.
func (v *Validator) HasErrors() bool { return len(v.errs) > 0 }

// Err returns one VALIDATION_FAILED error listing every failed field, or nil.
func (v *Validator) Err() error {
	if !v.HasErrors() {
		return nil
	}
	return apperr.ValidationError("Validation failed", v.errs...)
}

// # Predicates

// IsEmail reports whether value is a single bare address such as "a@b.com".
// Display-name forms ("Ann <a@b.com>") are rejected.
func IsEmail(value string) bool {
	address, err := mail.ParseAddress(value)
	if err != nil {
		return false
	}
	return address.Address == value && strings.Contains(address.Address[strings.LastIndex(address.Address, "@"):], ".")
}

// IsPhone reports whether value looks like a phone number.
func IsPhone(value string) bool {
	if !phoneRegex.MatchString(value) {
		return false
	}
	digits := 0
	for _, r := range value {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits >= minPhoneDigits && digits <= maxPhoneDigits
}

func isBlank(value string) bool {
	return strings.TrimSpace(value) == ""
}

// charCount counts user-perceived characters after NFC composition, so a
// decomposed "é" counts once.
func charCount(value string) int {
	return utf8.RuneCountInString(norm.NFC.String(value))
}
