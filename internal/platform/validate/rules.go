// Copyright (c) 2026 Serbbisyo. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package validate

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/serbbisyo/serbbisyo/internal/platform/apperr"
)

// # Messages

const (
	msgRequired  = "This field is required"
	msgMinLength = "Minimum %d characters"
	msgMaxLength = "Maximum %d characters"
	msgEmail     = "Must be a valid email address"
	msgPhone     = "Must be a valid phone number"
)

// # Declarative Rules

// Pattern names a format predicate applied to a field.
type Pattern string

const (
	PatternNone  Pattern = ""
	PatternEmail Pattern = "email"
	PatternPhone Pattern = "phone"
)

// Rule describes the constraints on one named field.
// Zero values disable the corresponding check.
type Rule struct {
	Required  bool
	MinLength int
	MaxLength int
	Pattern   Pattern
}

// FieldRule binds a [Rule] to a field name.
type FieldRule struct {
	Field string
	Rule  Rule
}

// Rules is an ordered rule set. Errors are reported in this order.
type Rules []FieldRule

// Result is the outcome of [Form].
type Result struct {
	IsValid bool
	// Errors holds at most one entry per field, in rule order.
	Errors []apperr.FieldError
}

// Messages returns the errors keyed by field name.
func (r Result) Messages() map[string]string {
	messages := make(map[string]string, len(r.Errors))
	for _, fe := range r.Errors {
		messages[fe.Field] = fe.Message
	}
	return messages
}

// Err converts an invalid result into a VALIDATION_FAILED [apperr.AppError].
// It returns nil for a valid result.
func (r Result) Err() error {
	if r.IsValid {
		return nil
	}
	return apperr.ValidationError("Validation failed", r.Errors...)
}

/*
Form validates a flat record of named values against rules.

For every field named in rules, checks run in the order required, minimum
length, maximum length, pattern, and the first failure is recorded. Length and
pattern checks only apply when the field holds a non-blank value. Fields
present in data but absent from rules are ignored.

Form has no side effects and is safe for concurrent use.

Example:

	result := validate.Form(map[string]any{"title": "short"}, validate.Rules{
		{Field: "title", Rule: validate.Rule{Required: true, MinLength: 10}},
	})
	// result.IsValid == false, result.Errors[0].Field == "title"
*/
func Form(data map[string]any, rules Rules) Result {
	errs := make([]apperr.FieldError, 0)

	for _, fr := range rules {
		value, present := stringValue(data[fr.Field])
		if msg, failed := check(value, present, fr.Rule); failed {
			errs = append(errs, apperr.FieldError{Field: fr.Field, Message: msg})
		}
	}

	return Result{IsValid: len(errs) == 0, Errors: errs}
}

// check returns the first violated rule's message.
func check(value string, present bool, rule Rule) (string, bool) {
	if !present || isBlank(value) {
		if rule.Required {
			return msgRequired, true
		}
		return "", false
	}

	count := charCount(value)
	if rule.MinLength > 0 && count < rule.MinLength {
		return fmt.Sprintf(msgMinLength, rule.MinLength), true
	}
	if rule.MaxLength > 0 && count > rule.MaxLength {
		return fmt.Sprintf(msgMaxLength, rule.MaxLength), true
	}

	switch rule.Pattern {
	case PatternEmail:
		if !IsEmail(strings.TrimSpace(value)) {
			return msgEmail, true
		}
	case PatternPhone:
		if !IsPhone(strings.TrimSpace(value)) {
			return msgPhone, true
		}
	}

	return "", false
}

// stringValue renders a form value as text. Numbers keep their shortest
// decimal form; nil means absent.
func stringValue(raw any) (string, bool) {
	switch v := raw.(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case json.Number:
		return v.String(), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(v), true
	case fmt.Stringer:
		return v.String(), true
	default:
		return fmt.Sprint(v), true
	}
}
