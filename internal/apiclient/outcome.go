// Copyright (c) 2026 Serbbisyo. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package apiclient

import (
	"encoding/json"
	"errors"

	"github.com/serbbisyo/serbbisyo/internal/platform/apperr"
)

// Outcome is the normalised result of one backend call.
//
// Data is set only on success; Kind only on failure.
type Outcome struct {
	Success bool
	Data    any
	Kind    apperr.Kind

	// Status is the HTTP status code, or 0 when no response was received.
	Status int
	// Message is the text shown to the user on failure.
	Message string

	raw []byte
}

// ErrNoData is returned by [Outcome.Decode] when there is nothing to decode.
var ErrNoData = errors.New("apiclient: outcome carries no data")

// Decode unmarshals the success body into target.
func (o Outcome) Decode(target any) error {
	if !o.Success || len(o.raw) == 0 {
		return ErrNoData
	}
	return json.Unmarshal(o.raw, target)
}

// Err converts a failed outcome into an [*apperr.AppError]. It returns nil on success.
func (o Outcome) Err() error {
	if o.Success {
		return nil
	}
	return &apperr.AppError{
		Code:       string(o.Kind),
		Message:    o.Message,
		HTTPStatus: o.Status,
	}
}

func success(status int, data any, raw []byte) Outcome {
	return Outcome{Success: true, Data: data, Status: status, raw: raw}
}

func failure(kind apperr.Kind, status int, message string) Outcome {
	if message == "" {
		message = kind.Message()
	}
	return Outcome{Kind: kind, Status: status, Message: message}
}
