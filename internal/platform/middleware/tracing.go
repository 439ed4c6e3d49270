// Copyright (c) 2026 Serbbisyo. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package middleware holds the HTTP decorators shared by the account API and
the gated pages: request correlation, session authentication, access logs,
rate limiting, panic recovery and CORS.
*/
package middleware

import (
	"net/http"

	"github.com/serbbisyo/serbbisyo/internal/platform/constants"
	"github.com/serbbisyo/serbbisyo/internal/platform/ctxutil"
	"github.com/serbbisyo/serbbisyo/pkg/uuidv7"
)

// maxRequestIDLength bounds client-supplied IDs so they cannot bloat log lines.
const maxRequestIDLength = 64

// RequestID tags each request with a correlation ID.
//
// A well-formed X-Request-ID from the client is kept; otherwise a UUIDv7 is
// generated. The ID is echoed in the response header.
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			requestID := request.Header.Get(constants.HeaderXRequestID)
			if !acceptableRequestID(requestID) {
				requestID = uuidv7.New()
			}

			writer.Header().Set(constants.HeaderXRequestID, requestID)
			ctx := ctxutil.WithRequestID(request.Context(), requestID)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// acceptableRequestID allows short IDs of visible ASCII only.
func acceptableRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] <= ' ' || id[i] > '~' {
			return false
		}
	}
	return true
}
