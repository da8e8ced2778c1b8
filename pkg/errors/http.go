// Copyright (c) 2026, Verdant Labs.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package errors

import (
	"context"
	stderrors "errors"
	"net/http"
	"os"
)

// HTTPStatus maps an error to the status code surfaced to the client.
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case ErrCodeAuthMissing, ErrCodeAuthInvalid, ErrCodeAuthExpired:
		return http.StatusUnauthorized
	case ErrCodeRateLimitExceeded:
		return http.StatusTooManyRequests
	case ErrCodeNoFiles, ErrCodeTooManyFiles,
		ErrCodeUnsupportedExtension, ErrCodeUnsupportedContentType:
		return http.StatusBadRequest
	case ErrCodeUpstreamTransient:
		// Timeouts surface as 504, other transient failures as 502.
		if isTimeout(err) {
			return http.StatusGatewayTimeout
		}
		return http.StatusBadGateway
	case ErrCodeUpstreamPermanent, ErrCodeUpstreamMalformed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// ClientMessage returns the message safe to surface to the caller.
// Internal errors get a generic message so no internal detail leaks.
func ClientMessage(err error) string {
	var se *StructuredError
	if stderrors.As(err, &se) && se.Code != ErrCodeInternal {
		return se.Message
	}
	return "an error occurred during plant identification"
}

func isTimeout(err error) bool {
	if stderrors.Is(err, os.ErrDeadlineExceeded) || stderrors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var t interface{ Timeout() bool }
	return stderrors.As(err, &t) && t.Timeout()
}
