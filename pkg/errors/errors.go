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
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a structured error classification.
type ErrorCode string

const (
	// ErrCodeAuthMissing indicates the request carried no bearer credential.
	ErrCodeAuthMissing ErrorCode = "AUTH_MISSING"
	// ErrCodeAuthInvalid indicates the credential signature or payload is invalid.
	ErrCodeAuthInvalid ErrorCode = "AUTH_INVALID"
	// ErrCodeAuthExpired indicates the credential expiry has passed.
	ErrCodeAuthExpired ErrorCode = "AUTH_EXPIRED"
	// ErrCodeRateLimitExceeded indicates the caller exceeded the admission window.
	ErrCodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"
	// ErrCodeNoFiles indicates the request carried no image parts.
	ErrCodeNoFiles ErrorCode = "NO_FILES"
	// ErrCodeTooManyFiles indicates the request exceeded the image part limit.
	ErrCodeTooManyFiles ErrorCode = "TOO_MANY_FILES"
	// ErrCodeUnsupportedExtension indicates a filename extension outside the allow list.
	ErrCodeUnsupportedExtension ErrorCode = "UNSUPPORTED_EXTENSION"
	// ErrCodeUnsupportedContentType indicates a declared MIME type outside the allow list.
	ErrCodeUnsupportedContentType ErrorCode = "UNSUPPORTED_CONTENT_TYPE"
	// ErrCodeUpstreamTransient indicates a retryable provider failure
	// (network error, timeout, 5xx, provider throttling).
	ErrCodeUpstreamTransient ErrorCode = "UPSTREAM_TRANSIENT"
	// ErrCodeUpstreamPermanent indicates a non-retryable provider failure (4xx).
	ErrCodeUpstreamPermanent ErrorCode = "UPSTREAM_PERMANENT"
	// ErrCodeUpstreamMalformed indicates the provider response body could not
	// be decoded.
	ErrCodeUpstreamMalformed ErrorCode = "UPSTREAM_MALFORMED"
	// ErrCodeInternal indicates an internal system error.
	ErrCodeInternal ErrorCode = "INTERNAL"
)

// StructuredError provides structured error information for better observability.
// It includes an error code for programmatic handling, a human-readable message,
// the underlying cause, and optional context for debugging.
type StructuredError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]any
}

// Error implements the error interface.
func (e *StructuredError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is and errors.As support.
func (e *StructuredError) Unwrap() error {
	return e.Cause
}

// New creates a new StructuredError with the given code and message.
func New(code ErrorCode, message string) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
	}
}

// NewWithContext creates a new StructuredError with context information.
func NewWithContext(code ErrorCode, message string, context map[string]any) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
		Context: context,
	}
}

// Wrap wraps an existing error with additional context.
func Wrap(code ErrorCode, message string, cause error) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WrapWithContext wraps an error with additional context information.
func WrapWithContext(code ErrorCode, message string, cause error, context map[string]any) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
		Cause:   cause,
		Context: context,
	}
}

// CodeOf extracts the ErrorCode from err. Errors that are not StructuredError
// anywhere in their chain classify as ErrCodeInternal.
func CodeOf(err error) ErrorCode {
	var se *StructuredError
	if stderrors.As(err, &se) {
		return se.Code
	}
	return ErrCodeInternal
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

// Retryable reports whether err represents a failure worth retrying.
// Only transient upstream failures qualify.
func Retryable(err error) bool {
	return CodeOf(err) == ErrCodeUpstreamTransient
}
