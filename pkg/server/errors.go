package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/verdantlabs/plantgate/pkg/errors"
	"github.com/verdantlabs/plantgate/pkg/serializer"
)

// ErrorResponse is the client-facing error object.
type ErrorResponse struct {
	ErrorKind string    `json:"error_kind"`
	Message   string    `json:"message"`
	RequestID string    `json:"requestId"`
	Timestamp time.Time `json:"timestamp"`
	Retryable bool      `json:"retryable"`
}

// WriteError converts err into the client-facing error response. Internal
// errors are logged with full context and surfaced with a generic message.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	requestID, _ := r.Context().Value(contextKeyRequestID).(string)
	if requestID == "" {
		requestID = uuid.New().String()
	}

	code := errors.CodeOf(err)
	status := errors.HTTPStatus(err)

	if code == errors.ErrCodeInternal {
		slog.Error("internal error",
			"error", err,
			"requestID", requestID,
			"path", r.URL.Path,
			"method", r.Method,
		)
	}

	resp := ErrorResponse{
		ErrorKind: string(code),
		Message:   errors.ClientMessage(err),
		RequestID: requestID,
		Timestamp: time.Now().UTC(),
		Retryable: errors.Retryable(err) || code == errors.ErrCodeRateLimitExceeded,
	}

	serializer.RespondJSON(w, status, resp)
}
