package transport

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fastygo/geouser/domain"
)

// Envelope is the response body for every API route, success or failure.
type Envelope struct {
	StatusCode int         `json:"status_code"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data"`
}

// NewSuccess returns a success envelope.
func NewSuccess(status int, message string, data interface{}) Envelope {
	return Envelope{
		StatusCode: status,
		Message:    message,
		Data:       data,
	}
}

// NewError returns the envelope for err together with its HTTP status.
// Only the domain message is exposed; causes stay in the logs.
func NewError(err error) (int, Envelope) {
	status, message := StatusFor(err)
	return status, Envelope{StatusCode: status, Message: message}
}

// StatusFor maps an error to its HTTP status and client-facing message.
// Anything that is not a classified domain error is a 500.
func StatusFor(err error) (int, string) {
	var dErr *domain.Error
	if !errors.As(err, &dErr) {
		return http.StatusInternalServerError, domain.ErrInternal.Message
	}

	switch dErr.Code {
	case domain.ErrCodeInvalid, domain.ErrCodeConflict, domain.ErrCodeForbidden:
		return http.StatusBadRequest, dErr.Message
	case domain.ErrCodeUnauthorized:
		return http.StatusUnauthorized, dErr.Message
	case domain.ErrCodeNotFound:
		return http.StatusNotFound, dErr.Message
	case domain.ErrCodeRateLimited:
		return http.StatusTooManyRequests, dErr.Message
	default:
		return http.StatusInternalServerError, domain.ErrInternal.Message
	}
}

// String returns the JSON representation (best-effort) for logging purposes.
func (e Envelope) String() string {
	out, err := json.Marshal(e)
	if err != nil {
		return "{}"
	}
	return string(out)
}
