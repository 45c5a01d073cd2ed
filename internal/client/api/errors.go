package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/rentkeeper/internal/validation"
)

var (
	// ErrNetwork means the backend could not be reached at all.
	ErrNetwork = errors.New("server unavailable")
	// ErrUnauthorized is matched by *HTTPError for 401 responses.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrRegistrationIncomplete is matched by *HTTPError when the backend
	// refuses a login because sign-up was never finished.
	ErrRegistrationIncomplete = errors.New("registration incomplete")
)

const (
	msgServerError            = "Server error. Please try again later."
	msgGeneric                = "Something went wrong. Please try again."
	msgRequestFailed          = "Request failed"
	msgRegistrationIncomplete = "Registration is not complete. Finish registration with the OTP sent to you, then log in."
)

// HTTPError is a non-2xx answer from the backend.
type HTTPError struct {
	Status  int
	Message string
	// FromBackend is set when Message came from the response body.
	FromBackend bool
	kind        error
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http %d: %s", e.Status, e.Message)
}

func (e *HTTPError) Unwrap() error {
	return e.kind
}

// newHTTPError picks the message the way the backend reports it: the error
// field, then message, then the status text.
func newHTTPError(status int, body map[string]any) *HTTPError {
	msg, fromBackend := "", false
	for _, key := range []string{"error", "message"} {
		if s, ok := body[key].(string); ok && strings.TrimSpace(s) != "" {
			msg, fromBackend = s, true
			break
		}
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	if msg == "" {
		msg = msgRequestFailed
	}

	e := &HTTPError{Status: status, Message: msg, FromBackend: fromBackend}
	switch {
	case isRegistrationIncomplete(msg):
		e.kind = ErrRegistrationIncomplete
	case status == http.StatusUnauthorized:
		e.kind = ErrUnauthorized
	}
	return e
}

func isRegistrationIncomplete(msg string) bool {
	m := strings.ToLower(msg)
	return strings.Contains(m, "registration incomplete") ||
		strings.Contains(m, "registration not complete") ||
		strings.Contains(m, "complete registration")
}

// UserMessage turns any error coming out of the API or form validation
// into text that is safe to show. Transport failures and unknown errors
// never leak their details.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var ve *validation.ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	if errors.Is(err, ErrRegistrationIncomplete) {
		return msgRegistrationIncomplete
	}
	if errors.Is(err, ErrNetwork) {
		return msgServerError
	}

	var he *HTTPError
	if errors.As(err, &he) {
		if he.FromBackend {
			return he.Message
		}
		return msgGeneric
	}

	return msgGeneric
}
