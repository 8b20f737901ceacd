package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies a failed call.
type Kind string

const (
	KindNetwork   Kind = "network"   // no response: DNS, refused, timeout
	KindClient    Kind = "client"    // 4xx
	KindServer    Kind = "server"    // 5xx and other non-2xx
	KindMalformed Kind = "malformed" // 2xx with an undecodable body
)

// GenericMessage is shown when nothing more specific is known.
const GenericMessage = "An unexpected error occurred. Please try again."

var statusMessages = map[int]string{
	http.StatusBadRequest:          "Invalid request. Please check your input.",
	http.StatusUnauthorized:        "Authentication required. Please log in again.",
	http.StatusForbidden:           "You do not have permission to perform this action.",
	http.StatusNotFound:            "The requested resource was not found.",
	http.StatusConflict:            "A resource with this information already exists.",
	http.StatusUnprocessableEntity: "Validation failed. Please check your input.",
	http.StatusTooManyRequests:     "Too many requests. Please try again later.",
	http.StatusInternalServerError: "Server error. Please try again later.",
	http.StatusBadGateway:          "Server is temporarily unavailable. Please try again later.",
	http.StatusServiceUnavailable:  "Service unavailable. Please try again later.",
	http.StatusGatewayTimeout:      "Server took too long to respond. Please try again later.",
}

// APIError is the normalized failure of one call.
type APIError struct {
	Status  int    // HTTP status, 0 when no response arrived
	Message string // human-readable, always non-empty
	Kind    Kind
	Body    []byte // raw response body, if any
	Cause   error  // transport or decode error, if any

	notified bool
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.Status)
}

func (e *APIError) Unwrap() error { return e.Cause }

// Unauthorized reports whether the server answered 401.
func (e *APIError) Unauthorized() bool { return e.Status == http.StatusUnauthorized }

// IsNotified reports whether err was already shown to the user.
func IsNotified(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.notified
}

// AsAPIError unwraps err to an *APIError.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	ok := errors.As(err, &apiErr)
	return apiErr, ok
}

// ExtractMessage derives the user-facing message for a failed call.
//
// Precedence: body "message", first "errors[].message", body "error",
// status table, transport error text, generic fallback. Each body field is
// read on its own, so a malformed one does not hide the others. Messages
// must be strings; "error" may be any JSON value.
func ExtractMessage(status int, body []byte, transportErr error) string {
	var fields map[string]json.RawMessage
	if len(body) > 0 && json.Unmarshal(body, &fields) == nil {
		if m := stringField(fields["message"]); m != "" {
			return m
		}
		var entries []map[string]json.RawMessage
		if json.Unmarshal(fields["errors"], &entries) == nil {
			for _, fe := range entries {
				if m := stringField(fe["message"]); m != "" {
					return m
				}
			}
		}
		if m := fieldText(fields["error"]); m != "" {
			return m
		}
	}
	if m, ok := statusMessages[status]; ok {
		return m
	}
	if transportErr != nil {
		return transportErr.Error()
	}
	return GenericMessage
}

// stringField returns a non-blank string field verbatim, or "".
func stringField(raw json.RawMessage) string {
	var s string
	if json.Unmarshal(raw, &s) != nil || strings.TrimSpace(s) == "" {
		return ""
	}
	return s
}

// fieldText renders a body field verbatim: strings unquoted, anything else
// as its JSON text. Missing, null and blank fields yield "".
func fieldText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	if raw[0] == '"' {
		return stringField(raw)
	}
	return string(raw)
}

func kindForStatus(status int) Kind {
	switch {
	case status == 0:
		return KindNetwork
	case status >= 400 && status < 500:
		return KindClient
	default:
		return KindServer
	}
}
