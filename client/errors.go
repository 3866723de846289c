package client

import (
	"errors"
	"fmt"
)

// Kind classifies a failure at the point it occurs, replacing string matching
// on error messages.
type Kind string

const (
	KindAuthentication Kind = "authentication"
	KindAuthorization  Kind = "authorization"
	KindRateLimit      Kind = "rate_limit"
	KindAPI            Kind = "api"
	KindParsing        Kind = "parsing"
	KindConfig         Kind = "config"
)

// maxBodyBytes caps how much of a response body is carried in an Error.
const maxBodyBytes = 500

var errMissingBaseURL = errors.New("base_url (or oic_url) is required")

// Error is a tagged failure carrying enough context (status code, endpoint,
// truncated body) to diagnose without re-running with verbose logging.
type Error struct {
	Kind       Kind
	StatusCode int
	Endpoint   string
	Body       string
	Err        error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s error", e.Kind)
	if e.Endpoint != "" {
		msg += fmt.Sprintf(" from %s", e.Endpoint)
	}
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Body != "" {
		msg += fmt.Sprintf(": %s", e.Body)
	}
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a client Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var clientErr *Error
	if errors.As(err, &clientErr) {
		return clientErr.Kind == kind
	}
	return false
}

func truncateBody(body []byte) string {
	if len(body) > maxBodyBytes {
		return string(body[:maxBodyBytes])
	}
	return string(body)
}
