package core

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

var (
	// ErrUnauthenticated is returned when no valid access token is available.
	// It is checked before any call leaves the process; it is never retried.
	ErrUnauthenticated = errors.New("user not authenticated")

	// ErrInvalidCredentials is returned by the login boundary when the
	// identity provider rejects the email/password pair.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// FieldError carries the ordered messages reported for a single field.
type FieldError struct {
	Field  string
	Errors []string
}

// ValidationError is an expected, recoverable failure: the operation reached
// the API (or the local validator) and was rejected field by field.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// FieldMap flattens Fields into a field -> messages mapping.
func (err ValidationError) FieldMap() map[string][]string {
	m := make(map[string][]string, len(err.Fields))
	for _, f := range err.Fields {
		m[f.Field] = f.Errors
	}
	return m
}

// APIError is a non-validation failure from the remote API: the request got a
// non-success status (Code > 0), or never reached the server (Code == 0).
type APIError struct {
	Code    int
	Message string
}

func NewAPIError(code int, msg string) *APIError {
	if msg == "" {
		if code == 0 {
			msg = "could not reach the server"
		} else {
			msg = http.StatusText(code)
		}
	}
	return &APIError{Code: code, Message: msg}
}

func (err APIError) Error() string {
	if err.Code == 0 {
		return fmt.Sprintf("network failure: %s", err.Message)
	}
	return fmt.Sprintf("request failed (%d): %s", err.Code, err.Message)
}

// IsNetwork reports whether the request never reached the server.
func (err APIError) IsNetwork() bool { return err.Code == 0 }

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
