// Package errs defines the application error taxonomy and the localized
// messages the HTTP layer exposes instead of raw provider errors.
package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies an error for HTTP status mapping.
type Kind int

const (
	// KindProvider is a single adapter's transient failure. It never
	// crosses the chain boundary — logged and swallowed there.
	KindProvider Kind = iota
	// KindAggregate means an entire provider chain was exhausted.
	KindAggregate
	// KindConfig is a missing or incorrect PIN on a protected mutation.
	KindConfig
	// KindValidation is a missing or malformed request field.
	KindValidation
	// KindNotFound means the content is genuinely absent upstream.
	KindNotFound
)

// Error is a classified application error carrying a message key for
// localization.
type Error struct {
	Kind  Kind
	Key   string
	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Key, e.cause)
	}
	return e.Key
}

func (e *Error) Unwrap() error { return e.cause }

// Unauthorized builds a ConfigError (401).
func Unauthorized(key string) *Error {
	return &Error{Kind: KindConfig, Key: key}
}

// Invalid builds a ValidationError (400).
func Invalid(key string) *Error {
	return &Error{Kind: KindValidation, Key: key}
}

// NotFound builds a NotFoundError (404).
func NotFound(key string) *Error {
	return &Error{Kind: KindNotFound, Key: key}
}

// Provider wraps one adapter's failure. Stays local to the chain.
func Provider(name string, cause error) *Error {
	return &Error{Kind: KindProvider, Key: "provider:" + name, cause: cause}
}

// AggregateError reports that every stage of a provider chain failed. The
// stage names and last cause are kept for logging; the HTTP layer only
// ever exposes a localized message derived from the cause text.
type AggregateError struct {
	Op     string
	Stages []string
	Last   error
}

func (e *AggregateError) Error() string {
	return fmt.Sprintf("%s: all providers failed (%s): %v",
		e.Op, strings.Join(e.Stages, ", "), e.Last)
}

func (e *AggregateError) Unwrap() error { return e.Last }

// FilterRejectionError is not a failure: it is a deliberate policy
// decision, carrying the decision's reason for the 403 body.
type FilterRejectionError struct {
	Reason string
}

func (e *FilterRejectionError) Error() string {
	return "blocked by filter: " + e.Reason
}

// AsKind extracts a *Error of any kind from err's chain.
func AsKind(err error) (*Error, bool) {
	var ae *Error
	ok := errors.As(err, &ae)
	return ae, ok
}

// AsAggregate extracts an *AggregateError from err's chain.
func AsAggregate(err error) (*AggregateError, bool) {
	var ag *AggregateError
	ok := errors.As(err, &ag)
	return ag, ok
}

// AsRejection extracts a *FilterRejectionError from err's chain.
func AsRejection(err error) (*FilterRejectionError, bool) {
	var fr *FilterRejectionError
	ok := errors.As(err, &fr)
	return fr, ok
}
