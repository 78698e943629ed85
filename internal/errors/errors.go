// Package errors defines the bot's error taxonomy. Every failure path is
// tagged with a category so callers can decide containment: config errors
// abort a reload, transport errors on the inbound stream are fatal to the
// connection, and everything else is logged and isolated to the single
// event or queued item that produced it.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeConfig indicates malformed or unreadable configuration,
	// including any sub-pattern that fails to compile
	ErrorTypeConfig ErrorType = "Config"

	// ErrorTypePattern indicates a bad regular expression; it only ever
	// occurs during config construction, never at match time
	ErrorTypePattern ErrorType = "Pattern"

	// ErrorTypeTransport indicates an IRC send or receive failure
	ErrorTypeTransport ErrorType = "Transport"

	// ErrorTypeFetch indicates a network/HTTP failure, unusable content
	// type, or parse failure during an enrichment fetch
	ErrorTypeFetch ErrorType = "Fetch"

	// ErrorTypePersistence indicates a URL-history storage failure
	ErrorTypePersistence ErrorType = "Persistence"

	// ErrorTypeUnexpected indicates an unexpected/unknown error
	ErrorTypeUnexpected ErrorType = "Unexpected"
)

// BotError is a structured error carrying its category and an optional
// wrapped cause.
type BotError struct {
	Type   ErrorType
	Msg    string
	Cause  error
	Detail string // additional context for logs
}

// Error implements the error interface
func (e *BotError) Error() string {
	switch {
	case e.Cause != nil:
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Msg, e.Cause)
	case e.Detail != "":
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Msg, e.Detail)
	default:
		return fmt.Sprintf("%s: %s", e.Type, e.Msg)
	}
}

// Unwrap returns the underlying error
func (e *BotError) Unwrap() error {
	return e.Cause
}

// NewConfigError wraps a configuration load or compile failure. A pattern
// error surfaces as a config error during construction.
func NewConfigError(detail string, err error) *BotError {
	return &BotError{
		Type:   ErrorTypeConfig,
		Msg:    "runtime config rejected",
		Cause:  err,
		Detail: detail,
	}
}

// NewPatternError wraps a regular expression compile failure.
func NewPatternError(rule string, err error) *BotError {
	return &BotError{
		Type:   ErrorTypePattern,
		Msg:    "bad pattern",
		Cause:  err,
		Detail: fmt.Sprintf("rule=%s", rule),
	}
}

// NewTransportError wraps an IRC send failure.
func NewTransportError(op string, err error) *BotError {
	return &BotError{
		Type:   ErrorTypeTransport,
		Msg:    "irc send failed",
		Cause:  err,
		Detail: fmt.Sprintf("op=%s", op),
	}
}

// NewFetchError wraps an HTTP fetch or parse failure.
func NewFetchError(url string, err error) *BotError {
	return &BotError{
		Type:   ErrorTypeFetch,
		Msg:    "fetch failed",
		Cause:  err,
		Detail: fmt.Sprintf("url=%s", url),
	}
}

// NewPersistenceError wraps a URL-history storage failure.
func NewPersistenceError(op string, err error) *BotError {
	return &BotError{
		Type:   ErrorTypePersistence,
		Msg:    "url history store failed",
		Cause:  err,
		Detail: fmt.Sprintf("op=%s", op),
	}
}

// TypeOf returns the category of err, or ErrorTypeUnexpected when err is
// not a BotError.
func TypeOf(err error) ErrorType {
	var botErr *BotError
	if stderrors.As(err, &botErr) {
		return botErr.Type
	}
	return ErrorTypeUnexpected
}

// Is reports whether err carries the given category.
func Is(err error, t ErrorType) bool {
	return TypeOf(err) == t
}
