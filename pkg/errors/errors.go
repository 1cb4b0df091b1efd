package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the kinds of failure a crawl can hit
type ErrorType string

const (
	ErrorTypeFetch         ErrorType = "fetch"
	ErrorTypeNetwork       ErrorType = "network"
	ErrorTypeParsing       ErrorType = "parsing"
	ErrorTypeIO            ErrorType = "io"
	ErrorTypePoolExhausted ErrorType = "pool_exhausted"
)

// Error represents a crawl error with type information
type Error struct {
	Type    ErrorType
	Message string
	Code    int
	URL     string
	Err     error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s error", e.Type)
	if e.Code != 0 {
		msg = fmt.Sprintf("%s (code %d)", msg, e.Code)
	}
	msg = fmt.Sprintf("%s: %s", msg, e.Message)
	if e.URL != "" {
		msg = fmt.Sprintf("%s [%s]", msg, e.URL)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewFetchError reports a response whose status was not 200 OK
func NewFetchError(url string, statusCode int) *Error {
	return &Error{
		Type:    ErrorTypeFetch,
		Message: fmt.Sprintf("unexpected status %d", statusCode),
		Code:    statusCode,
		URL:     url,
	}
}

// NewNetworkError reports a request that never produced a response
func NewNetworkError(url string, err error) *Error {
	return &Error{
		Type:    ErrorTypeNetwork,
		Message: "request failed",
		URL:     url,
		Err:     err,
	}
}

// NewParseError reports HTML that lacks structure the crawler depends on
func NewParseError(url, message string) *Error {
	return &Error{
		Type:    ErrorTypeParsing,
		Message: message,
		URL:     url,
	}
}

// NewIOError reports a filesystem failure at path
func NewIOError(path string, err error) *Error {
	return &Error{
		Type:    ErrorTypeIO,
		Message: fmt.Sprintf("filesystem error at %s", path),
		Err:     err,
	}
}

// NewPoolExhaustedError reports that every identifier in a pool of the given size was spent
func NewPoolExhaustedError(size int) *Error {
	return &Error{
		Type:    ErrorTypePoolExhausted,
		Message: fmt.Sprintf("all %d identifiers consumed", size),
	}
}

// IsType reports whether err or anything it wraps is an *Error of type t
func IsType(err error, t ErrorType) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Type == t
	}
	return false
}

// StatusCode returns the HTTP status carried by err, or 0
func StatusCode(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return 0
}
