package yahoo

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionClosed is returned by a Session after Close.
	ErrSessionClosed = errors.New("yahoo: session closed")
	errMissingDate   = errors.New("missing Date header")
)

// FetchError is returned when a request completes with a status other than 200.
type FetchError struct {
	URL        string
	StatusCode int
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("yahoo: GET %s: unexpected status %d", e.URL, e.StatusCode)
}

// ParseError is returned when a fetched page does not have the expected structure.
type ParseError struct {
	Ticker string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("yahoo: parse %s: %s: %s", e.Ticker, e.Reason, e.Err.Error())
	}
	return fmt.Sprintf("yahoo: parse %s: %s", e.Ticker, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// TransportError wraps a failure of the underlying transport (timeouts, dns, resets).
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("yahoo: GET %s: %s", e.URL, e.Err.Error())
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
