package tmdb

import (
	"fmt"

	"github.com/go-faster/errors"
)

// Failure kinds reported by FetchCatalog. Match them with errors.Is.
var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrTransport      = errors.New("transport failure")
	ErrDecode         = errors.New("decode failure")
)

// FetchError carries the failure kind alongside its underlying cause.
type FetchError struct {
	Op   string
	Kind error
	Err  error
}

func (e *FetchError) Error() string {
	if e == nil {
		return "fetch error"
	}
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

// Unwrap exposes both the kind sentinel and the cause.
func (e *FetchError) Unwrap() []error {
	if e == nil {
		return nil
	}
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// StatusError reports a non-2xx response from the API.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	if e == nil {
		return "HTTP status error"
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

func fail(op string, kind, err error) error {
	return &FetchError{Op: op, Kind: kind, Err: err}
}
