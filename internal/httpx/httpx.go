// Package httpx builds the HTTP clients used for catalog and artwork
// requests.
package httpx

import (
	"net"
	"net/http"
	"time"

	"github.com/go-faster/errors"
)

const (
	// UserAgent identifies marquee to the API and image host.
	UserAgent = "marquee/0.1"

	defaultAPITimeout   = 10 * time.Second
	defaultImageTimeout = 20 * time.Second
)

// Transport stamps default headers onto every outgoing request. It never
// retries; a failed round trip is returned to the caller as-is.
type Transport struct {
	Base      http.RoundTripper
	UserAgent string
	Accept    string
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, errors.New("nil request")
	}
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	r := req.Clone(req.Context())
	if r.Header.Get("User-Agent") == "" && t.UserAgent != "" {
		r.Header.Set("User-Agent", t.UserAgent)
	}
	if r.Header.Get("Accept") == "" && t.Accept != "" {
		r.Header.Set("Accept", t.Accept)
	}
	return base.RoundTrip(r)
}

// NewAPIClient returns a client for JSON API calls.
func NewAPIClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultAPITimeout
	}
	return newClient(timeout, "application/json", 4)
}

// NewImageClient returns a client for artwork downloads. Connection reuse
// is sized for a screenful of concurrent poster fetches.
func NewImageClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultImageTimeout
	}
	return newClient(timeout, "image/*", 32)
}

func newClient(timeout time.Duration, accept string, idlePerHost int) *http.Client {
	base := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          64,
		MaxIdleConnsPerHost:   idlePerHost,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: timeout,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &Transport{
			Base:      base,
			UserAgent: UserAgent,
			Accept:    accept,
		},
	}
}
