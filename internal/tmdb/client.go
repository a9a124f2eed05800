package tmdb

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-faster/errors"

	"github.com/five82/marquee/internal/httpx"
)

// CatalogFetcher retrieves a catalog snapshot for a search query.
// This interface is implemented by *Client and can be used for testing.
type CatalogFetcher interface {
	FetchCatalog(ctx context.Context, query string) ([]Movie, error)
}

// Ensure Client implements CatalogFetcher at compile time.
var _ CatalogFetcher = (*Client)(nil)

// Client talks to the TMDb search API. It holds no per-call state.
type Client struct {
	baseURL *url.URL
	apiKey  string
	http    *http.Client
}

const (
	defaultAPIBase = "https://api.themoviedb.org"
	searchPath     = "/3/search/movie"
	maxErrorBody   = 4096
)

// NewClient builds a Client for apiBase. A nil httpClient gets the default
// API client from httpx.
func NewClient(apiBase, apiKey string, httpClient *http.Client) (*Client, error) {
	base, err := parseBaseURL(apiBase)
	if err != nil {
		return nil, err
	}
	if httpClient == nil {
		httpClient = httpx.NewAPIClient(0)
	}
	return &Client{
		baseURL: base,
		apiKey:  strings.TrimSpace(apiKey),
		http:    httpClient,
	}, nil
}

// FetchCatalog runs one search round trip and returns the movies in server
// order. Decoding is all-or-nothing.
func (c *Client) FetchCatalog(ctx context.Context, query string) ([]Movie, error) {
	const op = "fetch catalog"
	if c == nil {
		return nil, fail(op, ErrInvalidRequest, errors.New("client is nil"))
	}
	reqURL, err := c.searchURL(query)
	if err != nil {
		return nil, fail(op, ErrInvalidRequest, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fail(op, ErrInvalidRequest, errors.Wrap(err, "create request"))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fail(op, ErrTransport, errors.Wrap(redactURLError(err), "execute request"))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
		return nil, fail(op, ErrTransport, &StatusError{
			URL:        redact(reqURL).String(),
			StatusCode: resp.StatusCode,
		})
	}

	var payload SearchResponse
	dec := json.NewDecoder(resp.Body)
	if err := dec.Decode(&payload); err != nil {
		if ctx.Err() != nil {
			return nil, fail(op, ErrTransport, errors.Wrap(err, "read response"))
		}
		return nil, fail(op, ErrDecode, errors.Wrap(err, "decode response"))
	}
	// The body must hold exactly one JSON value.
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if ctx.Err() != nil {
			return nil, fail(op, ErrTransport, errors.Wrap(ctx.Err(), "read response"))
		}
		return nil, fail(op, ErrDecode, errors.New("trailing data after response"))
	}
	if payload.Results == nil {
		return []Movie{}, nil
	}
	return payload.Results, nil
}

func (c *Client) searchURL(query string) (*url.URL, error) {
	if err := validateQuery(query); err != nil {
		return nil, err
	}
	values := url.Values{}
	if c.apiKey != "" {
		values.Set("api_key", c.apiKey)
	}
	values.Set("query", query)
	rel := &url.URL{Path: searchPath, RawQuery: values.Encode()}
	u := c.baseURL.ResolveReference(rel)
	if _, err := url.Parse(u.String()); err != nil {
		return nil, errors.Wrap(err, "build search url")
	}
	return u, nil
}

func validateQuery(query string) error {
	if !utf8.ValidString(query) {
		return errors.New("query is not valid UTF-8")
	}
	for _, r := range query {
		if unicode.IsControl(r) {
			return errors.Errorf("query contains control character %U", r)
		}
	}
	return nil
}

func parseBaseURL(apiBase string) (*url.URL, error) {
	trimmed := strings.TrimSpace(apiBase)
	if trimmed == "" {
		trimmed = defaultAPIBase
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, errors.Wrapf(err, "parse api_base %q", apiBase)
	}
	if u.Host == "" {
		return nil, errors.Errorf("api_base %q has no host", apiBase)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}

// redact strips the api key so URLs are safe to log.
func redact(u *url.URL) *url.URL {
	dup := *u
	values := dup.Query()
	if values.Has("api_key") {
		values.Set("api_key", "REDACTED")
		dup.RawQuery = values.Encode()
	}
	return &dup
}

func redactURLError(err error) error {
	var urlErr *url.Error
	if !errors.As(err, &urlErr) {
		return err
	}
	u, perr := url.Parse(urlErr.URL)
	if perr != nil {
		return err
	}
	return &url.Error{Op: urlErr.Op, URL: redact(u).String(), Err: urlErr.Err}
}
