package artwork

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"  // GIF decoder
	_ "image/jpeg" // JPEG decoder
	_ "image/png"  // PNG decoder
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"
	_ "golang.org/x/image/webp" // WebP decoder

	"github.com/five82/marquee/internal/httpx"
)

const (
	maxImageBytes  = 16 << 20
	maxImagePixels = 40_000_000
)

// LoadError wraps a failure kind (ErrFetch, ErrDecode) with its cause.
type LoadError struct {
	URL  string
	Kind error
	Err  error
}

func (e *LoadError) Error() string {
	if e == nil {
		return "image load error"
	}
	if e.Err == nil {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%v: %v", e.Kind, e.Err)
}

func (e *LoadError) Unwrap() []error {
	if e == nil {
		return nil
	}
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Fetcher starts loaders. It is safe for concurrent use; loaders it starts
// share only the immutable HTTP client and sizing options.
type Fetcher struct {
	client    *http.Client
	maxWidth  int
	maxHeight int
	log       logrus.FieldLogger
}

// FetcherOptions configure a Fetcher.
type FetcherOptions struct {
	Client *http.Client
	// MaxWidth and MaxHeight bound the decoded image in pixels. Zero keeps
	// the original size.
	MaxWidth  int
	MaxHeight int
	Logger    logrus.FieldLogger
}

// NewFetcher builds a Fetcher. A nil client gets httpx.NewImageClient.
func NewFetcher(opts FetcherOptions) *Fetcher {
	client := opts.Client
	if client == nil {
		client = httpx.NewImageClient(0)
	}
	log := opts.Logger
	if log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		log = discard
	}
	return &Fetcher{
		client:    client,
		maxWidth:  opts.MaxWidth,
		maxHeight: opts.MaxHeight,
		log:       log,
	}
}

// Loader is the state machine for one image URL. It starts in PhaseLoading
// and settles exactly once in PhaseLoaded or PhaseFailed.
type Loader struct {
	url      string
	mu       sync.Mutex
	state    State
	done     chan struct{}
	cancel   context.CancelFunc
	onSettle func(State)
}

// Load starts a loader for rawURL. When present is false the loader is
// created already settled in PhaseFailed with ErrNoImage, performs no I/O
// and never calls onSettle. Otherwise the fetch runs on its own goroutine
// and onSettle, if non-nil, is called from that goroutine once the fetch
// settles. onSettle is not called when the loader is closed first.
func (f *Fetcher) Load(ctx context.Context, rawURL string, present bool, onSettle func(State)) *Loader {
	if !present || rawURL == "" {
		return settled(rawURL, ErrNoImage)
	}

	l := &Loader{
		url:      rawURL,
		done:     make(chan struct{}),
		onSettle: onSettle,
	}
	ctx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.state = State{Phase: PhaseLoading}
	go func() {
		defer cancel()
		start := time.Now()
		img, err := f.fetch(ctx, rawURL)
		entry := f.log.WithFields(logrus.Fields{
			"url":     rawURL,
			"elapsed": time.Since(start).Round(time.Millisecond),
		})
		if err != nil {
			entry.WithError(err).Debug("image load failed")
			l.settle(State{Phase: PhaseFailed, Err: err}, true)
			return
		}
		entry.Debug("image loaded")
		l.settle(State{Phase: PhaseLoaded, Image: img}, true)
	}()
	return l
}

// settled returns a loader that is born in PhaseFailed with err.
func settled(rawURL string, err error) *Loader {
	l := &Loader{
		url:    rawURL,
		state:  State{Phase: PhaseFailed, Err: err},
		done:   make(chan struct{}),
		cancel: func() {},
	}
	close(l.done)
	return l
}

// URL returns the URL the loader was created for.
func (l *Loader) URL() string {
	return l.url
}

// State returns the current state.
func (l *Loader) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Done is closed once the loader has settled.
func (l *Loader) Done() <-chan struct{} {
	return l.done
}

// Close cancels any in-flight request. A loader still loading settles in
// PhaseFailed with ErrClosed. Close is idempotent.
func (l *Loader) Close() {
	l.cancel()
	l.settle(State{Phase: PhaseFailed, Err: ErrClosed}, false)
}

func (l *Loader) settle(s State, notify bool) {
	l.mu.Lock()
	if l.state.Phase.Terminal() {
		l.mu.Unlock()
		return
	}
	l.state = s
	close(l.done)
	cb := l.onSettle
	l.mu.Unlock()

	if notify && cb != nil {
		cb(s)
	}
}

func (f *Fetcher) fetch(ctx context.Context, rawURL string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &LoadError{URL: rawURL, Kind: ErrFetch, Err: err}
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &LoadError{URL: rawURL, Kind: ErrFetch, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &LoadError{
			URL:  rawURL,
			Kind: ErrFetch,
			Err:  &StatusError{URL: rawURL, StatusCode: resp.StatusCode},
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, &LoadError{URL: rawURL, Kind: ErrFetch, Err: err}
	}
	if len(body) > maxImageBytes {
		return nil, &LoadError{URL: rawURL, Kind: ErrDecode, Err: errors.Errorf("image exceeds %d bytes", maxImageBytes)}
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(body))
	if err != nil {
		return nil, &LoadError{URL: rawURL, Kind: ErrDecode, Err: err}
	}
	if int64(cfg.Width)*int64(cfg.Height) > maxImagePixels {
		return nil, &LoadError{
			URL:  rawURL,
			Kind: ErrDecode,
			Err:  errors.Errorf("image is %dx%d, over %d pixels", cfg.Width, cfg.Height, maxImagePixels),
		}
	}

	img, _, err := image.Decode(bytes.NewReader(body))
	if err != nil {
		return nil, &LoadError{URL: rawURL, Kind: ErrDecode, Err: err}
	}
	return f.fit(img), nil
}

func (f *Fetcher) fit(img image.Image) image.Image {
	if f.maxWidth <= 0 || f.maxHeight <= 0 {
		return img
	}
	b := img.Bounds()
	if b.Dx() <= f.maxWidth && b.Dy() <= f.maxHeight {
		return img
	}
	return imaging.Fit(img, f.maxWidth, f.maxHeight, imaging.Lanczos)
}
