package artwork

import (
	"fmt"
	"image"

	"github.com/go-faster/errors"
)

// Phase is the display phase of a loader.
type Phase uint8

const (
	PhaseLoading Phase = iota
	PhaseLoaded
	PhaseFailed
)

func (p Phase) String() string {
	switch p.Normalize() {
	case PhaseLoading:
		return "loading"
	case PhaseLoaded:
		return "loaded"
	default:
		return "failed"
	}
}

// Normalize maps values outside the known set to PhaseFailed.
func (p Phase) Normalize() Phase {
	switch p {
	case PhaseLoading, PhaseLoaded, PhaseFailed:
		return p
	default:
		return PhaseFailed
	}
}

// Terminal reports whether no further transitions can happen.
func (p Phase) Terminal() bool {
	return p.Normalize() != PhaseLoading
}

// Failure kinds carried by a Failed state.
var (
	// ErrNoImage marks an item that has no artwork path at all.
	ErrNoImage = errors.New("no image")
	ErrFetch   = errors.New("image fetch failed")
	ErrDecode  = errors.New("image decode failed")
	ErrClosed  = errors.New("loader closed")
)

// State is a point-in-time view of a loader. Image is set only when Phase is
// PhaseLoaded; Err only when Phase is PhaseFailed.
type State struct {
	Phase Phase
	Image image.Image
	Err   error
}

// Missing reports whether the item never had an image URL, as opposed to a
// fetch that failed.
func (s State) Missing() bool {
	return s.Phase.Normalize() == PhaseFailed && errors.Is(s.Err, ErrNoImage)
}

// StatusError reports a non-2xx image response.
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
