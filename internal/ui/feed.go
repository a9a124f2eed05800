package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/marquee/internal/artwork"
	"github.com/five82/marquee/internal/state"
)

// PosterFeed carries loader settlements from pool goroutines into the
// Bubble Tea event loop. Pass Notify as the pool's OnSettle callback.
type PosterFeed struct {
	ctx context.Context
	ch  chan posterMsg
}

// NewPosterFeed returns a feed that stops accepting events once ctx ends.
func NewPosterFeed(ctx context.Context) *PosterFeed {
	if ctx == nil {
		ctx = context.Background()
	}
	return &PosterFeed{ctx: ctx, ch: make(chan posterMsg, 64)}
}

// Notify queues a settled state. It blocks while the queue is full and
// gives up when the feed's context is done.
func (f *PosterFeed) Notify(id int, s artwork.State) {
	select {
	case f.ch <- posterMsg{id: id, state: s}:
	case <-f.ctx.Done():
	}
}

func (f *PosterFeed) wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-f.ch:
			return msg
		case <-f.ctx.Done():
			return nil
		}
	}
}

func waitSnapshot(ch <-chan state.Snapshot) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-ch
		if !ok {
			return nil
		}
		return snapshotMsg(snap)
	}
}
