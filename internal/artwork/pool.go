package artwork

import (
	"context"
	"sync"

	"github.com/five82/marquee/internal/tmdb"
)

// Pool owns one loader per visible movie. Loaders for items that leave the
// visible set are closed, so in-flight fetches never outnumber the items on
// screen.
type Pool struct {
	ctx      context.Context
	fetcher  *Fetcher
	base     string
	kind     tmdb.ImageKind
	onSettle func(id int, s State)

	mu      sync.Mutex
	loaders map[int]*Loader
	closed  bool
}

// PoolOptions configure a Pool.
type PoolOptions struct {
	ImageBase string
	Kind      tmdb.ImageKind
	// OnSettle is called from the loader goroutine when a fetch settles.
	OnSettle func(id int, s State)
}

// NewPool builds a Pool whose loaders are cancelled when ctx is done.
func NewPool(ctx context.Context, fetcher *Fetcher, opts PoolOptions) *Pool {
	base := opts.ImageBase
	if base == "" {
		base = tmdb.DefaultImageBase
	}
	return &Pool{
		ctx:      ctx,
		fetcher:  fetcher,
		base:     base,
		kind:     opts.Kind,
		onSettle: opts.OnSettle,
		loaders:  make(map[int]*Loader),
	}
}

// Acquire returns the loader for m, starting one if needed. A loader whose
// URL no longer matches the movie's derived URL is replaced.
func (p *Pool) Acquire(m tmdb.Movie) *Loader {
	rawURL, ok := m.ImageURL(p.base, p.kind)

	p.mu.Lock()
	defer p.mu.Unlock()

	if l, exists := p.loaders[m.ID]; exists {
		if l.URL() == rawURL {
			return l
		}
		l.Close()
		delete(p.loaders, m.ID)
	}

	if p.closed {
		return settled(rawURL, ErrClosed)
	}

	var cb func(State)
	if p.onSettle != nil {
		id := m.ID
		cb = func(s State) { p.onSettle(id, s) }
	}
	l := p.fetcher.Load(p.ctx, rawURL, ok, cb)
	p.loaders[m.ID] = l
	return l
}

// Lookup returns the current loader for id, if any.
func (p *Pool) Lookup(id int) (*Loader, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	l, ok := p.loaders[id]
	return l, ok
}

// Retain closes and forgets every loader whose id is not in ids.
func (p *Pool) Retain(ids []int) {
	keep := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		keep[id] = struct{}{}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for id, l := range p.loaders {
		if _, ok := keep[id]; ok {
			continue
		}
		l.Close()
		delete(p.loaders, id)
	}
}

// Len reports how many loaders the pool currently holds.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.loaders)
}

// Close closes every loader. Later Acquire calls return loaders already
// failed with ErrClosed.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for id, l := range p.loaders {
		l.Close()
		delete(p.loaders, id)
	}
	p.closed = true
}
