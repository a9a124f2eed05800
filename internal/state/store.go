package state

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/five82/marquee/internal/catalog"
	"github.com/five82/marquee/internal/tmdb"
)

// ErrStale is returned by FetchCatalog when a newer fetch was applied while
// this one was in flight. The result is discarded.
var ErrStale = errors.New("stale fetch result discarded")

// Snapshot represents the latest data available to the UI.
type Snapshot struct {
	HasCatalog  bool // true once any fetch has succeeded
	Catalog     []tmdb.Movie
	Filtered    []tmdb.Movie
	Query       string // most recently applied filter query
	FetchQuery  string // search term of the catalog currently held
	Fetching    bool
	LastUpdated time.Time
	LastError   error
	// ConsecutiveFailures counts failed fetches since the last success.
	ConsecutiveFailures int
}

// IsEmpty reports whether the filtered view has nothing to show.
func (s Snapshot) IsEmpty() bool {
	return len(s.Filtered) == 0
}

// Store is the catalog view model. It owns the catalog and the filtered
// view; both are replaced, never edited in place. All mutations are
// serialized and published to subscribers in order.
type Store struct {
	fetcher tmdb.CatalogFetcher
	log     logrus.FieldLogger

	mu         sync.Mutex
	snapshot   Snapshot
	fetchSeq   uint64
	appliedSeq uint64
	inFlight   int
	subs       map[int]chan Snapshot
	nextSub    int
}

// NewStore builds a Store that fetches through fetcher. A nil logger
// discards log output.
func NewStore(fetcher tmdb.CatalogFetcher, log logrus.FieldLogger) *Store {
	if log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		log = discard
	}
	return &Store{
		fetcher: fetcher,
		log:     log,
		subs:    make(map[int]chan Snapshot),
	}
}

// FetchCatalog runs one fetch. On success the catalog and filtered view are
// both replaced by the result and the filter query is cleared. On failure
// the catalog and filtered view are left untouched and the error is
// recorded and returned. A result that completes after a newer fetch has
// already been applied is dropped with ErrStale.
func (s *Store) FetchCatalog(ctx context.Context, query string) error {
	if s.fetcher == nil {
		return errors.New("store has no fetcher")
	}

	s.mu.Lock()
	s.fetchSeq++
	seq := s.fetchSeq
	s.inFlight++
	s.snapshot.Fetching = true
	s.publishLocked()
	s.mu.Unlock()

	entry := s.log.WithFields(logrus.Fields{
		"request_id": uuid.NewString(),
		"query":      query,
		"seq":        seq,
	})
	entry.Info("catalog fetch started")
	start := time.Now()

	movies, err := s.fetcher.FetchCatalog(ctx, query)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight--
	s.snapshot.Fetching = s.inFlight > 0

	elapsed := time.Since(start).Round(time.Millisecond)
	if seq < s.appliedSeq {
		s.publishLocked()
		entry.WithField("elapsed", elapsed).Warn("catalog fetch superseded")
		if err != nil {
			return errors.Wrap(err, "stale fetch")
		}
		return ErrStale
	}
	if err != nil {
		s.snapshot.LastError = err
		s.snapshot.LastUpdated = time.Now()
		s.snapshot.ConsecutiveFailures++
		s.publishLocked()
		entry.WithError(err).WithField("elapsed", elapsed).Error("catalog fetch failed")
		return err
	}

	s.appliedSeq = seq
	s.snapshot.HasCatalog = true
	s.snapshot.Catalog = movies
	s.snapshot.Filtered = movies
	s.snapshot.Query = ""
	s.snapshot.FetchQuery = query
	s.snapshot.LastError = nil
	s.snapshot.LastUpdated = time.Now()
	s.snapshot.ConsecutiveFailures = 0
	s.publishLocked()
	entry.WithFields(logrus.Fields{
		"count":   len(movies),
		"elapsed": elapsed,
	}).Info("catalog fetch finished")
	return nil
}

// SetQuery recomputes the filtered view from the cached catalog. It never
// touches the catalog or the network.
func (s *Store) SetQuery(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Query = query
	s.snapshot.Filtered = catalog.Filter(s.snapshot.Catalog, query)
	s.publishLocked()
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe registers an observer. The returned channel always holds the
// latest snapshot; intermediate states may be skipped when the reader is
// slower than the writer. The current state is delivered immediately. The
// cancel function unregisters and closes the channel.
func (s *Store) Subscribe() (<-chan Snapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan Snapshot, 1)
	ch <- s.snapshotLocked()
	s.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

func (s *Store) publishLocked() {
	if len(s.subs) == 0 {
		return
	}
	snap := s.snapshotLocked()
	for _, ch := range s.subs {
		// Drop an unread older snapshot so the newest always lands.
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}

func (s *Store) snapshotLocked() Snapshot {
	snap := s.snapshot
	snap.Catalog = cloneMovies(s.snapshot.Catalog)
	snap.Filtered = cloneMovies(s.snapshot.Filtered)
	return snap
}

func cloneMovies(items []tmdb.Movie) []tmdb.Movie {
	if items == nil {
		return nil
	}
	dup := make([]tmdb.Movie, len(items))
	copy(dup, items)
	return dup
}
