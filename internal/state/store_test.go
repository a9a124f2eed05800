package state

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/marquee/internal/tmdb"
)

type fetchResult struct {
	movies []tmdb.Movie
	err    error
}

// fakeFetcher answers each query from a script. Queries listed in gates
// block until their channel is closed.
type fakeFetcher struct {
	mu      sync.Mutex
	results map[string]fetchResult
	gates   map[string]chan struct{}
	calls   []string
}

func (f *fakeFetcher) FetchCatalog(ctx context.Context, query string) ([]tmdb.Movie, error) {
	f.mu.Lock()
	f.calls = append(f.calls, query)
	gate := f.gates[query]
	res := f.results[query]
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return res.movies, res.err
}

func marvel() []tmdb.Movie {
	return []tmdb.Movie{
		{ID: 1, Title: "Iron Man"},
		{ID: 2, Title: "Thor"},
		{ID: 3, Title: "Iron Fist"},
	}
}

func movieIDs(movies []tmdb.Movie) []int {
	out := make([]int, 0, len(movies))
	for _, m := range movies {
		out = append(out, m.ID)
	}
	return out
}

func TestStore_FetchSuccessResetsFilter(t *testing.T) {
	f := &fakeFetcher{results: map[string]fetchResult{"marvel": {movies: marvel()}}}
	s := NewStore(f, nil)

	before := time.Now()
	require.NoError(t, s.FetchCatalog(context.Background(), "marvel"))

	snap := s.Snapshot()
	assert.True(t, snap.HasCatalog)
	assert.Equal(t, marvel(), snap.Catalog)
	assert.Equal(t, snap.Catalog, snap.Filtered)
	assert.Equal(t, "marvel", snap.FetchQuery)
	assert.Empty(t, snap.Query)
	assert.False(t, snap.Fetching)
	assert.NoError(t, snap.LastError)
	assert.False(t, snap.LastUpdated.Before(before))

	s.SetQuery("iron")
	assert.Equal(t, []int{1, 3}, movieIDs(s.Snapshot().Filtered))

	// A new successful fetch resets the filter to the full catalog.
	require.NoError(t, s.FetchCatalog(context.Background(), "marvel"))
	snap = s.Snapshot()
	assert.Equal(t, snap.Catalog, snap.Filtered)
	assert.Empty(t, snap.Query)
}

func TestStore_FetchFailureKeepsPreviousData(t *testing.T) {
	f := &fakeFetcher{results: map[string]fetchResult{
		"marvel": {movies: marvel()},
		"broken": {err: &tmdb.FetchError{Op: "fetch catalog", Kind: tmdb.ErrDecode, Err: errors.New(`missing field "title"`)}},
	}}
	s := NewStore(f, nil)

	require.NoError(t, s.FetchCatalog(context.Background(), "marvel"))
	s.SetQuery("thor")
	prev := s.Snapshot()

	err := s.FetchCatalog(context.Background(), "broken")
	require.Error(t, err)
	assert.True(t, errors.Is(err, tmdb.ErrDecode))

	snap := s.Snapshot()
	assert.Equal(t, prev.Catalog, snap.Catalog)
	assert.Equal(t, prev.Filtered, snap.Filtered)
	assert.Equal(t, "thor", snap.Query)
	assert.Equal(t, "marvel", snap.FetchQuery)
	assert.True(t, errors.Is(snap.LastError, tmdb.ErrDecode))
	assert.Equal(t, 1, snap.ConsecutiveFailures)

	require.Error(t, s.FetchCatalog(context.Background(), "broken"))
	assert.Equal(t, 2, s.Snapshot().ConsecutiveFailures)

	require.NoError(t, s.FetchCatalog(context.Background(), "marvel"))
	snap = s.Snapshot()
	assert.Equal(t, 0, snap.ConsecutiveFailures)
	assert.NoError(t, snap.LastError)
}

func TestStore_FailureBeforeAnySuccessStaysEmpty(t *testing.T) {
	f := &fakeFetcher{results: map[string]fetchResult{"x": {err: errors.New("boom")}}}
	s := NewStore(f, nil)

	require.Error(t, s.FetchCatalog(context.Background(), "x"))
	snap := s.Snapshot()
	assert.False(t, snap.HasCatalog)
	assert.Empty(t, snap.Catalog)
	assert.Empty(t, snap.Filtered)
	assert.True(t, snap.IsEmpty())
}

func TestStore_SetQueryDoesNotFetchOrMutateCatalog(t *testing.T) {
	f := &fakeFetcher{results: map[string]fetchResult{"marvel": {movies: marvel()}}}
	s := NewStore(f, nil)
	require.NoError(t, s.FetchCatalog(context.Background(), "marvel"))

	for _, q := range []string{"i", "ir", "iro", "iron", "iron ", "iron m", ""} {
		s.SetQuery(q)
	}
	snap := s.Snapshot()
	assert.Equal(t, marvel(), snap.Catalog)
	assert.Equal(t, snap.Catalog, snap.Filtered)

	f.mu.Lock()
	assert.Equal(t, []string{"marvel"}, f.calls)
	f.mu.Unlock()

	s.SetQuery("nothing matches")
	assert.True(t, s.Snapshot().IsEmpty())
	assert.Len(t, s.Snapshot().Catalog, 3)
}

func TestStore_SnapshotIsACopy(t *testing.T) {
	f := &fakeFetcher{results: map[string]fetchResult{"marvel": {movies: marvel()}}}
	s := NewStore(f, nil)
	require.NoError(t, s.FetchCatalog(context.Background(), "marvel"))

	snap := s.Snapshot()
	snap.Catalog[0].Title = "Mutated"
	snap.Filtered[1].Title = "Mutated"

	again := s.Snapshot()
	assert.Equal(t, "Iron Man", again.Catalog[0].Title)
	assert.Equal(t, "Thor", again.Filtered[1].Title)
}

func TestStore_StaleFetchIsDiscarded(t *testing.T) {
	gate := make(chan struct{})
	f := &fakeFetcher{
		results: map[string]fetchResult{
			"old": {movies: []tmdb.Movie{{ID: 100, Title: "Old"}}},
			"new": {movies: []tmdb.Movie{{ID: 200, Title: "New"}}},
		},
		gates: map[string]chan struct{}{"old": gate},
	}
	s := NewStore(f, nil)

	oldErr := make(chan error, 1)
	go func() { oldErr <- s.FetchCatalog(context.Background(), "old") }()

	require.Eventually(t, func() bool {
		f.mu.Lock()
		defer f.mu.Unlock()
		return len(f.calls) == 1
	}, 2*time.Second, 5*time.Millisecond)
	assert.True(t, s.Snapshot().Fetching)

	require.NoError(t, s.FetchCatalog(context.Background(), "new"))
	assert.True(t, s.Snapshot().Fetching, "older fetch still in flight")

	close(gate)
	err := <-oldErr
	assert.True(t, errors.Is(err, ErrStale))

	snap := s.Snapshot()
	assert.Equal(t, []int{200}, movieIDs(snap.Catalog))
	assert.Equal(t, []int{200}, movieIDs(snap.Filtered))
	assert.Equal(t, "new", snap.FetchQuery)
	assert.False(t, snap.Fetching)
}

func TestStore_OlderFetchAppliesWhenNewerStillPending(t *testing.T) {
	firstGate := make(chan struct{})
	secondGate := make(chan struct{})
	f := &fakeFetcher{
		results: map[string]fetchResult{
			"first":  {movies: []tmdb.Movie{{ID: 1, Title: "First"}}},
			"second": {movies: []tmdb.Movie{{ID: 2, Title: "Second"}}},
		},
		gates: map[string]chan struct{}{"first": firstGate, "second": secondGate},
	}
	s := NewStore(f, nil)

	firstErr := make(chan error, 1)
	go func() { firstErr <- s.FetchCatalog(context.Background(), "first") }()
	require.Eventually(t, func() bool {
		f.mu.Lock()
		defer f.mu.Unlock()
		return len(f.calls) == 1
	}, 2*time.Second, 5*time.Millisecond)

	secondErr := make(chan error, 1)
	go func() { secondErr <- s.FetchCatalog(context.Background(), "second") }()
	require.Eventually(t, func() bool {
		f.mu.Lock()
		defer f.mu.Unlock()
		return len(f.calls) == 2
	}, 2*time.Second, 5*time.Millisecond)

	// Nothing newer has landed yet, so the older result is shown.
	close(firstGate)
	require.NoError(t, <-firstErr)
	assert.Equal(t, []int{1}, movieIDs(s.Snapshot().Catalog))

	close(secondGate)
	require.NoError(t, <-secondErr)
	assert.Equal(t, []int{2}, movieIDs(s.Snapshot().Catalog))
}

func TestStore_SubscribeDeliversLatest(t *testing.T) {
	f := &fakeFetcher{results: map[string]fetchResult{"marvel": {movies: marvel()}}}
	s := NewStore(f, nil)

	ch, cancel := s.Subscribe()
	initial := <-ch
	assert.False(t, initial.HasCatalog)

	require.NoError(t, s.FetchCatalog(context.Background(), "marvel"))
	s.SetQuery("iron")
	s.SetQuery("iron f")

	// Only the newest snapshot is buffered.
	latest := <-ch
	assert.Equal(t, "iron f", latest.Query)
	assert.Equal(t, []int{3}, movieIDs(latest.Filtered))
	select {
	case extra := <-ch:
		t.Fatalf("unexpected extra snapshot: %+v", extra)
	default:
	}

	cancel()
	cancel()
	_, open := <-ch
	assert.False(t, open)

	// Publishing after unsubscribe must not panic.
	s.SetQuery("")
}

func TestStore_NilFetcher(t *testing.T) {
	s := NewStore(nil, nil)
	assert.Error(t, s.FetchCatalog(context.Background(), "x"))
}
