// Package state holds the catalog view model shared by fetches and the UI.
//
// # Overview
//
// Store owns two sequences: the catalog (the most recent successful fetch)
// and the filtered view derived from it by the active query. Neither is ever
// edited in place; each successful fetch replaces the catalog wholesale and
// each SetQuery recomputes the filtered view with catalog.Filter.
//
// # Update Semantics
//
//	// Successful fetch: replace and reset the filter
//	store.FetchCatalog(ctx, "marvel")
//	→ snapshot.Catalog  = result
//	→ snapshot.Filtered = result
//	→ snapshot.Query    = ""
//	→ snapshot.LastError = nil
//
//	// Failed fetch: keep old data, record the error
//	store.FetchCatalog(ctx, "marvel")
//	→ snapshot.Catalog  = <unchanged>
//	→ snapshot.Filtered = <unchanged>
//	→ snapshot.LastError = err
//
//	// Query edit: synchronous, no I/O
//	store.SetQuery("iron")
//	→ snapshot.Filtered = catalog.Filter(snapshot.Catalog, "iron")
//
// # Concurrency Model
//
// A mutex serializes every mutation; the network call in FetchCatalog runs
// outside it. Each fetch takes a sequence number, and a result is applied
// only if no newer fetch has been applied first. Older results that lose
// the race are discarded and reported as ErrStale.
//
// # Observation
//
// Subscribe returns a channel with a one-element buffer that always holds
// the newest snapshot. Writers never block on slow readers: an unread
// snapshot is replaced by the next one. Because publication happens under
// the store mutex, every subscriber sees snapshots in mutation order.
//
// The UI layer forwards these snapshots into its own event loop, so all
// rendering state is touched from a single goroutine.
//
// Snapshots are copies; mutating a returned slice does not affect the
// store.
package state
