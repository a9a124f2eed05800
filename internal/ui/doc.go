// Package ui implements marquee's terminal interface with Bubble Tea.
//
// # Layout
//
//	┌ header: query, title counts, fetch status or last error ┐
//	│ / filter input                                          │
//	│ poster grid (or diagnostics pane)                       │
//	│ selected title and overview                             │
//	└ command bar                                             ┘
//
// # Data Flow
//
// The UI never mutates catalog data directly. It triggers work on
// state.Store (FetchCatalog at startup and on refresh, SetQuery after the
// filter input settles) and renders whatever snapshot the store publishes.
// Snapshots arrive through Store.Subscribe and are re-armed as a command
// after each delivery, so all model state is touched from the Bubble Tea
// goroutine only.
//
// Filter edits are debounced: every keystroke bumps a generation counter
// and arms a tea.Tick; only the tick carrying the current generation calls
// SetQuery.
//
// # Artwork
//
// After every snapshot, resize or cursor move the model computes the
// on-screen window of the grid, acquires a loader from artwork.Pool for each
// visible movie and retains only those ids, which cancels loads for cards
// that scrolled away or were filtered out. Loader settlements reach the
// event loop through PosterFeed. Loaded images are drawn with upper half
// block characters, two pixel rows per cell, and cached per movie until the
// size, theme or URL changes.
//
// Placeholders distinguish the three phases: a spinner while loading,
// "no artwork" when the movie has no image path, and "unavailable" in the
// danger color when a fetch or decode failed.
//
// # Keyboard
//
// See DefaultKeyMap. "/" focuses the filter; enter or esc leaves it. "L"
// toggles a diagnostics pane that tails the log file via logtail.
package ui
