// Package app is marquee's composition root.
//
// # Startup
//
//	┌──────────────┐
//	│   Run()      │
//	└──────┬───────┘
//	       ├─────> config.Load()        TOML + .env + TMDB_API_KEY
//	       ├─────> logging.Setup()      logrus to the log file
//	       ├─────> tmdb.NewClient()     catalog fetcher over httpx.NewAPIClient
//	       ├─────> state.NewStore()     catalog view model
//	       ├─────> artwork.NewPool()    per-movie image loaders over httpx.NewImageClient
//	       └─────> ui.Run()             TUI (blocks)
//
// The UI issues the first FetchCatalog itself, so a slow or failing API
// never delays the first frame; the header shows fetch progress and the
// last error instead.
//
// # Lifetimes
//
// Run derives a context that is cancelled when the UI exits. The artwork
// pool and every loader hang off it, so in-flight image requests are
// aborted on shutdown. The pool is closed explicitly before the log file is
// released.
//
// # Overrides
//
// Options.Query and Options.LogPath come from command-line flags and win
// over the config file.
package app
