// Package config loads marquee's TOML configuration.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/marquee/config.toml (default)
//  3. If the config file doesn't exist, fall back to defaults
//  4. If the file exists but fields are missing or blank, use defaults
//
// Before the file is read, a .env file in the working directory is loaded
// into the process environment. TMDB_API_KEY, from either source, wins over
// api_key in the file.
//
// # Default Values
//
//   - API endpoint: https://api.themoviedb.org
//   - Image base: https://image.tmdb.org/t/p/w500
//   - Image kind: poster
//   - Startup query: marvel
//   - Request timeout: 10s, image timeout: 20s
//   - Filter debounce: 75ms
//   - Thumbnail: 24x18 cells
//   - Log file: ~/.local/state/marquee/marquee.log at level info
//
// # TOML Format
//
//	api_key = "..."
//	query = "star wars"
//	image_kind = "backdrop"
//	request_timeout = "5s"
//	filter_debounce = "100ms"
//	log_file = "~/marquee.log"
//	log_level = "debug"
//
// Durations use time.ParseDuration syntax. Negative durations are rejected.
// Tilde expansion is applied to the config path and log_file.
//
// # Error Handling
//
// Load returns errors for path expansion failures, read errors other than
// os.ErrNotExist, TOML syntax errors and malformed durations. A missing
// config file is not an error.
package config
