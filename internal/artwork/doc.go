// Package artwork loads poster and backdrop images asynchronously.
//
// Every item gets its own Loader: a three-phase state machine that starts
// in PhaseLoading and settles exactly once in PhaseLoaded (with the decoded,
// optionally downscaled image) or PhaseFailed (with the reason). Loaders
// share nothing but the HTTP client, so a slow or failing poster never
// delays another item.
//
// An item without an image path yields a loader that is already failed
// with ErrNoImage and never touches the network; State.Missing tells the
// presentation to draw a "no image" placeholder instead of a broken one.
//
// Pool keys loaders by movie ID and closes the ones whose items are no
// longer visible (Retain), which cancels their in-flight requests.
package artwork
