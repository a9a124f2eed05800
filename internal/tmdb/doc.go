// Package tmdb provides an HTTP client for the TMDb movie search API.
//
// # Overview
//
// This package performs the catalog fetch: one GET against
// /3/search/movie, decoded into an ordered []Movie. The client holds no
// state across calls; every call either returns the full decoded result
// or a *FetchError and nothing else.
//
// # Architecture
//
//   - client.go: request construction, transport and decoding
//   - types.go: Movie, SearchResponse and derived image URLs
//   - errors.go: failure kinds and typed errors
//
// # Client Usage
//
//	client, err := tmdb.NewClient("https://api.themoviedb.org", apiKey, nil)
//	if err != nil {
//		return err
//	}
//	movies, err := client.FetchCatalog(ctx, "marvel")
//	if errors.Is(err, tmdb.ErrDecode) {
//		log.Printf("schema mismatch: %v", err)
//	}
//
// # Error Handling
//
// FetchCatalog reports exactly one of three kinds:
//
//   - ErrInvalidRequest: the query cannot be sent (invalid UTF-8, control
//     characters). No network call is made.
//   - ErrTransport: no usable response. Connection failures, cancelled
//     contexts and non-2xx statuses (wrapping *StatusError) all land here.
//   - ErrDecode: the body does not match the schema. A missing id, title or
//     overview on any result fails the whole response.
//
// Nothing is retried. The api_key query parameter is redacted from every
// URL that appears in an error.
//
// # Images
//
// Movie.ImageURL joins an image base such as DefaultImageBase with the
// poster or backdrop path. It is recomputed on every call and reports false
// when the path is missing or the result is not an absolute URL.
package tmdb
