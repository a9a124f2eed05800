package tmdb

import (
	"encoding/json"
	"net/url"
	"strings"

	"github.com/go-faster/errors"
)

// DefaultImageBase is the TMDb image host path used for w500 renditions.
const DefaultImageBase = "https://image.tmdb.org/t/p/w500"

// ImageKind selects which artwork path an image URL is derived from.
type ImageKind int

const (
	ImagePoster ImageKind = iota
	ImageBackdrop
)

func (k ImageKind) String() string {
	switch k {
	case ImageBackdrop:
		return "backdrop"
	default:
		return "poster"
	}
}

// ParseImageKind maps a config value onto an ImageKind. Unknown values fall
// back to ImagePoster.
func ParseImageKind(value string) ImageKind {
	if strings.EqualFold(strings.TrimSpace(value), "backdrop") {
		return ImageBackdrop
	}
	return ImagePoster
}

// Movie is a single decoded search result. Values are immutable once decoded.
type Movie struct {
	ID           int
	Title        string
	Overview     string
	PosterPath   *string
	BackdropPath *string
}

// ImageURL derives the artwork URL for kind by joining base with the
// corresponding path. It reports false when the path is absent or the
// result is not an absolute URL.
func (m Movie) ImageURL(base string, kind ImageKind) (string, bool) {
	path := m.PosterPath
	if kind == ImageBackdrop {
		path = m.BackdropPath
	}
	if path == nil {
		return "", false
	}
	p := strings.TrimSpace(*path)
	if p == "" || !strings.HasPrefix(p, "/") {
		return "", false
	}
	if strings.TrimSpace(base) == "" {
		base = DefaultImageBase
	}
	raw := strings.TrimRight(base, "/") + p
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return "", false
	}
	return u.String(), true
}

// SearchResponse mirrors the payload returned by /3/search/movie.
type SearchResponse struct {
	Page         int     `json:"page"`
	Results      []Movie `json:"results"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
}

// UnmarshalJSON rejects payloads without a results array.
func (r *SearchResponse) UnmarshalJSON(data []byte) error {
	var raw struct {
		Page         int              `json:"page"`
		Results      *json.RawMessage `json:"results"`
		TotalPages   int              `json:"total_pages"`
		TotalResults int              `json:"total_results"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Results == nil {
		return errors.New("missing field \"results\"")
	}
	var movies []Movie
	if err := json.Unmarshal(*raw.Results, &movies); err != nil {
		return err
	}
	r.Page = raw.Page
	r.Results = movies
	r.TotalPages = raw.TotalPages
	r.TotalResults = raw.TotalResults
	return nil
}

// UnmarshalJSON decodes a movie object, requiring id, title and overview.
func (m *Movie) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID           *int    `json:"id"`
		Title        *string `json:"title"`
		Overview     *string `json:"overview"`
		PosterPath   *string `json:"poster_path"`
		BackdropPath *string `json:"backdrop_path"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch {
	case raw.ID == nil:
		return errors.New("missing field \"id\"")
	case raw.Title == nil:
		return errors.New("missing field \"title\"")
	case raw.Overview == nil:
		return errors.New("missing field \"overview\"")
	}
	*m = Movie{
		ID:           *raw.ID,
		Title:        *raw.Title,
		Overview:     *raw.Overview,
		PosterPath:   raw.PosterPath,
		BackdropPath: raw.BackdropPath,
	}
	return nil
}
