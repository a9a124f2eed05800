package config

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/five82/marquee/internal/tmdb"
)

// Config captures everything marquee reads at startup.
type Config struct {
	APIBase        string
	APIKey         string
	ImageBase      string
	ImageKind      tmdb.ImageKind
	Query          string
	RequestTimeout time.Duration
	ImageTimeout   time.Duration
	FilterDebounce time.Duration
	ThumbWidth     int // poster width in terminal cells
	ThumbHeight    int // poster height in terminal cells
	LogFile        string
	LogLevel       string
	Theme          string
}

// APIKeyEnv overrides api_key from the config file when set.
const APIKeyEnv = "TMDB_API_KEY"

const (
	defaultConfigPath     = "~/.config/marquee/config.toml"
	defaultAPIBase        = "https://api.themoviedb.org"
	defaultQuery          = "marvel"
	defaultRequestTimeout = 10 * time.Second
	defaultImageTimeout   = 20 * time.Second
	defaultFilterDebounce = 75 * time.Millisecond
	defaultThumbWidth     = 24
	defaultThumbHeight    = 18
	defaultLogFile        = "~/.local/state/marquee/marquee.log"
	defaultLogLevel       = "info"
	defaultTheme          = "Dracula"
)

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		APIBase:        defaultAPIBase,
		ImageBase:      tmdb.DefaultImageBase,
		ImageKind:      tmdb.ImagePoster,
		Query:          defaultQuery,
		RequestTimeout: defaultRequestTimeout,
		ImageTimeout:   defaultImageTimeout,
		FilterDebounce: defaultFilterDebounce,
		ThumbWidth:     defaultThumbWidth,
		ThumbHeight:    defaultThumbHeight,
		LogFile:        mustExpand(defaultLogFile),
		LogLevel:       defaultLogLevel,
		Theme:          defaultTheme,
	}
}

type rawConfig struct {
	APIBase        string `toml:"api_base"`
	APIKey         string `toml:"api_key"`
	ImageBase      string `toml:"image_base"`
	ImageKind      string `toml:"image_kind"`
	Query          string `toml:"query"`
	RequestTimeout string `toml:"request_timeout"`
	ImageTimeout   string `toml:"image_timeout"`
	FilterDebounce string `toml:"filter_debounce"`
	ThumbWidth     int    `toml:"thumb_width"`
	ThumbHeight    int    `toml:"thumb_height"`
	LogFile        string `toml:"log_file"`
	LogLevel       string `toml:"log_level"`
	Theme          string `toml:"theme"`
}

// Load locates and parses the marquee config, falling back to defaults when
// missing. A .env file in the working directory is loaded first so
// TMDB_API_KEY can live there.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			applyEnv(&cfg)
			return cfg, nil
		}
		return Config{}, errors.Wrap(err, "open config")
	}
	defer func() { _ = file.Close() }()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, errors.Wrap(err, "read config")
	}

	var raw rawConfig
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, errors.Wrap(err, "parse config")
	}
	if err := cfg.merge(raw); err != nil {
		return Config{}, err
	}
	applyEnv(&cfg)
	return cfg, nil
}

func (c *Config) merge(raw rawConfig) error {
	setString(&c.APIBase, raw.APIBase)
	setString(&c.APIKey, raw.APIKey)
	setString(&c.ImageBase, raw.ImageBase)
	setString(&c.Query, raw.Query)
	setString(&c.LogLevel, raw.LogLevel)
	setString(&c.Theme, raw.Theme)
	if kind := strings.TrimSpace(raw.ImageKind); kind != "" {
		c.ImageKind = tmdb.ParseImageKind(kind)
	}
	if logFile := strings.TrimSpace(raw.LogFile); logFile != "" {
		c.LogFile = mustExpand(logFile)
	}
	if raw.ThumbWidth > 0 {
		c.ThumbWidth = raw.ThumbWidth
	}
	if raw.ThumbHeight > 0 {
		c.ThumbHeight = raw.ThumbHeight
	}

	durations := []struct {
		key   string
		value string
		dest  *time.Duration
	}{
		{"request_timeout", raw.RequestTimeout, &c.RequestTimeout},
		{"image_timeout", raw.ImageTimeout, &c.ImageTimeout},
		{"filter_debounce", raw.FilterDebounce, &c.FilterDebounce},
	}
	for _, d := range durations {
		value := strings.TrimSpace(d.value)
		if value == "" {
			continue
		}
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return errors.Wrapf(err, "parse %s", d.key)
		}
		if parsed < 0 {
			return errors.Errorf("%s must not be negative", d.key)
		}
		*d.dest = parsed
	}
	return nil
}

func applyEnv(c *Config) {
	if key := strings.TrimSpace(os.Getenv(APIKeyEnv)); key != "" {
		c.APIKey = key
	}
}

func setString(dest *string, value string) {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		*dest = trimmed
	}
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", errors.New("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", errors.Wrap(err, "resolve home dir")
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
