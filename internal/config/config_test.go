package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/five82/marquee/internal/tmdb"
)

// isolate points HOME and the working directory at temp dirs and clears
// TMDB_API_KEY so the developer's environment cannot leak in.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(APIKeyEnv, "")
	if err := os.Unsetenv(APIKeyEnv); err != nil {
		t.Fatalf("Unsetenv: %v", err)
	}
	t.Chdir(t.TempDir())
	return home
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := isolate(t)

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIBase != defaultAPIBase {
		t.Fatalf("APIBase = %q, want %q", cfg.APIBase, defaultAPIBase)
	}
	if cfg.ImageBase != tmdb.DefaultImageBase {
		t.Fatalf("ImageBase = %q, want %q", cfg.ImageBase, tmdb.DefaultImageBase)
	}
	if cfg.ImageKind != tmdb.ImagePoster {
		t.Fatalf("ImageKind = %v, want poster", cfg.ImageKind)
	}
	if cfg.Query != defaultQuery {
		t.Fatalf("Query = %q, want %q", cfg.Query, defaultQuery)
	}
	if cfg.RequestTimeout != defaultRequestTimeout || cfg.ImageTimeout != defaultImageTimeout {
		t.Fatalf("timeouts = %v/%v, want %v/%v", cfg.RequestTimeout, cfg.ImageTimeout, defaultRequestTimeout, defaultImageTimeout)
	}
	if cfg.FilterDebounce != defaultFilterDebounce {
		t.Fatalf("FilterDebounce = %v, want %v", cfg.FilterDebounce, defaultFilterDebounce)
	}
	if cfg.APIKey != "" {
		t.Fatalf("APIKey = %q, want empty", cfg.APIKey)
	}

	wantLog := filepath.Join(home, ".local/state/marquee/marquee.log")
	if cfg.LogFile != wantLog {
		t.Fatalf("LogFile = %q, want %q", cfg.LogFile, wantLog)
	}
}

func TestLoad_ParsesAndTrimsConfig(t *testing.T) {
	home := isolate(t)

	path := writeConfig(t, `
api_base = "  http://localhost:8080  "
api_key = " secret "
image_kind = "backdrop"
query = "  star wars "
request_timeout = "3s"
image_timeout = " 1m "
filter_debounce = "120ms"
thumb_width = 30
thumb_height = 20
log_file = "  ~/logs/marquee.log  "
log_level = "debug"
theme = "Slate"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIBase != "http://localhost:8080" {
		t.Fatalf("APIBase = %q", cfg.APIBase)
	}
	if cfg.APIKey != "secret" {
		t.Fatalf("APIKey = %q, want %q", cfg.APIKey, "secret")
	}
	if cfg.ImageKind != tmdb.ImageBackdrop {
		t.Fatalf("ImageKind = %v, want backdrop", cfg.ImageKind)
	}
	if cfg.Query != "star wars" {
		t.Fatalf("Query = %q, want %q", cfg.Query, "star wars")
	}
	if cfg.RequestTimeout != 3*time.Second {
		t.Fatalf("RequestTimeout = %v, want 3s", cfg.RequestTimeout)
	}
	if cfg.ImageTimeout != time.Minute {
		t.Fatalf("ImageTimeout = %v, want 1m", cfg.ImageTimeout)
	}
	if cfg.FilterDebounce != 120*time.Millisecond {
		t.Fatalf("FilterDebounce = %v, want 120ms", cfg.FilterDebounce)
	}
	if cfg.ThumbWidth != 30 || cfg.ThumbHeight != 20 {
		t.Fatalf("thumb = %dx%d, want 30x20", cfg.ThumbWidth, cfg.ThumbHeight)
	}
	if cfg.LogFile != filepath.Join(home, "logs/marquee.log") {
		t.Fatalf("LogFile = %q", cfg.LogFile)
	}
	if cfg.LogLevel != "debug" || cfg.Theme != "Slate" {
		t.Fatalf("LogLevel/Theme = %q/%q", cfg.LogLevel, cfg.Theme)
	}
	// Unset keys keep their defaults.
	if cfg.ImageBase != tmdb.DefaultImageBase {
		t.Fatalf("ImageBase = %q, want default", cfg.ImageBase)
	}
}

func TestLoad_EnvOverridesAPIKey(t *testing.T) {
	isolate(t)
	t.Setenv(APIKeyEnv, " from-env ")

	cfg, err := Load(writeConfig(t, `api_key = "from-file"`))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIKey != "from-env" {
		t.Fatalf("APIKey = %q, want %q", cfg.APIKey, "from-env")
	}
}

func TestLoad_ReadsDotEnv(t *testing.T) {
	home := isolate(t)
	t.Cleanup(func() { _ = os.Unsetenv(APIKeyEnv) })

	if err := os.WriteFile(".env", []byte("TMDB_API_KEY=from-dotenv\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(filepath.Join(home, "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIKey != "from-dotenv" {
		t.Fatalf("APIKey = %q, want %q", cfg.APIKey, "from-dotenv")
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	isolate(t)

	cases := map[string]string{
		"request_timeout": `request_timeout = "soon"`,
		"image_timeout":   `image_timeout = "-1s"`,
		"filter_debounce": `filter_debounce = "10 parsecs"`,
	}
	for key, body := range cases {
		_, err := Load(writeConfig(t, body))
		if err == nil {
			t.Fatalf("%s: expected error", key)
		}
		if !strings.Contains(err.Error(), key) {
			t.Fatalf("%s: error %q does not name the key", key, err)
		}
	}
}

func TestLoad_InvalidTOML(t *testing.T) {
	isolate(t)

	if _, err := Load(writeConfig(t, "query = [unterminated")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := expandPath("~/a/b")
	if err != nil {
		t.Fatalf("expandPath returned error: %v", err)
	}
	if got != filepath.Join(home, "a/b") {
		t.Fatalf("expandPath = %q, want %q", got, filepath.Join(home, "a/b"))
	}

	if _, err := expandPath("   "); err == nil {
		t.Fatal("expected error for blank path")
	}

	rel, err := expandPath("relative/file")
	if err != nil {
		t.Fatalf("expandPath returned error: %v", err)
	}
	if !filepath.IsAbs(rel) {
		t.Fatalf("expandPath(relative) = %q, want absolute", rel)
	}
}
