package app

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/five82/marquee/internal/artwork"
	"github.com/five82/marquee/internal/config"
)

func posterPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 30, B: 30, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestServices_FetchFilterAndLoadArtwork(t *testing.T) {
	poster := posterPNG(t, 40, 60)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/3/search/movie":
			if got := r.URL.Query().Get("api_key"); got != "test-key" {
				t.Errorf("api_key = %q, want test-key", got)
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `{"page":1,"results":[
				{"id":1,"title":"Iron Man","overview":"a","poster_path":"/iron.png"},
				{"id":2,"title":"Thor","overview":"b","poster_path":null},
				{"id":3,"title":"Iron Fist","overview":"c","poster_path":"/gone.png"}
			]}`)
		case "/img/iron.png":
			_, _ = w.Write(poster)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	cfg := config.Default()
	cfg.APIBase = srv.URL
	cfg.APIKey = "test-key"
	cfg.ImageBase = srv.URL + "/img"
	cfg.ThumbWidth = 10
	cfg.ThumbHeight = 5

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	settledIDs := make(chan int, 4)
	svc, err := newServices(ctx, cfg, quietLogger(), func(id int, _ artwork.State) { settledIDs <- id })
	if err != nil {
		t.Fatalf("newServices: %v", err)
	}
	t.Cleanup(svc.pool.Close)

	if err := svc.store.FetchCatalog(ctx, "marvel"); err != nil {
		t.Fatalf("FetchCatalog: %v", err)
	}
	snap := svc.store.Snapshot()
	if len(snap.Catalog) != 3 {
		t.Fatalf("catalog len = %d, want 3", len(snap.Catalog))
	}

	svc.store.SetQuery("IRON")
	snap = svc.store.Snapshot()
	if len(snap.Filtered) != 2 || snap.Filtered[0].ID != 1 || snap.Filtered[1].ID != 3 {
		t.Fatalf("filtered = %+v, want ids 1 and 3", snap.Filtered)
	}

	loaders := map[int]*artwork.Loader{}
	for _, m := range snap.Catalog {
		loaders[m.ID] = svc.pool.Acquire(m)
	}
	for _, id := range []int{1, 3} {
		select {
		case <-loaders[id].Done():
		case <-time.After(5 * time.Second):
			t.Fatalf("loader %d did not settle", id)
		}
	}

	iron := loaders[1].State()
	if iron.Phase != artwork.PhaseLoaded {
		t.Fatalf("iron phase = %v (%v), want loaded", iron.Phase, iron.Err)
	}
	// 40x60 fits the 10x10 pixel box as 7x10.
	if b := iron.Image.Bounds(); b.Dx() > 10 || b.Dy() != 10 {
		t.Fatalf("iron bounds = %v, want height 10 within width 10", b)
	}

	if !loaders[2].State().Missing() {
		t.Fatalf("thor state = %+v, want missing", loaders[2].State())
	}
	if st := loaders[3].State(); st.Phase != artwork.PhaseFailed || st.Missing() {
		t.Fatalf("fist state = %+v, want fetch failure", st)
	}

	got := map[int]bool{}
	for i := 0; i < 2; i++ {
		select {
		case id := <-settledIDs:
			got[id] = true
		case <-time.After(5 * time.Second):
			t.Fatal("missing settle notification")
		}
	}
	if !got[1] || !got[3] {
		t.Fatalf("settled ids = %v, want 1 and 3", got)
	}
}

func TestNewServices_RejectsBadAPIBase(t *testing.T) {
	cfg := config.Default()
	cfg.APIBase = "http://"
	if _, err := newServices(context.Background(), cfg, quietLogger(), nil); err == nil {
		t.Fatal("expected error for API base without host")
	}
}

func TestApplyOptions(t *testing.T) {
	cfg := config.Default()

	got := applyOptions(cfg, Options{})
	if got.Query != cfg.Query || got.LogFile != cfg.LogFile {
		t.Fatalf("empty options changed config: %+v", got)
	}

	got = applyOptions(cfg, Options{Query: "  dune ", LogPath: "/tmp/m.log"})
	if got.Query != "dune" {
		t.Fatalf("Query = %q, want dune", got.Query)
	}
	if got.LogFile != "/tmp/m.log" {
		t.Fatalf("LogFile = %q, want /tmp/m.log", got.LogFile)
	}
}
