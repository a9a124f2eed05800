package app

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"

	"github.com/five82/marquee/internal/artwork"
	"github.com/five82/marquee/internal/config"
	"github.com/five82/marquee/internal/httpx"
	"github.com/five82/marquee/internal/logging"
	"github.com/five82/marquee/internal/state"
	"github.com/five82/marquee/internal/tmdb"
	"github.com/five82/marquee/internal/ui"
)

// Options configure the marquee application.
type Options struct {
	ConfigPath string
	Query      string // overrides the configured startup query
	LogPath    string // overrides the configured log file
}

// Run boots the marquee TUI until the user quits or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return errors.Wrap(err, "load config")
	}
	cfg = applyOptions(cfg, opts)

	log, closer, err := logging.Setup(logging.Options{Path: cfg.LogFile, Level: cfg.LogLevel})
	if err != nil {
		return errors.Wrap(err, "init logging")
	}
	defer func() { _ = closer.Close() }()

	if cfg.APIKey == "" {
		log.Warnf("no API key configured; set api_key or %s", config.APIKeyEnv)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	feed := ui.NewPosterFeed(ctx)
	svc, err := newServices(ctx, cfg, log, feed.Notify)
	if err != nil {
		return err
	}
	defer svc.pool.Close()

	log.WithFields(logrus.Fields{
		"api_base":   cfg.APIBase,
		"image_kind": cfg.ImageKind.String(),
		"query":      cfg.Query,
	}).Info("marquee starting")

	err = ui.Run(ui.Options{
		Context:     ctx,
		Store:       svc.store,
		Pool:        svc.pool,
		Posters:     feed,
		FetchQuery:  cfg.Query,
		Debounce:    cfg.FilterDebounce,
		ThumbWidth:  cfg.ThumbWidth,
		ThumbHeight: cfg.ThumbHeight,
		LogFile:     cfg.LogFile,
		ThemeName:   cfg.Theme,
	})
	if err != nil {
		log.WithError(err).Error("ui exited with error")
		return errors.Wrap(err, "run ui")
	}
	log.Info("marquee stopped")
	return nil
}

// services is the data pipeline behind the UI.
type services struct {
	store *state.Store
	pool  *artwork.Pool
}

func newServices(ctx context.Context, cfg config.Config, log logrus.FieldLogger, onSettle func(int, artwork.State)) (*services, error) {
	client, err := tmdb.NewClient(cfg.APIBase, cfg.APIKey, httpx.NewAPIClient(cfg.RequestTimeout))
	if err != nil {
		return nil, errors.Wrap(err, "init tmdb client")
	}

	fetcher := artwork.NewFetcher(artwork.FetcherOptions{
		Client: httpx.NewImageClient(cfg.ImageTimeout),
		// Two pixel rows per terminal cell.
		MaxWidth:  cfg.ThumbWidth,
		MaxHeight: cfg.ThumbHeight * 2,
		Logger:    log.WithField("component", "artwork"),
	})

	return &services{
		store: state.NewStore(client, log.WithField("component", "catalog")),
		pool: artwork.NewPool(ctx, fetcher, artwork.PoolOptions{
			ImageBase: cfg.ImageBase,
			Kind:      cfg.ImageKind,
			OnSettle:  onSettle,
		}),
	}, nil
}

func applyOptions(cfg config.Config, opts Options) config.Config {
	if q := strings.TrimSpace(opts.Query); q != "" {
		cfg.Query = q
	}
	if p := strings.TrimSpace(opts.LogPath); p != "" {
		cfg.LogFile = p
	}
	return cfg
}
