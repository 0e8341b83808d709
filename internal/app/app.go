package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/five82/shelf/internal/auth"
	"github.com/five82/shelf/internal/config"
	"github.com/five82/shelf/internal/fakestore"
	"github.com/five82/shelf/internal/kv"
	"github.com/five82/shelf/internal/logging"
	"github.com/five82/shelf/internal/prefs"
	"github.com/five82/shelf/internal/ui"
)

// Options configure the shelf application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/shelf/prefs.toml
	StartPath  string // initial route; empty opens the products list
}

// Run boots the shelf console until the user quits or the context is
// cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, logFile, err := logging.OpenFile(cfg.LogPath, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer func() { _ = logFile.Close() }()
	log.Info("shelf starting",
		slog.String("api_url", cfg.APIURL),
		slog.String("store_backend", cfg.StoreBackend))

	store, err := kv.Open(ctx, cfg.StoreOptions())
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() { _ = store.Close() }()
	if f, ok := store.(*kv.File); ok {
		log.Info("store opened", slog.String("path", f.Path()))
	}

	client, err := fakestore.NewClient(cfg.APIURL, fakestore.Options{
		Timeout:           cfg.RequestTimeout,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Logger:            log.With(slog.String("component", "fakestore")),
	})
	if err != nil {
		return fmt.Errorf("init catalog client: %w", err)
	}

	hasher := auth.NewHasher(0)
	session, err := NewSession(ctx, store, client, hasher, log)
	if err != nil {
		return err
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}
	userPrefs, err := prefs.Load(prefsPath)
	if err != nil {
		log.Warn("preferences ignored, using defaults", logging.Err(err))
	}

	err = ui.Run(ui.Options{
		Context:       ctx,
		Products:      session.Products,
		Users:         session.Users,
		Gate:          session.Gate,
		Hasher:        hasher,
		Alert:         session.Alert,
		PageSize:      cfg.PageSize,
		AlertDuration: cfg.AlertDuration,
		LogPath:       cfg.LogPath,
		Prefs:         userPrefs,
		PrefsPath:     prefsPath,
		StartPath:     opts.StartPath,
		Logger:        log,
	})
	switch {
	case err == nil:
	case errors.Is(err, kv.ErrStorage):
		log.Error("session ended by storage failure", logging.Err(err))
		return fmt.Errorf("local storage: %w", err)
	case ctx.Err() != nil:
		log.Info("interrupted", logging.Err(err))
	default:
		return fmt.Errorf("run ui: %w", err)
	}
	log.Info("shelf stopped")
	return nil
}
