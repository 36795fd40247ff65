package main

import (
	"context"

	"github.com/spf13/cobra"

	"mindcanvas/internal/config"
	"mindcanvas/internal/data"
	"mindcanvas/internal/event"
	"mindcanvas/internal/logging"
	"mindcanvas/internal/storage"
)

var (
	// configFlag is the --config flag value; empty means the default location.
	configFlag string

	// version is stamped by the build.
	version = "dev"
)

var rootCmd = &cobra.Command{
	Use:   "mindcanvas",
	Short: "Canvas-style mindmap editor",
	Long: `Mindcanvas edits mindmaps as cards on a large canvas: nodes carry titles,
descriptions, emoji and colors, and children are laid out in columns to the
right of their parents. Running it without a subcommand opens the interactive
shell; the other commands operate on the collection directly.`,
	Version:      version,
	SilenceUsage: true,
	RunE:         runShell,
}

func init() {
	rootCmd.SetVersionTemplate("mindcanvas version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "",
		"config file (default: <user config dir>/mindcanvas/config.toml)")
}

// app bundles the components every command boots: configuration, logger,
// store and the data manager. Close releases them in reverse order.
type app struct {
	cfg     *config.Config
	logger  logging.Logger
	store   storage.Store
	mgr     *data.Manager
	watcher *storage.Watcher
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(configFlag)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(logging.Options{Level: cfg.Log.Level, File: cfg.Log.File})
	if err != nil {
		return nil, err
	}

	store, err := storage.NewStore(cfg.Storage, logger)
	if err != nil {
		_ = logger.Shutdown()
		return nil, err
	}

	mgr, err := data.NewManager(store, event.NewManager(logger), logger)
	if err != nil {
		_ = store.Close()
		_ = logger.Shutdown()
		return nil, err
	}
	if err := mgr.Load(ctx); err != nil {
		_ = store.Close()
		_ = logger.Shutdown()
		return nil, err
	}

	return &app{cfg: cfg, logger: logger, store: store, mgr: mgr}, nil
}

// startWatcher reloads the collection when the file driver's backing file
// changes on disk. Other drivers, and watch=false, are a no-op.
func (a *app) startWatcher(ctx context.Context) error {
	if a.cfg.Storage.Driver != storage.DriverFile || !a.cfg.Storage.Watch {
		return nil
	}

	w, err := storage.NewWatcher(a.cfg.Storage.Path, a.logger)
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		return err
	}
	a.watcher = w

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-w.Changes:
				if !ok {
					return
				}
				if err := a.mgr.Reload(ctx); err != nil {
					a.logger.Warn("reload after file change failed", "error", err)
				}
			}
		}
	}()
	return nil
}

func (a *app) Close() {
	if a.watcher != nil {
		a.watcher.Stop()
	}
	if err := a.store.Close(); err != nil {
		a.logger.Error("failed to close storage", "error", err)
	}
	_ = a.logger.Shutdown()
}
