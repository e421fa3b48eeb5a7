// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/starford/zametka/internal/apperr"
	"github.com/starford/zametka/internal/console"
	"github.com/starford/zametka/internal/mcpserver"
	"github.com/starford/zametka/internal/noteservice"
	"github.com/starford/zametka/internal/snapshot"
	"github.com/starford/zametka/internal/storage"
)

// Run starts the interactive console with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	store, err := app.openStore()
	if err != nil {
		return err
	}
	svc := noteservice.NewService(store)

	app.logger.Debug("console: starting")
	return console.New(svc, app.in, app.out, app.logger).Run(ctx)
}

// Check reads every note file and prints one line per unreadable record.
// It fails with apperr.ErrDecode if any were found.
func Check(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	store, err := app.openStore()
	if err != nil {
		return err
	}

	good, bad := 0, 0
	for n, err := range store.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			bad++
			fmt.Fprintf(app.out, "note %d: %v\n", n.ID, err)
			continue
		}
		good++
	}
	fmt.Fprintf(app.out, "%d readable, %d unreadable\n", good, bad)
	if bad > 0 {
		return fmt.Errorf("check: %d unreadable notes: %w", bad, apperr.ErrDecode)
	}
	return nil
}

// Export mirrors the store into the SQLite snapshot once.
func Export(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	store, err := app.openStore()
	if err != nil {
		return err
	}
	db, err := snapshot.Open(app.config.Snapshot.Path)
	if err != nil {
		return fmt.Errorf("init snapshot: %w", err)
	}
	defer db.Close()

	st, err := snapshot.Sync(db, store, app.logger)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	fmt.Fprintf(app.out, "%d mirrored, %d unchanged, %d removed, %d skipped\n",
		st.Upserted, st.Unchanged, st.Removed, st.Skipped)
	return nil
}

// Watch exports the store and keeps the snapshot in sync with the notes
// directory until ctx is cancelled or a shutdown signal arrives.
func Watch(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	store, err := app.openStore()
	if err != nil {
		return err
	}
	db, err := snapshot.Open(app.config.Snapshot.Path)
	if err != nil {
		return fmt.Errorf("init snapshot: %w", err)
	}
	defer db.Close()

	logger := app.logger
	if _, err := snapshot.Sync(db, store, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()
		return snapshot.Watch(gCtx, db, store, logger, nil)
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
			cancel()
		case <-gCtx.Done():
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("watch error", slog.String("error", err.Error()))
		return err
	}
	logger.Info("Watcher stopped successfully")
	return nil
}

// ServeMCP serves the note tools over stdio until the client disconnects or
// a shutdown signal arrives.
func ServeMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	store, err := app.openStore()
	if err != nil {
		return err
	}
	srv := mcpserver.New(noteservice.NewService(store))

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app.logger.Info("mcp: serving on stdio")
	if err := srv.Serve(ctx, app.in, app.out, app.logger); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("mcp: %w", err)
	}
	app.logger.Info("mcp: stopped")
	return nil
}

func newApplication(opts []Option) (*application, error) {
	app := &application{
		in:        os.Stdin,
		out:       os.Stdout,
		logOutput: os.Stderr,
	}
	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return nil, fmt.Errorf("config is required: %w", apperr.ErrConfiguration)
	}
	if err := app.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w: %w", apperr.ErrConfiguration, err)
	}

	app.logger = NewLogger(app.config.App, app.logOutput)
	slog.SetDefault(app.logger)
	app.logger.Debug("Configuration loaded",
		slog.String("storage_path", app.config.Storage.Path),
		slog.Int("digits", app.config.Storage.Digits),
		slog.String("snapshot_path", app.config.Snapshot.Path),
		slog.String("log_level", app.config.App.LogLevel.String()))

	return app, nil
}

func (a *application) openStore() (*storage.FS, error) {
	store, err := storage.NewFS(a.config.Storage.Path,
		storage.WithDigits(a.config.Storage.Digits),
		storage.WithLogger(a.logger))
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	return store, nil
}

// NewLogger builds the application logger from cfg, writing to w.
func NewLogger(cfg ApplicationConfig, w io.Writer) *slog.Logger {
	handlerOpts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.LogFormat == LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(w, handlerOpts))
}
