package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/ericfisherdev/mybitbucket/internal/adapter/driven/bitbucket"
	sqliteadapter "github.com/ericfisherdev/mybitbucket/internal/adapter/driven/sqlite"
	httphandler "github.com/ericfisherdev/mybitbucket/internal/adapter/driving/http"
	"github.com/ericfisherdev/mybitbucket/internal/application"
)

func newServeCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the REST API and record failures in the journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, opts)
		},
	}
}

func serve(ctx context.Context, opts *options) error {
	cfg := opts.cfg
	logger := opts.logger

	logger.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"bitbucket_url", cfg.Bitbucket.BaseURL,
		"token_configured", cfg.HasToken(),
	)

	// 1. Open the journal (dual reader/writer with WAL mode) and migrate.
	db, err := openJournal(ctx, cfg.DBPath, logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	// 2. Wire adapters.
	client, err := bitbucket.NewClient(bitbucket.Config{
		BaseURL: cfg.Bitbucket.BaseURL,
		Token:   cfg.Bitbucket.Token,
		Timeout: cfg.Bitbucket.Timeout,
	})
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	lookup := application.NewLookupService(client, sqliteadapter.NewFailureRepo(db), reg)
	handler := httphandler.NewServeMux(httphandler.NewHandler(lookup, db, logger), reg, logger)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.Bitbucket.Timeout + 10*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// 3. Wait for a shutdown signal or a listener failure.
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}

// openJournal opens and migrates the failure journal and logs the schema
// version it ended up on.
func openJournal(ctx context.Context, path string, logger *slog.Logger) (*sqliteadapter.DB, error) {
	db, err := sqliteadapter.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("opening journal: %w", err)
	}

	version, _, err := sqliteadapter.SchemaVersion(db.Writer)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("reading journal schema version: %w", err)
	}

	logger.Info("journal opened", "path", db.Path(), "schema_version", version)
	return db, nil
}
