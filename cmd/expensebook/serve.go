package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"expensebook/internal/cli"
	apphttp "expensebook/internal/http"
	"expensebook/internal/log"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the web UI",
		Long:  `Serve the expense tracker on BIND_ADDR:PORT until interrupted. Pending changes are flushed on shutdown.`,
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := cli.SignalContext(cmd.Context(), logger)
	defer stop()

	st, cleanup, err := cli.OpenStore(ctx, logger, cfg)
	if err != nil {
		logger.ErrorTypeContext(ctx, "Failed to open expense store", log.ErrorTypeDatabase, err,
			log.FieldBackend, cfg.DataBackend)
		return err
	}
	defer func() {
		if err := cleanup(); err != nil {
			logger.Error("Backend cleanup failed", log.FieldError, err)
		}
	}()

	srv, err := apphttp.NewServer(apphttp.Options{
		Addr:               cfg.Addr(),
		Currency:           cfg.Currency,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		TrustedProxies:     cfg.TrustedProxies,
		Logger:             logger,
	}, st)
	if err != nil {
		return fmt.Errorf("build HTTP server: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting expensebook server", log.FieldOperation, log.OpStartup,
			"addr", cfg.Addr(), log.FieldBackend, cfg.DataBackend, "currency", cfg.Currency, "version", version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server stopped with error", log.FieldError, err)
		return err
	}
	logger.Info("Server stopped gracefully")
	return nil
}
