package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/israelbalog04/acer-music-sub000/config"
	"github.com/israelbalog04/acer-music-sub000/observe"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Connect to the database and serve health and diagnostics endpoints",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cfg, err := config.FromEnv(ctx)
		if err != nil {
			return err
		}
		rt, err := newRuntime(ctx, cfg)
		if err != nil {
			return err
		}
		return serve(ctx, rt)
	},
}

func serve(ctx context.Context, rt *runtime) (err error) {
	logger := rt.obs.Logger()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		err = errors.Join(err, rt.close(shutdownCtx))
	}()

	if err := rt.pool.Connect(ctx); err != nil {
		return fmt.Errorf("connect: %w", err)
	}

	srv := &http.Server{
		Addr:              rt.cfg.DiagAddr,
		Handler:           rt.mux(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "diagnostics listening", observe.Field{Key: "addr", Value: srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("diagnostics server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info(ctx, "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
