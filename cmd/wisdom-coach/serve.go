package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/PabloGalante/wisdom-coach/internal/bootstrap"
	"github.com/PabloGalante/wisdom-coach/internal/observability"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			app, err := bootstrap.Build(ctx, cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			log := observability.Logger()
			if app.TriggerFile != nil {
				if err := app.TriggerFile.Watch(ctx); err != nil {
					log.Warn("trigger config watch disabled", "error", err)
				}
			}

			srv := &http.Server{
				Addr:              ":" + cfg.Port,
				Handler:           app.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				log.Info("wisdom coach API listening", "port", cfg.Port, "mode", cfg.Mode)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			log.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().String("port", "", "Listen port (overrides WISDOM_PORT).")
	return cmd
}
