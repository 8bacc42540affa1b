package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/vango-dev/depot/pkg/persist"
)

func serveCmd(configPath *string) *cobra.Command {
	var (
		port        int
		host        string
		definitions string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the stores with the inspector",
		Long: `Build every declared store and serve the inspector.

The inspector lists stores, accepts patches, resets and action calls,
and streams store events over a websocket. State is restored from and
saved to the configured persistence backend.

Examples:
  depot serve
  depot serve --port=8080
  depot serve --definitions=stores/cart.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Devtools.Port = port
			}
			if host != "" {
				cfg.Devtools.Host = host
			}
			if definitions != "" {
				cfg.Definitions = definitions
			}
			cfg.Devtools.Enabled = true

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			rt, err := newEngine(ctx, cfg, newLogger(cfg, cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			defer rt.Close()

			w := cmd.OutOrStdout()
			printBanner(w)
			success(w, "Built %d stores", len(rt.defs))
			info(w, "Inspector: http://%s", cfg.DevtoolsAddress())
			if rt.registry != nil {
				info(w, "Metrics:   http://%s%s", cfg.DevtoolsAddress(), cfg.Metrics.Path)
			}

			r := chi.NewRouter()
			r.Use(middleware.RequestID)
			r.Use(middleware.Recoverer)
			if rt.registry != nil {
				r.Handle(cfg.Metrics.Path, promhttp.HandlerFor(rt.registry, promhttp.HandlerOpts{}))
			}
			r.Mount("/", rt.inspector)

			srv := &http.Server{
				Addr:              cfg.DevtoolsAddress(),
				Handler:           r,
				ReadHeaderTimeout: 10 * time.Second,
			}
			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
			case <-ctx.Done():
				info(w, "Shutting down...")
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				warn(w, "shutdown: %v", err)
			}
			if rt.backend != nil {
				if err := persist.Persist(shutdownCtx, rt.container, rt.backend, cfg.Persist.Key); err != nil {
					warn(w, "final snapshot: %v", err)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to run on (default from depot.json)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from depot.json)")
	cmd.Flags().StringVarP(&definitions, "definitions", "d", "", "Store definition file (default from depot.json)")

	return cmd
}
