package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"ideavault/internal/app"
	"ideavault/internal/engine"
	"ideavault/internal/server"
)

const shutdownTimeout = 5 * time.Second

func serveCmd() *cobra.Command {
	var addr, basePath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the IdeaVault HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(cmd.Context(), func(ctx context.Context, ws *app.Workspace) error {
				cfg := ws.Config
				if addr == "" {
					addr = cfg.Server.Addr
				}
				srvCfg := server.Config{
					Engine:     engine.New(ws.DB),
					BasePath:   basePath,
					CORSOrigin: cfg.Server.CORSOrigin,
					Auth:       server.AuthConfig{JWTSecret: cfg.Server.JWTSecret},
					Logger:     logger.With().Str("component", "server").Logger(),
				}
				if token := cfg.PlannerToken(); token != "" {
					srvCfg.Planner = ws.PlannerClient(token)
				} else {
					logger.Warn().Str("env", cfg.Planner.TokenEnv).Msg("planner token not set; /plan will fail")
				}
				if cfg.Server.JWTSecret == "" {
					logger.Warn().Msg("server.jwt_secret is empty; API accepts unauthenticated requests")
				}
				handler, err := server.New(srvCfg)
				if err != nil {
					return err
				}
				srv := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}
				logger.Info().Str("addr", addr).Str("base_path", basePath).Msg("serving IdeaVault API (OpenAPI at " + basePath + "/openapi.json)")
				return runServer(ctx, srv, logger)
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default server.addr)")
	cmd.Flags().StringVar(&basePath, "base-path", "/api", "API base path")
	return cmd
}

// runServer serves until ctx is done or the listener fails, then shuts the
// server down. Both goroutines exit in either case.
func runServer(ctx context.Context, srv *http.Server, log zerolog.Logger) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen on %s: %w", srv.Addr, err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("server shutdown failed")
			return fmt.Errorf("shutdown: %w", err)
		}
		log.Info().Msg("server stopped")
		return nil
	})
	return g.Wait()
}
