package main

import (
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/abs-insights/internal/abs"
	"github.com/sells-group/abs-insights/internal/server"
	"github.com/sells-group/abs-insights/internal/tools"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the tool-calling server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		resolver, err := buildResolver(cfg.Geo)
		if err != nil {
			return err
		}

		// Queries must not be dispatched until both subsystems are
		// ready or failed, so initialization completes before listen.
		if err := resolver.Initialize(ctx); err != nil {
			return err
		}

		client := abs.New(cfg.ABS.BaseURL,
			abs.WithUserAgent(cfg.ABS.UserAgent),
			abs.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.ABS.TimeoutSecs) * time.Second}),
			abs.WithRateLimit(cfg.ABS.RatePerSec, cfg.ABS.RateBurst),
			abs.WithMaxRetries(cfg.ABS.MaxRetries),
		)

		registry := tools.NewRegistry()
		if err := tools.RegisterGeoTools(registry, resolver); err != nil {
			return err
		}
		if err := tools.RegisterStatTools(registry, resolver, client); err != nil {
			return err
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: server.New(registry, resolver).Router(),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			_ = srv.Shutdown(ctx)
		}()

		zap.L().Info("starting tool server", zap.Int("port", port), zap.Int("tools", len(registry.List())))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
