package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	mcpServer "github.com/yourusername/osrs-mcp/internal/mcp"
	"github.com/yourusername/osrs-mcp/internal/metrics"
	"github.com/yourusername/osrs-mcp/internal/tracing"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the MCP endpoint over streamable HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("port") {
			cfg.Server.Port = servePort
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return runServer(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "8080", "Port to listen on")
	rootCmd.AddCommand(serveCmd)
}

func runServer(ctx context.Context) error {
	traceCfg := tracing.DefaultConfig()
	traceCfg.ServiceVersion = Version
	traceCfg.Environment = cfg.Log.Environment
	traceCfg.Enabled = cfg.Tracing.Enabled
	traceCfg.OTLPEndpoint = cfg.Tracing.OTLPEndpoint
	traceCfg.SampleRate = cfg.Tracing.SampleRate

	shutdownTracing, err := tracing.Setup(ctx, traceCfg)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.WithField("error", err.Error()).Warn("tracing shutdown failed")
		}
	}()

	client, quests := newBackend()
	defer client.GetCache().Close()

	server := mcpServer.NewServer(mcpServer.Options{
		Client:  client,
		Quests:  quests,
		Logger:  logger,
		Version: Version,
	})

	httpServer := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      newRouter(server),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	logger.WithFields(logrus.Fields{
		"version":    Version,
		"port":       cfg.Server.Port,
		"wiki":       client.BaseURL(),
		"rate_limit": cfg.Wiki.RateLimit,
		"cache_ttl":  cfg.Wiki.CacheTTL.String(),
		"tracing":    cfg.Tracing.Enabled,
		"metrics":    cfg.Metrics.Enabled,
	}).Info("starting OSRS wiki MCP server")

	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return eris.Wrap(err, "http server")
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return eris.Wrap(err, "graceful shutdown")
	}

	logger.Info("server stopped")
	return nil
}

func newRouter(server *mcpServer.Server) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Handle("/mcp", server.Handler())

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "OK")
	})

	if cfg.Metrics.Enabled {
		r.Handle("/metrics", metrics.Handler())
	}

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprintf(w, "OSRS Wiki MCP Server v%s\n", Version)
		fmt.Fprintf(w, "MCP endpoint: /mcp\n")
		fmt.Fprintf(w, "Health check: /health\n")
		if cfg.Metrics.Enabled {
			fmt.Fprintf(w, "Metrics: /metrics\n")
		}
	})

	return r
}
