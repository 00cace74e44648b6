package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/wonny/muhtasib/backend/internal/api"
	"github.com/wonny/muhtasib/backend/internal/api/handlers"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

Endpoints:
  GET  /health                          - Health check
  GET  /info                            - Service info
  GET  /sessions                        - All sessions, newest first
  GET  /sessions/{id}/info              - Session metadata
  GET  /sessions/{id}/more              - Session metadata + performance
  GET  /sessions/{id}/equity/{start}    - Equity points from offset
  GET  /sessions/{id}/orders/{start}    - Orders from offset

Example:
  go run ./cmd/muhtasib api
  go run ./cmd/muhtasib api --port 9000`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (default: PORT or 8888)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if apiPort != "" {
		a.cfg.Port = apiPort
	}

	sessionHandler := handlers.NewSessionHandler(a.loader, a.engine, a.log)
	systemHandler := handlers.NewSystemHandler(a.db, a.cfg.Env)
	limiter := api.NewRateLimiter(a.cfg.API, a.redis, a.log)

	router := api.NewRouter(sessionHandler, systemHandler, limiter, a.cfg.API, a.log)
	server := api.New(a.cfg, a.log, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(server.Start)
	g.Go(func() error {
		<-gctx.Done()

		// Graceful shutdown with timeout
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", a.cfg.Port)
	fmt.Println("Press Ctrl+C to stop")

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		a.log.Errorf("API server stopped: %v", err)
		return fmt.Errorf("api server: %w", err)
	}

	a.log.Info("Server stopped")
	return nil
}
