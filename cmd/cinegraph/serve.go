package main

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

	"github.com/aretw0/cinegraph/internal/cli"
	"github.com/aretw0/cinegraph/internal/logging"
	httpAdapter "github.com/aretw0/cinegraph/pkg/adapters/http"
	"github.com/aretw0/cinegraph/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Exposes threads over a JSON API. Reviews never block a request: the turn
suspends and the client answers with POST /threads/{thread}/resume.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, dir := loadConfig(cmd)
		debug, _ := cmd.Flags().GetBool("debug")
		if cmd.Flags().Changed("port") {
			cfg.HTTP.Port, _ = cmd.Flags().GetString("port")
		}

		level := logging.ParseLevel(os.Getenv("CINEGRAPH_LOG_LEVEL"))
		if debug {
			level = slog.LevelDebug
		}
		logger := logging.New(level)

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics, err := observability.NewMetrics(reg)
		if err != nil {
			fmt.Printf("Error registering metrics: %v\n", err)
			os.Exit(1)
		}
		streams := httpAdapter.NewStreamManager(logger)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		engine, backend, err := cli.NewEngine(ctx, cfg, cli.EngineOptions{
			Dir:    dir,
			Debug:  debug,
			Logger: logger,
			Hooks:  metrics.Hooks().Merge(streams.Hooks()),
		})
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		defer backend.Close()

		srv := &http.Server{
			Addr: ":" + cfg.HTTP.Port,
			Handler: httpAdapter.NewHandler(engine,
				httpAdapter.WithLogger(logger),
				httpAdapter.WithMetrics(reg),
				httpAdapter.WithStreams(streams),
			),
			ReadHeaderTimeout: 10 * time.Second,
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			logger.Info("Starting cinegraph server", "addr", srv.Addr, "store", backend.Kind)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			logger.Info("Shutting down server")

			// Give outstanding requests a deadline for completion.
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("Graceful shutdown did not complete", "err", err)
				return srv.Close()
			}
			return nil
		})

		if err := g.Wait(); err != nil {
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("cinegraph server stopped gracefully")
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on (overrides http.port)")
}
