// Package main provides the metadata/stream resolver daemon.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/voxdj/voxdj/internal/api/resolverapi"
	"github.com/voxdj/voxdj/internal/infra/catalog"
	"github.com/voxdj/voxdj/internal/infra/config"
	"github.com/voxdj/voxdj/internal/infra/logger"
)

var (
	app        = kingpin.New("voxdj-resolverd", "voxdj metadata and stream resolver")
	configPath = app.Flag("config", "Path to config file").Default("config/voxdj.yaml").String()
	addr       = app.Flag("addr", "Listen address").Default(":8090").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	kingpin.MustParse(app.Parse(os.Args[1:]))

	loggerConfig := logger.Config{Output: "stdout", Level: "info"}
	if *verbose {
		loggerConfig.Level = "debug"
	}
	if err := logger.Init(loggerConfig); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		zlog.Fatal().Msgf("Failed to load config: %v", err)
	}

	if err := run(cfg); err != nil {
		zlog.Error().Msgf("Resolver error: %v", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx := context.Background()

	cat, err := catalog.New(ctx, cfg.Catalog)
	if err != nil {
		return fmt.Errorf("failed to create catalog client: %w", err)
	}

	mux := http.NewServeMux()
	resolverapi.NewHandler(cat).Register(mux)

	server := &http.Server{
		Addr:    *addr,
		Handler: h2c.NewHandler(mux, &http2.Server{}),
	}

	errCh := make(chan error, 1)
	go func() {
		zlog.Info().Msgf("Listening on %s", *addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		zlog.Info().Msgf("Received signal %v, shutting down", sig)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
