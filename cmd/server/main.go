// Package main provides the voice command endpoint server.
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

	"github.com/voxdj/voxdj/internal/api/voice"
	"github.com/voxdj/voxdj/internal/app/player"
	"github.com/voxdj/voxdj/internal/infra/config"
	"github.com/voxdj/voxdj/internal/infra/logger"
	"github.com/voxdj/voxdj/internal/infra/resolver"
	"github.com/voxdj/voxdj/internal/infra/store"
)

var (
	app        = kingpin.New("voxdj-server", "voxdj voice playback endpoint")
	configPath = app.Flag("config", "Path to config file").Default("config/voxdj.yaml").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file (default: stdout)").String()
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	kingpin.MustParse(app.Parse(os.Args[1:]))

	loggerConfig := logger.Config{Output: "stdout", Level: "info"}
	if *verbose {
		loggerConfig.Level = "debug"
	}
	if *logfile != "" {
		loggerConfig.Output = *logfile
	}
	if err := logger.Init(loggerConfig); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	zlog.Info().Msgf("Loading config from %s", *configPath)
	cfg, err := config.Load(*configPath)
	if err != nil {
		zlog.Fatal().Msgf("Failed to load config: %v", err)
	}

	if err := run(cfg); err != nil {
		zlog.Error().Msgf("Server error: %v", err)
		os.Exit(1)
	}
}

// run executes the main server logic. Using a separate function ensures
// defer statements are executed even when returning with an error.
func run(cfg *config.Config) error {
	sessions, err := store.NewFromConfig(cfg.Store)
	if err != nil {
		return fmt.Errorf("failed to create session store: %w", err)
	}
	defer sessions.Close()

	resolverClient := resolver.New()
	engine := player.NewEngine(resolverClient)
	registry := player.NewRegistry(cfg.Player.MatchThreshold)
	controller := player.NewController(engine, registry, resolverClient, sessions, cfg.Messages)

	mux := http.NewServeMux()
	voice.NewHandler(controller).Register(mux)

	// h2c so the voice platform's gateway can speak cleartext HTTP/2
	server := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: h2c.NewHandler(voice.WithRequestLogging(mux), &http2.Server{}),
	}

	errCh := make(chan error, 1)
	go func() {
		zlog.Info().Msgf("Listening on %s", cfg.Server.Addr)
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

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}
