package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"fbwsim/internal/api"
	"fbwsim/pkg/config"
	"fbwsim/pkg/logging"
	"fbwsim/pkg/probe"
	"fbwsim/pkg/sim/flightsim"
	"fbwsim/pkg/version"
)

const defaultConfigPath = "configs/fbwsim.yaml"

var (
	configPath = flag.String("config", defaultConfigPath, "Path to the config file")
	initConfig = flag.Bool("init-config", false, "Generate default config file and exit")
)

func main() {
	flag.Parse()

	// Handle --init-config flag
	if *initConfig {
		if err := config.GenerateDefault(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Config file generated: %s\n", *configPath)
		return
	}

	if err := run(context.Background(), *configPath); err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL ERROR: Application failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// A missing .env is normal; anything else is worth knowing about.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	appCfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cleanupLogs, err := logging.Init(&appCfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer cleanupLogs()

	slog.Info("fbwsim Started", "version", version.Version, "config", configPath)

	simCfg, err := flightsim.ConfigFrom(appCfg)
	if err != nil {
		return fmt.Errorf("failed to build sim config: %w", err)
	}
	simClient := flightsim.NewClient(simCfg)
	defer simClient.Close()

	results := probe.Run(ctx, []probe.Probe{
		probe.Listen(appCfg.Server.Address),
		probe.Telemetry(simClient),
		probe.Airframe(simCfg.Airframe),
	})
	if err := probe.AnalyzeResults(slog.Default(), results); err != nil {
		return fmt.Errorf("startup checks failed: %w", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	srv := api.NewServer(
		appCfg.Server.Address,
		api.NewTelemetryHandler(simClient),
		api.NewControlHandler(simClient),
		api.NewStreamHandler(simClient, time.Duration(appCfg.Stream.Interval)),
		cancel,
	)
	srv.Handler = loggingMiddleware(srv.Handler)

	return runServerLifecycle(ctx, srv, quit)
}

func runServerLifecycle(ctx context.Context, srv *http.Server, quit chan os.Signal) error {
	slog.Info("Starting server", "addr", srv.Addr)
	serverErrors := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()
	select {
	case <-quit:
		slog.Info("Shutting down server...")
	case <-ctx.Done():
		slog.Info("Context cancelled, shutting down...")
	case err := <-serverErrors:
		return fmt.Errorf("server failed: %w", err)
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logging.RequestLogger.Info("Request Processed", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
