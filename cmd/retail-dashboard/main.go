// Package main provides the entry point for the retail dashboard server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/anagilla/retail-lakehouse-demo/internal/server"
	"github.com/anagilla/retail-lakehouse-demo/pkg/dashboard"
	"github.com/anagilla/retail-lakehouse-demo/pkg/dataset"
	"github.com/anagilla/retail-lakehouse-demo/pkg/health"
	"github.com/anagilla/retail-lakehouse-demo/pkg/query"
	"github.com/anagilla/retail-lakehouse-demo/pkg/warehouse"
)

// Version is set at build time.
var Version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type serverOptions struct {
	configPath  string
	address     string
	logLevel    string
	logFormat   string
	showVersion bool
}

func parseFlags() serverOptions {
	opts := serverOptions{}
	flag.StringVar(&opts.configPath, "config", "", "Path to configuration file")
	flag.StringVar(&opts.address, "address", "", "Listen address override")
	flag.StringVar(&opts.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	flag.StringVar(&opts.logFormat, "log-format", "text", "Log format: text, json")
	flag.BoolVar(&opts.showVersion, "version", false, "Show version and exit")
	flag.Parse()
	return opts
}

func setupLogger(opts serverOptions) {
	var level slog.Level
	switch opts.logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if opts.logFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, handlerOpts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, handlerOpts)
	}
	slog.SetDefault(slog.New(handler))
}

func setupSignalHandler() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()
	return ctx
}

func run() error {
	opts := parseFlags()

	if opts.showVersion {
		fmt.Printf("retail-dashboard version %s\n", Version)
		return nil
	}

	setupLogger(opts)

	if opts.configPath == "" {
		return fmt.Errorf("a configuration file is required (-config)")
	}

	cfg, err := server.LoadConfig(opts.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if opts.address != "" {
		cfg.Server.Address = opts.address
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	registry, err := dataset.Load(cfg.DatasetsFile, cfg.CatalogPrefix)
	if err != nil {
		return fmt.Errorf("loading datasets: %w", err)
	}

	executor, err := warehouse.Open(cfg.Warehouse)
	if err != nil {
		return fmt.Errorf("opening warehouse: %w", err)
	}
	defer func() { _ = executor.Close() }()

	service := dashboard.New(query.NewBuilder(registry), executor, cfg.Warehouse.QueryTimeout)
	checker := health.NewChecker(executor)
	srv := server.New(*cfg, service, checker)

	ctx := setupSignalHandler()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	checker.SetReady()
	slog.Info("retail-dashboard: started",
		"version", Version,
		"address", cfg.Server.Address,
		"datasets", len(registry.Names()),
	)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
