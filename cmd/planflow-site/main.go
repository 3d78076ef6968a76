package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/rmacdonaldsmith/planflow-go/internal/metrics"
	"github.com/rmacdonaldsmith/planflow-go/internal/platform/config"
	"github.com/rmacdonaldsmith/planflow-go/internal/platform/logging"
	"github.com/rmacdonaldsmith/planflow-go/internal/platform/otel"
	"github.com/rmacdonaldsmith/planflow-go/internal/site"
)

const (
	// Application info
	appName    = "planflow-site"
	appVersion = "0.1.0"

	shutdownTimeout = 30 * time.Second
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

// run parses flags over the environment config and serves until ctx ends.
func run(ctx context.Context, args []string, stdout io.Writer) error {
	var cfg site.Config
	if err := config.ParseEnv(&cfg); err != nil {
		return err
	}

	flags := pflag.NewFlagSet(appName, pflag.ContinueOnError)
	flags.SetOutput(stdout)
	flags.StringVar(&cfg.Addr, "addr", cfg.Addr, "Listen address")
	flags.StringVar(&cfg.Root, "root", cfg.Root, "Directory of static assets")
	logLevel := flags.String("log-level", "info", "Log level: info, verbose, debug, trace")
	showVersion := flags.Bool("version", false, "Show version and exit")
	if err := flags.Parse(args); err != nil {
		return err
	}

	if *showVersion {
		fmt.Fprintf(stdout, "%s v%s\n", appName, appVersion)
		return nil
	}

	logger, err := logging.New(*logLevel, false)
	if err != nil {
		return err
	}

	shutdownTracing, err := otel.Setup(ctx, appName)
	if err != nil {
		return fmt.Errorf("failed to set up tracing: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Error(err, "⚠️  Error flushing traces")
		}
	}()

	metrics.Register(prometheus.DefaultRegisterer)

	logger.Info("🚀 Starting", "app", appName, "version", appVersion)
	logger.Info("📁 Asset root", "root", cfg.Root)

	server, err := site.NewServer(cfg, logger, prometheus.DefaultGatherer)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	return serve(ctx, server, logger)
}

// serve runs server until ctx is cancelled, then shuts it down gracefully.
func serve(ctx context.Context, server *site.Server, logger logr.Logger) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("🛑 Shutting down gracefully...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("graceful stop: %w", err)
		}
		logger.Info("👋 Stopped")
		return nil
	})

	return g.Wait()
}
