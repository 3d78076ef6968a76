package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/rmacdonaldsmith/planflow-go/internal/controller"
	"github.com/rmacdonaldsmith/planflow-go/internal/kvstore"
	"github.com/rmacdonaldsmith/planflow-go/internal/metrics"
	"github.com/rmacdonaldsmith/planflow-go/internal/platform/config"
	"github.com/rmacdonaldsmith/planflow-go/internal/platform/logging"
	"github.com/rmacdonaldsmith/planflow-go/internal/platform/otel"
	"github.com/rmacdonaldsmith/planflow-go/pkg/httpclient"
	kvstorepkg "github.com/rmacdonaldsmith/planflow-go/pkg/kvstore"
)

// cliEnv supplies flag defaults from the environment.
type cliEnv struct {
	PlanURL    string        `env:"PLANFLOW_PLAN_URL" envDefault:"http://localhost:8080/api/plan"`
	BundlesURL string        `env:"PLANFLOW_BUNDLES_URL" envDefault:"http://localhost:8080/api/bundles"`
	Timeout    time.Duration `env:"PLANFLOW_TIMEOUT" envDefault:"30s"`
	Store      string        `env:"PLANFLOW_STORE"`
	LogLevel   string        `env:"PLANFLOW_LOG_LEVEL" envDefault:"info"`
}

var (
	// Global flags
	planURL    string
	bundlesURL string
	bundlesArg string
	timeout    time.Duration
	storePath  string
	logLevel   string

	// Global instances, set up in initializeClient
	client        *httpclient.Client
	store         kvstorepkg.Store
	logger        logr.Logger
	traceShutdown func(context.Context) error
)

func main() {
	rootCmd, err := newRootCommand()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() (*cobra.Command, error) {
	var defaults cliEnv
	if err := config.ParseEnv(&defaults); err != nil {
		return nil, err
	}

	rootCmd := &cobra.Command{
		Use:   "planflow-cli",
		Short: "Submit questionnaires and manage planflow widget state",
		Long: `planflow-cli runs questionnaire submissions against the plan and bundles
endpoints and manages the registry and milestone state the widgets keep
in the local store.`,
		PersistentPreRunE:  initializeClient,
		PersistentPostRunE: closeClient,
		SilenceUsage:       true,
	}

	rootCmd.PersistentFlags().StringVar(&planURL, "plan-url", defaults.PlanURL, "Plan endpoint URL")
	rootCmd.PersistentFlags().StringVar(&bundlesURL, "bundles-url", defaults.BundlesURL, "Bundles endpoint URL")
	rootCmd.PersistentFlags().StringVar(&bundlesArg, "bundles-param", controller.DefaultBundlesQueryParam, "Query parameter carrying the concern on the bundles call")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", defaults.Timeout, "Per-call timeout")
	rootCmd.PersistentFlags().StringVar(&storePath, "store", defaults.Store, "SQLite store path (empty for in-memory)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", defaults.LogLevel, "Log level: info, verbose, debug, trace")

	rootCmd.AddCommand(newSubmitCommand())
	rootCmd.AddCommand(newValidateCommand())
	rootCmd.AddCommand(newRegistryCommand())
	rootCmd.AddCommand(newMilestonesCommand())
	rootCmd.AddCommand(newHealthCommand())

	return rootCmd, nil
}

// initializeClient sets up logging, tracing, the HTTP client and the store
func initializeClient(cmd *cobra.Command, args []string) error {
	// Skip initialization for help commands
	if cmd.Name() == "help" || cmd.Parent() == nil {
		return nil
	}

	var err error
	logger, err = logging.New(logLevel, false)
	if err != nil {
		return err
	}

	traceShutdown, err = otel.Setup(cmd.Context(), "planflow-cli")
	if err != nil {
		return fmt.Errorf("failed to set up tracing: %w", err)
	}

	client, err = httpclient.NewClient(httpclient.Config{
		Timeout: timeout,
		Logger:  logger.WithName("httpclient"),
	})
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	metrics.Register(prometheus.DefaultRegisterer)

	store, err = kvstore.Open(storePath)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	return nil
}

// closeClient releases the store and flushes pending spans
func closeClient(cmd *cobra.Command, args []string) error {
	var err error
	if store != nil {
		err = multierr.Append(err, store.Close())
		store = nil
	}
	if traceShutdown != nil {
		err = multierr.Append(err, traceShutdown(context.Background()))
		traceShutdown = nil
	}
	return err
}

// requireStore checks that initializeClient ran
func requireStore() error {
	if store == nil {
		return fmt.Errorf("store not initialized")
	}
	return nil
}
