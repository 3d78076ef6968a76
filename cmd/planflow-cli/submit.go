package main

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/rmacdonaldsmith/planflow-go/internal/controller"
	"github.com/rmacdonaldsmith/planflow-go/internal/experience"
	"github.com/rmacdonaldsmith/planflow-go/internal/metrics"
	"github.com/rmacdonaldsmith/planflow-go/internal/validate"
	"github.com/rmacdonaldsmith/planflow-go/pkg/events"
	"github.com/rmacdonaldsmith/planflow-go/pkg/plan"
)

func newSubmitCommand() *cobra.Command {
	var (
		in          plan.Input
		showJournal bool
		metricsOut  string
	)

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit the questionnaire and fetch a plan",
		Long: `Validate the questionnaire, request a plan and then fetch related bundles.
Every lifecycle event is printed as it happens, followed by the final state.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubmit(cmd, in, showJournal, metricsOut)
		},
	}

	cmd.Flags().StringVar(&in.Age, "age", "", "Age in months")
	cmd.Flags().StringVar(&in.Concern, "concern", "", "Main concern")
	cmd.Flags().StringVar(&in.Email, "email", "", "Contact email (optional)")
	cmd.Flags().BoolVar(&showJournal, "journal", false, "Print the event journal after the attempt")
	cmd.Flags().StringVar(&metricsOut, "metrics-out", "", "Write attempt and call metrics in Prometheus text format to this file (- for stdout)")

	return cmd
}

func runSubmit(cmd *cobra.Command, in plan.Input, showJournal bool, metricsOut string) (err error) {
	if err := requireStore(); err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	validator, err := validate.New(validate.DefaultConfig())
	if err != nil {
		return err
	}

	ctrlConfig := controller.NewConfig(planURL, bundlesURL).WithBundlesQueryParam(bundlesArg)
	ctrl, err := controller.New(*ctrlConfig, validator, client, logger)
	if err != nil {
		return fmt.Errorf("failed to create controller: %w", err)
	}

	suite, err := experience.NewSuite(experience.SuiteConfig{Store: store, Logger: logger})
	if err != nil {
		return fmt.Errorf("failed to build widgets: %w", err)
	}
	defer func() {
		err = multierr.Append(err, suite.Close())
	}()
	if err := suite.Hub.Subscribe(metrics.NewSubscriber()); err != nil {
		return err
	}

	ctrl.SetSink(func(e events.Event) {
		fmt.Fprintf(out, "  • %s\n", events.Describe(e))
	})
	ctrl.Observe(suite.Sink())

	fmt.Fprintf(out, "📝 Submitting questionnaire...\n")
	ctrl.Submit(cmd.Context(), in)
	snap := ctrl.Snapshot()

	if showJournal {
		printJournal(out, suite)
	}
	outcomeErr := printOutcome(out, snap, suite)
	if metricsOut != "" {
		if err := writeMetrics(out, metricsOut); err != nil {
			return multierr.Append(outcomeErr, err)
		}
	}
	return outcomeErr
}

func printOutcome(out io.Writer, snap controller.Snapshot, suite *experience.Suite) error {
	switch {
	case snap.State == plan.Success:
		fmt.Fprintf(out, "✅ Plan ready (attempt %s)\n", snap.Attempt)
		printPlan(out, snap.Plan)
		printBundles(out, snap.Bundles)
		if tip, err := suite.DailyToggle.Tip(); err == nil {
			fmt.Fprintf(out, "💡 Tip of the day: %s\n", tip)
		}
		return nil

	case !snap.Validation.OK:
		fmt.Fprintf(out, "❌ %s\n", snap.Validation.FormError)
		for _, field := range []plan.Field{plan.FieldAge, plan.FieldConcern, plan.FieldEmail} {
			if msg, ok := snap.Validation.FieldErrors[field]; ok {
				fmt.Fprintf(out, "   %s: %s\n", field, msg)
			}
		}
		return fmt.Errorf("validation failed")

	case snap.Partial():
		fmt.Fprintf(out, "⚠️  Plan ready, but bundles are unavailable: %s\n", snap.Err.Message)
		printPlan(out, snap.Plan)
		return nil

	case snap.Err != nil:
		fmt.Fprintf(out, "❌ %s\n", snap.Err.Message)
		return fmt.Errorf("submission failed: %s", snap.Err.Kind)

	default:
		return fmt.Errorf("submission ended in state %s", snap.State)
	}
}

// writeMetrics exports the process's attempt and call metrics.
func writeMetrics(out io.Writer, path string) error {
	if path == "-" {
		return metrics.WriteText(out, prometheus.DefaultGatherer)
	}
	if err := metrics.WriteTextFile(path, prometheus.DefaultGatherer); err != nil {
		return err
	}
	fmt.Fprintf(out, "📊 Metrics written to %s\n", path)
	return nil
}

func printPlan(out io.Writer, p *plan.Plan) {
	if p == nil || len(p.Steps) == 0 {
		fmt.Fprintf(out, "   (no steps)\n")
		return
	}
	for i, step := range p.Steps {
		fmt.Fprintf(out, "   %d. %s\n", i+1, step)
	}
}

func printBundles(out io.Writer, bundles []plan.Bundle) {
	if len(bundles) == 0 {
		return
	}
	fmt.Fprintf(out, "🎁 Bundles:\n")
	for _, b := range bundles {
		if b.Price != "" {
			fmt.Fprintf(out, "   [%s] %s - %s\n", b.ID, b.Name, b.Price)
		} else {
			fmt.Fprintf(out, "   [%s] %s\n", b.ID, b.Name)
		}
	}
}

func printJournal(out io.Writer, suite *experience.Suite) {
	entries := suite.Journal.Entries()
	fmt.Fprintf(out, "📜 Journal (%d events):\n", len(entries))
	for _, entry := range entries {
		fmt.Fprintf(out, "   #%d %s[%d] %s\n",
			entry.Sequence, entry.Topic, entry.Offset, entry.Timestamp.Format("15:04:05.000"))
	}
}
