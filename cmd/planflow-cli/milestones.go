package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/rmacdonaldsmith/planflow-go/internal/experience"
)

func newMilestonesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "milestones",
		Short: "Track plan milestones",
		Long:  "List milestones seeded from the last plan and mark them done",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List milestones",
		RunE:  runMilestonesList,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "complete <number>",
		Short: "Mark a milestone as done",
		Args:  cobra.ExactArgs(1),
		RunE:  runMilestonesComplete,
	})

	return cmd
}

func runMilestonesList(cmd *cobra.Command, args []string) error {
	if err := requireStore(); err != nil {
		return err
	}

	list, err := experience.NewMilestones(store, logger).List(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(list) == 0 {
		fmt.Fprintf(out, "No milestones yet. Submit the questionnaire first.\n")
		return nil
	}
	for i, m := range list {
		mark := " "
		if m.Done {
			mark = "x"
		}
		fmt.Fprintf(out, "  %d. [%s] %s\n", i+1, mark, m.Title)
	}
	return nil
}

func runMilestonesComplete(cmd *cobra.Command, args []string) error {
	if err := requireStore(); err != nil {
		return err
	}

	n, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid milestone number %q", args[0])
	}

	// Milestones are numbered from 1 on the command line.
	if err := experience.NewMilestones(store, logger).Complete(cmd.Context(), n-1); err != nil {
		return fmt.Errorf("failed to complete milestone: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✅ Milestone %d done\n", n)
	return nil
}
