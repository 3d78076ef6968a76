package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rmacdonaldsmith/planflow-go/internal/experience"
	"github.com/rmacdonaldsmith/planflow-go/pkg/plan"
)

func newRegistryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Manage the bundle registry",
		Long:  "List, add and remove registry items kept in the local store",
	}

	cmd.AddCommand(newRegistryListCommand())
	cmd.AddCommand(newRegistryAddCommand())
	cmd.AddCommand(newRegistryRemoveCommand())

	return cmd
}

func newRegistryListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registry items",
		RunE:  runRegistryList,
	}
}

func newRegistryAddCommand() *cobra.Command {
	var item experience.Item

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an item to the registry",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegistryAdd(cmd, item)
		},
	}

	cmd.Flags().StringVar((*string)(&item.ID), "id", "", "Bundle ID (required)")
	cmd.Flags().StringVar(&item.Name, "name", "", "Display name")
	cmd.Flags().StringVar(&item.Price, "price", "", "Price label")
	if err := cmd.MarkFlagRequired("id"); err != nil {
		panic(fmt.Sprintf("Failed to mark id as required: %v", err))
	}

	return cmd
}

func newRegistryRemoveCommand() *cobra.Command {
	var id string

	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Remove an item from the registry",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegistryRemove(cmd, plan.BundleID(id))
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Bundle ID to remove (required)")
	if err := cmd.MarkFlagRequired("id"); err != nil {
		panic(fmt.Sprintf("Failed to mark id as required: %v", err))
	}

	return cmd
}

func runRegistryList(cmd *cobra.Command, args []string) error {
	if err := requireStore(); err != nil {
		return err
	}

	items, err := experience.NewRegistry(store, logger).Items(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list registry: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(items) == 0 {
		fmt.Fprintf(out, "Registry is empty\n")
		return nil
	}
	fmt.Fprintf(out, "Registry (%d items):\n", len(items))
	for _, item := range items {
		if item.Price != "" {
			fmt.Fprintf(out, "  [%s] %s - %s\n", item.ID, item.Name, item.Price)
		} else {
			fmt.Fprintf(out, "  [%s] %s\n", item.ID, item.Name)
		}
	}
	return nil
}

func runRegistryAdd(cmd *cobra.Command, item experience.Item) error {
	if err := requireStore(); err != nil {
		return err
	}

	if err := experience.NewRegistry(store, logger).Add(cmd.Context(), item); err != nil {
		return fmt.Errorf("failed to add item: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✅ Added %s\n", item.ID)
	return nil
}

func runRegistryRemove(cmd *cobra.Command, id plan.BundleID) error {
	if err := requireStore(); err != nil {
		return err
	}

	removed, err := experience.NewRegistry(store, logger).Remove(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("failed to remove item: %w", err)
	}
	if !removed {
		return fmt.Errorf("item %s not found: %w", id, experience.ErrUnknownBundle)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✅ Removed %s\n", id)
	return nil
}
