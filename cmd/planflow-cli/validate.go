package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rmacdonaldsmith/planflow-go/internal/validate"
	"github.com/rmacdonaldsmith/planflow-go/pkg/plan"
)

func newValidateCommand() *cobra.Command {
	var in plan.Input

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check questionnaire input without sending it",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, in)
		},
	}

	cmd.Flags().StringVar(&in.Age, "age", "", "Age in months")
	cmd.Flags().StringVar(&in.Concern, "concern", "", "Main concern")
	cmd.Flags().StringVar(&in.Email, "email", "", "Contact email (optional)")

	return cmd
}

func runValidate(cmd *cobra.Command, in plan.Input) error {
	validator, err := validate.New(validate.DefaultConfig())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	payload, result := validator.Payload(in)
	if !result.OK {
		fmt.Fprintf(out, "❌ %s\n", result.FormError)
		for _, field := range []plan.Field{plan.FieldAge, plan.FieldConcern, plan.FieldEmail} {
			if msg, ok := result.FieldErrors[field]; ok {
				fmt.Fprintf(out, "   %s: %s\n", field, msg)
			}
		}
		return fmt.Errorf("validation failed")
	}

	fmt.Fprintf(out, "✅ Input is valid\n")
	fmt.Fprintf(out, "   Age (months): %g\n", payload.AgeMonths)
	fmt.Fprintf(out, "   Concern: %s\n", payload.Concern)
	if payload.Email != "" {
		fmt.Fprintf(out, "   Email: %s\n", payload.Email)
	}
	return nil
}
