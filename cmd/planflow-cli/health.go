package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/rmacdonaldsmith/planflow-go/pkg/httpclient"
)

func newHealthCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "health <url>",
		Short: "Check that an endpoint responds",
		Long:  "Send a GET request through the planflow HTTP client and report the outcome",
		Args:  cobra.ExactArgs(1),
		RunE:  runHealth,
	}
}

func runHealth(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	var body json.RawMessage
	hasBody, err := client.Do(ctx, httpclient.Request{Method: http.MethodGet, URL: args[0]}, &body)
	if err != nil {
		var callErr *httpclient.Error
		if errors.As(err, &callErr) && callErr.Kind == httpclient.FailureStatus {
			fmt.Fprintf(cmd.OutOrStdout(), "❌ Unhealthy: HTTP %d\n", callErr.StatusCode)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "❌ Unreachable\n")
		}
		return fmt.Errorf("health check failed: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✅ %s is healthy\n", args[0])
	if hasBody {
		fmt.Fprintf(out, "Response: %s\n", body)
	}
	return nil
}
