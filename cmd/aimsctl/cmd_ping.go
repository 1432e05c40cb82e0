package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check that the prediction service is reachable",
	Args:  cobra.NoArgs,
	RunE:  runPing,
}

func runPing(cmd *cobra.Command, _ []string) error {
	components, cfg, err := loadComponents(cmd)
	if err != nil {
		return err
	}
	defer components.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Predictor.Timeout)
	defer cancel()

	status, err := components.Predictor.Ping(ctx)
	if err != nil {
		return fmt.Errorf("ping %s: %w", cfg.Predictor.BaseURL, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", cfg.Predictor.BaseURL, status)
	return nil
}
