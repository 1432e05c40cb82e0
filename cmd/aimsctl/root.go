// aimsctl drives the diagnostics dashboard from a terminal.
//
// Usage:
//
//	aimsctl scenarios
//	aimsctl diagnose [--category=<normal|minor|critical>] [--cycles=N] [--set Field=value]... [--json]
//	aimsctl ping
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aimsmarine/aims-diagnostics/internal/config"
	"github.com/aimsmarine/aims-diagnostics/internal/services"
	"github.com/aimsmarine/aims-diagnostics/internal/utils"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	configPath string
	logLevel   string
}

var rootCmd = &cobra.Command{
	Use:   "aimsctl",
	Short: "Marine engine diagnostics from the terminal",
	Long:  "aimsctl loads engine scenarios, submits them to the prediction service\nand renders the resulting health, attribution and maintenance views.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	SilenceUsage: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rootFlags.configPath, "config", "", "Path to configuration file (default $AIMS_CONFIG)")
	pf.StringVar(&rootFlags.logLevel, "log-level", "warn", "Log level written to stderr")

	rootCmd.AddCommand(scenariosCmd)
	rootCmd.AddCommand(diagnoseCmd)
	rootCmd.AddCommand(pingCmd)
	rootCmd.Version = version
}

// loadComponents wires the dashboard stack with logs going to the command's stderr.
func loadComponents(cmd *cobra.Command) (services.Components, *config.Config, error) {
	cfg, err := config.Load(rootFlags.configPath)
	if err != nil {
		return services.Components{}, nil, fmt.Errorf("load config: %w", err)
	}
	logger := utils.NewLoggerTo(cmd.ErrOrStderr(), rootFlags.logLevel, false)
	components, err := services.NewFromConfig(cfg, logger)
	if err != nil {
		return services.Components{}, nil, err
	}
	return components, cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
