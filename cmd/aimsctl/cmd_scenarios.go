package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aimsmarine/aims-diagnostics/internal/display"
	"github.com/aimsmarine/aims-diagnostics/internal/models"
	"github.com/aimsmarine/aims-diagnostics/internal/scenarios"
)

var scenariosCmd = &cobra.Command{
	Use:   "scenarios",
	Short: "List the built-in scenario presets",
	Args:  cobra.NoArgs,
	RunE:  runScenarios,
}

func runScenarios(cmd *cobra.Command, _ []string) error {
	catalog := scenarios.DefaultCatalog()
	var presets []models.ScenarioPreset
	for _, cat := range scenarios.Categories {
		presets = append(presets, catalog.Presets(cat)...)
	}
	fmt.Fprint(cmd.OutOrStdout(), display.RenderCatalog(presets))
	return nil
}
