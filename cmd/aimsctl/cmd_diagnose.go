package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"google.golang.org/protobuf/encoding/protojson"

	"github.com/aimsmarine/aims-diagnostics/internal/api"
	"github.com/aimsmarine/aims-diagnostics/internal/display"
	"github.com/aimsmarine/aims-diagnostics/internal/models"
)

var diagnoseFlags struct {
	category string
	cycles   int
	set      []string
	json     bool
}

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose",
	Short: "Submit a reading to the prediction service and render the diagnosis",
	Long: "Starts from the Normal - Cruise preset, optionally cycles a preset category,\n" +
		"applies --set edits (which make the reading custom) and submits it.",
	Args: cobra.NoArgs,
	RunE: runDiagnose,
}

func init() {
	f := diagnoseCmd.Flags()
	f.StringVar(&diagnoseFlags.category, "category", "", "Preset category to cycle: normal, minor or critical")
	f.IntVar(&diagnoseFlags.cycles, "cycles", 1, "How many times to advance the category")
	f.StringArrayVar(&diagnoseFlags.set, "set", nil, "Field=value edit, repeatable (e.g. --set Oil_Temp=98)")
	f.BoolVar(&diagnoseFlags.json, "json", false, "Print the report as JSON")
}

// parseAssignment splits a Field=value flag.
func parseAssignment(s string) (string, float64, error) {
	field, raw, ok := strings.Cut(s, "=")
	if !ok || strings.TrimSpace(field) == "" {
		return "", 0, fmt.Errorf("invalid --set %q: want Field=value", s)
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return "", 0, fmt.Errorf("invalid --set %q: %w", s, err)
	}
	return strings.TrimSpace(field), value, nil
}

func runDiagnose(cmd *cobra.Command, _ []string) error {
	components, cfg, err := loadComponents(cmd)
	if err != nil {
		return err
	}
	defer components.Close()
	service := components.Service

	if diagnoseFlags.category != "" {
		for i := 0; i < diagnoseFlags.cycles; i++ {
			if _, err := service.Cycle(models.Category(diagnoseFlags.category)); err != nil {
				return err
			}
		}
	}
	for _, s := range diagnoseFlags.set {
		field, value, err := parseAssignment(s)
		if err != nil {
			return err
		}
		if err := service.Edit(field, value); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Predictor.Timeout)
	defer cancel()

	out := cmd.OutOrStdout()
	report, err := service.Submit(ctx)
	if err != nil {
		fmt.Fprint(cmd.ErrOrStderr(), display.RenderBanner(service.State().Banner))
		return err
	}

	if diagnoseFlags.json {
		msg, err := api.ToStructReport(report)
		if err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
		data, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(msg)
		if err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	fmt.Fprint(out, display.RenderReading(report.Reading, report.Source))
	fmt.Fprint(out, display.RenderReport(report))
	return nil
}
