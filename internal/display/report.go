// Package display renders dashboard view-models as styled terminal text.
package display

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/aimsmarine/aims-diagnostics/internal/models"
)

const (
	colLabel  = 24 // parameter or feature label
	barWidth  = 20 // health and probability bars
	halfWidth = 12 // one side of a diverging attribution bar
	innerW    = 72
)

// styledPad pads a styled string to the given visual width, ignoring ANSI escapes.
func styledPad(styled string, width int) string {
	visW := lipgloss.Width(styled)
	if visW >= width {
		return styled
	}
	return styled + strings.Repeat(" ", width-visW)
}

func boxTop() string { return " " + dimStyle.Render("╭"+strings.Repeat("─", innerW+2)+"╮") }
func boxBot() string { return " " + dimStyle.Render("╰"+strings.Repeat("─", innerW+2)+"╯") }
func boxMid() string { return " " + dimStyle.Render("├"+strings.Repeat("─", innerW+2)+"┤") }

func boxRow(content string) string {
	pad := innerW - lipgloss.Width(content)
	if pad < 0 {
		pad = 0
	}
	return " " + dimStyle.Render("│") + " " + content + strings.Repeat(" ", pad) + " " + dimStyle.Render("│")
}

// section renders a titled box around lines.
func section(title string, lines []string) string {
	var sb strings.Builder
	sb.WriteString(boxTop() + "\n")
	sb.WriteString(boxRow(headerStyle.Render(title)) + "\n")
	sb.WriteString(boxMid() + "\n")
	for _, l := range lines {
		sb.WriteString(boxRow(l) + "\n")
	}
	sb.WriteString(boxBot() + "\n")
	return sb.String()
}

func bar(pct float64, width int, style lipgloss.Style) string {
	pct = math.Max(0, math.Min(100, pct))
	filled := int(math.Round(pct / 100 * float64(width)))
	return style.Render(strings.Repeat("█", filled)) + dimStyle.Render(strings.Repeat("░", width-filled))
}

// RenderBanner renders the error banner, or nothing when msg is empty.
func RenderBanner(msg string) string {
	if msg == "" {
		return ""
	}
	return bannerStyle.Render("⚠ "+msg) + "\n"
}

// RenderReading renders the input form: every field with its label, value and unit.
func RenderReading(reading models.SensorReading, source models.ReadingSource) string {
	lines := make([]string, 0, len(models.SensorFields))
	for _, f := range models.SensorFields {
		info := f.Info()
		lines = append(lines, fmt.Sprintf("%s %s %s",
			styledPad(dimStyle.Render(info.Label), colLabel),
			valueStyle.Render(fmt.Sprintf("%10.2f", reading.Get(f))),
			dimStyle.Render(info.Unit)))
	}
	return section("Current Scenario: "+source.Name(), lines)
}

// RenderCatalog lists presets grouped by category in the order given.
func RenderCatalog(presets []models.ScenarioPreset) string {
	var lines []string
	var current models.Category
	for _, p := range presets {
		if p.Category != current {
			current = p.Category
			lines = append(lines, titleStyle.Render(strings.ToUpper(string(current))))
		}
		lines = append(lines, fmt.Sprintf("  %s %s",
			styledPad(valueStyle.Render(p.Name), colLabel),
			dimStyle.Render(p.Description)))
	}
	return section("Scenario Presets", lines)
}

// RenderReport renders every panel of a diagnosis.
func RenderReport(r models.Report) string {
	var sb strings.Builder
	sb.WriteString(renderSummary(r))
	sb.WriteString(renderHealth(r.Health))
	sb.WriteString(renderAttribution(r))
	sb.WriteString(renderProbabilities(r))
	sb.WriteString(renderRecommendation(r.Recommendation))
	return sb.String()
}

func renderSummary(r models.Report) string {
	label := r.Prediction.RawLabel
	if label == "" {
		label = r.Prediction.Label.String()
	}
	sev := severityStyle(r.Classification.Severity)
	lines := []string{
		fmt.Sprintf("%s %s", styledPad(dimStyle.Render("Prediction:"), colLabel), sev.Render(label)),
	}
	if r.NoProbabilities {
		lines = append(lines,
			fmt.Sprintf("%s %s", styledPad(dimStyle.Render("Severity:"), colLabel), dimStyle.Render("no data")),
			fmt.Sprintf("%s %s", styledPad(dimStyle.Render("Confidence:"), colLabel), dimStyle.Render("no data")),
		)
	} else {
		lines = append(lines, fmt.Sprintf("%s %s", styledPad(dimStyle.Render("Severity:"), colLabel), sev.Render(strings.ToUpper(string(r.Classification.Severity)))))
		confidence := valueStyle.Render(fmt.Sprintf("%.1f%%", r.Classification.ConfidencePct))
		if r.Classification.HighConfidence {
			confidence += " " + okStyle.Render("HIGH CONFIDENCE")
		}
		lines = append(lines, fmt.Sprintf("%s %s", styledPad(dimStyle.Render("Confidence:"), colLabel), confidence))
	}
	lines = append(lines, fmt.Sprintf("%s %s", styledPad(dimStyle.Render("Scenario:"), colLabel), valueStyle.Render(r.Source.Name())))
	return section("Prediction Summary", lines)
}

func renderHealth(h models.HealthAssessment) string {
	lines := make([]string, 0, len(h)+1)
	for _, e := range h {
		style := healthStyle(e)
		lines = append(lines, fmt.Sprintf("%s %s %s",
			styledPad(dimStyle.Render(e.Label), colLabel),
			bar(e.Score, barWidth, style),
			style.Render(fmt.Sprintf("%.2f", e.Actual))+dimStyle.Render(fmt.Sprintf(" (%g..%g)", e.Min, e.Max))))
	}
	title := "Engine Health"
	if n := h.OutOfRangeCount(); n > 0 {
		title += " " + critStyle.Render(fmt.Sprintf("%d out of range", n))
	}
	return section(title, lines)
}

func renderAttribution(r models.Report) string {
	if r.NoAttributions || len(r.Attribution) == 0 {
		return section("Feature Attribution", []string{dimStyle.Render("No attribution data")})
	}
	widths := r.Attribution.BarWidths()
	lines := make([]string, 0, len(r.Attribution)+1)
	lines = append(lines, dimStyle.Render(fmt.Sprintf("%s %s│%s", strings.Repeat(" ", colLabel), padLeft("away", halfWidth), " toward")))
	for i, e := range r.Attribution {
		n := int(math.Round(widths[i] / 50 * halfWidth))
		left := strings.Repeat(" ", halfWidth)
		right := strings.Repeat(" ", halfWidth)
		if e.Direction == models.AwayFromFault {
			left = strings.Repeat(" ", halfWidth-n) + okStyle.Render(strings.Repeat("█", n))
		} else {
			right = critStyle.Render(strings.Repeat("█", n)) + strings.Repeat(" ", halfWidth-n)
		}
		lines = append(lines, fmt.Sprintf("%s %s%s%s %s",
			styledPad(valueStyle.Render(e.Feature), colLabel),
			left, dimStyle.Render("│"), right,
			dimStyle.Render(fmt.Sprintf("%+.3f", e.Value))))
	}
	return section("Feature Attribution", lines)
}

func renderProbabilities(r models.Report) string {
	if r.NoProbabilities || len(r.Probabilities) == 0 {
		return section("Class Probabilities", []string{dimStyle.Render("No probability data")})
	}
	lines := make([]string, 0, len(r.Probabilities))
	for _, s := range r.Probabilities {
		style := dimStyle
		if s.Top {
			style = severityStyle(r.Classification.Severity)
		}
		lines = append(lines, fmt.Sprintf("%s %s %s",
			styledPad(valueStyle.Render(s.Label), colLabel),
			bar(s.Percent, barWidth, style),
			style.Render(fmt.Sprintf("%5.1f%%", s.Percent))))
	}
	return section("Class Probabilities", lines)
}

func renderRecommendation(rec models.MaintenanceRecommendation) string {
	lines := []string{
		fmt.Sprintf("%s %s  %s", rec.Icon, titleStyle.Render(rec.Title),
			priorityStyle(rec.Priority).Render(strings.ToUpper(string(rec.Priority))+" PRIORITY")),
	}
	for i, a := range rec.Actions {
		lines = append(lines, fmt.Sprintf("  %d. %s", i+1, valueStyle.Render(a)))
	}
	return section("Maintenance Recommendations", lines)
}

func padLeft(s string, width int) string {
	if len(s) >= width {
		return s[:width]
	}
	return strings.Repeat(" ", width-len(s)) + s
}
