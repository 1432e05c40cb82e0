package engine

import (
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/aimsmarine/aims-diagnostics/internal/models"
)

//go:embed recommendations.yaml
var defaultRecommendations []byte

// Resolver maps a predicted fault label to its maintenance action bundle.
type Resolver struct {
	entries map[string]models.MaintenanceRecommendation
	logger  *slog.Logger
}

// RecommendationEntry is one row of the YAML recommendation table.
type RecommendationEntry struct {
	Label    string   `yaml:"label"`
	Icon     string   `yaml:"icon"`
	Title    string   `yaml:"title"`
	Priority string   `yaml:"priority"`
	Actions  []string `yaml:"actions"`
}

// RecommendationFile is the YAML root structure.
type RecommendationFile struct {
	Recommendations []RecommendationEntry `yaml:"recommendations"`
}

// NewResolver loads the built-in table and overlays entries from path when it exists.
// An empty path or a missing file keeps the built-in table.
func NewResolver(path string, logger *slog.Logger) (*Resolver, error) {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Resolver{entries: make(map[string]models.MaintenanceRecommendation), logger: logger}
	if err := r.merge(defaultRecommendations); err != nil {
		return nil, fmt.Errorf("built-in recommendations: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			logger.Debug("recommendation overlay not found", slog.String("path", path))
		case err != nil:
			return nil, fmt.Errorf("read recommendations: %w", err)
		default:
			if err := r.merge(data); err != nil {
				return nil, fmt.Errorf("recommendations %s: %w", path, err)
			}
			logger.Info("recommendation overlay loaded", slog.String("path", path))
		}
	}

	if _, ok := r.entries[models.FaultNormal.String()]; !ok {
		return nil, fmt.Errorf("recommendation table has no %q entry", models.FaultNormal)
	}
	return r, nil
}

func (r *Resolver) merge(data []byte) error {
	var file RecommendationFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return err
	}
	for _, e := range file.Recommendations {
		if e.Label == "" {
			return fmt.Errorf("recommendation without label")
		}
		priority, err := parsePriority(e.Priority)
		if err != nil {
			return fmt.Errorf("%s: %w", e.Label, err)
		}
		r.entries[e.Label] = models.MaintenanceRecommendation{
			Icon:     e.Icon,
			Title:    e.Title,
			Priority: priority,
			Actions:  append([]string(nil), e.Actions...),
		}
	}
	return nil
}

func parsePriority(s string) (models.Priority, error) {
	switch p := models.Priority(s); p {
	case models.PriorityLow, models.PriorityMedium, models.PriorityCritical:
		return p, nil
	default:
		return "", fmt.Errorf("unknown priority %q", s)
	}
}

// Resolve returns the bundle for an exact label match, or the Normal bundle otherwise.
func (r *Resolver) Resolve(label string) models.MaintenanceRecommendation {
	rec, ok := r.entries[label]
	if !ok {
		if label != "" {
			r.logger.Debug("no recommendation for label, using normal", slog.String("label", label))
		}
		rec = r.entries[models.FaultNormal.String()]
	}
	rec.Actions = append([]string(nil), rec.Actions...)
	return rec
}

// ResolveLabel is Resolve for an enumerated label.
func (r *Resolver) ResolveLabel(label models.FaultLabel) models.MaintenanceRecommendation {
	return r.Resolve(label.String())
}
