package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/aimsmarine/aims-diagnostics/internal/models"
)

// Predictor defines the prediction service behaviour used by the pipeline.
type Predictor interface {
	Predict(ctx context.Context, reading models.SensorReading) (models.PredictionResult, error)
}

// Pipeline turns a sensor reading into a complete dashboard report.
type Pipeline struct {
	logger    *slog.Logger
	predictor Predictor
	resolver  *Resolver
	topK      int
	now       func() time.Time
}

// NewPipeline constructs a diagnosis pipeline. topK <= 0 uses DefaultTopK.
func NewPipeline(logger *slog.Logger, predictor Predictor, resolver *Resolver, topK int) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Pipeline{
		logger:    logger,
		predictor: predictor,
		resolver:  resolver,
		topK:      topK,
		now:       time.Now,
	}
}

// Diagnose submits the reading and derives every view of the dashboard from the response.
// Missing attribution or probability data is flagged on the report rather than failing it.
func (p *Pipeline) Diagnose(ctx context.Context, reading models.SensorReading, source models.ReadingSource) (models.Report, error) {
	if p.predictor == nil {
		return models.Report{}, fmt.Errorf("predictor not configured")
	}
	if p.resolver == nil {
		return models.Report{}, fmt.Errorf("recommendation resolver not configured")
	}

	reading = reading.Clone()
	prediction, err := p.predictor.Predict(ctx, reading)
	if err != nil {
		return models.Report{}, fmt.Errorf("predict: %w", err)
	}

	var (
		health         models.HealthAssessment
		ranked         models.RankedAttribution
		classification models.Classification
		noAttributions bool
		noProbs        bool
	)

	var g errgroup.Group
	g.Go(func() error {
		health = Normalize(reading)
		return nil
	})
	g.Go(func() error {
		r, err := Rank(prediction.Attributions, p.topK)
		if errors.Is(err, ErrNoAttributions) {
			noAttributions = true
			return nil
		}
		ranked = r
		return err
	})
	g.Go(func() error {
		c, err := Classify(prediction.Label, prediction.Probabilities)
		if errors.Is(err, ErrNoProbabilities) {
			noProbs = true
			c = models.Classification{Label: prediction.Label}
			err = nil
		}
		classification = c
		return err
	})
	if err := g.Wait(); err != nil {
		return models.Report{}, fmt.Errorf("derive report: %w", err)
	}

	label := prediction.RawLabel
	if label == "" {
		label = prediction.Label.String()
	}
	report := models.Report{
		ID:              uuid.NewString(),
		Reading:         reading,
		Source:          source,
		Prediction:      prediction,
		Health:          health,
		Attribution:     ranked,
		Classification:  classification,
		Recommendation:  p.resolver.Resolve(label),
		Probabilities:   ProbabilitySlices(prediction.Probabilities),
		NoAttributions:  noAttributions,
		NoProbabilities: noProbs,
		CreatedAt:       p.now().UTC(),
	}

	p.logger.Debug("diagnosis derived",
		slog.String("report_id", report.ID),
		slog.String("label", label),
		slog.String("severity", string(classification.Severity)),
		slog.Float64("confidence_pct", classification.ConfidencePct),
		slog.Int("out_of_range", health.OutOfRangeCount()),
		slog.Bool("no_attributions", noAttributions),
		slog.Bool("no_probabilities", noProbs),
	)
	return report, nil
}
