package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/aimsmarine/aims-diagnostics/internal/api"
	dashboardv1 "github.com/aimsmarine/aims-diagnostics/internal/grpc/dashboardv1"
	"github.com/aimsmarine/aims-diagnostics/internal/metrics"
	"github.com/aimsmarine/aims-diagnostics/internal/models"
	"github.com/aimsmarine/aims-diagnostics/internal/repo"
	"github.com/aimsmarine/aims-diagnostics/internal/scenarios"
	"github.com/aimsmarine/aims-diagnostics/internal/utils"
)

// Diagnoser produces a report for a reading.
type Diagnoser interface {
	Diagnose(ctx context.Context, reading models.SensorReading, source models.ReadingSource) (models.Report, error)
}

// DashboardService implements the gRPC Dashboard service over a single form session.
type DashboardService struct {
	dashboardv1.UnimplementedDashboardServer

	logger    *slog.Logger
	pipeline  Diagnoser
	catalog   *scenarios.Catalog
	session   *scenarios.Session
	latencies *utils.LatencyTracker

	mu         sync.RWMutex
	lastReport *models.Report
	banner     string
	completed  int
}

// NewDashboardService constructs the dashboard facade. A nil catalog uses the built-in presets.
func NewDashboardService(logger *slog.Logger, pipeline Diagnoser, catalog *scenarios.Catalog) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	if catalog == nil {
		catalog = scenarios.DefaultCatalog()
	}
	return &DashboardService{
		logger:    logger,
		pipeline:  pipeline,
		catalog:   catalog,
		session:   scenarios.NewSession(catalog),
		latencies: utils.NewLatencyTracker(1024),
	}
}

// Submit diagnoses the current session reading. On failure the banner is set to the
// user-facing message and the previous report stays on screen.
func (s *DashboardService) Submit(ctx context.Context) (models.Report, error) {
	if s.pipeline == nil {
		return models.Report{}, errors.New("pipeline not configured")
	}
	reading, source := s.session.Snapshot()

	start := time.Now()
	report, err := s.pipeline.Diagnose(ctx, reading, source)
	duration := time.Since(start)
	if err != nil {
		metrics.ObserveDiagnosis(duration, metrics.OutcomeError)
		message := utils.UserMessage(err, repo.GenericFailureMessage)
		s.mu.Lock()
		s.banner = message
		s.mu.Unlock()
		s.logger.Warn("diagnosis failed", slog.String("source", source.Name()), slog.Any("error", err))
		return models.Report{}, utils.NewAppError("diagnose", message, err)
	}

	s.mu.Lock()
	s.lastReport = &report
	s.banner = ""
	s.completed++
	completed := s.completed
	s.mu.Unlock()

	s.latencies.Observe(duration)
	metrics.ObserveDiagnosis(duration, metrics.OutcomeSuccess)
	if !report.NoProbabilities {
		metrics.ObserveSeverity(string(report.Classification.Severity))
	}
	s.logger.Info("diagnosis complete",
		slog.String("report_id", report.ID),
		slog.String("source", source.Name()),
		slog.String("label", report.Prediction.RawLabel),
		slog.String("severity", string(report.Classification.Severity)),
		slog.Duration("duration", duration),
	)
	if completed%20 == 0 {
		p95 := s.latencies.Percentile(95)
		s.logger.Info("diagnosis latency", slog.Duration("p95", p95), slog.Int("samples", s.latencies.Count()))
	}
	return report, nil
}

// Cycle loads the next preset of a category and clears the banner.
func (s *DashboardService) Cycle(cat models.Category) (models.ScenarioPreset, error) {
	p, err := s.session.Load(cat)
	if err != nil {
		return models.ScenarioPreset{}, err
	}
	s.mu.Lock()
	s.banner = ""
	s.mu.Unlock()
	s.logger.Debug("scenario loaded", slog.String("category", string(cat)), slog.String("preset", p.Name))
	return p, nil
}

// Edit changes one field of the session reading; the source becomes custom.
func (s *DashboardService) Edit(field string, value float64) error {
	return s.session.Edit(field, value)
}

// Replace swaps in a hand-entered reading.
func (s *DashboardService) Replace(reading models.SensorReading) {
	s.session.Replace(reading)
}

// State returns a snapshot of what the dashboard shows.
func (s *DashboardService) State() models.DashboardState {
	reading, source := s.session.Snapshot()
	s.mu.RLock()
	defer s.mu.RUnlock()
	state := models.DashboardState{Reading: reading, Source: source, Banner: s.banner}
	if s.lastReport != nil {
		report := *s.lastReport
		state.Report = &report
	}
	return state
}

// Catalog lists every preset in display order.
func (s *DashboardService) Catalog() []models.ScenarioPreset {
	var out []models.ScenarioPreset
	for _, cat := range scenarios.Categories {
		out = append(out, s.catalog.Presets(cat)...)
	}
	return out
}

// Diagnose runs a diagnosis, optionally replacing the reading with the request's "reading" object.
func (s *DashboardService) Diagnose(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	reading, ok, err := api.ReadingFromStruct(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if ok {
		s.session.Replace(reading)
	}
	if s.pipeline == nil {
		return nil, status.Error(codes.FailedPrecondition, "pipeline not configured")
	}

	report, err := s.Submit(ctx)
	if err != nil {
		return nil, status.Error(codes.Unavailable, utils.UserMessage(err, repo.GenericFailureMessage))
	}
	return toResponse(api.ToStructReport(report))
}

// CycleScenario advances the preset cursor for the requested category.
func (s *DashboardService) CycleScenario(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	cat, err := api.CategoryFromStruct(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	p, err := s.Cycle(cat)
	if err != nil {
		if errors.Is(err, scenarios.ErrNotCyclable) {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
		return nil, status.Error(codes.Internal, err.Error())
	}
	return toResponse(api.ToStructPreset(p))
}

// EditField sets one sensor value and returns the updated dashboard.
func (s *DashboardService) EditField(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	field, value, err := api.EditFromStruct(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if err := s.Edit(field, value); err != nil {
		if errors.Is(err, scenarios.ErrUnknownField) {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
		return nil, status.Error(codes.Internal, err.Error())
	}
	return toResponse(api.ToStructDashboard(s.State()))
}

// GetDashboard returns the current form state, banner and last report.
func (s *DashboardService) GetDashboard(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return toResponse(api.ToStructDashboard(s.State()))
}

// ListScenarios returns the preset catalog grouped by category.
func (s *DashboardService) ListScenarios(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return toResponse(api.ToStructCatalog(s.Catalog()))
}

// LatencyP95 returns the current p95 diagnosis latency.
func (s *DashboardService) LatencyP95() time.Duration {
	if s.latencies == nil {
		return 0
	}
	return s.latencies.Percentile(95)
}

func toResponse(out *structpb.Struct, err error) (*structpb.Struct, error) {
	if err != nil {
		return nil, status.Error(codes.Internal, "encode response: "+err.Error())
	}
	return out, nil
}
