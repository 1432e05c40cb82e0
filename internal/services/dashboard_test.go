package services

import (
	"context"
	"errors"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/aimsmarine/aims-diagnostics/internal/models"
	"github.com/aimsmarine/aims-diagnostics/internal/utils"
)

type diagnoserStub struct {
	calls   int
	reading models.SensorReading
	source  models.ReadingSource
	err     error
}

func (d *diagnoserStub) Diagnose(_ context.Context, reading models.SensorReading, source models.ReadingSource) (models.Report, error) {
	d.calls++
	d.reading = reading
	d.source = source
	if d.err != nil {
		return models.Report{}, d.err
	}
	return models.Report{
		ID:      "report-1",
		Reading: reading,
		Source:  source,
		Prediction: models.PredictionResult{
			Label:    models.FaultNormal,
			RawLabel: "Normal",
		},
		Classification: models.Classification{Label: models.FaultNormal, Severity: models.SeverityNormal},
	}, nil
}

func mustStruct(t *testing.T, m map[string]any) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(m)
	if err != nil {
		t.Fatalf("struct: %v", err)
	}
	return s
}

func TestGetDashboardBeforeDiagnosis(t *testing.T) {
	service := NewDashboardService(nil, &diagnoserStub{}, nil)

	resp, err := service.GetDashboard(context.Background(), &structpb.Struct{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fields := resp.GetFields()
	if fields["has_report"].GetBoolValue() {
		t.Fatalf("expected no report yet")
	}
	if got := fields["source"].GetStructValue().GetFields()["name"].GetStringValue(); got != "Normal - Cruise" {
		t.Fatalf("unexpected initial source %q", got)
	}
	if got := fields["reading"].GetStructValue().GetFields()["Shaft_RPM"].GetNumberValue(); got != 950 {
		t.Fatalf("unexpected initial rpm %v", got)
	}
}

func TestDiagnoseStoresReport(t *testing.T) {
	stub := &diagnoserStub{}
	service := NewDashboardService(nil, stub, nil)

	resp, err := service.Diagnose(context.Background(), &structpb.Struct{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.GetFields()["id"].GetStringValue() != "report-1" {
		t.Fatalf("unexpected response %v", resp)
	}
	if stub.source.Name() != "Normal - Cruise" {
		t.Fatalf("expected session reading to be used, got %+v", stub.source)
	}

	state := service.State()
	if state.Report == nil || state.Report.ID != "report-1" || state.Banner != "" {
		t.Fatalf("unexpected state %+v", state)
	}
}

func TestDiagnoseWithReadingIsCustom(t *testing.T) {
	stub := &diagnoserStub{}
	service := NewDashboardService(nil, stub, nil)

	req := mustStruct(t, map[string]any{"reading": map[string]any{"Oil_Temp": 101.5, "Bogus": 3}})
	if _, err := service.Diagnose(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !stub.source.IsCustom() {
		t.Fatalf("expected custom source, got %+v", stub.source)
	}
	if stub.reading.Get(models.FieldOilTemp) != 101.5 || stub.reading.Get(models.FieldShaftRPM) != 0 {
		t.Fatalf("unexpected reading %+v", stub.reading)
	}
	if len(stub.reading) != len(models.SensorFields) {
		t.Fatalf("expected complete reading, got %d fields", len(stub.reading))
	}
}

func TestDiagnoseRejectsNonNumericReading(t *testing.T) {
	stub := &diagnoserStub{}
	service := NewDashboardService(nil, stub, nil)

	req := mustStruct(t, map[string]any{"reading": map[string]any{"Oil_Temp": "hot"}})
	_, err := service.Diagnose(context.Background(), req)
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("expected invalid argument, got %v", err)
	}
	if stub.calls != 0 {
		t.Fatalf("pipeline should not run on invalid input")
	}
}

func TestDiagnoseFailureKeepsPreviousReport(t *testing.T) {
	stub := &diagnoserStub{}
	service := NewDashboardService(nil, stub, nil)
	if _, err := service.Diagnose(context.Background(), &structpb.Struct{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stub.err = utils.NewAppError("predict", "Model not loaded", errors.New("503"))
	_, err := service.Diagnose(context.Background(), &structpb.Struct{})
	st, _ := status.FromError(err)
	if st.Code() != codes.Unavailable || st.Message() != "Model not loaded" {
		t.Fatalf("expected unavailable with detail, got %v", err)
	}

	state := service.State()
	if state.Banner != "Model not loaded" {
		t.Fatalf("expected banner, got %q", state.Banner)
	}
	if state.Report == nil || state.Report.ID != "report-1" {
		t.Fatalf("previous report should be kept, got %+v", state.Report)
	}

	if _, err := service.CycleScenario(context.Background(), mustStruct(t, map[string]any{"category": "minor"})); err != nil {
		t.Fatalf("cycle: %v", err)
	}
	if service.State().Banner != "" {
		t.Fatalf("loading a preset should clear the banner")
	}
}

func TestDiagnoseFailureWithoutDetail(t *testing.T) {
	service := NewDashboardService(nil, &diagnoserStub{err: errors.New("dial tcp: refused")}, nil)
	_, err := service.Diagnose(context.Background(), &structpb.Struct{})
	st, _ := status.FromError(err)
	if st.Code() != codes.Unavailable || st.Message() != "Unable to connect to prediction service. Please try again." {
		t.Fatalf("expected generic message, got %v", err)
	}
}

func TestCycleScenario(t *testing.T) {
	service := NewDashboardService(nil, &diagnoserStub{}, nil)

	resp, err := service.CycleScenario(context.Background(), mustStruct(t, map[string]any{"category": "normal"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := resp.GetFields()["name"].GetStringValue(); got != "Normal - Cruise" {
		t.Fatalf("expected Normal - Cruise, got %q", got)
	}
	resp, err = service.CycleScenario(context.Background(), mustStruct(t, map[string]any{"category": "normal"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := resp.GetFields()["name"].GetStringValue(); got != "Normal - High Load" {
		t.Fatalf("expected Normal - High Load, got %q", got)
	}

	for _, req := range []*structpb.Struct{
		mustStruct(t, map[string]any{"category": "custom"}),
		mustStruct(t, map[string]any{"category": "bogus"}),
		{},
	} {
		if _, err := service.CycleScenario(context.Background(), req); status.Code(err) != codes.InvalidArgument {
			t.Fatalf("expected invalid argument for %v, got %v", req, err)
		}
	}
}

func TestEditField(t *testing.T) {
	service := NewDashboardService(nil, &diagnoserStub{}, nil)

	resp, err := service.EditField(context.Background(), mustStruct(t, map[string]any{"field": "Vibration_X", "value": 0.4}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	source := resp.GetFields()["source"].GetStructValue().GetFields()
	if source["kind"].GetStringValue() != "custom" || source["name"].GetStringValue() != "Custom" {
		t.Fatalf("expected custom source, got %v", source)
	}

	if _, err := service.EditField(context.Background(), mustStruct(t, map[string]any{"field": "Nope", "value": 1})); status.Code(err) != codes.InvalidArgument {
		t.Fatalf("expected invalid argument, got %v", err)
	}
	if _, err := service.EditField(context.Background(), mustStruct(t, map[string]any{"field": "Oil_Temp"})); status.Code(err) != codes.InvalidArgument {
		t.Fatalf("expected invalid argument for missing value, got %v", err)
	}
}

func TestListScenarios(t *testing.T) {
	service := NewDashboardService(nil, &diagnoserStub{}, nil)

	resp, err := service.ListScenarios(context.Background(), &structpb.Struct{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	categories := resp.GetFields()["categories"].GetListValue().GetValues()
	if len(categories) != 3 {
		t.Fatalf("expected 3 categories, got %d", len(categories))
	}
	first := categories[0].GetStructValue().GetFields()
	if first["name"].GetStringValue() != "normal" || len(first["presets"].GetListValue().GetValues()) != 3 {
		t.Fatalf("unexpected first category %v", first)
	}
}

func TestDiagnoseWithoutPipeline(t *testing.T) {
	service := NewDashboardService(nil, nil, nil)
	if _, err := service.Diagnose(context.Background(), &structpb.Struct{}); status.Code(err) != codes.FailedPrecondition {
		t.Fatalf("expected failed precondition, got %v", err)
	}
}
