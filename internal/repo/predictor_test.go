package repo

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/aimsmarine/aims-diagnostics/internal/models"
	"github.com/aimsmarine/aims-diagnostics/internal/utils"
)

const turboResponse = `{
	"prediction_label": "Turbocharger Fault",
	"probabilities": {"Normal": 0.01, "Turbocharger Fault": 0.97, "Air Intake Restriction": 0.02},
	"shap_values": {"Cylinder1_Exhaust_Temp": 0.42, "Air_Pressure": -0.31, "Shaft_RPM": 0.02}
}`

func testReading() models.SensorReading {
	return models.ReadingFromMap(map[string]float64{"Shaft_RPM": 950, "Oil_Temp": 75})
}

func TestPredictDecodesResponse(t *testing.T) {
	client := NewPredictorClient("http://predictor.local/", "predict", "/", time.Second, nil, 0)
	client.httpClient = newTestClient(roundTripFunc(func(req *http.Request) (*http.Response, error) {
		if req.Method != http.MethodPost || req.URL.Path != "/predict" {
			t.Fatalf("unexpected request %s %s", req.Method, req.URL.Path)
		}
		if ct := req.Header.Get("Content-Type"); ct != "application/json" {
			t.Fatalf("unexpected content type %q", ct)
		}
		var body map[string]float64
		data, _ := io.ReadAll(req.Body)
		if err := json.Unmarshal(data, &body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(body) != len(models.SensorFields) {
			t.Fatalf("expected %d fields, got %d", len(models.SensorFields), len(body))
		}
		if body["Shaft_RPM"] != 950 || body["Engine_Load"] != 0 {
			t.Fatalf("unexpected payload %+v", body)
		}
		return jsonResponse(http.StatusOK, turboResponse), nil
	}))

	result, err := client.Predict(context.Background(), testReading())
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if result.Label != models.FaultTurbocharger || result.RawLabel != "Turbocharger Fault" {
		t.Fatalf("unexpected label %v / %q", result.Label, result.RawLabel)
	}
	if result.Probabilities["Turbocharger Fault"] != 0.97 {
		t.Fatalf("unexpected probabilities %+v", result.Probabilities)
	}
	want := []models.Attribution{
		{Feature: "Cylinder1_Exhaust_Temp", Value: 0.42},
		{Feature: "Air_Pressure", Value: -0.31},
		{Feature: "Shaft_RPM", Value: 0.02},
	}
	if diff := cmp.Diff(want, result.Attributions); diff != "" {
		t.Fatalf("attribution order mismatch (-want +got):\n%s", diff)
	}
}

func TestPredictUnknownLabelKeepsRaw(t *testing.T) {
	client := NewPredictorClient("http://predictor.local", "/predict", "/", time.Second, nil, 0)
	client.httpClient = newTestClient(roundTripFunc(func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"prediction_label":"Gearbox","probabilities":{},"shap_values":null}`), nil
	}))
	result, err := client.Predict(context.Background(), testReading())
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if result.Label != models.FaultUnknown || result.RawLabel != "Gearbox" {
		t.Fatalf("unexpected label %v / %q", result.Label, result.RawLabel)
	}
	if len(result.Attributions) != 0 || len(result.Probabilities) != 0 {
		t.Fatalf("expected empty data, got %+v", result)
	}
}

func TestPredictServiceDetail(t *testing.T) {
	client := NewPredictorClient("http://predictor.local", "/predict", "/", time.Second, nil, 0)
	client.httpClient = newTestClient(roundTripFunc(func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusInternalServerError, `{"detail":"Model not loaded"}`), nil
	}))

	_, err := client.Predict(context.Background(), testReading())
	if err == nil {
		t.Fatalf("expected error")
	}
	var svcErr *ServiceError
	if !errors.As(err, &svcErr) || svcErr.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected ServiceError, got %v", err)
	}
	if got := utils.UserMessage(err, GenericFailureMessage); got != "Model not loaded" {
		t.Fatalf("expected detail verbatim, got %q", got)
	}
}

func TestPredictGenericMessage(t *testing.T) {
	cases := []struct {
		name string
		rt   roundTripFunc
	}{
		{"transport", func(*http.Request) (*http.Response, error) {
			return nil, errors.New("connection refused")
		}},
		{"status without detail", func(*http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusBadGateway, `<html>bad gateway</html>`), nil
		}},
		{"structured detail", func(*http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusUnprocessableEntity, `{"detail":[{"loc":["body"],"msg":"field required"}]}`), nil
		}},
		{"malformed body", func(*http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusOK, `{"prediction_label":`), nil
		}},
		{"missing label", func(*http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusOK, `{"probabilities":{"Normal":1}}`), nil
		}},
		{"shap not an object", func(*http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusOK, `{"prediction_label":"Normal","shap_values":[1,2]}`), nil
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := NewPredictorClient("http://predictor.local", "/predict", "/", time.Second, nil, 0)
			client.httpClient = newTestClient(tc.rt)
			_, err := client.Predict(context.Background(), testReading())
			if err == nil {
				t.Fatalf("expected error")
			}
			if got := utils.UserMessage(err, "fallback"); got != GenericFailureMessage {
				t.Fatalf("expected generic message, got %q", got)
			}
		})
	}
}

func TestPredictNotConfigured(t *testing.T) {
	client := NewPredictorClient("", "/predict", "/", time.Second, nil, 0)
	if _, err := client.Predict(context.Background(), testReading()); err == nil {
		t.Fatalf("expected error for empty base URL")
	}
}

func TestPredictCachesResults(t *testing.T) {
	hits := 0
	client := NewPredictorClient("http://predictor.local", "/predict", "/", time.Second, newStubCache(), time.Minute)
	client.httpClient = newTestClient(roundTripFunc(func(*http.Request) (*http.Response, error) {
		hits++
		return jsonResponse(http.StatusOK, turboResponse), nil
	}))

	ctx := context.Background()
	first, err := client.Predict(ctx, testReading())
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	second, err := client.Predict(ctx, testReading())
	if err != nil {
		t.Fatalf("cached predict: %v", err)
	}
	if hits != 1 {
		t.Fatalf("cache miss triggered network call; hits=%d", hits)
	}
	if diff := cmp.Diff(first.Attributions, second.Attributions); diff != "" {
		t.Fatalf("cached attributions differ (-first +second):\n%s", diff)
	}

	if _, err := client.Predict(ctx, testReading().With(models.FieldOilTemp, 99)); err != nil {
		t.Fatalf("predict: %v", err)
	}
	if hits != 2 {
		t.Fatalf("different reading should miss the cache; hits=%d", hits)
	}
}

func TestPredictDoesNotCacheFailures(t *testing.T) {
	hits := 0
	client := NewPredictorClient("http://predictor.local", "/predict", "/", time.Second, newStubCache(), time.Minute)
	client.httpClient = newTestClient(roundTripFunc(func(*http.Request) (*http.Response, error) {
		hits++
		return jsonResponse(http.StatusServiceUnavailable, `{"detail":"warming up"}`), nil
	}))
	for i := 0; i < 2; i++ {
		if _, err := client.Predict(context.Background(), testReading()); err == nil {
			t.Fatalf("expected error")
		}
	}
	if hits != 2 {
		t.Fatalf("failures must not be cached; hits=%d", hits)
	}
}

func TestPing(t *testing.T) {
	client := NewPredictorClient("http://predictor.local", "/predict", "/", time.Second, nil, 0)
	client.httpClient = newTestClient(roundTripFunc(func(req *http.Request) (*http.Response, error) {
		if req.Method != http.MethodGet || req.URL.Path != "/" {
			t.Fatalf("unexpected request %s %s", req.Method, req.URL.Path)
		}
		return jsonResponse(http.StatusOK, `{"message":"AIMS API is running","version":"1.0","status":"healthy"}`), nil
	}))
	status, err := client.Ping(context.Background())
	if err != nil {
		t.Fatalf("ping: %v", err)
	}
	if status != "healthy" {
		t.Fatalf("unexpected status %q", status)
	}
}

func TestPingFailure(t *testing.T) {
	client := NewPredictorClient("http://predictor.local", "/predict", "/", time.Second, nil, 0)
	client.httpClient = newTestClient(roundTripFunc(func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusServiceUnavailable, `{}`), nil
	}))
	if _, err := client.Ping(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
}

func TestDecodePredictionRepeatedFeature(t *testing.T) {
	body := `{"prediction_label":"Normal","probabilities":{"Normal":1},
		"shap_values":{"Oil_Temp":0.1,"Shaft_RPM":-0.2,"Oil_Temp":0.3}}`
	result, err := decodePrediction([]byte(body))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := []models.Attribution{
		{Feature: "Oil_Temp", Value: 0.3},
		{Feature: "Shaft_RPM", Value: -0.2},
	}
	if diff := cmp.Diff(want, result.Attributions); diff != "" {
		t.Fatalf("attributions mismatch (-want +got):\n%s", diff)
	}
}
