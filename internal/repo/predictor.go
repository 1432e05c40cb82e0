package repo

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/aimsmarine/aims-diagnostics/internal/cache"
	"github.com/aimsmarine/aims-diagnostics/internal/metrics"
	"github.com/aimsmarine/aims-diagnostics/internal/models"
	"github.com/aimsmarine/aims-diagnostics/internal/utils"
)

// GenericFailureMessage is shown when the service gives no detail of its own.
const GenericFailureMessage = "Unable to connect to prediction service. Please try again."

// maxBodyBytes bounds how much of a response is read.
const maxBodyBytes = 1 << 20

// ServiceError is a non-2xx reply from the prediction service.
type ServiceError struct {
	StatusCode int
	Status     string
	Detail     string
}

func (e *ServiceError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("prediction service returned %s", e.Status)
	}
	return fmt.Sprintf("prediction service returned %s: %s", e.Status, e.Detail)
}

// PredictorClient submits sensor readings to the remote fault-prediction service.
type PredictorClient struct {
	baseURL     string
	predictPath string
	healthPath  string
	httpClient  *http.Client
	cache       cache.Provider
	cacheTTL    time.Duration
}

// NewPredictorClient constructs a client targeting the configured prediction service.
// Successful predictions are memoized in cacheProvider for cacheTTL; a nil provider disables it.
func NewPredictorClient(baseURL, predictPath, healthPath string, timeout time.Duration, cacheProvider cache.Provider, cacheTTL time.Duration) *PredictorClient {
	if cacheProvider == nil {
		cacheProvider = cache.NoopProvider{}
	}
	return &PredictorClient{
		baseURL:     strings.TrimRight(baseURL, "/"),
		predictPath: predictPath,
		healthPath:  healthPath,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		cache:    cacheProvider,
		cacheTTL: cacheTTL,
	}
}

// Predict posts the reading and decodes the label, probabilities and attributions.
// Every failure is an *utils.AppError whose message is fit for the error banner.
func (c *PredictorClient) Predict(ctx context.Context, reading models.SensorReading) (models.PredictionResult, error) {
	if c == nil {
		return models.PredictionResult{}, utils.NewAppError("predict", GenericFailureMessage, errors.New("prediction client not initialised"))
	}
	if c.baseURL == "" {
		return models.PredictionResult{}, utils.NewAppError("predict", GenericFailureMessage, errors.New("prediction service base URL not configured"))
	}

	payload := reading.Wire()
	key, err := cacheKey(payload)
	if err == nil {
		if cached, cerr := c.cache.Get(ctx, key); cerr == nil {
			if result, derr := decodePrediction(cached); derr == nil {
				metrics.ObservePredictionCall(0, metrics.OutcomeCached)
				return result, nil
			}
			_ = c.cache.Del(ctx, key)
		}
	}

	start := time.Now()
	body, err := c.postJSON(ctx, c.predictURL(), payload)
	if err != nil {
		metrics.ObservePredictionCall(time.Since(start), metrics.OutcomeError)
		var svcErr *ServiceError
		if errors.As(err, &svcErr) && svcErr.Detail != "" {
			return models.PredictionResult{}, utils.NewAppError("predict", svcErr.Detail, err)
		}
		return models.PredictionResult{}, utils.NewAppError("predict", GenericFailureMessage, err)
	}

	result, err := decodePrediction(body)
	if err != nil {
		metrics.ObservePredictionCall(time.Since(start), metrics.OutcomeError)
		return models.PredictionResult{}, utils.NewAppError("predict", GenericFailureMessage, err)
	}
	metrics.ObservePredictionCall(time.Since(start), metrics.OutcomeSuccess)

	if key != "" {
		_ = c.cache.Set(ctx, key, body, c.cacheTTL)
	}
	return result, nil
}

// Ping calls the service health endpoint and returns its reported status.
func (c *PredictorClient) Ping(ctx context.Context) (string, error) {
	if c == nil || c.baseURL == "" {
		return "", fmt.Errorf("prediction service base URL not configured")
	}
	endpoint := c.resolvePath(c.healthPath)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("prediction service health returned %s", resp.Status)
	}
	var health struct {
		Status  string `json:"status"`
		Version string `json:"version"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&health); err != nil {
		return "", fmt.Errorf("decode health: %w", err)
	}
	if health.Status == "" {
		health.Status = "unknown"
	}
	return health.Status, nil
}

func (c *PredictorClient) predictURL() string { return c.resolvePath(c.predictPath) }

func (c *PredictorClient) resolvePath(p string) string {
	if c.baseURL == "" {
		return ""
	}
	cleaned := "/" + strings.TrimLeft(p, "/")
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return c.baseURL + cleaned
	}
	u.Path = path.Join(u.Path, cleaned)
	return u.String()
}

// postJSON sends payload and returns the raw 2xx body. Other statuses become *ServiceError.
func (c *PredictorClient) postJSON(ctx context.Context, endpoint string, payload any) ([]byte, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("empty endpoint")
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ServiceError{StatusCode: resp.StatusCode, Status: resp.Status, Detail: errorDetail(data)}
	}
	return data, nil
}

// errorDetail extracts a string "detail" field. Structured details (validation lists) are ignored.
func errorDetail(body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		return ""
	}
	var detail string
	if err := json.Unmarshal(payload.Detail, &detail); err != nil {
		return ""
	}
	return strings.TrimSpace(detail)
}

type predictionResponse struct {
	PredictionLabel string              `json:"prediction_label"`
	Probabilities   map[string]float64  `json:"probabilities"`
	ShapValues      orderedAttributions `json:"shap_values"`
}

func decodePrediction(body []byte) (models.PredictionResult, error) {
	var response predictionResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return models.PredictionResult{}, fmt.Errorf("decode response: %w", err)
	}
	if strings.TrimSpace(response.PredictionLabel) == "" {
		return models.PredictionResult{}, fmt.Errorf("decode response: missing prediction_label")
	}
	label, _ := models.ParseFaultLabel(response.PredictionLabel)
	return models.PredictionResult{
		Label:         label,
		RawLabel:      response.PredictionLabel,
		Probabilities: response.Probabilities,
		Attributions:  []models.Attribution(response.ShapValues),
		ReceivedAt:    time.Now().UTC(),
	}, nil
}

// orderedAttributions decodes a JSON object of feature -> value keeping key order,
// which a Go map would lose. A repeated key keeps its first position and its last value.
type orderedAttributions []models.Attribution

func (o *orderedAttributions) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*o = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("shap_values: expected object, got %v", tok)
	}

	var out []models.Attribution
	seen := make(map[string]int)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("shap_values: unexpected key %v", keyTok)
		}
		var value float64
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("shap_values[%s]: %w", key, err)
		}
		if i, ok := seen[key]; ok {
			out[i].Value = value
			continue
		}
		seen[key] = len(out)
		out = append(out, models.Attribution{Feature: key, Value: value})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*o = out
	return nil
}

func cacheKey(payload map[string]float64) (string, error) {
	// encoding/json sorts map keys, so equal readings hash equally.
	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return "prediction:" + hex.EncodeToString(sum[:]), nil
}
