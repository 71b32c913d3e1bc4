package prediction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/vitaltrack/vitaltrack-api/internal/model"
	apperrors "github.com/vitaltrack/vitaltrack-api/pkg/errors"
	"github.com/vitaltrack/vitaltrack-api/pkg/metrics"
)

const predictPath = "/predict_risk"

// Predictor invokes the external risk prediction service.
type Predictor interface {
	Predict(ctx context.Context, features *model.FeatureVector) (*model.Prediction, error)
}

// Client is a single-attempt HTTP adapter for the prediction service. It
// performs no retries; callers see one of three typed failures: an upstream
// error, an unreachable service, or a local request-construction failure.
type Client struct {
	baseURL string
	http    *http.Client
	metrics *metrics.Metrics
}

func NewClient(baseURL string, timeout time.Duration, m *metrics.Metrics) *Client {
	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Timeout: timeout,
		},
		metrics: m,
	}
}

// upstreamResponse is the prediction service's wire format.
type upstreamResponse struct {
	PredictionClass         int `json:"prediction_class"`
	PredictionProbabilities struct {
		LowRiskProba  float64 `json:"low_risk_proba"`
		HighRiskProba float64 `json:"high_risk_proba"`
	} `json:"prediction_probabilities"`
	SendAlert bool `json:"send_alert"`
}

type upstreamError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (c *Client) Predict(ctx context.Context, features *model.FeatureVector) (*model.Prediction, error) {
	start := time.Now()
	result, err := c.predict(ctx, features)
	c.observe(time.Since(start), err)
	return result, err
}

func (c *Client) predict(ctx context.Context, features *model.FeatureVector) (*model.Prediction, error) {
	body, err := json.Marshal(features)
	if err != nil {
		return nil, apperrors.NewPredictionRequest(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+predictPath, bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.NewPredictionRequest(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperrors.NewPredictionUnreachable(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperrors.NewPredictionUpstream(resp.StatusCode, upstreamMessage(resp.Body))
	}

	var out upstreamResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, apperrors.NewPredictionUpstream(resp.StatusCode, fmt.Sprintf("malformed response: %v", err))
	}

	return &model.Prediction{
		Class: out.PredictionClass,
		Probabilities: model.PredictionProbabilities{
			LowRisk:  out.PredictionProbabilities.LowRiskProba,
			HighRisk: out.PredictionProbabilities.HighRiskProba,
		},
		AlertTriggered: out.SendAlert,
	}, nil
}

func upstreamMessage(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil || len(raw) == 0 {
		return "no error detail"
	}
	var detail upstreamError
	if err := json.Unmarshal(raw, &detail); err == nil {
		if detail.Error != "" {
			return detail.Error
		}
		if detail.Message != "" {
			return detail.Message
		}
	}
	return string(raw)
}

func (c *Client) observe(elapsed time.Duration, err error) {
	if c.metrics == nil {
		return
	}
	c.metrics.PredictionLatency.Observe(elapsed.Seconds())

	outcome := "success"
	if err != nil {
		outcome = string(apperrors.FromError(err).Kind)
	}
	c.metrics.PredictionCalls.WithLabelValues(outcome).Inc()
}
