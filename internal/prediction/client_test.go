package prediction

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitaltrack/vitaltrack-api/internal/model"
	apperrors "github.com/vitaltrack/vitaltrack-api/pkg/errors"
)

func testFeatures() *model.FeatureVector {
	return &model.FeatureVector{
		Age: 52, Gender: 1, Height: 170, Weight: 70,
		ApHi: 140, ApLo: 90,
		Cholesterol: 2, Gluc: 1,
		Smoke: 0, Alco: 0, Active: 1,
	}
}

func TestPredictSuccess(t *testing.T) {
	var gotPath, gotContentType string
	var gotBody map[string]interface{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"prediction_class": 1,
			"prediction_probabilities": {"low_risk_proba": 0.18, "high_risk_proba": 0.82},
			"send_alert": true
		}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, nil)
	result, err := client.Predict(context.Background(), testFeatures())
	require.NoError(t, err)

	assert.Equal(t, "/predict_risk", gotPath)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, float64(140), gotBody["ap_hi"])
	assert.Equal(t, float64(90), gotBody["ap_lo"])
	assert.Len(t, gotBody, 11)

	assert.Equal(t, 1, result.Class)
	assert.InDelta(t, 0.18, result.Probabilities.LowRisk, 1e-9)
	assert.InDelta(t, 0.82, result.Probabilities.HighRisk, 1e-9)
	assert.True(t, result.AlertTriggered)
}

func TestPredictUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": "model not loaded"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, nil)
	_, err := client.Predict(context.Background(), testFeatures())

	require.Error(t, err)
	appErr := apperrors.FromError(err)
	assert.Equal(t, apperrors.KindPredictionUpstream, appErr.Kind)
	assert.Equal(t, http.StatusInternalServerError, appErr.UpstreamStatus)
	assert.Contains(t, appErr.Message, "model not loaded")
	assert.Equal(t, http.StatusBadGateway, appErr.StatusCode())
}

func TestPredictUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	client := NewClient(srv.URL, time.Second, nil)
	_, err := client.Predict(context.Background(), testFeatures())

	require.Error(t, err)
	appErr := apperrors.FromError(err)
	assert.Equal(t, apperrors.KindPredictionUnreachable, appErr.Kind)
	assert.Equal(t, http.StatusServiceUnavailable, appErr.StatusCode())
}

func TestPredictTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer func() {
		close(release)
		srv.Close()
	}()

	client := NewClient(srv.URL, 50*time.Millisecond, nil)
	_, err := client.Predict(context.Background(), testFeatures())

	require.Error(t, err)
	assert.Equal(t, apperrors.KindPredictionUnreachable, apperrors.FromError(err).Kind)
}

func TestPredictMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json at all`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, nil)
	_, err := client.Predict(context.Background(), testFeatures())

	require.Error(t, err)
	appErr := apperrors.FromError(err)
	assert.Equal(t, apperrors.KindPredictionUpstream, appErr.Kind)
	assert.Contains(t, appErr.Message, "malformed response")
}

func TestPredictSingleAttempt(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, nil)
	_, err := client.Predict(context.Background(), testFeatures())

	require.Error(t, err)
	assert.Equal(t, 1, calls, "failed calls must not be retried")
}
