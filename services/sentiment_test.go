package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reputation-monitor/models"
)

func TestNormalizeLabel(t *testing.T) {
	require.Equal(t, models.SentimentPositive, NormalizeLabel("POSITIVE"))
	require.Equal(t, models.SentimentNegative, NormalizeLabel("NEGATIVE"))
	require.Equal(t, "NEUTRAL", NormalizeLabel("NEUTRAL"))
	require.Equal(t, "positive", NormalizeLabel("positive"))
}

func TestDecodePredictions(t *testing.T) {
	nested := []byte(`[
		[{"label":"POSITIVE","score":0.98},{"label":"NEGATIVE","score":0.02}],
		[{"label":"POSITIVE","score":0.10},{"label":"NEGATIVE","score":0.90}]
	]`)
	preds, err := decodePredictions(nested)
	require.NoError(t, err)
	require.Equal(t, []models.Prediction{
		{Label: "POSITIVE", Score: 0.98},
		{Label: "NEGATIVE", Score: 0.90},
	}, preds)

	flat := []byte(`[{"label":"NEGATIVE","score":0.7}]`)
	preds, err = decodePredictions(flat)
	require.NoError(t, err)
	require.Equal(t, []models.Prediction{{Label: "NEGATIVE", Score: 0.7}}, preds)

	_, err = decodePredictions([]byte(`{"error":"boom"}`))
	require.Error(t, err)
}

func TestHFClassifierBatchesInOrder(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		var req inferenceRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.Options.WaitForModel)

		out := make([][]models.Prediction, 0, len(req.Inputs))
		for _, in := range req.Inputs {
			label := "POSITIVE"
			if in == "bad" {
				label = "NEGATIVE"
			}
			out = append(out, []models.Prediction{{Label: label, Score: 0.9}, {Label: "OTHER", Score: 0.1}})
		}
		_ = json.NewEncoder(w).Encode(out)
	}))
	defer srv.Close()

	c := NewHFClassifier(HFClassifierOptions{URL: srv.URL, Token: "tok", BatchSize: 2, MaxRetries: 1}, newTestLogger())
	preds, err := c.Classify(context.Background(), []string{"good", "bad", "fine", "bad", "ok"})
	require.NoError(t, err)
	require.Len(t, preds, 5)
	require.Equal(t, "NEGATIVE", preds[1].Label)
	require.Equal(t, "NEGATIVE", preds[3].Label)
	require.Equal(t, "POSITIVE", preds[4].Label)
	require.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestHFClassifierRetriesWhileLoading(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"error":"Model is currently loading","estimated_time":1}`))
			return
		}
		_, _ = w.Write([]byte(`[[{"label":"POSITIVE","score":0.8}]]`))
	}))
	defer srv.Close()

	c := NewHFClassifier(HFClassifierOptions{URL: srv.URL, BatchSize: 4, MaxRetries: 2}, newTestLogger())
	c.retry.BaseDelay = time.Millisecond

	preds, err := c.Classify(context.Background(), []string{"nice"})
	require.NoError(t, err)
	require.Equal(t, []models.Prediction{{Label: "POSITIVE", Score: 0.8}}, preds)
	require.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestHFClassifierPermanentError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"bad input"}`))
	}))
	defer srv.Close()

	c := NewHFClassifier(HFClassifierOptions{URL: srv.URL, MaxRetries: 3}, newTestLogger())
	_, err := c.Classify(context.Background(), []string{"x"})

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusBadRequest, apiErr.Status)
	require.Equal(t, "bad input", apiErr.Message)
	require.EqualValues(t, 1, atomic.LoadInt32(&calls))
}
