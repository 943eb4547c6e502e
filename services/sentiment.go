package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"reputation-monitor/models"
	"reputation-monitor/utils"
)

// maxTextRunes keeps inputs inside the model's 512 token window.
const maxTextRunes = 2000

// Classifier maps texts to one prediction each, in input order.
type Classifier interface {
	Classify(ctx context.Context, texts []string) ([]models.Prediction, error)
}

// NormalizeLabel maps the model's POSITIVE/NEGATIVE vocabulary onto display
// labels. Unknown labels pass through unchanged.
func NormalizeLabel(label string) string {
	switch label {
	case "POSITIVE":
		return models.SentimentPositive
	case "NEGATIVE":
		return models.SentimentNegative
	default:
		return label
	}
}

// APIError is a non-success response from the inference endpoint.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("sentiment api: status %d: %s", e.Status, e.Message)
}

// Temporary reports whether the request may succeed later, e.g. while the
// model is still loading.
func (e *APIError) Temporary() bool {
	return e.Status == http.StatusServiceUnavailable ||
		e.Status == http.StatusTooManyRequests ||
		e.Status >= 500
}

// HFClassifierOptions configures an HFClassifier.
type HFClassifierOptions struct {
	URL        string
	Token      string
	BatchSize  int
	MaxRetries int
	Timeout    time.Duration
}

// HFClassifier calls a Hugging Face Inference API text-classification model.
type HFClassifier struct {
	http      *resty.Client
	url       string
	batchSize int
	retry     *utils.RetryConfig
	logger    *utils.Logger
}

// NewHFClassifier builds a classifier for the given endpoint.
func NewHFClassifier(opts HFClassifierOptions, logger *utils.Logger) *HFClassifier {
	client := resty.New()
	client.SetHeader("Accept", "application/json")
	if opts.Token != "" {
		client.SetAuthToken(opts.Token)
	}
	if opts.Timeout > 0 {
		client.SetTimeout(opts.Timeout)
	}

	batch := opts.BatchSize
	if batch < 1 {
		batch = 16
	}

	return &HFClassifier{
		http:      client,
		url:       opts.URL,
		batchSize: batch,
		logger:    logger,
		retry: &utils.RetryConfig{
			MaxAttempts: opts.MaxRetries,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
			Retryable: func(err error) bool {
				var apiErr *APIError
				if errors.As(err, &apiErr) {
					return apiErr.Temporary()
				}
				return true
			},
		},
	}
}

type inferenceRequest struct {
	Inputs  []string         `json:"inputs"`
	Options inferenceOptions `json:"options"`
}

type inferenceOptions struct {
	WaitForModel bool `json:"wait_for_model"`
}

// Classify sends texts in chunks of the configured batch size and returns the
// top-scoring label for each text.
func (c *HFClassifier) Classify(ctx context.Context, texts []string) ([]models.Prediction, error) {
	out := make([]models.Prediction, 0, len(texts))

	for i := 0; i < len(texts); i += c.batchSize {
		end := i + c.batchSize
		if end > len(texts) {
			end = len(texts)
		}

		batch := make([]string, 0, end-i)
		for _, t := range texts[i:end] {
			batch = append(batch, truncateRunes(t, maxTextRunes))
		}

		var preds []models.Prediction
		err := c.retry.Do(ctx, "sentiment-batch", func() error {
			var err error
			preds, err = c.classifyBatch(ctx, batch)
			return err
		})
		if err != nil {
			return nil, err
		}
		out = append(out, preds...)
	}

	c.logger.Debug("[sentiment] Classified %d texts", len(out))
	return out, nil
}

func (c *HFClassifier) classifyBatch(ctx context.Context, batch []string) ([]models.Prediction, error) {
	res, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(inferenceRequest{Inputs: batch, Options: inferenceOptions{WaitForModel: true}}).
		Post(c.url)
	if err != nil {
		return nil, fmt.Errorf("sentiment api: request: %w", err)
	}
	if res.StatusCode() != http.StatusOK {
		return nil, &APIError{Status: res.StatusCode(), Message: apiErrorMessage(res.Body())}
	}

	preds, err := decodePredictions(res.Body())
	if err != nil {
		return nil, err
	}
	if len(preds) != len(batch) {
		return nil, fmt.Errorf("sentiment api: got %d predictions for %d inputs", len(preds), len(batch))
	}
	return preds, nil
}

// decodePredictions accepts both response shapes the API produces: one list
// of scored labels per input, or a flat list with one label per input.
func decodePredictions(body []byte) ([]models.Prediction, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("sentiment api: decode response: %w", err)
	}

	preds := make([]models.Prediction, 0, len(items))
	for _, item := range items {
		item = bytes.TrimSpace(item)
		if len(item) > 0 && item[0] == '[' {
			var scored []models.Prediction
			if err := json.Unmarshal(item, &scored); err != nil {
				return nil, fmt.Errorf("sentiment api: decode scores: %w", err)
			}
			if len(scored) == 0 {
				return nil, errors.New("sentiment api: empty score list")
			}
			best := scored[0]
			for _, s := range scored[1:] {
				if s.Score > best.Score {
					best = s
				}
			}
			preds = append(preds, best)
			continue
		}

		var p models.Prediction
		if err := json.Unmarshal(item, &p); err != nil {
			return nil, fmt.Errorf("sentiment api: decode prediction: %w", err)
		}
		preds = append(preds, p)
	}
	return preds, nil
}

func apiErrorMessage(body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	msg := strings.TrimSpace(string(body))
	return truncateRunes(msg, 200)
}

func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
