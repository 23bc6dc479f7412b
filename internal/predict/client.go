// Package predict is the external prediction collaborator. It proposes raw
// forecast candidates via a chat-completion API; the projection engine treats
// every candidate as untrusted input and validates or discards it.
package predict

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/mhazlan/ordready/internal/httputil"
	"github.com/mhazlan/ordready/internal/metrics"
	"github.com/mhazlan/ordready/internal/models"
)

const defaultModel = openai.ChatModelGPT4o

// Client requests forecast candidates from the prediction service.
type Client struct {
	client openai.Client
	model  string
}

// NewClient builds a prediction client from an API key.
func NewClient(apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("prediction API key not set")
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(httputil.NewClient()),
	)

	return &Client{
		client: client,
		model:  defaultModel,
	}, nil
}

// Propose requests a raw forecast candidate for the given input. The returned
// bytes are the model's JSON payload, unvalidated. Rate-limit style failures
// are retried with exponential backoff; anything else fails immediately.
func (c *Client) Propose(ctx context.Context, input models.ForecastingInput) ([]byte, error) {
	prompt := BuildPrompt(input)

	var content string
	operation := func() error {
		start := time.Now()
		resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
			Model: c.model,
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.SystemMessage(systemPrompt),
				openai.UserMessage(prompt),
			},
		})
		metrics.PredictionLatency.Observe(time.Since(start).Seconds())

		if err != nil {
			var apiErr *openai.Error
			if errors.As(err, &apiErr) && apiErr.StatusCode == 429 {
				metrics.PredictionCallsTotal.WithLabelValues("rate_limited").Inc()
				return fmt.Errorf("prediction rate limited: %w", err)
			}
			metrics.PredictionCallsTotal.WithLabelValues("error").Inc()
			return backoff.Permanent(fmt.Errorf("prediction request: %w", err))
		}

		if len(resp.Choices) == 0 {
			metrics.PredictionCallsTotal.WithLabelValues("empty").Inc()
			return backoff.Permanent(errors.New("prediction returned no choices"))
		}

		metrics.PredictionCallsTotal.WithLabelValues("ok").Inc()
		content = resp.Choices[0].Message.Content
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 2 * time.Minute
	if err := backoff.Retry(operation, backoff.WithContext(bo, ctx)); err != nil {
		return nil, err
	}

	payload := stripCodeFence(content)
	log.Printf("prediction candidate received (%d bytes)", len(payload))
	return []byte(payload), nil
}

// stripCodeFence unwraps ```json fenced responses before they reach the
// engine's validator.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
