package llmprovider

import (
	"context"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"chat-server/internal/config"
	"chat-server/internal/domain/llm"
	"chat-server/internal/domain/retry"
	"chat-server/internal/infrastructure/metrics"
	"chat-server/internal/utils/platformerrors"
)

// Client implements the llm.Provider interface against an OpenAI-compatible
// chat completion API.
type Client struct {
	httpClient    *resty.Client
	model         string
	maxTokens     int
	temperature   float64
	contextLength int
	retryPolicy   retry.Policy
}

// NewClient creates a Resty-backed completion client from the service config.
func NewClient(cfg *config.Config) *Client {
	httpClient := resty.New().
		SetBaseURL(cfg.CompletionAPIURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(cfg.CompletionTimeout)
	if cfg.CompletionAPIKey != "" {
		httpClient.SetAuthToken(cfg.CompletionAPIKey)
	}

	policy := retry.Policy{
		MaxRetries:      cfg.CompletionMaxRetries,
		InitialDelay:    500 * time.Millisecond,
		MaxDelay:        5 * time.Second,
		BackoffStrategy: retry.BackoffExponential,
		JitterFactor:    0.25,
	}

	return &Client{
		httpClient:    httpClient,
		model:         cfg.CompletionModel,
		maxTokens:     cfg.CompletionMaxTokens,
		temperature:   cfg.CompletionTemperature,
		contextLength: cfg.CompletionContext,
		retryPolicy:   policy,
	}
}

// GenerateReply sends the transcript to /v1/chat/completions and returns the
// first choice's content. An empty transcript is replaced by the default
// system seed, overlong transcripts are trimmed to fit the model's context
// window and transient upstream failures are retried with backoff.
func (c *Client) GenerateReply(ctx context.Context, transcript []llm.ChatMessage) (string, error) {
	if len(transcript) == 0 {
		transcript = []llm.ChatMessage{llm.DefaultSystemSeed}
	}
	transcript = llm.TrimToFit(transcript, c.contextLength).Messages

	temperature := c.temperature
	maxTokens := c.maxTokens
	req := llm.ChatCompletionRequest{
		Model:       c.model,
		Messages:    transcript,
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
	}

	start := time.Now()
	reply, err := retry.ExecuteWithResult(ctx, c.retryPolicy, func(ctx context.Context, attempt int) (string, error) {
		return c.complete(ctx, req)
	})
	if err != nil {
		metrics.RecordCompletion("error", time.Since(start).Seconds())
		return "", err
	}
	metrics.RecordCompletion("ok", time.Since(start).Seconds())
	return reply, nil
}

func (c *Client) complete(ctx context.Context, req llm.ChatCompletionRequest) (string, error) {
	var completion llm.ChatCompletionResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&completion).
		Post("/v1/chat/completions")
	if err != nil {
		return "", platformerrors.NewError(
			ctx,
			platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeGeneration,
			"completion request failed",
			err,
			"completion-transport-error",
		)
	}

	if resp.IsError() {
		apiErr := platformerrors.NewErrorWithContext(
			ctx,
			platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeGeneration,
			"completion API returned an error",
			nil,
			"completion-api-error",
			map[string]any{"status": resp.StatusCode(), "body": resp.String()},
		)
		if !retryableStatus(resp.StatusCode()) {
			return "", retry.MarkPermanent(apiErr)
		}
		return "", apiErr
	}

	if len(completion.Choices) == 0 {
		return "", retry.MarkPermanent(platformerrors.NewError(
			ctx,
			platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeGeneration,
			"completion API returned no choices",
			nil,
			"completion-empty-response",
		))
	}

	return completion.Choices[0].Message.Content, nil
}

// retryableStatus reports whether an upstream status is worth retrying.
func retryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

// Ensure interface compliance.
var _ llm.Provider = (*Client)(nil)
