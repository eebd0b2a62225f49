/*
PURPOSE:
  Text-generation and embedding capabilities backed by an OpenAI-compatible
  API (Together by default).

REQUIREMENTS:
  User-specified:
  - complete(system, user, sampling) -> text.
  - embed(inputs) -> vectors, order-preserving.

  Implementation-discovered:
  - Every call needs its own timeout so a stalled request only fails that
    branch (it surfaces as a scoring or model error upstream).
  - Concurrent model branches share one rate limiter.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine, internal/scoring, internal/character
  - Uses: internal/model, internal/output

ERROR HANDLING:
  - Retries 429, 5xx and transport errors up to MaxRetries with RetryDelay.
  - Other API errors are returned immediately, wrapped with the operation name.

IMPLEMENTATION RULES:
  - Callers depend on the Completer / Embedder interfaces, never on *Client.

USAGE:
  c := llm.New(llm.Options{BaseURL: cfg.BaseURL, APIKey: cfg.APIKey})
  text, err := c.Complete(ctx, llm.CompletionRequest{...})

SELF-HEALING INSTRUCTIONS:
  - If the provider changes its endpoint, update BaseURL in config.

RELATED FILES:
  - internal/config/config.go

MAINTENANCE:
  - Update when adding providers that are not OpenAI-compatible.
*/

package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/daryltucker/persona-runner/internal/model"
	"github.com/daryltucker/persona-runner/internal/output"
)

// CompletionRequest is a single system+user generation call.
type CompletionRequest struct {
	Model        string
	SystemPrompt string
	UserPrompt   string
	Sampling     model.SamplingParams
}

// Completer produces a single completion text.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// Embedder returns one vector per input, index-aligned with inputs.
type Embedder interface {
	Embed(ctx context.Context, model string, inputs []string) ([][]float32, error)
}

// Options configures a Client.
type Options struct {
	BaseURL           string
	APIKey            string
	MaxRetries        int
	RetryDelay        time.Duration
	CallTimeout       time.Duration
	RequestsPerSecond float64
	HTTPClient        *http.Client
}

// Client implements Completer and Embedder.
type Client struct {
	api     *openai.Client
	opts    Options
	limiter *rate.Limiter
}

// New creates a Client.
func New(opts Options) *Client {
	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	}
	if opts.HTTPClient != nil {
		cfg.HTTPClient = opts.HTTPClient
	}
	if opts.MaxRetries < 1 {
		opts.MaxRetries = 1
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), max(1, int(opts.RequestsPerSecond)))
	}

	return &Client{
		api:     openai.NewClientWithConfig(cfg),
		opts:    opts,
		limiter: limiter,
	}
}

// Complete runs a chat completion and returns the trimmed text.
func (c *Client) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	var messages []openai.ChatCompletionMessage
	if req.SystemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.SystemPrompt})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.UserPrompt})

	// Zero Temperature/TopP are omitted on the wire; config.Validate rejects them.
	chatReq := openai.ChatCompletionRequest{
		Model:            req.Model,
		Messages:         messages,
		MaxTokens:        req.Sampling.MaxTokens,
		Temperature:      req.Sampling.Temperature,
		TopP:             req.Sampling.TopP,
		FrequencyPenalty: req.Sampling.FrequencyPenalty,
	}

	var text string
	err := c.do(ctx, "completion", req.Model, func(callCtx context.Context) error {
		resp, err := c.api.CreateChatCompletion(callCtx, chatReq)
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return errNoChoices
		}
		text = strings.TrimSpace(resp.Choices[0].Message.Content)
		return nil
	})
	return text, err
}

// Embed requests embeddings for inputs in one batch.
func (c *Client) Embed(ctx context.Context, embedModel string, inputs []string) ([][]float32, error) {
	if len(inputs) == 0 {
		return nil, nil
	}
	embReq := openai.EmbeddingRequestStrings{
		Input: inputs,
		Model: openai.EmbeddingModel(embedModel),
	}

	var vectors [][]float32
	err := c.do(ctx, "embedding", embedModel, func(callCtx context.Context) error {
		resp, err := c.api.CreateEmbeddings(callCtx, embReq)
		if err != nil {
			return err
		}
		vectors, err = alignEmbeddings(resp.Data, len(inputs))
		return err
	})
	return vectors, err
}

var errNoChoices = errors.New("no choices returned")

// alignEmbeddings orders vectors by their reported index, falling back to
// response order when the indices are not a permutation of 0..n-1.
func alignEmbeddings(data []openai.Embedding, n int) ([][]float32, error) {
	if len(data) != n {
		return nil, fmt.Errorf("expected %d embeddings, got %d", n, len(data))
	}
	out := make([][]float32, n)
	byIndex := true
	for _, d := range data {
		if d.Index < 0 || d.Index >= n || out[d.Index] != nil {
			byIndex = false
			break
		}
		out[d.Index] = d.Embedding
	}
	if !byIndex {
		for i, d := range data {
			out[i] = d.Embedding
		}
	}
	for i, v := range out {
		if len(v) == 0 {
			return nil, fmt.Errorf("empty embedding at index %d", i)
		}
	}
	return out, nil
}

// do runs fn with the rate limiter, a per-call timeout and the retry policy.
func (c *Client) do(ctx context.Context, op, modelName string, fn func(context.Context) error) error {
	var lastErr error
	for i := 0; i < c.opts.MaxRetries; i++ {
		if i > 0 {
			output.Logger.Info("Retrying request...", "op", op, "model", modelName, "attempt", i+1)
			select {
			case <-ctx.Done():
				return fmt.Errorf("%s %s: %w", op, modelName, ctx.Err())
			case <-time.After(c.opts.RetryDelay):
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%s %s: rate limiter: %w", op, modelName, err)
		}

		callCtx, cancel := ctx, context.CancelFunc(func() {})
		if c.opts.CallTimeout > 0 {
			callCtx, cancel = context.WithTimeout(ctx, c.opts.CallTimeout)
		}
		err := fn(callCtx)
		cancel()
		if err == nil {
			return nil
		}

		lastErr = fmt.Errorf("%s %s: %w", op, modelName, err)
		if ctx.Err() != nil || !retryable(err) {
			return lastErr
		}
		output.Logger.Warn("Request failed", "op", op, "model", modelName, "attempt", i+1, "error", err)
	}
	return lastErr
}

func retryable(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return retryableStatus(apiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return retryableStatus(reqErr.HTTPStatusCode)
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	// Transport failures and per-call timeouts.
	return true
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}
