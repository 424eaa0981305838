// Package llm talks to an OpenAI-compatible chat-completion endpoint.
package llm

import (
	"context"
	"edulearn/backend/utils"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// Config is fixed for the life of the process.
type Config struct {
	BaseURL    string
	APIKey     string
	Model      string
	Timeout    time.Duration
	MaxRetries int
	Backoff    time.Duration
}

type Client struct {
	cfg    Config
	openai *openai.Client
	log    *utils.Logger
}

// UpstreamError is returned when the completion service cannot be reached or
// answers with a non-2xx status.
type UpstreamError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("chat completion: %v", e.Err)
	}
	return fmt.Sprintf("chat completion http %d: %s", e.StatusCode, e.Body)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

func (e *UpstreamError) retryable() bool {
	if e.StatusCode == 0 {
		return !errors.Is(e.Err, context.Canceled)
	}
	return e.StatusCode == http.StatusRequestTimeout ||
		e.StatusCode == http.StatusTooManyRequests ||
		e.StatusCode >= 500
}

func NewClient(cfg Config, log *utils.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("missing OPENROUTER_API_KEY")
	}
	if log == nil {
		return nil, errors.New("logger required")
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}

	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	oc.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &Client{
		cfg:    cfg,
		openai: openai.NewClientWithConfig(oc),
		log:    log.With("service", "llm"),
	}, nil
}

// Complete sends one system+user conversation and returns the trimmed content
// of the first choice. A response without that shape yields "" and no error.
// An empty model selects the configured default.
func (c *Client) Complete(ctx context.Context, system, user, model string) (string, error) {
	if model == "" {
		model = c.cfg.Model
	}
	req := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	}

	resp, err := c.completeWithRetry(ctx, req)
	if err != nil {
		var upErr *UpstreamError
		if errors.As(err, &upErr) {
			return "", err
		}
		c.log.Warn("chat completion body is not JSON", "model", model, "error", err)
		return "", nil
	}
	if len(resp.Choices) == 0 {
		c.log.Warn("chat completion without choices", "model", model)
		return "", nil
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (c *Client) completeWithRetry(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	backoff := c.cfg.Backoff
	for attempt := 0; ; attempt++ {
		resp, err := c.openai.CreateChatCompletion(ctx, req)
		if err == nil {
			return resp, nil
		}
		upErr := upstreamError(err)
		if upErr == nil {
			return resp, err
		}
		if !upErr.retryable() || attempt >= c.cfg.MaxRetries || ctx.Err() != nil {
			return resp, upErr
		}

		c.log.Warn("chat completion retrying",
			"attempt", attempt+1,
			"max_retries", c.cfg.MaxRetries,
			"sleep", backoff.String(),
			"error", upErr.Error(),
		)
		select {
		case <-ctx.Done():
			return resp, &UpstreamError{Err: ctx.Err()}
		case <-time.After(backoff):
		}
		backoff *= 2
	}
}

// upstreamError folds the SDK's status errors and transport failures into
// one type. It returns nil for a 2xx answer whose body is not the expected
// JSON.
func upstreamError(err error) *UpstreamError {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &UpstreamError{StatusCode: apiErr.HTTPStatusCode, Body: apiErr.Message, Err: err}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &UpstreamError{StatusCode: reqErr.HTTPStatusCode, Body: reqErr.Error(), Err: err}
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return &UpstreamError{Err: err}
	}
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) || errors.Is(err, io.EOF) {
		return nil
	}
	return &UpstreamError{Err: err}
}
