package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spherical/idcard-extractor/internal/config"
	"github.com/spherical/idcard-extractor/internal/domain"
	"github.com/spherical/idcard-extractor/internal/observability"
)

const (
	defaultBaseURL = "https://openrouter.ai/api/v1"
	defaultModel   = "google/gemini-2.5-flash"

	// error bodies are only kept for logs
	maxErrorBody = 4 << 10
)

// Client talks to the OpenRouter chat completions API. It sends exactly one
// non-streaming request per Extract call.
type Client struct {
	apiKey     string
	baseURL    string
	referer    string
	title      string
	opts       Options
	httpClient *http.Client
	logger     *observability.Logger
}

// Options are the per-call settings shared by all providers.
type Options struct {
	Model       string
	Timeout     time.Duration
	Temperature float64
	MaxTokens   int
}

// OptionsFromConfig extracts provider-independent settings.
func OptionsFromConfig(cfg config.LLMConfig) Options {
	return Options{
		Model:       cfg.Model,
		Timeout:     cfg.Timeout,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	}
}

// Message represents a chat message
type Message struct {
	Role    string        `json:"role"`
	Content []ContentPart `json:"content"`
}

// ContentPart represents a part of message content (text or image)
type ContentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

// ImageURL represents an image URL in the message
type ImageURL struct {
	URL string `json:"url"`
}

// Request represents the API request structure
type Request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Stream      bool      `json:"stream"`
	Temperature *float64  `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

// Response represents the API response structure
type Response struct {
	ID      string    `json:"id"`
	Choices []Choice  `json:"choices"`
	Error   *APIError `json:"error,omitempty"`
}

// Choice represents a single completion choice
type Choice struct {
	Message      ChatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

// ChatMessage is the assistant message inside a choice
type ChatMessage struct {
	Content string `json:"content"`
	Role    string `json:"role"`
}

// APIError is the error object OpenRouter embeds in failed responses
type APIError struct {
	Code    any    `json:"code"`
	Message string `json:"message"`
}

// NewClient creates a new OpenRouter client
func NewClient(cfg config.OpenRouterConfig, opts Options, logger *observability.Logger) *Client {
	if opts.Model == "" {
		opts.Model = defaultModel
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if logger == nil {
		logger = observability.Nop()
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		referer:    cfg.Referer,
		title:      cfg.Title,
		opts:       opts,
		httpClient: &http.Client{},
		logger:     logger.WithOperation("openrouter"),
	}
}

// Extract sends the page image with ExtractionPrompt and returns the model's
// text verbatim.
func (c *Client) Extract(ctx context.Context, img []byte) (string, error) {
	req, err := c.buildRequest(img)
	if err != nil {
		return "", err
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", domain.InternalError("failed to marshal model request", err)
	}

	ctx, cancel := withTimeout(ctx, c.opts.Timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", domain.InternalError("failed to build model request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	if c.referer != "" {
		httpReq.Header.Set("HTTP-Referer", c.referer)
	}
	if c.title != "" {
		httpReq.Header.Set("X-Title", c.title)
	}

	started := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", callError(ctx, "openrouter", err)
	}
	defer resp.Body.Close()

	c.logger.WithContext(ctx).Debug().
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(started)).
		Str("model", c.opts.Model).
		Msg("model responded")

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", domain.ExtractionError("model request failed",
			fmt.Errorf("openrouter: status %d: %s", resp.StatusCode, bytes.TrimSpace(snippet)))
	}

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", callError(ctx, "openrouter", fmt.Errorf("decode response: %w", err))
	}
	if out.Error != nil {
		return "", domain.ExtractionError("model request failed",
			fmt.Errorf("openrouter: %v: %s", out.Error.Code, out.Error.Message))
	}
	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return "", domain.ExtractionError(domain.ErrEmptyModelResponse.Error(), domain.ErrEmptyModelResponse)
	}

	return out.Choices[0].Message.Content, nil
}

// Close is a no-op; the client holds no long-lived resources.
func (c *Client) Close() error {
	return nil
}

// buildRequest constructs the API request with the image
func (c *Client) buildRequest(img []byte) (*Request, error) {
	format, err := decodeImage(img)
	if err != nil {
		return nil, err
	}

	msg := Message{
		Role: "user",
		Content: []ContentPart{
			{
				Type: "text",
				Text: ExtractionPrompt,
			},
			{
				Type: "image_url",
				ImageURL: &ImageURL{
					URL: dataURL(format, img),
				},
			},
		},
	}

	temperature := c.opts.Temperature
	return &Request{
		Model:       c.opts.Model,
		Messages:    []Message{msg},
		Stream:      false,
		Temperature: &temperature,
		MaxTokens:   c.opts.MaxTokens,
	}, nil
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
