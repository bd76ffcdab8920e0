package llm

import (
	"context"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/spherical/idcard-extractor/internal/config"
	"github.com/spherical/idcard-extractor/internal/domain"
	"github.com/spherical/idcard-extractor/internal/observability"
)

// OpenAIClient extracts through any OpenAI-compatible endpoint using the
// official SDK. SDK retries are disabled.
type OpenAIClient struct {
	client *openai.Client
	opts   Options
	logger *observability.Logger
}

// NewOpenAIClient creates a client for cfg.BaseURL (the OpenAI API when empty).
func NewOpenAIClient(cfg config.OpenAIConfig, opts Options, logger *observability.Logger) *OpenAIClient {
	if logger == nil {
		logger = observability.Nop()
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.BaseURL))
	}

	client := openai.NewClient(reqOpts...)

	return &OpenAIClient{
		client: &client,
		opts:   opts,
		logger: logger.WithOperation("openai"),
	}
}

// Extract sends the page image with ExtractionPrompt and returns the model's
// text verbatim.
func (c *OpenAIClient) Extract(ctx context.Context, img []byte) (string, error) {
	format, err := decodeImage(img)
	if err != nil {
		return "", err
	}

	ctx, cancel := withTimeout(ctx, c.opts.Timeout)
	defer cancel()

	params := openai.ChatCompletionNewParams{
		Model: c.opts.Model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.TextContentPart(ExtractionPrompt),
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
					URL: dataURL(format, img),
				}),
			}),
		},
		Temperature: openai.Float(c.opts.Temperature),
	}
	if c.opts.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(c.opts.MaxTokens))
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", callError(ctx, "openai", err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", domain.ExtractionError(domain.ErrEmptyModelResponse.Error(), domain.ErrEmptyModelResponse)
	}

	c.logger.WithContext(ctx).Debug().
		Str("model", c.opts.Model).
		Int64("completion_tokens", resp.Usage.CompletionTokens).
		Msg("model responded")

	return resp.Choices[0].Message.Content, nil
}

// Close is a no-op for the HTTP based SDK client.
func (c *OpenAIClient) Close() error {
	return nil
}
