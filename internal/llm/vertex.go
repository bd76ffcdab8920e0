package llm

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/vertexai/genai"
	"github.com/spherical/idcard-extractor/internal/config"
	"github.com/spherical/idcard-extractor/internal/domain"
	"github.com/spherical/idcard-extractor/internal/observability"
)

// generator is the part of *genai.GenerativeModel the client uses.
type generator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// VertexClient extracts with a Gemini model on Vertex AI.
type VertexClient struct {
	base   *genai.Client
	model  generator
	opts   Options
	logger *observability.Logger
}

// NewVertexClient connects to Vertex AI using application default credentials.
func NewVertexClient(ctx context.Context, cfg config.VertexConfig, opts Options, logger *observability.Logger) (*VertexClient, error) {
	if cfg.ProjectID == "" || cfg.Region == "" {
		return nil, fmt.Errorf("vertex: project id and region cannot be empty")
	}
	if logger == nil {
		logger = observability.Nop()
	}

	base, err := genai.NewClient(ctx, cfg.ProjectID, cfg.Region)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}

	model := base.GenerativeModel(opts.Model)
	model.GenerationConfig = genai.GenerationConfig{
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr(float32(opts.Temperature)),
	}
	if opts.MaxTokens > 0 {
		model.GenerationConfig.MaxOutputTokens = genai.Ptr(int32(opts.MaxTokens))
	}

	return &VertexClient{
		base:   base,
		model:  model,
		opts:   opts,
		logger: logger.WithOperation("vertex"),
	}, nil
}

// Extract sends the page image with ExtractionPrompt and returns the text
// parts of the first candidate, concatenated.
func (c *VertexClient) Extract(ctx context.Context, img []byte) (string, error) {
	format, err := decodeImage(img)
	if err != nil {
		return "", err
	}

	ctx, cancel := withTimeout(ctx, c.opts.Timeout)
	defer cancel()

	resp, err := c.model.GenerateContent(ctx, genai.Text(ExtractionPrompt), genai.ImageData(format, img))
	if err != nil {
		return "", callError(ctx, "vertex", err)
	}

	text := candidateText(resp)
	if strings.TrimSpace(text) == "" {
		return "", domain.ExtractionError(domain.ErrEmptyModelResponse.Error(), domain.ErrEmptyModelResponse)
	}

	c.logger.WithContext(ctx).Debug().Str("model", c.opts.Model).Msg("model responded")
	return text, nil
}

// Close releases the underlying gRPC connection.
func (c *VertexClient) Close() error {
	if c.base != nil {
		return c.base.Close()
	}
	return nil
}

func candidateText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	return sb.String()
}
