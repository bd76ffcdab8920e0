// Package extractor is the public entry point for ID card extraction. It wires
// the PDF, model and parsing stages together from a single configuration.
package extractor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spherical/idcard-extractor/internal/config"
	"github.com/spherical/idcard-extractor/internal/domain"
	"github.com/spherical/idcard-extractor/internal/extract"
	"github.com/spherical/idcard-extractor/internal/llm"
	"github.com/spherical/idcard-extractor/internal/observability"
	"github.com/spherical/idcard-extractor/internal/parse"
	"github.com/spherical/idcard-extractor/internal/pdf"
)

// Re-export types for the public API
type (
	Config   = config.Config
	Record   = domain.ExtractedRecord
	Document = domain.UploadedDocument
	Error    = domain.Error
	Kind     = domain.Kind
	Event    = extract.Event
	State    = extract.State
)

// Client is the main entry point for the extractor library.
type Client struct {
	service  *extract.Service
	provider llm.Provider
	logger   *observability.Logger
}

// Option customises a Client.
type Option func(*options)

type options struct {
	provider llm.Provider
}

// WithExtractor replaces the configured model provider. The client takes
// ownership and closes it on Close.
func WithExtractor(p llm.Provider) Option {
	return func(o *options) {
		o.provider = p
	}
}

// NewClient loads .env and the YAML file named by CONFIG_PATH, then builds a
// client from the result.
func NewClient(ctx context.Context, logger *observability.Logger) (*Client, error) {
	_ = godotenv.Load() // Ignore error if .env doesn't exist

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		return nil, err
	}
	return NewClientWithConfig(ctx, cfg, logger)
}

// NewClientWithConfig creates a client with custom configuration.
func NewClientWithConfig(ctx context.Context, cfg *Config, logger *observability.Logger, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		logger = observability.Nop()
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	provider := o.provider
	if provider == nil {
		p, err := llm.New(ctx, cfg.LLM, logger)
		if err != nil {
			return nil, fmt.Errorf("init llm provider: %w", err)
		}
		provider = p
	}

	service := extract.NewService(extract.Dependencies{
		Validator:  pdf.NewValidator(),
		Inspector:  pdf.NewInspector(),
		Rasterizer: pdf.NewRasterizer(cfg.Render.DPI, logger),
		Extractor:  provider,
		Parser:     parse.NewParser(logger),
	}, logger)

	return &Client{
		service:  service,
		provider: provider,
		logger:   logger,
	}, nil
}

// Process runs doc through every stage and returns the extracted record.
// Errors are *Error values carrying the failing stage and filename.
func (c *Client) Process(ctx context.Context, doc Document) (*Record, error) {
	return c.service.Process(ctx, doc)
}

// ProcessWithEvents is Process with state transitions reported on eventCh.
func (c *Client) ProcessWithEvents(ctx context.Context, doc Document, eventCh chan<- Event) (*Record, error) {
	return c.service.ProcessWithEvents(ctx, doc, eventCh)
}

// ProcessFile reads path and processes it under its base name.
func (c *Client) ProcessFile(ctx context.Context, path string, eventCh chan<- Event) (*Record, error) {
	name := filepath.Base(path)
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.Classify(domain.InvalidInputError("failed to read file", err), domain.StageUpload, name)
	}
	return c.service.ProcessWithEvents(ctx, Document{
		Filename: name,
		Content:  content,
	}, eventCh)
}

// Close releases the model provider.
func (c *Client) Close() error {
	if c.provider == nil {
		return nil
	}
	return c.provider.Close()
}
