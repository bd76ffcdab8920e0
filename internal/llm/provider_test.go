package llm

import (
	"context"
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/spherical/idcard-extractor/internal/config"
	"github.com/spherical/idcard-extractor/internal/domain"
	"github.com/spherical/idcard-extractor/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nopLogger() *observability.Logger {
	return observability.Nop()
}

func vertexConfig(project, region string) config.VertexConfig {
	return config.VertexConfig{ProjectID: project, Region: region}
}

func TestNew_SelectsProvider(t *testing.T) {
	cfg := config.DefaultConfig().LLM
	cfg.OpenRouter.APIKey = "k"
	cfg.OpenAI.APIKey = "k"

	p, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.IsType(t, &Client{}, p)

	cfg.Provider = config.ProviderOpenAI
	p, err = New(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.IsType(t, &OpenAIClient{}, p)
	assert.NoError(t, p.Close())

	cfg.Provider = "smoke-signals"
	_, err = New(context.Background(), cfg, nil)
	assert.Error(t, err)
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.LLMConfig{Model: "m", Timeout: 3 * time.Second, Temperature: 0.2, MaxTokens: 99}

	assert.Equal(t, Options{Model: "m", Timeout: 3 * time.Second, Temperature: 0.2, MaxTokens: 99}, OptionsFromConfig(cfg))
}

func TestExtractorFunc(t *testing.T) {
	var got []byte
	f := ExtractorFunc(func(ctx context.Context, image []byte) (string, error) {
		got = image
		return "ok", nil
	})

	var p Provider = f
	out, err := p.Extract(context.Background(), []byte{1, 2})
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, []byte{1, 2}, got)
	assert.NoError(t, p.Close())
}

func TestExtractionPrompt_NamesEveryRecordKey(t *testing.T) {
	// the JSON template inside the prompt must be a valid object with the record keys
	tmpl := regexp.MustCompile(`(?s)\{\n.*?\n\}`).FindString(ExtractionPrompt)
	require.NotEmpty(t, tmpl)

	var fields map[string]any
	require.NoError(t, json.Unmarshal([]byte(tmpl), &fields))

	for _, key := range domain.RecordFields {
		assert.Contains(t, fields, key)
	}
	assert.Len(t, fields, len(domain.RecordFields))
	assert.NotEmpty(t, PromptVersion)
}
