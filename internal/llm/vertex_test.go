package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/vertexai/genai"
	"github.com/spherical/idcard-extractor/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	calls int
	parts []genai.Part
	resp  *genai.GenerateContentResponse
	err   error
	wait  bool
}

func (f *fakeGenerator) GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	f.calls++
	f.parts = parts
	if f.wait {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.resp, f.err
}

func textResponse(texts ...string) *genai.GenerateContentResponse {
	parts := make([]genai.Part, 0, len(texts))
	for _, s := range texts {
		parts = append(parts, genai.Text(s))
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Role: "model", Parts: parts}}},
	}
}

func TestVertexClient_Extract(t *testing.T) {
	gen := &fakeGenerator{resp: textResponse(`{"name":`, `"A"}`)}
	c := &VertexClient{model: gen, opts: Options{Model: "gemini-1.5-flash", Timeout: time.Second}, logger: nopLogger()}

	got, err := c.Extract(context.Background(), testPNG(t))
	require.NoError(t, err)
	assert.Equal(t, `{"name":"A"}`, got)
	assert.Equal(t, 1, gen.calls)

	require.Len(t, gen.parts, 2)
	assert.Equal(t, genai.Text(ExtractionPrompt), gen.parts[0])
	blob, ok := gen.parts[1].(genai.Blob)
	require.True(t, ok)
	assert.Equal(t, "image/png", blob.MIMEType)
}

func TestVertexClient_Errors(t *testing.T) {
	tests := []struct {
		name  string
		gen   *fakeGenerator
		cause error
	}{
		{"call failure", &fakeGenerator{err: errors.New("permission denied")}, nil},
		{"no candidates", &fakeGenerator{resp: &genai.GenerateContentResponse{}}, domain.ErrEmptyModelResponse},
		{"timeout", &fakeGenerator{wait: true}, domain.ErrExtractionTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &VertexClient{model: tt.gen, opts: Options{Timeout: 50 * time.Millisecond}, logger: nopLogger()}

			_, err := c.Extract(context.Background(), testPNG(t))
			require.Error(t, err)
			assert.Equal(t, domain.KindExtractionFailure, domain.KindOf(err))
			if tt.cause != nil {
				assert.True(t, errors.Is(err, tt.cause))
			}
			assert.Equal(t, 1, tt.gen.calls)
		})
	}
}

func TestCandidateText(t *testing.T) {
	assert.Empty(t, candidateText(nil))
	assert.Empty(t, candidateText(&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}}))

	resp := textResponse("a", "b")
	resp.Candidates[0].Content.Parts = append(resp.Candidates[0].Content.Parts, genai.ImageData("png", []byte{1}))
	assert.Equal(t, "ab", candidateText(resp))
}

func TestNewVertexClient_RequiresProject(t *testing.T) {
	_, err := NewVertexClient(context.Background(), vertexConfig("", "us-central1"), Options{}, nil)
	assert.Error(t, err)
}
