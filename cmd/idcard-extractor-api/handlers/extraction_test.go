package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/spherical/idcard-extractor/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type processorFunc func(ctx context.Context, doc domain.UploadedDocument) (*domain.ExtractedRecord, error)

func (f processorFunc) Process(ctx context.Context, doc domain.UploadedDocument) (*domain.ExtractedRecord, error) {
	return f(ctx, doc)
}

func multipartRequest(t *testing.T, field, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/extract-id-data", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body, 1)
	return body["error"]
}

func TestExtract_PassesUploadThrough(t *testing.T) {
	var got domain.UploadedDocument
	name := "A"
	h := NewExtractionHandler(nil, processorFunc(func(ctx context.Context, doc domain.UploadedDocument) (*domain.ExtractedRecord, error) {
		got = doc
		return &domain.ExtractedRecord{Name: &name}, nil
	}), 1<<20)

	rec := httptest.NewRecorder()
	h.Extract(rec, multipartRequest(t, "document", "card.pdf", []byte("%PDF-1.4 body")))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "card.pdf", got.Filename)
	assert.Equal(t, []byte("%PDF-1.4 body"), got.Content)
	assert.Contains(t, rec.Body.String(), `"name":"A"`)
}

func TestExtract_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "invalid input",
			err:        domain.Classify(domain.InvalidInputError("invalid file type, expected a .pdf document", nil), domain.StageValidate, "id.txt"),
			wantStatus: http.StatusBadRequest,
			wantMsg:    `validation failed for "id.txt": invalid file type`,
		},
		{
			name:       "render failure",
			err:        domain.Classify(domain.RenderError("failed to process document", nil), domain.StageRasterize, "a.pdf"),
			wantStatus: http.StatusBadRequest,
			wantMsg:    "rasterization failed",
		},
		{
			name:       "extraction timeout",
			err:        domain.Classify(domain.ExtractionError("model request timed out", domain.ErrExtractionTimeout), domain.StageExtract, "a.pdf"),
			wantStatus: http.StatusBadRequest,
			wantMsg:    "model request timed out",
		},
		{
			name:       "parse failure",
			err:        domain.Classify(domain.ParseError("model response is not valid JSON", nil), domain.StageParse, "a.pdf"),
			wantStatus: http.StatusBadRequest,
			wantMsg:    "parsing failed",
		},
		{
			name:       "internal fault",
			err:        domain.Classify(domain.InternalError("unexpected error", errors.New("secret detail")), domain.StageExtract, "a.pdf"),
			wantStatus: http.StatusInternalServerError,
			wantMsg:    "unexpected error",
		},
		{
			name:       "unclassified error",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantMsg:    "unexpected error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewExtractionHandler(nil, processorFunc(func(context.Context, domain.UploadedDocument) (*domain.ExtractedRecord, error) {
				return nil, tt.err
			}), 1<<20)

			rec := httptest.NewRecorder()
			h.Extract(rec, multipartRequest(t, "document", "a.pdf", []byte("x")))

			assert.Equal(t, tt.wantStatus, rec.Code)
			msg := decodeError(t, rec)
			assert.Contains(t, msg, tt.wantMsg)
			assert.NotContains(t, msg, "secret detail")
		})
	}
}

func TestExtract_PanicBecomes500(t *testing.T) {
	h := NewExtractionHandler(nil, processorFunc(func(context.Context, domain.UploadedDocument) (*domain.ExtractedRecord, error) {
		panic("kaboom")
	}), 1<<20)

	rec := httptest.NewRecorder()
	h.Extract(rec, multipartRequest(t, "document", "a.pdf", []byte("x")))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "unexpected failure", decodeError(t, rec))
}

func TestExtract_UploadRejections(t *testing.T) {
	called := false
	h := NewExtractionHandler(nil, processorFunc(func(context.Context, domain.UploadedDocument) (*domain.ExtractedRecord, error) {
		called = true
		return &domain.ExtractedRecord{}, nil
	}), 1024)

	t.Run("oversize", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.Extract(rec, multipartRequest(t, "document", "big.pdf", bytes.Repeat([]byte("a"), 2048)))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decodeError(t, rec), "upload limit")
	})

	t.Run("not multipart", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/extract-id-data", strings.NewReader(`{"file":"x"}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		h.Extract(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decodeError(t, rec), "multipart")
	})

	t.Run("wrong field", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.Extract(rec, multipartRequest(t, "upload", "a.pdf", []byte("x")))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decodeError(t, rec), `"document"`)
	})

	assert.False(t, called)
}
