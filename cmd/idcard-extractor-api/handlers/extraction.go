// Package handlers provides HTTP handlers for the extraction API.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/spherical/idcard-extractor/internal/domain"
	"github.com/spherical/idcard-extractor/internal/extract"
	"github.com/spherical/idcard-extractor/internal/observability"
)

// Upload field names, in lookup order. The second is the legacy name.
var uploadFields = []string{"document", "aadhaar"}

const (
	// multipart boundaries and part headers around the file
	formOverhead = 64 << 10
	// used when no upload limit is configured
	defaultFormMemory = 32 << 20
)

// Processor runs one uploaded document through the pipeline.
type Processor interface {
	Process(ctx context.Context, doc domain.UploadedDocument) (*domain.ExtractedRecord, error)
}

// ExtractionHandler handles ID card extraction requests.
type ExtractionHandler struct {
	logger         *observability.Logger
	processor      Processor
	maxUploadBytes int64
}

// NewExtractionHandler creates a new extraction handler.
func NewExtractionHandler(logger *observability.Logger, processor Processor, maxUploadBytes int64) *ExtractionHandler {
	if logger == nil {
		logger = observability.Nop()
	}
	return &ExtractionHandler{
		logger:         logger,
		processor:      processor,
		maxUploadBytes: maxUploadBytes,
	}
}

// Extract handles POST /extract-id-data.
func (h *ExtractionHandler) Extract(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := h.logger.WithContext(ctx)

	defer func() {
		if p := recover(); p != nil {
			log.Error().Str("panic", fmt.Sprint(p)).Msg("handler panic")
			h.writeError(w, domain.InternalError("unexpected failure", nil))
		}
	}()

	doc, err := h.readUpload(w, r)
	if err != nil {
		h.respondError(log, w, err)
		return
	}

	record, err := h.processor.Process(ctx, *doc)
	if err != nil {
		h.respondError(log, w, err)
		return
	}

	log.Info().
		Str("state", string(extract.StateResponded)).
		Str("filename", doc.Filename).
		Int("status", http.StatusOK).
		Msg("state transition")
	h.writeJSON(w, http.StatusOK, record)
}

// readUpload pulls the single file part out of the request body. The form is
// removed before returning, so nothing outlives the request on disk.
func (h *ExtractionHandler) readUpload(w http.ResponseWriter, r *http.Request) (*domain.UploadedDocument, error) {
	memory := int64(defaultFormMemory)
	if h.maxUploadBytes > 0 {
		memory = h.maxUploadBytes + formOverhead
		r.Body = http.MaxBytesReader(w, r.Body, memory)
	}

	if err := r.ParseMultipartForm(memory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, uploadError(fmt.Sprintf("file exceeds the %d byte upload limit", h.maxUploadBytes), "", err)
		}
		return nil, uploadError("expected a multipart form upload", "", err)
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			h.logger.Warn().Err(err).Msg("failed to remove multipart temp files")
		}
	}()

	file, header, err := formFile(r)
	if err != nil {
		return nil, uploadError(fmt.Sprintf("missing file upload, expected form field %q", uploadFields[0]), "", err)
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, uploadError("failed to read uploaded file", header.Filename, err)
	}
	if h.maxUploadBytes > 0 && int64(len(content)) > h.maxUploadBytes {
		return nil, uploadError(fmt.Sprintf("file exceeds the %d byte upload limit", h.maxUploadBytes), header.Filename, nil)
	}

	return &domain.UploadedDocument{
		Filename: header.Filename,
		Content:  content,
	}, nil
}

func formFile(r *http.Request) (multipart.File, *multipart.FileHeader, error) {
	var lastErr error
	for _, field := range uploadFields {
		file, header, err := r.FormFile(field)
		if err == nil {
			return file, header, nil
		}
		lastErr = err
	}
	return nil, nil, lastErr
}

func uploadError(message, filename string, err error) error {
	return domain.Classify(domain.InvalidInputError(message, err), domain.StageUpload, filename)
}

func (h *ExtractionHandler) respondError(log *observability.Logger, w http.ResponseWriter, err error) {
	de := domain.Classify(err, domain.StageUpload, "")
	evt := log.Warn()
	if de.Kind == domain.KindInternalFault {
		evt = log.Error()
	}
	evt.Str("state", string(extract.StateErrored)).
		Str("kind", string(de.Kind)).
		Int("status", domain.StatusCode(de.Kind)).
		Msg("responded with error")
	h.writeError(w, de)
}

// writeError writes {"error": msg}. The cause in de.Err is only logged.
func (h *ExtractionHandler) writeError(w http.ResponseWriter, de *domain.Error) {
	h.writeJSON(w, domain.StatusCode(de.Kind), map[string]string{"error": de.PublicMessage()})
}

func (h *ExtractionHandler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Warn().Err(err).Msg("failed to write response")
	}
}
