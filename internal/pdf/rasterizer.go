package pdf

import (
	"bytes"
	"context"
	"fmt"
	"image/png"

	"github.com/spherical/idcard-extractor/internal/domain"
	"github.com/spherical/idcard-extractor/internal/observability"
)

// DefaultDPI is the resolution used when none is configured.
const DefaultDPI = 150

const renderFailureMessage = "failed to process document, first page could not be rendered"

// Rasterizer renders the first page of a document to PNG, entirely in memory.
type Rasterizer struct {
	dpi    float64
	logger *observability.Logger
}

// NewRasterizer creates a rasterizer rendering at dpi. A non-positive dpi
// selects DefaultDPI.
func NewRasterizer(dpi float64, logger *observability.Logger) *Rasterizer {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	if logger == nil {
		logger = observability.Nop()
	}
	return &Rasterizer{dpi: dpi, logger: logger}
}

// RasterizeFirstPage renders page one of content. Exactly one attempt is
// made and the document handle is released on every path.
func (r *Rasterizer) RasterizeFirstPage(ctx context.Context, content []byte) (page *domain.RenderedPage, err error) {
	if err := ctx.Err(); err != nil {
		// a client disconnect, classified like a cancelled model call
		return nil, domain.RenderError("request cancelled before rendering", err)
	}

	doc, err := openDocument(content)
	if err != nil {
		return nil, domain.RenderError(renderFailureMessage, err)
	}
	defer func() {
		if cerr := doc.Close(); cerr != nil {
			r.logger.Warn().Err(cerr).Msg("failed to close document")
		}
	}()
	defer func() {
		if rec := recover(); rec != nil {
			page = nil
			err = domain.RenderError(renderFailureMessage, fmt.Errorf("pdf library panic: %v", rec))
		}
	}()

	if doc.NumPage() < 1 {
		return nil, domain.RenderError(renderFailureMessage, domain.ErrNoPages)
	}

	img, err := doc.ImageDPI(0, r.dpi)
	if err != nil {
		return nil, domain.RenderError(renderFailureMessage, err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, domain.RenderError(renderFailureMessage, fmt.Errorf("encode png: %w", err))
	}

	bounds := img.Bounds()
	return &domain.RenderedPage{
		PNG:    buf.Bytes(),
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		DPI:    r.dpi,
	}, nil
}
