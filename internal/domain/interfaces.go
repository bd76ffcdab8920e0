package domain

import "context"

// DocumentValidator confirms an upload is a readable document of the
// expected format.
type DocumentValidator interface {
	// Validate reports whether the upload is acceptable
	Validate(filename string, content []byte) bool

	// Check is Validate with the reason for rejection
	Check(filename string, content []byte) error
}

// PageCounter reports the number of pages in a document. Used for
// diagnostics only.
type PageCounter interface {
	PageCount(content []byte) (int, error)
}

// PageRasterizer renders the first page of a validated document
type PageRasterizer interface {
	RasterizeFirstPage(ctx context.Context, content []byte) (*RenderedPage, error)
}

// Extractor sends a page image to the model and returns its raw text answer
type Extractor interface {
	Extract(ctx context.Context, image []byte) (string, error)
}

// ResponseParser turns raw model text into an ExtractedRecord
type ResponseParser interface {
	Parse(raw string) (*ExtractedRecord, error)
}
