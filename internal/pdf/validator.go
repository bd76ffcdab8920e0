package pdf

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/spherical/idcard-extractor/internal/domain"
)

// Validator checks that an upload is a PDF the rendering library can open.
type Validator struct{}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// Validate reports whether filename carries a .pdf extension and content
// opens as a document. It never panics.
func (v *Validator) Validate(filename string, content []byte) bool {
	return v.Check(filename, content) == nil
}

// Check is Validate with the reason for rejection. Both failure modes are
// InvalidInput errors; the cause distinguishes them.
func (v *Validator) Check(filename string, content []byte) error {
	if !strings.HasSuffix(strings.ToLower(filename), ".pdf") {
		return domain.InvalidInputError(domain.ErrInvalidExtension.Error(), domain.ErrInvalidExtension)
	}

	doc, err := openDocument(content)
	if err != nil {
		return domain.InvalidInputError(domain.ErrUnreadableDocument.Error(), fmt.Errorf("%w: %w", domain.ErrUnreadableDocument, err))
	}
	// the handle is only needed to prove the content opens
	_ = doc.Close()

	return nil
}

// openDocument opens content with go-fitz, turning a panic inside the native
// library into an error.
func openDocument(content []byte) (doc *fitz.Document, err error) {
	if len(content) == 0 {
		return nil, fmt.Errorf("empty content")
	}
	// MuPDF opens other formats from memory too (images, xps, text)
	if !hasPDFHeader(content) {
		return nil, fmt.Errorf("missing %s header", pdfMagic)
	}

	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = fmt.Errorf("pdf library panic: %v", r)
		}
	}()

	return fitz.NewFromMemory(content)
}

const (
	pdfMagic = "%PDF-"
	// readers accept the header anywhere in the first KiB
	headerWindow = 1024
)

func hasPDFHeader(content []byte) bool {
	window := content
	if len(window) > headerWindow {
		window = window[:headerWindow]
	}
	return bytes.Contains(window, []byte(pdfMagic))
}
