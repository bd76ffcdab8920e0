package pdf

import (
	"errors"
	"testing"

	"github.com/spherical/idcard-extractor/internal/domain"
	"github.com/spherical/idcard-extractor/internal/pdf/pdftest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator_Validate(t *testing.T) {
	v := NewValidator()
	valid := pdftest.SinglePage()

	tests := []struct {
		name     string
		filename string
		content  []byte
		want     bool
	}{
		{"lowercase extension", "card.pdf", valid, true},
		{"uppercase extension", "CARD.PDF", valid, true},
		{"mixed case extension", "scan.Pdf", valid, true},
		{"text extension", "id.txt", valid, false},
		{"no extension", "card", valid, false},
		{"pdf in the middle", "card.pdf.txt", valid, false},
		{"text content", "card.pdf", pdftest.NotAPDF(), false},
		{"empty content", "card.pdf", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, v.Validate(tt.filename, tt.content))
		})
	}
}

func TestValidator_CheckReportsReason(t *testing.T) {
	v := NewValidator()

	err := v.Check("id.txt", pdftest.SinglePage())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidExtension))
	assert.Equal(t, domain.KindInvalidInput, domain.KindOf(err))

	err = v.Check("card.pdf", pdftest.NotAPDF())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnreadableDocument))
	assert.Equal(t, domain.KindInvalidInput, domain.KindOf(err))
}

func TestValidator_NeverPanics(t *testing.T) {
	v := NewValidator()

	inputs := [][]byte{
		nil,
		{},
		pdftest.Corrupted(),
		[]byte("%PDF-"),
		[]byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog"),
	}

	for _, in := range inputs {
		assert.NotPanics(t, func() { v.Validate("card.pdf", in) })
	}
}

func TestValidator_ZeroPageDocumentStillOpens(t *testing.T) {
	// page count is the rasterizer's concern, not the validator's
	assert.True(t, NewValidator().Validate("empty.pdf", pdftest.ZeroPages()))
}

func TestHasPDFHeader(t *testing.T) {
	assert.True(t, hasPDFHeader([]byte("%PDF-1.7\n")))
	assert.True(t, hasPDFHeader(append([]byte("junk before header "), pdftest.SinglePage()...)))
	assert.False(t, hasPDFHeader(pdftest.NotAPDF()))

	late := append(make([]byte, 2048), []byte("%PDF-1.4")...)
	assert.False(t, hasPDFHeader(late))
}
