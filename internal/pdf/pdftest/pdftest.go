// Package pdftest builds small in-memory PDF documents for tests.
package pdftest

import (
	"bytes"
	"fmt"
)

// Build returns a well-formed PDF with the given number of pages. Each page
// is a small card-sized sheet with one line of text. pages may be zero.
func Build(pages int) []byte {
	if pages < 0 {
		pages = 0
	}

	// 1 catalog, 2 page tree, 3 font, then a page and its content stream per page
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"", // page tree, filled in below
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
	}

	kids := &bytes.Buffer{}
	for i := 0; i < pages; i++ {
		pageNum := len(objects) + 1
		contentNum := pageNum + 1
		fmt.Fprintf(kids, "%d 0 R ", pageNum)

		stream := fmt.Sprintf("BT /F1 18 Tf 24 120 Td (SPECIMEN ID CARD %d) Tj ET", i+1)
		objects = append(objects,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 324 204] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", contentNum),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream),
		)
	}
	objects[1] = fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", bytes.TrimSpace(kids.Bytes()), pages)

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n")

	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)

	return buf.Bytes()
}

// SinglePage returns a valid one-page PDF.
func SinglePage() []byte {
	return Build(1)
}

// ZeroPages returns a structurally valid PDF whose page tree is empty.
func ZeroPages() []byte {
	return Build(0)
}

// Corrupted returns bytes that carry a PDF header but no document body.
func Corrupted() []byte {
	return []byte("%PDF-1.7\n\x00\x01\x02 this is not really a pdf \xff\xfe\n")
}

// NotAPDF returns plain text content.
func NotAPDF() []byte {
	return []byte("Name: A\nDate of birth: 01/01/1990\n")
}
