package llm

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/spherical/idcard-extractor/internal/domain"
)

// decodeImage checks that data is a decodable raster image and returns its
// format name ("png" or "jpeg").
func decodeImage(data []byte) (string, error) {
	if len(data) == 0 {
		return "", domain.ExtractionError("page image is empty", nil)
	}
	_, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", domain.ExtractionError("page image could not be decoded", err)
	}
	return format, nil
}

// dataURL encodes an image as a base64 data URL.
func dataURL(format string, data []byte) string {
	return fmt.Sprintf("data:image/%s;base64,%s", format, base64.StdEncoding.EncodeToString(data))
}
