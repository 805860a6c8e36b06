package avatar

import (
	"bytes"
	"fmt"
	"io"

	"github.com/disintegration/imaging"
)

const jpegQuality = 80

// ImageProcessor resizes avatars.
type ImageProcessor struct{}

// NewImageProcessor creates a new ImageProcessor.
func NewImageProcessor() *ImageProcessor {
	return &ImageProcessor{}
}

// Thumbnail fits the source image into a size×size box and returns it as a
// JPEG. Smaller images are not enlarged.
func (p *ImageProcessor) Thumbnail(content io.Reader, size int) ([]byte, error) {
	img, err := imaging.Decode(content, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	thumbnail := imaging.Fit(img, size, size, imaging.Lanczos)

	buf := new(bytes.Buffer)
	if err := imaging.Encode(buf, thumbnail, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}

	return buf.Bytes(), nil
}
