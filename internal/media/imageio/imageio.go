// Package imageio decodes submitted images and derives the pixel-level
// measurements the analyzers consume.
package imageio

import (
	"bytes"
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"trustgate/internal/media/sniffer"
)

var ErrUnsupportedFormat = errors.New("unsupported image format")

type Decoded struct {
	Image  image.Image
	Width  int
	Height int
	Format sniffer.Result
}

// Decode sniffs the container before decoding so vector or unsupported
// formats fail fast with ErrUnsupportedFormat. Orientation tags are not
// applied: dimensions are reported as stored.
func Decode(data []byte) (Decoded, error) {
	format, err := sniffer.Detect(data)
	if err != nil {
		return Decoded{}, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	if !format.Raster() {
		return Decoded{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format.Type)
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return Decoded{}, fmt.Errorf("decode %s: %w", format.Type, err)
	}

	bounds := img.Bounds()
	return Decoded{
		Image:  img,
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Format: format,
	}, nil
}

// IntensityVariance is the population variance of greyscale intensity over
// every pixel. Smooth or defocused images have little local contrast and
// score low.
func IntensityVariance(img image.Image) float64 {
	grey := imaging.Grayscale(img)
	n := len(grey.Pix) / 4
	if n == 0 {
		return 0
	}

	var sum float64
	for i := 0; i < len(grey.Pix); i += 4 {
		sum += float64(grey.Pix[i])
	}
	mean := sum / float64(n)

	var variance float64
	for i := 0; i < len(grey.Pix); i += 4 {
		d := float64(grey.Pix[i]) - mean
		variance += d * d
	}
	return variance / float64(n)
}

// PrepareForOCR downsizes to at most maxWidth pixels wide, never enlarging,
// and re-encodes as JPEG at the given quality.
func PrepareForOCR(data []byte, maxWidth, quality int) ([]byte, error) {
	decoded, err := Decode(data)
	if err != nil {
		return nil, err
	}

	img := decoded.Image
	if maxWidth > 0 && decoded.Width > maxWidth {
		img = imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
