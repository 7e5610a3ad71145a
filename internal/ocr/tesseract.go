// Package ocr extracts plain text from document photos with Tesseract.
package ocr

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"

	"trustgate/internal/media/imageio"
)

const (
	maxWidth    = 1024
	jpegQuality = 80
)

type Tesseract struct {
	language string
}

func NewTesseract(language string) *Tesseract {
	if language == "" {
		language = "eng"
	}
	return &Tesseract{language: language}
}

// ExtractText normalises the image size before recognition. A gosseract
// client is not safe for concurrent use, so each call gets its own.
func (t *Tesseract) ExtractText(ctx context.Context, image []byte) (string, error) {
	prepared, err := imageio.PrepareForOCR(image, maxWidth, jpegQuality)
	if err != nil {
		return "", fmt.Errorf("prepare image: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(t.language); err != nil {
		return "", fmt.Errorf("set language: %w", err)
	}
	if err := client.SetImageFromBytes(prepared); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("recognize: %w", err)
	}
	return text, nil
}
