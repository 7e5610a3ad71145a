// Package qr decodes QR codes printed on ID cards.
package qr

import (
	"context"
	"errors"
	"fmt"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"

	"trustgate/internal/media/imageio"
)

type Decoder struct {
	hints map[gozxing.DecodeHintType]interface{}
}

func NewDecoder() *Decoder {
	return &Decoder{
		hints: map[gozxing.DecodeHintType]interface{}{
			gozxing.DecodeHintType_TRY_HARDER: true,
		},
	}
}

// DecodeQR returns "" when the image decodes but carries no readable code.
func (d *Decoder) DecodeQR(ctx context.Context, image []byte) (string, error) {
	decoded, err := imageio.Decode(image)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	bmp, err := gozxing.NewBinaryBitmapFromImage(decoded.Image)
	if err != nil {
		return "", fmt.Errorf("binarize: %w", err)
	}

	result, err := qrcode.NewQRCodeReader().Decode(bmp, d.hints)
	if err != nil {
		var notRead gozxing.ReaderException
		if errors.As(err, &notRead) {
			return "", nil
		}
		return "", fmt.Errorf("decode qr: %w", err)
	}
	return result.GetText(), nil
}
