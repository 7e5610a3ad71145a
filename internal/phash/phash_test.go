package phash

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gradient(w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8((x*7 + y*3) % 256)})
		}
	}
	return img
}

func TestHashIsFixedLengthHex(t *testing.T) {
	digest, err := Hash(gradient(120, 90))
	require.NoError(t, err)
	assert.Len(t, digest, DigestLen)
	for _, c := range digest {
		assert.Contains(t, "0123456789abcdef", string(c))
	}
}

func TestHashIsDeterministic(t *testing.T) {
	a, err := Hash(gradient(200, 150))
	require.NoError(t, err)
	b, err := Hash(gradient(200, 150))
	require.NoError(t, err)

	assert.Equal(t, a, b)
	d, err := Distance(a, b)
	require.NoError(t, err)
	assert.Zero(t, d)
}

func TestDistance(t *testing.T) {
	d, err := Distance("abcdef", "abcdef")
	require.NoError(t, err)
	assert.Equal(t, 0, d)

	d, err = Distance("abcdef", "abcxyz")
	require.NoError(t, err)
	assert.Equal(t, 3, d)

	_, err = Distance("abc", "abcd")
	assert.ErrorIs(t, err, ErrLengthMismatch)
}
