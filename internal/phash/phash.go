// Package phash fingerprints images so near-duplicates can be found by
// comparing digests character by character.
package phash

import (
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/corona10/goimagehash"
)

// GridSize is the DCT grid edge; a 16x16 grid yields 256 bits, 64 hex chars.
const GridSize = 16

// DigestLen is the length of every digest produced by Hash.
const DigestLen = GridSize * GridSize / 4

var ErrLengthMismatch = errors.New("phash: digest lengths do not match")

func Hash(img image.Image) (string, error) {
	h, err := goimagehash.ExtPerceptionHash(img, GridSize, GridSize)
	if err != nil {
		return "", fmt.Errorf("perception hash: %w", err)
	}

	var b strings.Builder
	b.Grow(DigestLen)
	for _, word := range h.GetHash() {
		fmt.Fprintf(&b, "%016x", word)
	}
	return b.String(), nil
}

// Distance counts differing characters between two equal-length digests.
// Unequal lengths mean a digest was produced with another grid size, which
// never happens for stored data and is reported as ErrLengthMismatch.
func Distance(a, b string) (int, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(a), len(b))
	}
	dist := 0
	for i := 0; i < len(a); i++ {
		if a[i] != b[i] {
			dist++
		}
	}
	return dist, nil
}
