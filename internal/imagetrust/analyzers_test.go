package imagetrust

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trustgate/internal/exifread"
	"trustgate/internal/media/imageio"
	"trustgate/internal/models"
	"trustgate/internal/phash"
)

func checkerboard(w, h, cell int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x/cell+y/cell)%2 == 0 {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return img
}

func flat(w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 90
	}
	return img
}

func decoded(img image.Image) imageio.Decoded {
	b := img.Bounds()
	return imageio.Decoded{Image: img, Width: b.Dx(), Height: b.Dy()}
}

func TestIsSocialSize(t *testing.T) {
	q := NewQualityAnalyzer(DefaultPolicy())

	cases := []struct {
		w, h int
		want bool
	}{
		{1080, 1080, true},
		{1080, 1350, true},
		{1080, 1920, true},
		{1200, 630, true},
		{1280, 720, true},
		{1089, 1071, true},
		{1275, 725, true},
		{1080, 1200, false},
		{1090, 1080, false},
		{1080, 1070, false},
		{4032, 3024, false},
		{0, 1080, false},
	}

	for _, tc := range cases {
		assert.Equalf(t, tc.want, q.IsSocialSize(tc.w, tc.h), "%dx%d", tc.w, tc.h)
	}
}

func TestQualityCheck(t *testing.T) {
	q := NewQualityAnalyzer(DefaultPolicy())

	t.Run("sharp large image passes", func(t *testing.T) {
		f := q.Check(decoded(checkerboard(900, 1000, 10)))
		assert.Zero(t, f.Penalty)
		assert.Empty(t, f.Reasons)
	})

	t.Run("small image is low resolution", func(t *testing.T) {
		f := q.Check(decoded(checkerboard(799, 1000, 10)))
		assert.Equal(t, 30, f.Penalty)
		assert.Equal(t, []string{ReasonLowResolution}, f.Reasons)
	})

	t.Run("flat image is blurry", func(t *testing.T) {
		f := q.Check(decoded(flat(900, 900)))
		assert.Equal(t, 40, f.Penalty)
		assert.Equal(t, []string{ReasonBlurry}, f.Reasons)
	})

	t.Run("social export size", func(t *testing.T) {
		f := q.Check(decoded(checkerboard(1080, 1080, 12)))
		assert.Equal(t, 20, f.Penalty)
		assert.Equal(t, []string{ReasonSocialSize}, f.Reasons)
	})

	t.Run("penalties accumulate in order", func(t *testing.T) {
		f := q.Check(decoded(flat(1200, 630)))
		assert.Equal(t, 30+40+20, f.Penalty)
		assert.Equal(t, []string{ReasonLowResolution, ReasonBlurry, ReasonSocialSize}, f.Reasons)
	})
}

func TestForensicsCheck(t *testing.T) {
	a, err := NewForensicsAnalyzer(DefaultPolicy())
	require.NoError(t, err)

	camera := exifread.Metadata{Make: "Canon", Model: "EOS 80D", DateTimeOriginal: "2024:05:01 10:00:00"}

	t.Run("genuine capture", func(t *testing.T) {
		f := a.Check(camera)
		assert.Zero(t, f.Penalty)
		assert.Zero(t, f.Bonus)
	})

	t.Run("gps adds bonus", func(t *testing.T) {
		meta := camera
		meta.HasGPSLatitude = true
		f := a.Check(meta)
		assert.Equal(t, 10, f.Bonus)
	})

	t.Run("missing make or model", func(t *testing.T) {
		meta := camera
		meta.Model = ""
		f := a.Check(meta)
		assert.Equal(t, 25, f.Penalty)
		assert.Equal(t, []string{ReasonMissingCamera}, f.Reasons)
	})

	t.Run("stripped metadata", func(t *testing.T) {
		f := a.Check(exifread.Metadata{})
		assert.Equal(t, 25+15, f.Penalty)
		assert.Equal(t, []string{ReasonMissingCamera, ReasonMissingCapture}, f.Reasons)
	})

	t.Run("social software is case insensitive", func(t *testing.T) {
		meta := camera
		meta.Software = "Instagram 312.0"
		f := a.Check(meta)
		assert.Equal(t, 40, f.Penalty)
		assert.Equal(t, []string{ReasonSocialSoftware}, f.Reasons)

		meta.Software = "WHATSAPP"
		assert.Equal(t, 40, a.Check(meta).Penalty)
	})

	t.Run("other software means edited", func(t *testing.T) {
		meta := camera
		meta.Software = "Adobe Photoshop 25.0"
		f := a.Check(meta)
		assert.Equal(t, 20, f.Penalty)
		assert.Equal(t, []string{ReasonEditedSoftware}, f.Reasons)
	})
}

func TestForensicsRejectsBadPattern(t *testing.T) {
	policy := DefaultPolicy()
	policy.SocialSoftwarePattern = "("
	_, err := NewForensicsAnalyzer(policy)
	assert.Error(t, err)
}

type staticIndex struct {
	hashes []string
	err    error
	asked  []string
}

func (s *staticIndex) FindHashesByPrefix(_ context.Context, prefix string) ([]string, error) {
	s.asked = append(s.asked, prefix)
	return s.hashes, s.err
}

func TestReuseDetector(t *testing.T) {
	ctx := context.Background()
	policy := DefaultPolicy()
	hash, err := phash.Hash(checkerboard(64, 64, 4))
	require.NoError(t, err)

	near := []byte(hash)
	for i := 0; i < 5; i++ {
		near[10+i] = flip(near[10+i])
	}
	far := []byte(hash)
	for i := 0; i < 6; i++ {
		far[10+i] = flip(far[10+i])
	}

	t.Run("exact match is reuse", func(t *testing.T) {
		index := &staticIndex{hashes: []string{hash}}
		f, err := NewReuseDetector(policy, index).Check(ctx, hash)
		require.NoError(t, err)
		assert.Equal(t, 50, f.Penalty)
		assert.Equal(t, []string{ReasonReused}, f.Reasons)
		assert.Equal(t, []string{hash[:6]}, index.asked)
	})

	t.Run("distance five is reuse", func(t *testing.T) {
		f, err := NewReuseDetector(policy, &staticIndex{hashes: []string{string(near)}}).Check(ctx, hash)
		require.NoError(t, err)
		assert.Equal(t, 50, f.Penalty)
	})

	t.Run("distance six is not reuse", func(t *testing.T) {
		f, err := NewReuseDetector(policy, &staticIndex{hashes: []string{string(far)}}).Check(ctx, hash)
		require.NoError(t, err)
		assert.Zero(t, f.Penalty)
	})

	t.Run("penalty is flat across many matches", func(t *testing.T) {
		f, err := NewReuseDetector(policy, &staticIndex{hashes: []string{hash, string(near), hash}}).Check(ctx, hash)
		require.NoError(t, err)
		assert.Equal(t, 50, f.Penalty)
		assert.Len(t, f.Reasons, 1)
	})

	t.Run("length mismatch is an error", func(t *testing.T) {
		_, err := NewReuseDetector(policy, &staticIndex{hashes: []string{hash[:6]}}).Check(ctx, hash)
		assert.ErrorIs(t, err, phash.ErrLengthMismatch)
	})

	t.Run("index failure propagates", func(t *testing.T) {
		boom := errors.New("db down")
		_, err := NewReuseDetector(policy, &staticIndex{err: boom}).Check(ctx, hash)
		assert.ErrorIs(t, err, boom)
	})
}

func flip(c byte) byte {
	if c == '0' {
		return '1'
	}
	return '0'
}

func TestTrustBonus(t *testing.T) {
	policy := DefaultPolicy()
	assert.Equal(t, 20, policy.TrustBonus(15))
	assert.Equal(t, 20, policy.TrustBonus(40))
	assert.Equal(t, 10, policy.TrustBonus(14))
	assert.Equal(t, 10, policy.TrustBonus(7))
	assert.Equal(t, 10, policy.TrustBonus(5))
	assert.Equal(t, 0, policy.TrustBonus(4))
	assert.Equal(t, 0, policy.TrustBonus(2))
	assert.Equal(t, 0, policy.TrustBonus(0))
}

func TestStatusBoundaries(t *testing.T) {
	policy := DefaultPolicy()
	assert.Equal(t, models.StatusRejected, policy.StatusFor(-30))
	assert.Equal(t, models.StatusRejected, policy.StatusFor(49))
	assert.Equal(t, models.StatusReview, policy.StatusFor(50))
	assert.Equal(t, models.StatusReview, policy.StatusFor(74))
	assert.Equal(t, models.StatusApproved, policy.StatusFor(75))
	assert.Equal(t, models.StatusApproved, policy.StatusFor(130))
}
