package imagetrust

import "trustgate/internal/media/imageio"

// QualityAnalyzer looks at resolution, sharpness and export-size patterns.
type QualityAnalyzer struct {
	policy Policy
}

func NewQualityAnalyzer(policy Policy) QualityAnalyzer {
	return QualityAnalyzer{policy: policy}
}

func (q QualityAnalyzer) Check(img imageio.Decoded) Finding {
	var f Finding

	if img.Width <= 0 || img.Height <= 0 || img.Width < q.policy.MinWidth || img.Height < q.policy.MinHeight {
		f.penalize(q.policy.LowResolutionPenalty, ReasonLowResolution)
	}

	if imageio.IntensityVariance(img.Image) < q.policy.BlurVarianceThreshold {
		f.penalize(q.policy.BlurPenalty, ReasonBlurry)
	}

	if q.IsSocialSize(img.Width, img.Height) {
		f.penalize(q.policy.SocialSizePenalty, ReasonSocialSize)
	}

	return f
}

// IsSocialSize reports whether both axes fall strictly within the tolerance
// of one of the known social-media export sizes.
func (q QualityAnalyzer) IsSocialSize(width, height int) bool {
	if width <= 0 || height <= 0 {
		return false
	}
	for _, size := range q.policy.SocialSizes {
		if abs(size.Width-width) < q.policy.SocialSizeTolerance &&
			abs(size.Height-height) < q.policy.SocialSizeTolerance {
			return true
		}
	}
	return false
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
