package imagetrust

import (
	"fmt"
	"regexp"

	"trustgate/internal/exifread"
)

// ForensicsAnalyzer scores camera metadata: genuine captures carry device
// and timestamp tags, re-shared or edited files usually lose them or gain a
// Software tag.
type ForensicsAnalyzer struct {
	policy         Policy
	socialSoftware *regexp.Regexp
}

func NewForensicsAnalyzer(policy Policy) (ForensicsAnalyzer, error) {
	re, err := regexp.Compile("(?i)" + policy.SocialSoftwarePattern)
	if err != nil {
		return ForensicsAnalyzer{}, fmt.Errorf("compile software pattern: %w", err)
	}
	return ForensicsAnalyzer{policy: policy, socialSoftware: re}, nil
}

func (a ForensicsAnalyzer) Check(meta exifread.Metadata) Finding {
	var f Finding

	if meta.Make == "" || meta.Model == "" {
		f.penalize(a.policy.MissingCameraPenalty, ReasonMissingCamera)
	}
	if meta.DateTimeOriginal == "" {
		f.penalize(a.policy.MissingCaptureTimePenalty, ReasonMissingCapture)
	}

	if meta.Software != "" {
		if a.socialSoftware.MatchString(meta.Software) {
			f.penalize(a.policy.SocialSoftwarePenalty, ReasonSocialSoftware)
		} else {
			f.penalize(a.policy.EditedSoftwarePenalty, ReasonEditedSoftware)
		}
	}

	if meta.HasGPSLatitude {
		f.Bonus += a.policy.GPSBonus
	}

	return f
}
