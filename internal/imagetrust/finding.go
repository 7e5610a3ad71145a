package imagetrust

const (
	ReasonLowResolution  = "Low resolution image"
	ReasonBlurry         = "Image is blurry"
	ReasonSocialSize     = "Matches common social-media image dimensions"
	ReasonMissingCamera  = "Missing camera make or model (typical of social media)"
	ReasonMissingCapture = "Missing original capture time"
	ReasonSocialSoftware = "Detected social media software signature"
	ReasonEditedSoftware = "Image appears edited (software detected)"
	ReasonReused         = "Image reused from another listing"
)

// Finding is one analyzer's contribution to the score.
type Finding struct {
	Penalty int
	Bonus   int
	Reasons []string
}

func (f *Finding) penalize(points int, reason string) {
	f.Penalty += points
	f.Reasons = append(f.Reasons, reason)
}
