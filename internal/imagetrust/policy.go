package imagetrust

import "trustgate/internal/models"

type Dimension struct {
	Width  int
	Height int
}

type TrustTier struct {
	MinApproved int
	Bonus       int
}

// Policy carries every weight and threshold of the image scoring pipeline.
// Penalties are subtracted from BaseScore and bonuses added; the total is
// deliberately left unclamped.
type Policy struct {
	BaseScore int

	MinWidth             int
	MinHeight            int
	LowResolutionPenalty int

	BlurVarianceThreshold float64
	BlurPenalty           int

	SocialSizes         []Dimension
	SocialSizeTolerance int
	SocialSizePenalty   int

	MissingCameraPenalty      int
	MissingCaptureTimePenalty int
	SocialSoftwarePattern     string
	SocialSoftwarePenalty     int
	EditedSoftwarePenalty     int
	GPSBonus                  int

	HashPrefixLen int
	ReuseDistance int
	ReusePenalty  int

	// TrustTiers are checked in order; the first tier the seller reaches wins.
	TrustTiers []TrustTier

	RejectBelow int
	ApproveFrom int
}

func DefaultPolicy() Policy {
	return Policy{
		BaseScore: 100,

		MinWidth:             800,
		MinHeight:            800,
		LowResolutionPenalty: 30,

		BlurVarianceThreshold: 15,
		BlurPenalty:           40,

		SocialSizes: []Dimension{
			{Width: 1080, Height: 1080},
			{Width: 1080, Height: 1350},
			{Width: 1080, Height: 1920},
			{Width: 1200, Height: 630},
			{Width: 1280, Height: 720},
		},
		SocialSizeTolerance: 10,
		SocialSizePenalty:   20,

		MissingCameraPenalty:      25,
		MissingCaptureTimePenalty: 15,
		SocialSoftwarePattern:     "instagram|whatsapp|facebook|telegram",
		SocialSoftwarePenalty:     40,
		EditedSoftwarePenalty:     20,
		GPSBonus:                  10,

		HashPrefixLen: 6,
		ReuseDistance: 6,
		ReusePenalty:  50,

		TrustTiers: []TrustTier{
			{MinApproved: 15, Bonus: 20},
			{MinApproved: 5, Bonus: 10},
		},

		RejectBelow: 50,
		ApproveFrom: 75,
	}
}

// StatusFor maps a score onto the image verdict: below RejectBelow is
// REJECTED, from ApproveFrom upward APPROVED, REVIEW in between.
func (p Policy) StatusFor(score int) models.Status {
	switch {
	case score < p.RejectBelow:
		return models.StatusRejected
	case score < p.ApproveFrom:
		return models.StatusReview
	default:
		return models.StatusApproved
	}
}

// TrustBonus is the score adjustment for a seller with the given number of
// previously approved images.
func (p Policy) TrustBonus(approved int) int {
	for _, tier := range p.TrustTiers {
		if approved >= tier.MinApproved {
			return tier.Bonus
		}
	}
	return 0
}
