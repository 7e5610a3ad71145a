package imagetrust

import (
	"context"
	"fmt"
)

type ApprovalCounter interface {
	CountApprovedByUser(ctx context.Context, userID string) (int, error)
}

// TrustBonusCalculator rewards sellers with a history of approved images.
type TrustBonusCalculator struct {
	policy    Policy
	approvals ApprovalCounter
}

func NewTrustBonusCalculator(policy Policy, approvals ApprovalCounter) TrustBonusCalculator {
	return TrustBonusCalculator{policy: policy, approvals: approvals}
}

func (c TrustBonusCalculator) Bonus(ctx context.Context, userID string) (int, error) {
	approved, err := c.approvals.CountApprovedByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("count approved images: %w", err)
	}
	return c.policy.TrustBonus(approved), nil
}
