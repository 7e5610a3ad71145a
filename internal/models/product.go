package models

import "time"

type Product struct {
	ID          string
	UserID      string
	ShopID      *string
	CategoryID  *string
	Name        string
	Description string
	Price       float64
	Status      Status
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// AggregateStatus folds image statuses into the product status. All
// REJECTED wins, then any REVIEW, then all APPROVED; anything else (some
// images still PENDING, or a REJECTED/APPROVED mix) stays PENDING.
func AggregateStatus(statuses []Status) Status {
	if len(statuses) == 0 {
		return StatusPending
	}

	allRejected, allApproved, anyReview := true, true, false
	for _, s := range statuses {
		if s != StatusRejected {
			allRejected = false
		}
		if s != StatusApproved {
			allApproved = false
		}
		if s == StatusReview {
			anyReview = true
		}
	}

	switch {
	case allRejected:
		return StatusRejected
	case anyReview:
		return StatusReview
	case allApproved:
		return StatusApproved
	default:
		return StatusPending
	}
}
