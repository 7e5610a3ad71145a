package models

import "time"

// Status is shared by product images and the products that aggregate them.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusReview   Status = "REVIEW"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

type ProductImage struct {
	ID          string
	ProductID   string
	UserID      string
	ImagePath   string
	PHash       *string
	Score       *int
	Status      Status
	Reasons     []string
	CameraMake  *string
	CameraModel *string
	Attempts    int
	LastError   *string
	Quarantined bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ScoreUpdate is the set of fields a reconciliation pass writes back
// together for one image.
type ScoreUpdate struct {
	PHash       string
	Score       int
	Status      Status
	Reasons     []string
	CameraMake  *string
	CameraModel *string
}
