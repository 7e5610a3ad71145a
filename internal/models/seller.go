package models

import "time"

type VerificationLevel string

const (
	LevelFlagged  VerificationLevel = "FLAGGED"
	LevelBasic    VerificationLevel = "BASIC"
	LevelVerified VerificationLevel = "VERIFIED"
)

type SellerStatus string

const (
	SellerStatusPending  SellerStatus = "PENDING"
	SellerStatusApproved SellerStatus = "APPROVED"
	SellerStatusRejected SellerStatus = "REJECTED"
)

type SellerProfile struct {
	ID                 string
	UserID             string
	StudentID          string
	ShopName           string
	Description        string
	CampusLocation     string
	MainPhone          string
	SecondaryPhone     *string
	Instagram          *string
	Telegram           *string
	TikTok             *string
	Other              []string
	AgreedToRules      bool
	VerificationStatus SellerStatus
	VerificationScore  int
	VerificationLevel  VerificationLevel
	FrontImageHash     string
	BackImageHash      string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
