package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"trustgate/internal/ids"
	"trustgate/internal/metrics"
	"trustgate/internal/models"
	"trustgate/internal/repository"
	"trustgate/internal/sellerverify"
)

var (
	ErrAlreadySeller         = errors.New("user is already a seller")
	ErrRulesNotAccepted      = errors.New("seller rules must be accepted")
	ErrInvalidCampusLocation = errors.New("campus location must be block-dormnumber")
	ErrMissingIdentityImages = errors.New("both front and back id images are required")
)

type SellerStore interface {
	FindByUserID(ctx context.Context, userID string) (models.SellerProfile, error)
	Upsert(ctx context.Context, p models.SellerProfile) (models.SellerProfile, error)
}

// Verifier scores a card pair without touching the files; Discard removes
// them once the outcome is stored.
type Verifier interface {
	Check(ctx context.Context, userID, frontPath, backPath string) (sellerverify.Result, error)
	Discard(ctx context.Context, paths ...string)
}

type SellerRequest struct {
	ShopName       string
	Description    string
	CampusLocation string
	MainPhone      string
	SecondaryPhone *string
	FrontImage     string
	BackImage      string
	AgreedToRules  bool
	Instagram      *string
	Telegram       *string
	TikTok         *string
	Other          []string
}

type SellerService struct {
	sellers  SellerStore
	verifier Verifier
	metrics  *metrics.Metrics
	log      zerolog.Logger
}

func NewSellerService(sellers SellerStore, verifier Verifier, m *metrics.Metrics, log zerolog.Logger) *SellerService {
	return &SellerService{
		sellers:  sellers,
		verifier: verifier,
		metrics:  m,
		log:      log,
	}
}

// Submit verifies the caller's student id card and, on success, stores an
// APPROVED seller profile. Nothing is written when verification fails, and
// the uploaded card images are only removed after the profile is saved.
func (s *SellerService) Submit(ctx context.Context, userID string, req SellerRequest) (models.SellerProfile, error) {
	if err := validateSellerRequest(req); err != nil {
		return models.SellerProfile{}, err
	}

	existing, err := s.sellers.FindByUserID(ctx, userID)
	switch {
	case err == nil && existing.VerificationStatus == models.SellerStatusApproved:
		return models.SellerProfile{}, ErrAlreadySeller
	case err != nil && !errors.Is(err, repository.ErrSellerNotFound):
		return models.SellerProfile{}, fmt.Errorf("find seller profile: %w", err)
	}

	start := time.Now()
	result, err := s.verifier.Check(ctx, userID, req.FrontImage, req.BackImage)
	s.metrics.ObserveVerification(verificationOutcome(result, err), start)
	if err != nil {
		return models.SellerProfile{}, err
	}

	profile := models.SellerProfile{
		ID:                 ids.New(),
		UserID:             userID,
		StudentID:          result.StudentID,
		ShopName:           req.ShopName,
		Description:        req.Description,
		CampusLocation:     req.CampusLocation,
		MainPhone:          req.MainPhone,
		SecondaryPhone:     req.SecondaryPhone,
		Instagram:          req.Instagram,
		Telegram:           req.Telegram,
		TikTok:             req.TikTok,
		Other:              req.Other,
		AgreedToRules:      req.AgreedToRules,
		VerificationStatus: models.SellerStatusApproved,
		VerificationScore:  result.Score,
		VerificationLevel:  result.Level,
		FrontImageHash:     result.FrontHash,
		BackImageHash:      result.BackHash,
	}

	stored, err := s.sellers.Upsert(ctx, profile)
	if err != nil {
		return models.SellerProfile{}, fmt.Errorf("save seller profile: %w", err)
	}
	s.verifier.Discard(ctx, req.FrontImage, req.BackImage)

	s.log.Info().
		Str("user_id", userID).
		Str("seller_profile_id", stored.ID).
		Int("score", result.Score).
		Str("level", string(result.Level)).
		Msg("seller verified")

	return stored, nil
}

func validateSellerRequest(req SellerRequest) error {
	if strings.TrimSpace(req.FrontImage) == "" || strings.TrimSpace(req.BackImage) == "" {
		return ErrMissingIdentityImages
	}
	if !req.AgreedToRules {
		return ErrRulesNotAccepted
	}
	block, dorm, ok := strings.Cut(req.CampusLocation, "-")
	if !ok || strings.TrimSpace(block) == "" || strings.TrimSpace(dorm) == "" || strings.Contains(dorm, "-") {
		return ErrInvalidCampusLocation
	}
	return nil
}

func verificationOutcome(result sellerverify.Result, err error) string {
	switch {
	case err == nil && result.Level == models.LevelVerified:
		return "verified"
	case err == nil:
		return "basic"
	case errors.Is(err, sellerverify.ErrVerificationFailed):
		return "failed"
	case errors.Is(err, sellerverify.ErrExtractionTimeout):
		return "timeout"
	default:
		return "error"
	}
}
