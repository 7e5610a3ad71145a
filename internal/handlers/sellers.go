package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"trustgate/internal/middleware"
	"trustgate/internal/models"
	"trustgate/internal/repository"
	"trustgate/internal/sellerverify"
	"trustgate/internal/service"
	"trustgate/internal/storage"
)

type sellerRequestBody struct {
	ShopName       string   `json:"shopName" binding:"required,min=2"`
	Description    string   `json:"description" binding:"required,min=5"`
	CampusLocation string   `json:"campusLocation" binding:"required"`
	MainPhone      string   `json:"mainPhone" binding:"required,min=5"`
	SecondaryPhone *string  `json:"secondaryPhone"`
	FrontIDImage   string   `json:"frontIdImage"`
	BackIDImage    string   `json:"backIdImage"`
	AgreedToRules  bool     `json:"agreedToRules"`
	Instagram      *string  `json:"instagram"`
	Telegram       *string  `json:"telegram"`
	TikTok         *string  `json:"tiktok"`
	Other          []string `json:"other"`
}

func (h HandlerSet) SubmitSellerRequest(c *gin.Context) {
	principal, _ := middleware.PrincipalFrom(c)

	var body sellerRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": err.Error()})
		return
	}

	profile, err := h.sellers.Submit(c.Request.Context(), principal.UserID, service.SellerRequest{
		ShopName:       body.ShopName,
		Description:    body.Description,
		CampusLocation: body.CampusLocation,
		MainPhone:      body.MainPhone,
		SecondaryPhone: body.SecondaryPhone,
		FrontImage:     body.FrontIDImage,
		BackImage:      body.BackIDImage,
		AgreedToRules:  body.AgreedToRules,
		Instagram:      body.Instagram,
		Telegram:       body.Telegram,
		TikTok:         body.TikTok,
		Other:          body.Other,
	})
	if err != nil {
		h.sellerError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":           "Seller request submitted and verified successfully",
		"sellerStatus":      models.SellerStatusApproved,
		"verificationLevel": profile.VerificationLevel,
		"verificationScore": profile.VerificationScore,
	})
}

func (h HandlerSet) sellerError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrMissingIdentityImages),
		errors.Is(err, service.ErrRulesNotAccepted),
		errors.Is(err, service.ErrInvalidCampusLocation):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": err.Error()})
	case errors.Is(err, storage.ErrNotFound):
		c.JSON(http.StatusBadRequest, gin.H{"error": "id_image_not_found"})
	case errors.Is(err, storage.ErrInvalidPath):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_image_path"})
	case errors.Is(err, service.ErrAlreadySeller):
		c.JSON(http.StatusConflict, gin.H{"error": "already_seller"})
	case errors.Is(err, repository.ErrStudentIDTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "student_id_taken"})
	case errors.Is(err, sellerverify.ErrVerificationFailed):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "verification_failed", "message": err.Error()})
	case sellerverify.Retryable(err):
		c.Header("Retry-After", "30")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "verification_unavailable"})
	default:
		h.internalError(c, err, "seller request failed")
	}
}
