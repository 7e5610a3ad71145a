package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"trustgate/internal/metrics"
	"trustgate/internal/models"
	"trustgate/internal/repository"
	"trustgate/internal/sellerverify"
)

type fakeSellers struct {
	profiles  map[string]models.SellerProfile
	findErr   error
	upsertErr error
	upserts   int
}

func (f *fakeSellers) FindByUserID(_ context.Context, userID string) (models.SellerProfile, error) {
	if f.findErr != nil {
		return models.SellerProfile{}, f.findErr
	}
	p, ok := f.profiles[userID]
	if !ok {
		return models.SellerProfile{}, repository.ErrSellerNotFound
	}
	return p, nil
}

// Upsert mirrors the repository: a repeat keeps id, student id and
// creation time of the stored row.
func (f *fakeSellers) Upsert(_ context.Context, p models.SellerProfile) (models.SellerProfile, error) {
	f.upserts++
	if f.upsertErr != nil {
		return models.SellerProfile{}, f.upsertErr
	}
	if prev, ok := f.profiles[p.UserID]; ok {
		p.ID = prev.ID
		p.StudentID = prev.StudentID
		p.CreatedAt = prev.CreatedAt
	}
	f.profiles[p.UserID] = p
	return p, nil
}

type fakeVerifier struct {
	result    sellerverify.Result
	err       error
	calls     int
	discarded []string
}

func (f *fakeVerifier) Check(context.Context, string, string, string) (sellerverify.Result, error) {
	f.calls++
	return f.result, f.err
}

func (f *fakeVerifier) Discard(_ context.Context, paths ...string) {
	f.discarded = append(f.discarded, paths...)
}

type SellerServiceSuite struct {
	suite.Suite
	sellers  *fakeSellers
	verifier *fakeVerifier
	service  *SellerService
}

func TestSellerServiceSuite(t *testing.T) {
	suite.Run(t, new(SellerServiceSuite))
}

func (s *SellerServiceSuite) SetupTest() {
	s.sellers = &fakeSellers{profiles: map[string]models.SellerProfile{}}
	s.verifier = &fakeVerifier{result: sellerverify.Result{
		StudentID: "ETS1234/15",
		Score:     8,
		Level:     models.LevelVerified,
		FrontHash: "f",
		BackHash:  "b",
	}}
	s.service = NewSellerService(s.sellers, s.verifier, metrics.New(prometheus.NewRegistry()), zerolog.Nop())
}

func validRequest() SellerRequest {
	return SellerRequest{
		ShopName:       "Dorm Deals",
		Description:    "Second-hand textbooks",
		CampusLocation: "B12-304",
		MainPhone:      "+251911000000",
		FrontImage:     "uploads/front.jpg",
		BackImage:      "uploads/back.jpg",
		AgreedToRules:  true,
	}
}

func (s *SellerServiceSuite) TestSubmitCreatesApprovedProfile() {
	profile, err := s.service.Submit(context.Background(), "u1", validRequest())
	s.Require().NoError(err)

	s.Equal(models.SellerStatusApproved, profile.VerificationStatus)
	s.Equal(8, profile.VerificationScore)
	s.Equal(models.LevelVerified, profile.VerificationLevel)
	s.Equal("ETS1234/15", profile.StudentID)
	s.Equal("f", profile.FrontImageHash)
	s.NotEmpty(profile.ID)
	s.Equal(1, s.sellers.upserts)
	s.Equal([]string{"uploads/front.jpg", "uploads/back.jpg"}, s.verifier.discarded)
}

func (s *SellerServiceSuite) TestSaveFailureKeepsUploads() {
	s.sellers.upsertErr = repository.ErrStudentIDTaken

	_, err := s.service.Submit(context.Background(), "u1", validRequest())
	s.ErrorIs(err, repository.ErrStudentIDTaken)
	s.Empty(s.verifier.discarded)
}

func (s *SellerServiceSuite) TestSubmitRejectsExistingSeller() {
	s.sellers.profiles["u1"] = models.SellerProfile{ID: "sp1", UserID: "u1", VerificationStatus: models.SellerStatusApproved}

	_, err := s.service.Submit(context.Background(), "u1", validRequest())
	s.ErrorIs(err, ErrAlreadySeller)
	s.Zero(s.verifier.calls)
}

func (s *SellerServiceSuite) TestSubmitKeepsStoredIdentity() {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s.sellers.profiles["u1"] = models.SellerProfile{
		ID:                 "sp1",
		UserID:             "u1",
		StudentID:          "ETS0001/14",
		VerificationStatus: models.SellerStatusRejected,
		CreatedAt:          created,
	}

	profile, err := s.service.Submit(context.Background(), "u1", validRequest())
	s.Require().NoError(err)
	s.Equal("sp1", profile.ID)
	s.Equal("ETS0001/14", profile.StudentID)
	s.Equal(created, profile.CreatedAt)
}

func (s *SellerServiceSuite) TestVerificationFailureWritesNothing() {
	s.verifier.err = sellerverify.ErrVerificationFailed

	_, err := s.service.Submit(context.Background(), "u1", validRequest())
	s.ErrorIs(err, sellerverify.ErrVerificationFailed)
	s.Zero(s.sellers.upserts)
	s.Empty(s.verifier.discarded)
}

func (s *SellerServiceSuite) TestLookupErrorPropagates() {
	s.sellers.findErr = errors.New("connection reset")

	_, err := s.service.Submit(context.Background(), "u1", validRequest())
	s.ErrorContains(err, "connection reset")
	s.Zero(s.verifier.calls)
}

func (s *SellerServiceSuite) TestValidation() {
	cases := map[string]struct {
		mutate func(*SellerRequest)
		want   error
	}{
		"missing back image": {func(r *SellerRequest) { r.BackImage = " " }, ErrMissingIdentityImages},
		"rules not accepted": {func(r *SellerRequest) { r.AgreedToRules = false }, ErrRulesNotAccepted},
		"no dash":            {func(r *SellerRequest) { r.CampusLocation = "B12" }, ErrInvalidCampusLocation},
		"empty dorm":         {func(r *SellerRequest) { r.CampusLocation = "B12-" }, ErrInvalidCampusLocation},
		"too many parts":     {func(r *SellerRequest) { r.CampusLocation = "B-12-3" }, ErrInvalidCampusLocation},
	}

	for name, tc := range cases {
		s.Run(name, func() {
			req := validRequest()
			tc.mutate(&req)
			_, err := s.service.Submit(context.Background(), "u1", req)
			s.ErrorIs(err, tc.want)
		})
	}
	s.Zero(s.verifier.calls)
}

func TestVerificationOutcome(t *testing.T) {
	assert.Equal(t, "verified", verificationOutcome(sellerverify.Result{Level: models.LevelVerified}, nil))
	assert.Equal(t, "basic", verificationOutcome(sellerverify.Result{Level: models.LevelBasic}, nil))
	assert.Equal(t, "failed", verificationOutcome(sellerverify.Result{}, sellerverify.ErrVerificationFailed))
	assert.Equal(t, "timeout", verificationOutcome(sellerverify.Result{}, sellerverify.ErrExtractionTimeout))
	assert.Equal(t, "error", verificationOutcome(sellerverify.Result{}, errors.New("disk")))
}

type fakeProducts struct {
	created []models.Product
	images  []models.ProductImage
}

func (f *fakeProducts) Create(_ context.Context, p models.Product, images []models.ProductImage) error {
	f.created = append(f.created, p)
	f.images = append(f.images, images...)
	return nil
}

func (f *fakeProducts) GetByID(_ context.Context, id string) (models.Product, error) {
	for _, p := range f.created {
		if p.ID == id {
			return p, nil
		}
	}
	return models.Product{}, repository.ErrProductNotFound
}

func (f *fakeProducts) ListByProduct(_ context.Context, productID string) ([]models.ProductImage, error) {
	var out []models.ProductImage
	for _, image := range f.images {
		if image.ProductID == productID {
			out = append(out, image)
		}
	}
	return out, nil
}

type fakePublisher struct {
	err       error
	published []string
}

func (f *fakePublisher) PublishProductCreated(_ context.Context, productID string, _ int) error {
	f.published = append(f.published, productID)
	return f.err
}

func TestCreateProduct(t *testing.T) {
	store := &fakeProducts{}
	events := &fakePublisher{}
	svc := NewProductService(store, store, events, zerolog.Nop())

	product, err := svc.Create(context.Background(), CreateProductInput{
		UserID:     "u1",
		Name:       "Desk lamp",
		Price:      450,
		ImagePaths: []string{"uploads/a.jpg", "uploads/b.jpg"},
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, product.Status)
	assert.False(t, product.IsActive)
	assert.Equal(t, []string{product.ID}, events.published)

	view, err := svc.Get(context.Background(), product.ID)
	require.NoError(t, err)
	require.Len(t, view.Images, 2)
	for _, image := range view.Images {
		assert.Equal(t, models.StatusPending, image.Status)
		assert.Equal(t, "u1", image.UserID)
	}
}

func TestCreateProductSurvivesPublishFailure(t *testing.T) {
	store := &fakeProducts{}
	svc := NewProductService(store, store, &fakePublisher{err: errors.New("redis down")}, zerolog.Nop())

	_, err := svc.Create(context.Background(), CreateProductInput{UserID: "u1", Name: "Desk lamp", Price: 1, ImagePaths: []string{"a.jpg"}})
	assert.NoError(t, err)
	assert.Len(t, store.created, 1)
}

func TestGetMissingProduct(t *testing.T) {
	store := &fakeProducts{}
	svc := NewProductService(store, store, &fakePublisher{}, zerolog.Nop())

	_, err := svc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, repository.ErrProductNotFound)
}
