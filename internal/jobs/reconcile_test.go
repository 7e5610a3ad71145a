package jobs

//go:generate mockgen -source=reconcile.go -destination=mocks/mocks.go -package=mocks ImageStore,ProductStore,Scorer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"trustgate/internal/imagetrust"
	"trustgate/internal/jobs/mocks"
	"trustgate/internal/metrics"
	"trustgate/internal/models"
	"trustgate/internal/phash"
	"trustgate/internal/repository"
)

type ReconcilerSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	images   *mocks.MockImageStore
	products *mocks.MockProductStore
	scorer   *mocks.MockScorer
}

func TestReconcilerSuite(t *testing.T) {
	suite.Run(t, new(ReconcilerSuite))
}

func (s *ReconcilerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.images = mocks.NewMockImageStore(s.ctrl)
	s.products = mocks.NewMockProductStore(s.ctrl)
	s.scorer = mocks.NewMockScorer(s.ctrl)

	s.scorer.EXPECT().NearDuplicate(gomock.Any(), gomock.Any()).DoAndReturn(func(a, b string) (bool, error) {
		return a == b, nil
	}).AnyTimes()
}

func (s *ReconcilerSuite) reconciler(workers int) *Reconciler {
	return NewReconciler(s.images, s.products, s.scorer, ReconcilerOptions{
		Workers:     workers,
		BatchSize:   100,
		MaxAttempts: 3,
	}, metrics.New(prometheus.NewRegistry()), zerolog.Nop())
}

func pendingImage(id, productID string) models.ProductImage {
	return models.ProductImage{
		ID:        id,
		ProductID: productID,
		UserID:    "u1",
		ImagePath: "uploads/" + id + ".jpg",
		Status:    models.StatusPending,
	}
}

func scored(hash string, score int, status models.Status) imagetrust.Result {
	return imagetrust.Result{Score: score, Status: status, Reasons: []string{}, Hash: hash}
}

func (s *ReconcilerSuite) TestFailedImageDoesNotAbortSiblings() {
	ctx := context.Background()
	s.images.EXPECT().ListPending(ctx, 100).Return([]models.ProductImage{
		pendingImage("i1", "p1"),
		pendingImage("i2", "p1"),
		pendingImage("i3", "p2"),
	}, nil)

	s.scorer.EXPECT().ScoreImage(ctx, "uploads/i1.jpg", "u1").Return(scored(strings.Repeat("1", 64), 90, models.StatusApproved), nil)
	s.scorer.EXPECT().ScoreImage(ctx, "uploads/i2.jpg", "u1").Return(imagetrust.Result{}, errors.New("decode image: corrupt"))
	s.scorer.EXPECT().ScoreImage(ctx, "uploads/i3.jpg", "u1").Return(scored(strings.Repeat("3", 64), 40, models.StatusRejected), nil)

	s.images.EXPECT().SaveScore(ctx, "i1", gomock.Any()).Return(nil)
	s.images.EXPECT().SaveScore(ctx, "i3", gomock.Any()).Return(nil)
	s.images.EXPECT().RecordFailure(ctx, "i2", "decode image: corrupt", 3).Return(false, nil)

	s.products.EXPECT().ReconcileProduct(ctx, "p1", gomock.Any()).Return(models.StatusPending, nil)
	s.products.EXPECT().ReconcileProduct(ctx, "p2", gomock.Any()).Return(models.StatusRejected, nil)

	summary, err := s.reconciler(2).Tick(ctx)
	s.Require().NoError(err)
	s.Equal(Summary{Scanned: 3, Scored: 2, Failed: 1, Products: 2}, summary)
}

func (s *ReconcilerSuite) TestWritesEveryScoredField() {
	ctx := context.Background()
	cameraMake, cameraModel := "Canon", "EOS 80D"
	result := imagetrust.Result{
		Score:       85,
		Status:      models.StatusApproved,
		Reasons:     []string{imagetrust.ReasonMissingCapture},
		Hash:        strings.Repeat("a", 64),
		CameraMake:  &cameraMake,
		CameraModel: &cameraModel,
	}

	s.images.EXPECT().ListPending(ctx, 100).Return([]models.ProductImage{pendingImage("i1", "p1")}, nil)
	s.scorer.EXPECT().ScoreImage(ctx, "uploads/i1.jpg", "u1").Return(result, nil)
	s.images.EXPECT().SaveScore(ctx, "i1", models.ScoreUpdate{
		PHash:       result.Hash,
		Score:       85,
		Status:      models.StatusApproved,
		Reasons:     result.Reasons,
		CameraMake:  &cameraMake,
		CameraModel: &cameraModel,
	}).Return(nil)
	s.products.EXPECT().ReconcileProduct(ctx, "p1", gomock.Any()).DoAndReturn(
		func(_ context.Context, _ string, fold func([]models.Status) models.Status) (models.Status, error) {
			return fold([]models.Status{models.StatusApproved}), nil
		})

	summary, err := s.reconciler(1).Tick(ctx)
	s.Require().NoError(err)
	s.Equal(1, summary.Scored)
}

func (s *ReconcilerSuite) TestRepeatedFailureQuarantines() {
	ctx := context.Background()
	image := pendingImage("i1", "p1")
	image.Attempts = 2

	s.images.EXPECT().ListPending(ctx, 100).Return([]models.ProductImage{image}, nil)
	s.scorer.EXPECT().ScoreImage(ctx, "uploads/i1.jpg", "u1").Return(imagetrust.Result{}, errors.New("read image: timeout"))
	s.images.EXPECT().RecordFailure(ctx, "i1", "read image: timeout", 3).Return(true, nil)

	summary, err := s.reconciler(1).Tick(ctx)
	s.Require().NoError(err)
	s.Equal(Summary{Scanned: 1, Failed: 1, Quarantined: 1}, summary)
}

func (s *ReconcilerSuite) TestHashLengthMismatchQuarantinesImmediately() {
	ctx := context.Background()
	cause := fmt.Errorf("reuse check: %w", phash.ErrLengthMismatch)

	s.images.EXPECT().ListPending(ctx, 100).Return([]models.ProductImage{pendingImage("i1", "p1")}, nil)
	s.scorer.EXPECT().ScoreImage(ctx, "uploads/i1.jpg", "u1").Return(imagetrust.Result{}, cause)
	s.images.EXPECT().Quarantine(ctx, "i1", cause.Error()).Return(nil)

	summary, err := s.reconciler(1).Tick(ctx)
	s.Require().NoError(err)
	s.Equal(1, summary.Quarantined)
}

func (s *ReconcilerSuite) TestReuseWithinTickIsPenalized() {
	ctx := context.Background()
	hash := strings.Repeat("f", 64)
	first := scored(hash, 100, models.StatusApproved)
	reused := scored(hash, 60, models.StatusReview)
	reused.Reasons = []string{imagetrust.ReasonReused}

	s.images.EXPECT().ListPending(ctx, 100).Return([]models.ProductImage{
		pendingImage("i1", "p1"),
		pendingImage("i2", "p2"),
	}, nil)
	s.scorer.EXPECT().ScoreImage(ctx, "uploads/i1.jpg", "u1").Return(first, nil)
	s.scorer.EXPECT().ScoreImage(ctx, "uploads/i2.jpg", "u1").Return(first, nil)
	s.scorer.EXPECT().MarkReused(first).Return(reused)

	s.images.EXPECT().SaveScore(ctx, "i1", gomock.Any()).DoAndReturn(func(_ context.Context, _ string, u models.ScoreUpdate) error {
		s.Equal(100, u.Score)
		return nil
	})
	s.images.EXPECT().SaveScore(ctx, "i2", gomock.Any()).DoAndReturn(func(_ context.Context, _ string, u models.ScoreUpdate) error {
		s.Equal(60, u.Score)
		s.Equal(models.StatusReview, u.Status)
		s.Equal([]string{imagetrust.ReasonReused}, u.Reasons)
		return nil
	})
	s.products.EXPECT().ReconcileProduct(ctx, gomock.Any(), gomock.Any()).Return(models.StatusPending, nil).Times(2)

	_, err := s.reconciler(1).Tick(ctx)
	s.Require().NoError(err)
}

func (s *ReconcilerSuite) TestUnsavedHashDoesNotPenalizeSiblings() {
	ctx := context.Background()
	hash := strings.Repeat("f", 64)
	first := scored(hash, 100, models.StatusApproved)

	s.images.EXPECT().ListPending(ctx, 100).Return([]models.ProductImage{
		pendingImage("i1", "p1"),
		pendingImage("i2", "p2"),
	}, nil)
	s.scorer.EXPECT().ScoreImage(ctx, "uploads/i1.jpg", "u1").Return(first, nil)
	s.scorer.EXPECT().ScoreImage(ctx, "uploads/i2.jpg", "u1").Return(first, nil)
	s.scorer.EXPECT().MarkReused(gomock.Any()).Times(0)

	s.images.EXPECT().SaveScore(ctx, "i1", gomock.Any()).Return(errors.New("connection reset"))
	s.images.EXPECT().RecordFailure(ctx, "i1", "save score: connection reset", 3).Return(false, nil)
	s.images.EXPECT().SaveScore(ctx, "i2", gomock.Any()).DoAndReturn(func(_ context.Context, _ string, u models.ScoreUpdate) error {
		s.Equal(100, u.Score)
		s.Equal(models.StatusApproved, u.Status)
		return nil
	})
	s.products.EXPECT().ReconcileProduct(ctx, "p2", gomock.Any()).Return(models.StatusApproved, nil)

	summary, err := s.reconciler(1).Tick(ctx)
	s.Require().NoError(err)
	s.Equal(Summary{Scanned: 2, Scored: 1, Failed: 1, Products: 1}, summary)
}

func (s *ReconcilerSuite) TestAlreadyScoredImageIsSkipped() {
	ctx := context.Background()
	s.images.EXPECT().ListPending(ctx, 100).Return([]models.ProductImage{pendingImage("i1", "p1")}, nil)
	s.scorer.EXPECT().ScoreImage(ctx, "uploads/i1.jpg", "u1").Return(scored(strings.Repeat("1", 64), 90, models.StatusApproved), nil)
	s.images.EXPECT().SaveScore(ctx, "i1", gomock.Any()).Return(repository.ErrImageNotPending)

	summary, err := s.reconciler(1).Tick(ctx)
	s.Require().NoError(err)
	s.Equal(Summary{Scanned: 1}, summary)
}

func (s *ReconcilerSuite) TestProductRecomputeRetriedAfterPoolDrains() {
	ctx := context.Background()
	s.images.EXPECT().ListPending(ctx, 100).Return([]models.ProductImage{pendingImage("i1", "p1")}, nil)
	s.scorer.EXPECT().ScoreImage(ctx, "uploads/i1.jpg", "u1").Return(scored(strings.Repeat("1", 64), 90, models.StatusApproved), nil)
	s.images.EXPECT().SaveScore(ctx, "i1", gomock.Any()).Return(nil)
	gomock.InOrder(
		s.products.EXPECT().ReconcileProduct(ctx, "p1", gomock.Any()).Return(models.Status(""), errors.New("deadlock detected")),
		s.products.EXPECT().ReconcileProduct(ctx, "p1", gomock.Any()).Return(models.StatusApproved, nil),
	)

	summary, err := s.reconciler(1).Tick(ctx)
	s.Require().NoError(err)
	s.Equal(1, summary.Products)
}

func (s *ReconcilerSuite) TestListFailureIsReturned() {
	ctx := context.Background()
	s.images.EXPECT().ListPending(ctx, 100).Return(nil, errors.New("connection refused"))

	_, err := s.reconciler(1).Tick(ctx)
	s.ErrorContains(err, "list pending images")
}

func (s *ReconcilerSuite) TestEmptyTick() {
	ctx := context.Background()
	s.images.EXPECT().ListPending(ctx, 100).Return(nil, nil)

	summary, err := s.reconciler(4).Tick(ctx)
	s.Require().NoError(err)
	s.Zero(summary)
}

func TestHashClaims(t *testing.T) {
	var claims hashClaims
	near := func(a, b string) (bool, error) { return a[:2] == b[:2], nil }

	dup, err := claims.claim("aa01", near)
	assert.NoError(t, err)
	assert.False(t, dup)

	dup, err = claims.claim("aa02", near)
	assert.NoError(t, err)
	assert.True(t, dup)

	dup, err = claims.claim("bb01", near)
	assert.NoError(t, err)
	assert.False(t, dup)
	assert.Len(t, claims.hashes, 2)

	claims.release("aa01")
	dup, err = claims.claim("aa03", near)
	assert.NoError(t, err)
	assert.False(t, dup)

	_, err = claims.claim("cc", func(a, b string) (bool, error) { return false, phash.ErrLengthMismatch })
	assert.ErrorIs(t, err, phash.ErrLengthMismatch)
}

func TestKeyedMutexSerializesSameKey(t *testing.T) {
	var (
		locks   keyedMutex
		wg      sync.WaitGroup
		mu      sync.Mutex
		active  int
		maxSeen int
	)

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.lock("p1")
			defer unlock()

			mu.Lock()
			active++
			maxSeen = max(maxSeen, active)
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			active--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen)
	assert.Empty(t, locks.locks)
}
