package jobs

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"trustgate/internal/imagetrust"
	"trustgate/internal/metrics"
	"trustgate/internal/models"
	"trustgate/internal/phash"
	"trustgate/internal/repository"
)

type ImageStore interface {
	ListPending(ctx context.Context, limit int) ([]models.ProductImage, error)
	SaveScore(ctx context.Context, id string, u models.ScoreUpdate) error
	RecordFailure(ctx context.Context, id, reason string, maxAttempts int) (bool, error)
	Quarantine(ctx context.Context, id, reason string) error
}

type ProductStore interface {
	ReconcileProduct(ctx context.Context, productID string, fold func([]models.Status) models.Status) (models.Status, error)
}

type Scorer interface {
	ScoreImage(ctx context.Context, path, userID string) (imagetrust.Result, error)
	NearDuplicate(a, b string) (bool, error)
	MarkReused(r imagetrust.Result) imagetrust.Result
}

type ReconcilerOptions struct {
	Workers     int
	BatchSize   int
	MaxAttempts int
}

type Summary struct {
	Scanned     int
	Scored      int
	Failed      int
	Quarantined int
	Products    int
}

func (s Summary) MarshalZerologObject(e *zerolog.Event) {
	e.Int("scanned", s.Scanned).
		Int("scored", s.Scored).
		Int("failed", s.Failed).
		Int("quarantined", s.Quarantined).
		Int("products", s.Products)
}

type Reconciler struct {
	images   ImageStore
	products ProductStore
	scorer   Scorer
	opts     ReconcilerOptions
	metrics  *metrics.Metrics
	log      zerolog.Logger

	productLocks keyedMutex
}

func NewReconciler(images ImageStore, products ProductStore, scorer Scorer, opts ReconcilerOptions, m *metrics.Metrics, log zerolog.Logger) *Reconciler {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	return &Reconciler{
		images:   images,
		products: products,
		scorer:   scorer,
		opts:     opts,
		metrics:  m,
		log:      log.With().Str("component", "reconciler").Logger(),
	}
}

type tickCounters struct {
	scored      atomic.Int64
	failed      atomic.Int64
	quarantined atomic.Int64
	products    atomic.Int64

	mu    sync.Mutex
	stale map[string]struct{}
}

func (c *tickCounters) markStale(productID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stale == nil {
		c.stale = make(map[string]struct{})
	}
	c.stale[productID] = struct{}{}
}

// Tick makes one pass over the pending images. Per-image failures are
// recorded and counted; only a failure to list the pending set is returned.
func (r *Reconciler) Tick(ctx context.Context) (Summary, error) {
	start := time.Now()
	defer r.metrics.ObserveTick(start)

	pending, err := r.images.ListPending(ctx, r.opts.BatchSize)
	if err != nil {
		return Summary{}, fmt.Errorf("list pending images: %w", err)
	}
	if len(pending) == 0 {
		return Summary{}, nil
	}

	var (
		counters tickCounters
		claims   hashClaims
	)

	var g errgroup.Group
	g.SetLimit(r.opts.Workers)
	for _, image := range pending {
		if ctx.Err() != nil {
			break
		}
		image := image
		g.Go(func() error {
			r.process(ctx, image, &claims, &counters)
			return nil
		})
	}
	_ = g.Wait()

	// Products whose recompute failed mid-tick get one more attempt now
	// that every image write of the tick has landed.
	for productID := range counters.stale {
		status, err := r.reconcileProduct(ctx, productID)
		if err != nil {
			r.log.Error().Err(err).Str("product_id", productID).Msg("recompute product status failed")
			continue
		}
		counters.products.Add(1)
		r.metrics.ObserveProductReconciled(string(status))
	}

	summary := Summary{
		Scanned:     len(pending),
		Scored:      int(counters.scored.Load()),
		Failed:      int(counters.failed.Load()),
		Quarantined: int(counters.quarantined.Load()),
		Products:    int(counters.products.Load()),
	}
	r.log.Info().EmbedObject(summary).Dur("took", time.Since(start)).Msg("reconcile tick finished")
	return summary, ctx.Err()
}

func (r *Reconciler) process(ctx context.Context, image models.ProductImage, claims *hashClaims, counters *tickCounters) {
	log := r.log.With().Str("image_id", image.ID).Str("product_id", image.ProductID).Logger()

	result, err := r.scorer.ScoreImage(ctx, image.ImagePath, image.UserID)
	if err != nil {
		r.fail(ctx, log, image, err, counters)
		return
	}

	dup, err := claims.claim(result.Hash, r.scorer.NearDuplicate)
	if err != nil {
		r.fail(ctx, log, image, err, counters)
		return
	}
	if dup {
		result = r.scorer.MarkReused(result)
	}
	// A digest that never reaches the store must not count against siblings.
	saved := false
	defer func() {
		if !dup && !saved {
			claims.release(result.Hash)
		}
	}()

	err = r.images.SaveScore(ctx, image.ID, models.ScoreUpdate{
		PHash:       result.Hash,
		Score:       result.Score,
		Status:      result.Status,
		Reasons:     result.Reasons,
		CameraMake:  result.CameraMake,
		CameraModel: result.CameraModel,
	})
	if errors.Is(err, repository.ErrImageNotPending) {
		log.Debug().Msg("image already scored, skipping")
		return
	}
	if err != nil {
		r.fail(ctx, log, image, fmt.Errorf("save score: %w", err), counters)
		return
	}
	saved = true

	counters.scored.Add(1)
	r.metrics.ObserveImageScored(string(result.Status))
	log.Debug().Int("score", result.Score).Str("status", string(result.Status)).Msg("image scored")

	status, err := r.reconcileProduct(ctx, image.ProductID)
	if err != nil {
		log.Warn().Err(err).Msg("recompute product status failed, retrying after the pool drains")
		counters.markStale(image.ProductID)
		return
	}
	counters.products.Add(1)
	r.metrics.ObserveProductReconciled(string(status))
}

func (r *Reconciler) reconcileProduct(ctx context.Context, productID string) (models.Status, error) {
	unlock := r.productLocks.lock(productID)
	defer unlock()
	return r.products.ReconcileProduct(ctx, productID, models.AggregateStatus)
}

func (r *Reconciler) fail(ctx context.Context, log zerolog.Logger, image models.ProductImage, cause error, counters *tickCounters) {
	counters.failed.Add(1)
	r.metrics.IncrementScoringFailure()

	if errors.Is(cause, phash.ErrLengthMismatch) {
		log.Error().Err(cause).Msg("hash length mismatch, quarantining image")
		if err := r.images.Quarantine(ctx, image.ID, cause.Error()); err != nil {
			log.Error().Err(err).Msg("quarantine image failed")
			return
		}
		counters.quarantined.Add(1)
		r.metrics.IncrementQuarantined()
		return
	}

	quarantined, err := r.images.RecordFailure(ctx, image.ID, cause.Error(), r.opts.MaxAttempts)
	if err != nil {
		log.Error().Err(err).AnErr("cause", cause).Msg("record scoring failure failed")
		return
	}
	if quarantined {
		counters.quarantined.Add(1)
		r.metrics.IncrementQuarantined()
		log.Warn().Err(cause).Int("attempts", image.Attempts+1).Msg("image quarantined after repeated failures")
		return
	}
	log.Warn().Err(cause).Int("attempts", image.Attempts+1).Msg("image scoring failed, will retry")
}

// hashClaims holds the digests accepted earlier in the same tick. The
// stored index only sees them once written, so two copies of one picture
// scored side by side would otherwise both pass the reuse check.
type hashClaims struct {
	mu     sync.Mutex
	hashes []string
}

func (c *hashClaims) claim(hash string, near func(a, b string) (bool, error)) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, h := range c.hashes {
		dup, err := near(h, hash)
		if err != nil {
			return false, err
		}
		if dup {
			return true, nil
		}
	}
	c.hashes = append(c.hashes, hash)
	return false, nil
}

func (c *hashClaims) release(hash string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i := slices.Index(c.hashes, hash); i >= 0 {
		c.hashes = slices.Delete(c.hashes, i, i+1)
	}
}

type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedEntry
}

type keyedEntry struct {
	mu   sync.Mutex
	refs int
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*keyedEntry)
	}
	e, ok := k.locks[key]
	if !ok {
		e = &keyedEntry{}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
