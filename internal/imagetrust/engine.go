// Package imagetrust scores product photos for authenticity and quality.
//
// The score is a transparent sum: a base value minus analyzer penalties plus
// bonuses, mapped onto REJECTED/REVIEW/APPROVED by the policy thresholds.
// Every contribution leaves a human-readable reason behind.
package imagetrust

import (
	"context"
	"fmt"
	"slices"

	"trustgate/internal/exifread"
	"trustgate/internal/media/imageio"
	"trustgate/internal/models"
	"trustgate/internal/phash"
)

type ImageReader interface {
	Read(ctx context.Context, path string) ([]byte, error)
}

type MetadataReader interface {
	Read(data []byte) (exifread.Metadata, error)
}

type Result struct {
	Score       int           `json:"score"`
	Status      models.Status `json:"status"`
	Reasons     []string      `json:"reasons"`
	Hash        string        `json:"hash"`
	CameraMake  *string       `json:"cameraMake,omitempty"`
	CameraModel *string       `json:"cameraModel,omitempty"`
}

type Engine struct {
	policy    Policy
	images    ImageReader
	metadata  MetadataReader
	quality   QualityAnalyzer
	forensics ForensicsAnalyzer
	reuse     *ReuseDetector
	bonus     TrustBonusCalculator
}

func NewEngine(policy Policy, images ImageReader, metadata MetadataReader, index HashIndex, approvals ApprovalCounter) (*Engine, error) {
	forensics, err := NewForensicsAnalyzer(policy)
	if err != nil {
		return nil, err
	}
	return &Engine{
		policy:    policy,
		images:    images,
		metadata:  metadata,
		quality:   NewQualityAnalyzer(policy),
		forensics: forensics,
		reuse:     NewReuseDetector(policy, index),
		bonus:     NewTrustBonusCalculator(policy, approvals),
	}, nil
}

func (e *Engine) Policy() Policy {
	return e.policy
}

// ScoreImage runs every analyzer over the image at path. It has no side
// effects; persisting the result is the caller's job.
func (e *Engine) ScoreImage(ctx context.Context, path, userID string) (Result, error) {
	data, err := e.images.Read(ctx, path)
	if err != nil {
		return Result{}, fmt.Errorf("read image: %w", err)
	}

	decoded, err := imageio.Decode(data)
	if err != nil {
		return Result{}, fmt.Errorf("decode image: %w", err)
	}

	meta, err := e.metadata.Read(data)
	if err != nil {
		return Result{}, fmt.Errorf("read exif: %w", err)
	}

	hash, err := phash.Hash(decoded.Image)
	if err != nil {
		return Result{}, err
	}

	reuse, err := e.reuse.Check(ctx, hash)
	if err != nil {
		return Result{}, fmt.Errorf("reuse check: %w", err)
	}

	trustBonus, err := e.bonus.Bonus(ctx, userID)
	if err != nil {
		return Result{}, err
	}

	findings := []Finding{
		e.quality.Check(decoded),
		e.forensics.Check(meta),
		reuse,
	}

	score := e.policy.BaseScore + trustBonus
	reasons := make([]string, 0, 8)
	for _, f := range findings {
		score += f.Bonus - f.Penalty
		reasons = append(reasons, f.Reasons...)
	}

	return Result{
		Score:       score,
		Status:      e.policy.StatusFor(score),
		Reasons:     reasons,
		Hash:        hash,
		CameraMake:  optional(meta.Make),
		CameraModel: optional(meta.Model),
	}, nil
}

// NearDuplicate reports whether two digests are close enough to count as
// the same picture.
func (e *Engine) NearDuplicate(a, b string) (bool, error) {
	return e.reuse.Near(a, b)
}

// MarkReused applies the reuse penalty to a result that was scored before a
// near-duplicate became visible in the index. Results already carrying the
// penalty are returned unchanged.
func (e *Engine) MarkReused(r Result) Result {
	if slices.Contains(r.Reasons, ReasonReused) {
		return r
	}
	r.Score -= e.policy.ReusePenalty
	r.Status = e.policy.StatusFor(r.Score)
	r.Reasons = append(slices.Clone(r.Reasons), ReasonReused)
	return r
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
