package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"trustgate/internal/models"
)

var (
	ErrImageNotFound   = errors.New("image not found")
	ErrImageNotPending = errors.New("image is no longer pending")
)

const imageColumns = `
	id, product_id, user_id, image_path, phash, score, status, reasons,
	camera_make, camera_model, attempts, last_error, quarantined, created_at, updated_at
`

type ImageRepository struct {
	pool *pgxpool.Pool
}

func NewImageRepository(pool *pgxpool.Pool) *ImageRepository {
	return &ImageRepository{pool: pool}
}

func scanImage(row pgx.Row) (models.ProductImage, error) {
	var image models.ProductImage
	err := row.Scan(
		&image.ID,
		&image.ProductID,
		&image.UserID,
		&image.ImagePath,
		&image.PHash,
		&image.Score,
		&image.Status,
		&image.Reasons,
		&image.CameraMake,
		&image.CameraModel,
		&image.Attempts,
		&image.LastError,
		&image.Quarantined,
		&image.CreatedAt,
		&image.UpdatedAt,
	)
	return image, err
}

func collectImages(rows pgx.Rows) ([]models.ProductImage, error) {
	defer rows.Close()

	var images []models.ProductImage
	for rows.Next() {
		image, err := scanImage(rows)
		if err != nil {
			return nil, err
		}
		images = append(images, image)
	}
	return images, rows.Err()
}

func (r *ImageRepository) GetByID(ctx context.Context, id string) (models.ProductImage, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+imageColumns+` FROM product_images WHERE id = $1`, id)
	image, err := scanImage(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ProductImage{}, ErrImageNotFound
		}
		return models.ProductImage{}, err
	}
	return image, nil
}

// FindHashesByPrefix uses the text_pattern_ops index on phash.
func (r *ImageRepository) FindHashesByPrefix(ctx context.Context, prefix string) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT phash FROM product_images
		WHERE phash IS NOT NULL AND phash LIKE $1 || '%'
	`, prefix)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hashes []string
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, err
		}
		hashes = append(hashes, h)
	}
	return hashes, rows.Err()
}

func (r *ImageRepository) CountApprovedByUser(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM product_images WHERE user_id = $1 AND status = $2
	`, userID, models.StatusApproved).Scan(&n)
	return n, err
}

// ListPending returns pending images that have not been quarantined,
// oldest first. A limit of zero or less returns all of them.
func (r *ImageRepository) ListPending(ctx context.Context, limit int) ([]models.ProductImage, error) {
	var capped *int
	if limit > 0 {
		capped = &limit
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+imageColumns+` FROM product_images
		WHERE status = $1 AND NOT quarantined
		ORDER BY created_at ASC
		LIMIT $2
	`, models.StatusPending, capped)
	if err != nil {
		return nil, err
	}
	return collectImages(rows)
}

func (r *ImageRepository) ListByProduct(ctx context.Context, productID string) ([]models.ProductImage, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+imageColumns+` FROM product_images
		WHERE product_id = $1
		ORDER BY created_at ASC, id ASC
	`, productID)
	if err != nil {
		return nil, err
	}
	return collectImages(rows)
}

// SaveScore writes a scoring outcome. The PENDING guard makes the write
// happen at most once even if two runners scored the same image.
func (r *ImageRepository) SaveScore(ctx context.Context, id string, u models.ScoreUpdate) error {
	reasons := u.Reasons
	if reasons == nil {
		reasons = []string{}
	}
	tag, err := r.pool.Exec(ctx, `
		UPDATE product_images
		SET phash = $2,
		    score = $3,
		    status = $4,
		    reasons = $5,
		    camera_make = $6,
		    camera_model = $7,
		    last_error = NULL,
		    updated_at = NOW()
		WHERE id = $1 AND status = $8
	`, id, u.PHash, u.Score, u.Status, reasons, u.CameraMake, u.CameraModel, models.StatusPending)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrImageNotPending
	}
	return nil
}

// RecordFailure counts a failed scoring attempt and quarantines the image
// once maxAttempts is reached.
func (r *ImageRepository) RecordFailure(ctx context.Context, id, reason string, maxAttempts int) (bool, error) {
	var quarantined bool
	err := r.pool.QueryRow(ctx, `
		UPDATE product_images
		SET attempts = attempts + 1,
		    last_error = $2,
		    quarantined = quarantined OR attempts + 1 >= $3,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING quarantined
	`, id, reason, maxAttempts).Scan(&quarantined)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, ErrImageNotFound
	}
	return quarantined, err
}

func (r *ImageRepository) Quarantine(ctx context.Context, id, reason string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE product_images
		SET attempts = attempts + 1, last_error = $2, quarantined = TRUE, updated_at = NOW()
		WHERE id = $1
	`, id, reason)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrImageNotFound
	}
	return nil
}

func (r *ImageRepository) ListQuarantined(ctx context.Context, limit, offset int) ([]models.ProductImage, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+imageColumns+` FROM product_images
		WHERE quarantined
		ORDER BY updated_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	return collectImages(rows)
}

// Requeue returns a quarantined image to the pending sweep with a fresh
// attempt budget.
func (r *ImageRepository) Requeue(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE product_images
		SET quarantined = FALSE, attempts = 0, last_error = NULL, updated_at = NOW()
		WHERE id = $1 AND quarantined AND status = $2
	`, id, models.StatusPending)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrImageNotFound
	}
	return nil
}
